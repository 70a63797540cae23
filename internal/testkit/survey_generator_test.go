package testkit

import (
	"testing"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"
	"aistats/internal/analysis"
	"aistats/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, config SurveyGeneratorConfig) (*dataset.Dataset, *dataset.LabelSet) {
	t.Helper()
	ds, labels, err := NewSurveyGenerator(config).Generate()
	require.NoError(t, err)
	return ds, labels
}

func TestSurveyGenerator_Shape(t *testing.T) {
	config := DefaultSurveyConfig()
	config.Respondents = 50
	ds, labels := generate(t, config)

	assert.Equal(t, 50, ds.RowCount())
	assert.Equal(t, 8, ds.ColumnCount())
	assert.Equal(t, "研究生", labels.ValueLabelsFor(ColumnGrade)["5"])

	score, ok := ds.Column(ColumnScore)
	require.True(t, ok)
	assert.True(t, score.IsNumeric())
}

func TestSurveyGenerator_Deterministic(t *testing.T) {
	config := DefaultSurveyConfig()
	config.Respondents = 30
	a, _ := generate(t, config)
	b, _ := generate(t, config)

	for _, name := range a.ColumnNames() {
		ca, _ := a.Column(name)
		cb, _ := b.Column(name)
		assert.Equal(t, ca.Cells, cb.Cells, name)
	}
}

func TestSurveyGenerator_NoMissingWhenRateZero(t *testing.T) {
	config := DefaultSurveyConfig()
	config.MissingRate = 0
	ds, _ := generate(t, config)

	for _, name := range ds.ColumnNames() {
		col, _ := ds.Column(name)
		assert.Zero(t, col.MissingCount(), name)
	}
}

func TestSurveyGenerator_FeedsEngine(t *testing.T) {
	config := DefaultSurveyConfig()
	config.MissingRate = 0
	ds, labels := generate(t, config)

	s := session.New(core.SessionID(core.NewID()), analysis.WithCategoricalThreshold(10))
	s.ReplaceDataset(ds)
	s.Store().ImportLabels(labels)

	desc, err := s.Engine().Descriptive([]string{ColumnGrade, ColumnPlatforms})
	require.NoError(t, err)

	grade, ok := desc.Block(ColumnGrade)
	require.True(t, ok)
	cat, ok := grade.(stats.CategoricalBlock)
	require.True(t, ok)
	last := cat.Values[len(cat.Values)-1]
	assert.Equal(t, "研究生", last.Label)
	assert.Zero(t, last.Frequency)

	platformsBlock, _ := desc.Block(ColumnPlatforms)
	assert.Equal(t, stats.BlockMultipleChoice, platformsBlock.BlockType())

	corr, err := s.Engine().Correlation([]string{ColumnStudyHours, ColumnScore})
	require.NoError(t, err)
	assert.Greater(t, corr.CorrelationMatrix.Get(ColumnStudyHours, ColumnScore), 0.3)
}
