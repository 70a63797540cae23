package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"aistats/adapters/excel"
	"aistats/adapters/labelfile"
	"aistats/internal/testkit"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture() (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	return cmd, &buf
}

func TestSeedWritesReadableFiles(t *testing.T) {
	dir := t.TempDir()
	config := testkit.DefaultSurveyConfig()
	config.Respondents = 40

	cmd, out := capture()
	require.NoError(t, generateSeedData(cmd, config, dir, excel.FormatCSV))
	assert.Contains(t, out.String(), "40 rows")

	ds, err := excel.NewDataReader(filepath.Join(dir, "survey.csv")).ReadDataset()
	require.NoError(t, err)
	assert.Equal(t, 40, ds.RowCount())

	labels, err := labelfile.Load(filepath.Join(dir, "labels.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "女", labels.ValueLabelsFor(testkit.ColumnGender)["2"])
}

func TestSmokeTestsPass(t *testing.T) {
	cmd, out := capture()
	require.NoError(t, runSmokeTests(cmd, testkit.DefaultSurveyConfig()))
	assert.Contains(t, out.String(), "PASS descriptive")
	assert.Contains(t, out.String(), "PASS t-test")
	assert.Contains(t, out.String(), "PASS correlation")
}
