package labelfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"aistats/domain/dataset"
	apperrors "aistats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_YAMLNormalizesKeys(t *testing.T) {
	src := `
variable_labels:
  grade: 年级
value_labels:
  grade:
    1: 初一
    2.0: 初二
    "3": 初三
`
	labels, err := Decode(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "年级", labels.VariableLabel("grade"))
	assert.Equal(t, dataset.ValueLabels{"1": "初一", "2": "初二", "3": "初三"}, labels.ValueLabelsFor("grade"))
}

func TestDecode_AbsentSectionStaysNil(t *testing.T) {
	labels, err := Decode(strings.NewReader(`{"value_labels":{"sex":{"1":"男","2":"女"}}}`), FormatJSON)
	require.NoError(t, err)
	assert.Nil(t, labels.VariableLabels)

	target := dataset.NewLabelSet()
	target.SetVariableLabel("sex", "性别")
	target.Import(labels)
	assert.Equal(t, "性别", target.VariableLabel("sex"))
	assert.Equal(t, "女", target.ValueLabelsFor("sex")["2"])
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(strings.NewReader("  "), FormatYAML)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = Decode(strings.NewReader("value_labels: [1, 2"), FormatYAML)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestEncodeDecodeFiles(t *testing.T) {
	labels := dataset.NewLabelSet()
	labels.SetVariableLabel("grade", "年级")
	labels.SetValueLabels("grade", map[string]string{"1": "初一", "2": "初二"})

	dir := t.TempDir()
	for _, name := range []string{"labels.yaml", "labels.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, labels))

		loaded, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, labels.VariableLabels, loaded.VariableLabels, name)
		assert.Equal(t, labels.ValueLabels, loaded.ValueLabels, name)
	}
}

func TestEncode_JSONKeepsUnicode(t *testing.T) {
	labels := dataset.NewLabelSet()
	labels.SetVariableLabel("grade", "年级")

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, labels, FormatJSON))
	assert.Contains(t, buf.String(), "年级")
	assert.Equal(t, FormatJSON, FormatFor("x.JSON"))
	assert.Equal(t, FormatYAML, FormatFor("x.yml"))
}
