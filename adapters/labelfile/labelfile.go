// Package labelfile reads and writes label schemas as YAML or JSON.
//
//	variable_labels:
//	  grade: 年级
//	value_labels:
//	  grade:
//	    "1": 初一
//	    "2": 初二
package labelfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aistats/domain/dataset"
	apperrors "aistats/internal/errors"

	"gopkg.in/yaml.v3"
)

// Formats
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// FormatFor picks the format from a file extension; unknown extensions mean YAML
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a label schema. JSON is valid YAML, so YAML decoding accepts both
// unless format is explicitly JSON.
func Decode(r io.Reader, format string) (*dataset.LabelSet, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read label file")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperrors.InvalidInput("label file is empty")
	}

	var doc fileLabels
	switch format {
	case FormatJSON:
		err = json.Unmarshal(raw, &doc)
	default:
		err = yaml.Unmarshal(raw, &doc)
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("invalid label file: %w", err))
	}
	return doc.toLabelSet(), nil
}

// Encode writes a label schema
func Encode(w io.Writer, labels *dataset.LabelSet, format string) error {
	if labels == nil {
		labels = dataset.NewLabelSet()
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(labels)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(labels); err != nil {
			return apperrors.Wrap(err, "failed to encode labels")
		}
		return enc.Close()
	}
}

// Load reads a label file from disk
func Load(path string) (*dataset.LabelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open label file %s", path)
	}
	defer f.Close()
	return Decode(f, FormatFor(path))
}

// Save writes a label file to disk
func Save(path string, labels *dataset.LabelSet) error {
	var buf bytes.Buffer
	if err := Encode(&buf, labels, FormatFor(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperrors.Wrapf(err, "failed to write label file %s", path)
	}
	return nil
}

// fileLabels accepts scalar value keys of any YAML type (1, 1.0, "1")
type fileLabels struct {
	VariableLabels map[string]string            `json:"variable_labels" yaml:"variable_labels"`
	ValueLabels    map[string]map[string]string `json:"value_labels" yaml:"value_labels"`
}

func (f fileLabels) toLabelSet() *dataset.LabelSet {
	out := &dataset.LabelSet{}
	if f.VariableLabels != nil {
		out.VariableLabels = f.VariableLabels
	}
	if f.ValueLabels != nil {
		out.ValueLabels = make(map[string]dataset.ValueLabels, len(f.ValueLabels))
		for variable, labels := range f.ValueLabels {
			vl := make(dataset.ValueLabels, len(labels))
			for k, v := range labels {
				vl[dataset.NormalizeValueKey(k)] = v
			}
			out.ValueLabels[variable] = vl
		}
	}
	return out
}
