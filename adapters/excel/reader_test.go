package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aistats/domain/core"
	"aistats/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestRead_XLSX(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		{"score", "group", "hobby"},
		{1.5, "a", "reading;music"},
		{2, "b", nil},
		{nil, "a", "music"},
	})

	ds, err := Read(buf, "survey.xlsx", FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, []string{"score", "group", "hobby"}, ds.ColumnNames())
	assert.Equal(t, 3, ds.RowCount())

	score, ok := ds.Column("score")
	require.True(t, ok)
	assert.True(t, score.IsNumeric())
	assert.Equal(t, 1, score.MissingCount())
	assert.Equal(t, 1.5, score.Cells[0].NumberValue())

	hobby, _ := ds.Column("hobby")
	assert.Equal(t, "reading;music", hobby.Cells[0].Key())
	assert.True(t, hobby.Cells[1].IsMissing())
}

func TestRead_CSV(t *testing.T) {
	src := "\xef\xbb\xbf年级,满意度（1-5）\n初一,4\n初二,\n\n初一,5,extra\n"
	ds, err := Read(strings.NewReader(src), "grades.csv", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, []string{"年级", "满意度（1-5）"}, ds.ColumnNames())
	assert.Equal(t, 3, ds.RowCount(), "blank line dropped")
	sat, _ := ds.Column("满意度（1-5）")
	assert.True(t, sat.IsNumeric())
	assert.Equal(t, 1, sat.MissingCount())
}

func TestRead_HeaderNormalization(t *testing.T) {
	ds, err := Read(strings.NewReader("a,,a,a\n1,2,3,4\n"), "x.csv", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, ds.ColumnNames())
}

func TestRead_Failures(t *testing.T) {
	_, err := Read(strings.NewReader(""), "empty.csv", FormatCSV)
	assert.ErrorIs(t, err, core.ErrInvalidDataset)

	_, err = Read(strings.NewReader("not a zip"), "bad.xlsx", FormatXLSX)
	assert.ErrorIs(t, err, core.ErrInvalidDataset)

	_, err = Read(strings.NewReader("a\n1\n"), "data.json", "json")
	assert.ErrorIs(t, err, core.ErrInvalidDataset)
}

func TestDataReader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n3,4\n"), 0o644))

	r := NewDataReader(path)
	assert.Equal(t, FormatCSV, r.Format())
	ds, err := r.ReadDataset()
	require.NoError(t, err)
	assert.Equal(t, "data.csv", ds.Name)
	assert.Equal(t, 2, ds.RowCount())

	_, err = NewDataReader(filepath.Join(dir, "missing.xlsx")).ReadDataset()
	assert.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFormat("A.CSV"))
	assert.Equal(t, FormatXLSX, DetectFormat("book.xlsx"))
	assert.Equal(t, "", DetectFormat("notes.txt"))
}

func TestWrite_RoundTrip(t *testing.T) {
	ds, err := dataset.FromRecords("in", []string{"score", "group"}, [][]string{
		{"3.5", "A"},
		{"", "B"},
		{"4", ""},
	})
	require.NoError(t, err)

	for _, format := range []string{FormatCSV, FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, ds, format))

			back, err := Read(&buf, "out."+format, format)
			require.NoError(t, err)
			assert.Equal(t, []string{"score", "group"}, back.ColumnNames())
			assert.Equal(t, 3, back.RowCount())

			score, _ := back.Column("score")
			assert.Equal(t, 3.5, score.Cells[0].NumberValue())
			assert.True(t, score.Cells[1].IsMissing())
			group, _ := back.Column("group")
			assert.True(t, group.Cells[2].IsMissing())
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	ds, err := dataset.FromRecords("in", []string{"a"}, [][]string{{"1"}})
	require.NoError(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, ds, "sav"))
	assert.Error(t, Write(&bytes.Buffer{}, nil, FormatCSV))
}
