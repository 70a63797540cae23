package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"aistats/domain/dataset"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Write serializes a dataset as xlsx or csv. Missing cells are left blank.
func Write(w io.Writer, ds *dataset.Dataset, format string) error {
	if ds == nil {
		return fmt.Errorf("no dataset to write")
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, ds)
	case FormatXLSX:
		return writeXLSX(w, ds)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// WriteFile writes a dataset to path, picking the format from the extension
func WriteFile(path string, ds *dataset.Dataset) error {
	format := DetectFormat(path)
	if format == "" {
		return fmt.Errorf("cannot infer format from %s (use .csv or .xlsx)", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, ds, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	names := ds.ColumnNames()
	if err := cw.Write(names); err != nil {
		return err
	}
	record := make([]string, len(names))
	for row := 0; row < ds.RowCount(); row++ {
		for i, name := range names {
			col, _ := ds.Column(name)
			record[i] = col.Cells[row].Key()
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	names := ds.ColumnNames()
	header := make([]interface{}, len(names))
	for i, name := range names {
		header[i] = name
	}
	if err := f.SetSheetRow(defaultSheet, "A1", &header); err != nil {
		return err
	}

	for row := 0; row < ds.RowCount(); row++ {
		values := make([]interface{}, len(names))
		for i, name := range names {
			col, _ := ds.Column(name)
			values[i] = col.Cells[row].Value()
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(defaultSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
