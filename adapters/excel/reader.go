package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aistats/domain/core"
	"aistats/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// File formats accepted by the reader
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DetectFormat picks the format from a file name; anything but .csv is read as xlsx
func DetectFormat(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	}
	return ""
}

// DataReader handles reading Excel and CSV files into a Dataset
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	fileType := DetectFormat(filePath)
	if fileType == "" {
		fileType = FormatXLSX
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// Format returns the detected file format
func (r *DataReader) Format() string { return r.fileType }

// ReadDataset reads the file into a dataset named after the file
func (r *DataReader) ReadDataset() (*dataset.Dataset, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	f, err := os.Open(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer f.Close()

	return Read(f, filepath.Base(r.filePath), r.fileType)
}

// Read parses an uploaded stream of the given format
func Read(src io.Reader, name, format string) (*dataset.Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch format {
	case FormatCSV:
		rows, err = readCSVRows(src)
	case FormatXLSX:
		rows, err = readExcelRows(src)
	default:
		return nil, core.NewInvalidDatasetError(fmt.Sprintf("unsupported file type %q", format))
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", strings.ToUpper(format), float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return processRows(name, rows)
}

// readExcelRows reads the first worksheet
func readExcelRows(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, core.NewInvalidDatasetError(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewInvalidDatasetError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewInvalidDatasetError(fmt.Sprintf("failed to read sheet %s: %v", sheets[0], err))
	}
	return rows, nil
}

func readCSVRows(src io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewInvalidDatasetError(fmt.Sprintf("failed to read CSV file: %v", err))
	}
	return rows, nil
}

// processRows turns the header row plus data rows into a dataset. Fully blank
// rows are dropped; cells beyond the header are ignored.
func processRows(name string, rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, core.NewInvalidDatasetError("file has no header row")
	}
	headers := normalizeHeaders(rows[0])

	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		if len(row) > len(headers) {
			row = row[:len(headers)]
		}
		records = append(records, row)
	}

	ds, err := dataset.FromRecords(name, headers, records)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] dataset %s built (%d columns, %d rows)", name, ds.ColumnCount(), ds.RowCount())
	return ds, nil
}

// normalizeHeaders names blank headers "Unnamed: i" and suffixes repeats with ".1", ".2", ...
func normalizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		base := h
		for seen[h] > 0 {
			h = fmt.Sprintf("%s.%d", base, seen[base])
			seen[base]++
		}
		seen[h]++
		headers[i] = h
	}
	return headers
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
