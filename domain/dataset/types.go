package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"aistats/domain/core"
)

// CellKind distinguishes the three shapes a cell can take
type CellKind int

const (
	CellMissing CellKind = iota
	CellNumber
	CellText
)

// Cell is a single dataset value: a number, a text value, or missing.
type Cell struct {
	kind CellKind
	num  float64
	text string
}

// Number creates a numeric cell. NaN and infinities are stored as missing.
func Number(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing()
	}
	return Cell{kind: CellNumber, num: v}
}

// Text creates a text cell. Blank text is stored as missing.
func Text(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Missing()
	}
	return Cell{kind: CellText, text: s}
}

// Missing creates a missing cell.
func Missing() Cell {
	return Cell{kind: CellMissing}
}

// ParseCell converts raw imported text into a cell, preferring numbers.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Missing()
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Number(v)
	}
	return Text(raw)
}

func (c Cell) Kind() CellKind       { return c.kind }
func (c Cell) IsMissing() bool      { return c.kind == CellMissing }
func (c Cell) IsNumber() bool       { return c.kind == CellNumber }
func (c Cell) IsText() bool         { return c.kind == CellText }
func (c Cell) NumberValue() float64 { return c.num }

// Key is the canonical string form used for grouping and label lookup.
// Numbers print without trailing zeros so 1.0 and 1 share the key "1".
func (c Cell) Key() string {
	switch c.kind {
	case CellNumber:
		return FormatNumber(c.num)
	case CellText:
		return c.text
	}
	return ""
}

// Float coerces the cell to a number; text is parsed, anything else reports false.
func (c Cell) Float() (float64, bool) {
	switch c.kind {
	case CellNumber:
		return c.num, true
	case CellText:
		v, err := strconv.ParseFloat(strings.TrimSpace(c.text), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Value returns the cell as a JSON-friendly primitive (float64, string or nil).
func (c Cell) Value() interface{} {
	switch c.kind {
	case CellNumber:
		return c.num
	case CellText:
		return c.text
	}
	return nil
}

func (c Cell) String() string {
	return c.Key()
}

// FormatNumber renders a float in its shortest exact form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Column is a named, ordered sequence of cells
type Column struct {
	Name  string `json:"name"`
	Cells []Cell `json:"-"`
}

// IsNumeric reports whether every non-missing cell is a number
// (and at least one such cell exists).
func (c *Column) IsNumeric() bool {
	seen := false
	for _, cell := range c.Cells {
		switch cell.kind {
		case CellText:
			return false
		case CellNumber:
			seen = true
		}
	}
	return seen
}

// MissingCount counts missing cells
func (c *Column) MissingCount() int {
	n := 0
	for _, cell := range c.Cells {
		if cell.IsMissing() {
			n++
		}
	}
	return n
}

// NonMissing returns the present cells in row order
func (c *Column) NonMissing() []Cell {
	out := make([]Cell, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if !cell.IsMissing() {
			out = append(out, cell)
		}
	}
	return out
}

// Dataset is an ordered set of uniquely named, equally long columns
type Dataset struct {
	Name    string
	columns []Column
	index   map[string]int
	rows    int
}

// New validates and builds a dataset.
func New(name string, columns []Column) (*Dataset, error) {
	ds := &Dataset{
		Name:    name,
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col.Name == "" {
			return nil, core.NewInvalidDatasetError(fmt.Sprintf("column %d has no name", i))
		}
		if _, dup := ds.index[col.Name]; dup {
			return nil, core.NewInvalidDatasetError(fmt.Sprintf("duplicate column name %q", col.Name))
		}
		if i == 0 {
			ds.rows = len(col.Cells)
		} else if len(col.Cells) != ds.rows {
			return nil, core.NewInvalidDatasetError(fmt.Sprintf("column %q has %d rows, expected %d", col.Name, len(col.Cells), ds.rows))
		}
		cells := make([]Cell, len(col.Cells))
		copy(cells, col.Cells)
		ds.columns[i] = Column{Name: col.Name, Cells: cells}
		ds.index[col.Name] = i
	}
	return ds, nil
}

// FromRecords builds a dataset from a header row and string records,
// parsing each value with ParseCell. Short records are padded with missing cells.
func FromRecords(name string, header []string, records [][]string) (*Dataset, error) {
	columns := make([]Column, len(header))
	for i, h := range header {
		columns[i] = Column{Name: strings.TrimSpace(h), Cells: make([]Cell, len(records))}
	}
	for r, record := range records {
		for i := range columns {
			if i < len(record) {
				columns[i].Cells[r] = ParseCell(record[i])
			} else {
				columns[i].Cells[r] = Missing()
			}
		}
	}
	return New(name, columns)
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int { return d.rows }

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// ColumnNames returns the column names in declared order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by exact name
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return &d.columns[i], true
}

// HasColumn reports whether a column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}
