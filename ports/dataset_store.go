package ports

import "aistats/domain/dataset"

// DatasetStore is the read side the statistics engine depends on.
// Implementations must be safe for concurrent reads.
type DatasetStore interface {
	// CurrentDataset returns the active dataset, or nil when none is loaded
	CurrentDataset() *dataset.Dataset
	// ColumnNames lists column names in declared order (nil when no dataset)
	ColumnNames() []string
	// ColumnValues returns a column's cells by exact name
	ColumnValues(name string) ([]dataset.Cell, bool)
	// ValueLabels returns a copy of the value labels for a column (nil when none)
	ValueLabels(name string) dataset.ValueLabels
}
