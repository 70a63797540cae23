package session

import (
	"sync"

	"aistats/domain/dataset"
)

// Store holds a session's active dataset and its labels. It implements
// ports.DatasetStore; returned cells are shared and must be treated as read-only.
type Store struct {
	mu     sync.RWMutex
	ds     *dataset.Dataset
	labels *dataset.LabelSet
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{labels: dataset.NewLabelSet()}
}

// Replace swaps in a new dataset. Labels are cleared because they describe
// the codes of the previous dataset.
func (s *Store) Replace(ds *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
	s.labels = dataset.NewLabelSet()
}

// Clear drops the dataset and its labels
func (s *Store) Clear() {
	s.Replace(nil)
}

func (s *Store) CurrentDataset() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

func (s *Store) ColumnNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil
	}
	return s.ds.ColumnNames()
}

func (s *Store) ColumnValues(name string) ([]dataset.Cell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, false
	}
	col, ok := s.ds.Column(name)
	if !ok {
		return nil, false
	}
	return col.Cells, true
}

func (s *Store) ValueLabels(name string) dataset.ValueLabels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels.ValueLabelsFor(name)
}

// Labels returns a snapshot of the label set
func (s *Store) Labels() *dataset.LabelSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels.Clone()
}

// SetVariableLabel assigns a display label to a column
func (s *Store) SetVariableLabel(variable, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels.SetVariableLabel(variable, label)
}

// SetValueLabels replaces a column's value labels; an empty map removes them
func (s *Store) SetValueLabels(variable string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels.SetValueLabels(variable, labels)
}

// ClearLabels removes one column's labels, or all labels when variable is empty
func (s *Store) ClearLabels(variable string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels.Clear(variable)
}

// ImportLabels merges an imported label schema into the current one
func (s *Store) ImportLabels(other *dataset.LabelSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels.Import(other)
}
