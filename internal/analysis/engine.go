// Package analysis implements the statistics engine over a DatasetStore:
// descriptive summaries, t-tests, one-way ANOVA, Pearson correlation,
// OLS regression, Cronbach's alpha and simple mediation.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"
	"aistats/internal"
	"aistats/internal/resolver"
	"aistats/ports"
)

// CIMethod selects the critical value for the comparison confidence interval
type CIMethod string

const (
	// CINormal uses the fixed z value 1.96
	CINormal CIMethod = "normal"
	// CIStudentT uses the t quantile at df = n1+n2-2
	CIStudentT CIMethod = "t"
)

const (
	// DefaultCategoricalThreshold is the distinct-value count at or below which
	// numeric columns are summarized as categories
	DefaultCategoricalThreshold = 15

	multipleChoiceSample = 20
	normalCritical95     = 1.96
	perfectCorrelation   = 0.9999
	minCorrelationRows   = 3
	minGroupSize         = 2
	minMediationRows     = 4
)

var (
	errZeroVariance = errors.New("zero variance")
	errNonFinite    = errors.New("result is not a finite number")
)

// Option configures an Engine
type Option func(*Engine)

// WithCategoricalThreshold overrides the numeric/categorical cut-off
func WithCategoricalThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.categoricalThreshold = n
		}
	}
}

// WithCIMethod selects how the comparison interval's critical value is chosen
func WithCIMethod(m CIMethod) Option {
	return func(e *Engine) {
		if m == CINormal || m == CIStudentT {
			e.ciMethod = m
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(l *internal.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs analyses against a dataset store. It never mutates the store.
type Engine struct {
	store                ports.DatasetStore
	categoricalThreshold int
	ciMethod             CIMethod
	logger               *internal.Logger

	mu   sync.RWMutex
	last stats.Result
}

// NewEngine creates an engine bound to a store
func NewEngine(store ports.DatasetStore, opts ...Option) *Engine {
	e := &Engine{
		store:                store,
		categoricalThreshold: DefaultCategoricalThreshold,
		ciMethod:             CINormal,
		logger:               internal.NewDefaultLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LastResult returns the most recent successful result, or nil
func (e *Engine) LastResult() stats.Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// ClearLastResult forgets the cached result (used when the dataset changes)
func (e *Engine) ClearLastResult() {
	e.mu.Lock()
	e.last = nil
	e.mu.Unlock()
}

func (e *Engine) remember(r stats.Result) {
	e.mu.Lock()
	e.last = r
	e.mu.Unlock()
}

// resolveColumn maps a requested name to a column: exact match first, then fuzzy.
// fuzzy reports whether the resolver was needed.
func resolveColumn(name string, columns []string) (col string, fuzzy bool, err error) {
	for _, c := range columns {
		if c == name {
			return c, false, nil
		}
	}
	if m, ok := resolver.ResolveMatch(name, columns); ok {
		return m.Column, true, nil
	}
	return "", false, core.NewVariableNotFoundError(name)
}

// snapshot pins the dataset one operation reads. Every column comes from the
// returned value, so a concurrent ReplaceDataset cannot split a computation.
func (e *Engine) snapshot() (*dataset.Dataset, error) {
	ds := e.store.CurrentDataset()
	if ds == nil {
		return nil, core.ErrNoData
	}
	return ds, nil
}

// lookup resolves a requested name against ds and returns its column
func lookup(ds *dataset.Dataset, requested string) (*dataset.Column, bool, error) {
	name, fuzzy, err := resolveColumn(requested, ds.ColumnNames())
	if err != nil {
		return nil, false, err
	}
	col, ok := ds.Column(name)
	if !ok {
		return nil, false, core.NewVariableNotFoundError(requested)
	}
	return col, fuzzy, nil
}

// lookupAll resolves several names, rejecting two references to the same column
func lookupAll(ds *dataset.Dataset, operation string, requested ...string) ([]*dataset.Column, error) {
	cols := make([]*dataset.Column, len(requested))
	seen := make(map[string]string, len(requested))
	for i, name := range requested {
		col, _, err := lookup(ds, name)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[col.Name]; dup {
			return nil, core.NewInvalidArgumentsError(operation,
				fmt.Errorf("%q and %q both refer to column %q", prev, name, col.Name))
		}
		seen[col.Name] = name
		cols[i] = col
	}
	return cols, nil
}

// completeCases returns, per column, the numeric values of rows where every column is numeric
func completeCases(cols []*dataset.Column) [][]float64 {
	out := make([][]float64, len(cols))
	if len(cols) == 0 {
		return out
	}
	row := make([]float64, len(cols))
	for r := range cols[0].Cells {
		complete := true
		for i, col := range cols {
			v, ok := col.Cells[r].Float()
			if !ok {
				complete = false
				break
			}
			row[i] = v
		}
		if !complete {
			continue
		}
		for i := range cols {
			out[i] = append(out[i], row[i])
		}
	}
	return out
}

// checkFinite fails with a computation error when any value overflowed or is undefined
func checkFinite(subject string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.NewComputationError(subject, errNonFinite)
		}
	}
	return nil
}

func columnNames(cols []*dataset.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// quantile interpolates linearly between closest ranks (h = (n-1)p), the
// default used by R and pandas. sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	if lo == hi {
		return sorted[int(lo)]
	}
	return sorted[int(lo)] + (h-lo)*(sorted[int(hi)]-sorted[int(lo)])
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
