package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Correlation computes Pearson r and two-sided p-values for every pair of the
// named columns over rows complete in all of them. Names must match exactly.
func (e *Engine) Correlation(variables []string) (*stats.CorrelationResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(variables))
	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		if seen[v] {
			continue
		}
		seen[v] = true
		names = append(names, v)
	}
	if len(names) == 0 {
		return nil, core.NewInsufficientDataError("correlation variables", 0, 1)
	}

	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return nil, core.NewVariableNotFoundError(name)
		}
		cols[i] = col
	}

	// complete-case deletion across the whole variable set
	complete := completeCases(cols)
	n := len(complete[0])
	if n < minCorrelationRows {
		return nil, core.NewInsufficientDataError("correlation", n, minCorrelationRows)
	}

	for i, name := range names {
		if stat.StdDev(complete[i], nil) == 0 {
			return nil, core.NewComputationError("correlation of "+name, errZeroVariance)
		}
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	rMatrix := make(stats.Matrix, len(names))
	pMatrix := make(stats.Matrix, len(names))
	for _, name := range names {
		rMatrix[name] = make(map[string]float64, len(names))
		pMatrix[name] = make(map[string]float64, len(names))
	}
	for i, a := range names {
		rMatrix[a][a], pMatrix[a][a] = 1, 1
		for j := i + 1; j < len(names); j++ {
			b := names[j]
			r := stat.Correlation(complete[i], complete[j], nil)
			if math.IsNaN(r) {
				return nil, core.NewComputationError("correlation of "+a+" and "+b, errZeroVariance)
			}
			r = math.Max(-1, math.Min(1, r))
			p := correlationPValue(r, n, dist)
			if err := checkFinite("correlation of "+a+" and "+b, p); err != nil {
				return nil, err
			}
			rMatrix[a][b], rMatrix[b][a] = r, r
			pMatrix[a][b], pMatrix[b][a] = p, p
		}
	}

	result := &stats.CorrelationResult{
		Variables:         names,
		N:                 n,
		CorrelationMatrix: rMatrix,
		PValueMatrix:      pMatrix,
	}
	e.remember(result)
	return result, nil
}

func correlationPValue(r float64, n int, dist distuv.StudentsT) float64 {
	if math.Abs(r) >= perfectCorrelation {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)) / math.Sqrt(1-r*r)
	return 2 * dist.Survival(math.Abs(t))
}
