package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/stats"

	"gonum.org/v1/gonum/stat"
)

const minReliabilityItems = 2

// Reliability computes Cronbach's alpha over rows complete in every item,
// with per-item corrected item-total correlations and alpha-if-deleted.
func (e *Engine) Reliability(items []string) (*stats.ReliabilityResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if len(items) < minReliabilityItems {
		return nil, core.NewInsufficientDataError("reliability items", len(items), minReliabilityItems)
	}
	cols, err := lookupAll(ds, "reliability", items...)
	if err != nil {
		return nil, err
	}
	names := columnNames(cols)

	data := completeCases(cols)
	n := len(data[0])
	if n < minGroupSize {
		return nil, core.NewInsufficientDataError("reliability", n, minGroupSize)
	}

	alpha, ok := cronbachAlpha(data)
	if !ok {
		return nil, core.NewComputationError("reliability total score", errZeroVariance)
	}
	if err := checkFinite("reliability", alpha); err != nil {
		return nil, err
	}

	totals := rowSums(data)
	itemStats := make([]stats.ItemStat, len(data))
	for i, item := range data {
		mean, variance := stat.MeanVariance(item, nil)
		is := stats.ItemStat{Item: names[i], Mean: mean, Std: math.Sqrt(variance)}

		rest := make([]float64, n)
		for r := range rest {
			rest[r] = totals[r] - item[r]
		}
		if variance > 0 && stat.Variance(rest, nil) > 0 {
			r := stat.Correlation(item, rest, nil)
			if checkFinite("", r) == nil {
				is.CorrectedItemTotal = &r
			}
		}
		if len(data) > minReliabilityItems {
			others := make([][]float64, 0, len(data)-1)
			others = append(others, data[:i]...)
			others = append(others, data[i+1:]...)
			if a, ok := cronbachAlpha(others); ok && checkFinite("", a) == nil {
				is.AlphaIfItemDeleted = &a
			}
		}
		if err := checkFinite("reliability of "+names[i], is.Mean, is.Std); err != nil {
			return nil, err
		}
		itemStats[i] = is
	}

	result := &stats.ReliabilityResult{
		Items:          names,
		NItems:         len(names),
		N:              n,
		Alpha:          alpha,
		Interpretation: stats.AlphaTier(alpha),
		ItemStats:      itemStats,
	}
	e.remember(result)
	return result, nil
}

// cronbachAlpha is k/(k-1) * (1 - sum of item variances / variance of the row totals).
// ok is false when the totals do not vary.
func cronbachAlpha(items [][]float64) (float64, bool) {
	k := float64(len(items))
	itemVar := 0.0
	for _, item := range items {
		itemVar += stat.Variance(item, nil)
	}
	totalVar := stat.Variance(rowSums(items), nil)
	if totalVar == 0 {
		return 0, false
	}
	return k / (k - 1) * (1 - itemVar/totalVar), true
}

func rowSums(items [][]float64) []float64 {
	sums := make([]float64, len(items[0]))
	for _, item := range items {
		for r, v := range item {
			sums[r] += v
		}
	}
	return sums
}
