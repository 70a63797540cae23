package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// OneSampleT tests whether the mean of variable differs from testValue
func (e *Engine) OneSampleT(variable string, testValue float64) (*stats.OneSampleTResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	col, _, err := lookup(ds, variable)
	if err != nil {
		return nil, err
	}
	values := completeCases([]*dataset.Column{col})[0]
	n := len(values)
	if n < minGroupSize {
		return nil, core.NewInsufficientDataError("one-sample t-test", n, minGroupSize)
	}

	mean, _ := mstats.Mean(values)
	std, _ := mstats.StandardDeviationSample(values)
	if std == 0 {
		return nil, core.NewComputationError("one-sample t-test of "+col.Name, errZeroVariance)
	}
	diff := mean - testValue
	se := std / math.Sqrt(float64(n))
	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 2 * dist.Survival(math.Abs(t))
	crit := e.critical(dist)
	if err := checkFinite("one-sample t-test of "+col.Name, mean, std, diff, t, p, diff-crit*se, diff+crit*se); err != nil {
		return nil, err
	}

	result := &stats.OneSampleTResult{
		Variable:     col.Name,
		N:            n,
		Mean:         mean,
		Std:          std,
		TestValue:    testValue,
		MeanDiff:     diff,
		TStatistic:   t,
		DF:           n - 1,
		PValue:       p,
		CohensD:      diff / std,
		CILower:      diff - crit*se,
		CIUpper:      diff + crit*se,
		Significance: stats.SignificanceTier(p),
	}
	e.remember(result)
	return result, nil
}

// PairedT tests the mean of the row-wise differences variable1 - variable2
// over rows where both are numeric.
func (e *Engine) PairedT(variable1, variable2 string) (*stats.PairedTResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	cols, err := lookupAll(ds, "paired t-test", variable1, variable2)
	if err != nil {
		return nil, err
	}
	pairs := completeCases(cols)
	n := len(pairs[0])
	if n < minGroupSize {
		return nil, core.NewInsufficientDataError("paired t-test pairs", n, minGroupSize)
	}

	diffs := make([]float64, n)
	for i := range diffs {
		diffs[i] = pairs[0][i] - pairs[1][i]
	}
	mean1, _ := mstats.Mean(pairs[0])
	mean2, _ := mstats.Mean(pairs[1])
	meanDiff, _ := mstats.Mean(diffs)
	sd, _ := mstats.StandardDeviationSample(diffs)
	subject := "paired t-test of " + cols[0].Name + " and " + cols[1].Name
	if sd == 0 {
		return nil, core.NewComputationError(subject, errZeroVariance)
	}

	se := sd / math.Sqrt(float64(n))
	t := meanDiff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 2 * dist.Survival(math.Abs(t))
	crit := e.critical(dist)
	if err := checkFinite(subject, mean1, mean2, meanDiff, sd, t, p, meanDiff-crit*se, meanDiff+crit*se); err != nil {
		return nil, err
	}

	result := &stats.PairedTResult{
		Variable1:    cols[0].Name,
		Variable2:    cols[1].Name,
		N:            n,
		Mean1:        mean1,
		Mean2:        mean2,
		MeanDiff:     meanDiff,
		StdDiff:      sd,
		TStatistic:   t,
		DF:           n - 1,
		PValue:       p,
		CILower:      meanDiff - crit*se,
		CIUpper:      meanDiff + crit*se,
		Significance: stats.SignificanceTier(p),
	}
	e.remember(result)
	return result, nil
}
