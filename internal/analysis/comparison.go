package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

type group struct {
	key    string
	values []float64
}

// Comparison runs a Student's (equal variance) independent-samples t-test of
// dataVar between the two levels of groupVar. Levels are ordered by first appearance.
func (e *Engine) Comparison(dataVar, groupVar string) (*stats.ComparisonResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	dataCol, _, err := lookup(ds, dataVar)
	if err != nil {
		return nil, err
	}
	groupCol, _, err := lookup(ds, groupVar)
	if err != nil {
		return nil, err
	}
	dataName, groupName := dataCol.Name, groupCol.Name

	groups, err := splitGroups(dataCol, groupCol)
	if err != nil {
		return nil, err
	}
	g1, g2 := groups[0], groups[1]
	for _, g := range groups {
		if len(g.values) < minGroupSize {
			return nil, core.NewInsufficientDataError("comparison group "+g.key, len(g.values), minGroupSize)
		}
	}

	n1, n2 := float64(len(g1.values)), float64(len(g2.values))
	mean1, _ := mstats.Mean(g1.values)
	mean2, _ := mstats.Mean(g2.values)
	std1, _ := mstats.StandardDeviationSample(g1.values)
	std2, _ := mstats.StandardDeviationSample(g2.values)

	df := len(g1.values) + len(g2.values) - 2
	pooled := math.Sqrt(((n1-1)*std1*std1 + (n2-1)*std2*std2) / float64(df))
	if pooled == 0 || math.IsNaN(pooled) {
		return nil, core.NewComputationError("comparison of "+dataName, errZeroVariance)
	}

	diff := mean1 - mean2
	se := pooled * math.Sqrt(1/n1+1/n2)
	t := diff / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	p := 2 * dist.Survival(math.Abs(t))

	crit := e.critical(dist)
	err = checkFinite("comparison of "+dataName,
		mean1, mean2, std1, std2, pooled, diff, t, p, diff-crit*se, diff+crit*se)
	if err != nil {
		return nil, err
	}

	labels := e.store.ValueLabels(groupName)
	result := &stats.ComparisonResult{
		DataVar:       dataName,
		GroupVar:      groupName,
		Group1Name:    g1.key,
		Group2Name:    g2.key,
		Group1Label:   labels[g1.key],
		Group2Label:   labels[g2.key],
		Group1N:       len(g1.values),
		Group2N:       len(g2.values),
		Group1Mean:    mean1,
		Group2Mean:    mean2,
		Group1Std:     std1,
		Group2Std:     std2,
		MeanDiff:      diff,
		TStatistic:    t,
		DF:            df,
		PValue:        p,
		PooledStd:     pooled,
		CohensD:       diff / pooled,
		CILower:       diff - crit*se,
		CIUpper:       diff + crit*se,
		CriticalValue: crit,
		CIMethod:      string(e.ciMethod),
		Significance:  stats.SignificanceTier(p),
	}

	e.logger.Debug("[Engine] comparison %s by %s: t=%.4f df=%d p=%.4g", dataName, groupName, t, df, p)
	e.remember(result)
	return result, nil
}

// critical is the two-sided 95% critical value for interval estimates
func (e *Engine) critical(dist distuv.StudentsT) float64 {
	if e.ciMethod == CIStudentT {
		return dist.Quantile(0.975)
	}
	return normalCritical95
}

// splitGroups partitions numeric data values by the two non-missing levels of the grouping column
func splitGroups(data, grouping *dataset.Column) ([]*group, error) {
	groups := partition(data, grouping)
	if len(groups) != 2 {
		return nil, core.NewGroupCountError(grouping.Name, len(groups))
	}
	return groups, nil
}

// partition groups numeric data values by the non-missing levels of the grouping
// column, in order of first appearance. A level may end up with no values.
func partition(data, grouping *dataset.Column) []*group {
	index := make(map[string]*group)
	var groups []*group
	for _, c := range grouping.Cells {
		if c.IsMissing() {
			continue
		}
		if _, ok := index[c.Key()]; !ok {
			g := &group{key: c.Key()}
			index[c.Key()] = g
			groups = append(groups, g)
		}
	}

	for row, c := range grouping.Cells {
		if c.IsMissing() {
			continue
		}
		v, ok := data.Cells[row].Float()
		if !ok {
			continue
		}
		g := index[c.Key()]
		g.values = append(g.values, v)
	}
	return groups
}
