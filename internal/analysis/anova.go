package analysis

import (
	"math"

	"aistats/domain/core"
	"aistats/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

type oneWay struct {
	ssBetween, ssWithin float64
	dfBetween, dfWithin int
	f, p                float64
}

// oneWayF partitions the sum of squares of non-empty groups
func oneWayF(groups [][]float64) oneWay {
	total, count := 0.0, 0
	for _, g := range groups {
		for _, v := range g {
			total += v
		}
		count += len(g)
	}
	grand := total / float64(count)

	var res oneWay
	for _, g := range groups {
		mean, _ := mstats.Mean(g)
		res.ssBetween += float64(len(g)) * (mean - grand) * (mean - grand)
		for _, v := range g {
			res.ssWithin += (v - mean) * (v - mean)
		}
	}
	res.dfBetween = len(groups) - 1
	res.dfWithin = count - len(groups)
	res.f = (res.ssBetween / float64(res.dfBetween)) / (res.ssWithin / float64(res.dfWithin))
	res.p = distuv.F{D1: float64(res.dfBetween), D2: float64(res.dfWithin)}.Survival(res.f)
	return res
}

// levene is the Brown-Forsythe variant: a one-way ANOVA on absolute deviations from each group median
func levene(groups [][]float64) (oneWay, bool) {
	deviations := make([][]float64, len(groups))
	for i, g := range groups {
		median, _ := mstats.Median(g)
		deviations[i] = make([]float64, len(g))
		for j, v := range g {
			deviations[i][j] = math.Abs(v - median)
		}
	}
	res := oneWayF(deviations)
	if res.ssWithin == 0 || math.IsNaN(res.f) || math.IsInf(res.f, 0) {
		return res, false
	}
	return res, true
}

// ANOVA runs a one-way analysis of variance of dataVar across every level of
// groupVar holding at least one numeric value. Levels keep first-appearance order.
func (e *Engine) ANOVA(dataVar, groupVar string) (*stats.ANOVAResult, error) {
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

	var kept []*group
	for _, g := range partition(dataCol, groupCol) {
		if len(g.values) > 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) < 2 {
		return nil, core.NewInsufficientDataError("anova groups of "+groupCol.Name, len(kept), 2)
	}
	values := make([][]float64, len(kept))
	total := 0
	for i, g := range kept {
		values[i] = g.values
		total += len(g.values)
	}
	if total <= len(kept) {
		return nil, core.NewInsufficientDataError("anova", total, len(kept)+1)
	}

	subject := "anova of " + dataCol.Name
	fit := oneWayF(values)
	if fit.ssWithin == 0 {
		return nil, core.NewComputationError(subject, errZeroVariance)
	}
	eta := fit.ssBetween / (fit.ssBetween + fit.ssWithin)
	if err := checkFinite(subject, fit.ssBetween, fit.ssWithin, fit.f, fit.p, eta); err != nil {
		return nil, err
	}

	labels := e.store.ValueLabels(groupCol.Name)
	groups := make([]stats.ANOVAGroup, len(kept))
	for i, g := range kept {
		mean, _ := mstats.Mean(g.values)
		groups[i] = stats.ANOVAGroup{Name: g.key, Label: labels[g.key], N: len(g.values), Mean: mean}
		if len(g.values) >= 2 {
			std, _ := mstats.StandardDeviationSample(g.values)
			groups[i].Std = &std
		}
	}

	result := &stats.ANOVAResult{
		DataVar:      dataCol.Name,
		GroupVar:     groupCol.Name,
		Groups:       groups,
		SSBetween:    fit.ssBetween,
		SSWithin:     fit.ssWithin,
		DFBetween:    fit.dfBetween,
		DFWithin:     fit.dfWithin,
		MSBetween:    fit.ssBetween / float64(fit.dfBetween),
		MSWithin:     fit.ssWithin / float64(fit.dfWithin),
		FStatistic:   fit.f,
		PValue:       fit.p,
		EtaSquared:   eta,
		Significance: stats.SignificanceTier(fit.p),
	}
	if lev, ok := levene(values); ok {
		result.LeveneF, result.LeveneP = &lev.f, &lev.p
	}

	e.logger.Debug("[Engine] anova %s by %s: F=%.4f df=(%d,%d) p=%.4g", dataCol.Name, groupCol.Name, fit.f, fit.dfBetween, fit.dfWithin, fit.p)
	e.remember(result)
	return result, nil
}
