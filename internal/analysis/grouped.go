package analysis

import (
	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// DimensionScore is the GroupedStat variable name used in dimension mode
const DimensionScore = "dimension_score"

// GroupedDescriptive summarizes numeric variables (mean, std, min, max) within each
// level of groupVar. Levels are sorted numerically when they are all numbers.
// With dimension set, each row's variables are first averaged (ignoring non-numeric
// cells) and only that score is summarized.
func (e *Engine) GroupedDescriptive(groupVar string, variables []string, dimension bool) (*stats.GroupedDescriptiveResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return nil, core.NewInsufficientDataError("grouped descriptive variables", 0, 1)
	}
	groupCol, _, err := lookup(ds, groupVar)
	if err != nil {
		return nil, err
	}
	cols, err := lookupAll(ds, "grouped descriptive", variables...)
	if err != nil {
		return nil, err
	}

	rowsByGroup := make(map[string][]int)
	var keys []string
	for r, c := range groupCol.Cells {
		if c.IsMissing() {
			continue
		}
		if _, ok := rowsByGroup[c.Key()]; !ok {
			keys = append(keys, c.Key())
		}
		rowsByGroup[c.Key()] = append(rowsByGroup[c.Key()], r)
	}
	if len(keys) < 2 {
		return nil, core.NewInsufficientDataError("groups of "+groupCol.Name, len(keys), 2)
	}
	dataset.SortValueKeys(keys)

	labels := e.store.ValueLabels(groupCol.Name)
	result := &stats.GroupedDescriptiveResult{
		GroupVar:  groupCol.Name,
		Variables: columnNames(cols),
		Dimension: dimension,
		Groups:    make([]stats.GroupSummary, 0, len(keys)),
	}
	for _, key := range keys {
		rows := rowsByGroup[key]
		summary := stats.GroupSummary{Group: key, Label: labels[key], Rows: len(rows)}
		if dimension {
			s, err := summarize(DimensionScore, dimensionScores(cols, rows))
			if err != nil {
				return nil, err
			}
			summary.Stats = []stats.GroupedStat{s}
		} else {
			for _, col := range cols {
				var values []float64
				for _, r := range rows {
					if v, ok := col.Cells[r].Float(); ok {
						values = append(values, v)
					}
				}
				s, err := summarize(col.Name, values)
				if err != nil {
					return nil, err
				}
				summary.Stats = append(summary.Stats, s)
			}
		}
		result.Groups = append(result.Groups, summary)
	}

	e.remember(result)
	return result, nil
}

// dimensionScores averages the numeric cells of each row; rows with none are skipped
func dimensionScores(cols []*dataset.Column, rows []int) []float64 {
	scores := make([]float64, 0, len(rows))
	for _, r := range rows {
		sum, count := 0.0, 0
		for _, col := range cols {
			if v, ok := col.Cells[r].Float(); ok {
				sum += v
				count++
			}
		}
		if count > 0 {
			scores = append(scores, sum/float64(count))
		}
	}
	return scores
}

func summarize(variable string, values []float64) (stats.GroupedStat, error) {
	s := stats.GroupedStat{Variable: variable, N: len(values)}
	if len(values) == 0 {
		return s, nil
	}
	mean, _ := mstats.Mean(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	s.Mean, s.Min, s.Max = &mean, &min, &max
	checked := []float64{mean}
	if len(values) >= 2 {
		std, _ := mstats.StandardDeviationSample(values)
		s.Std = &std
		checked = append(checked, std)
	}
	if err := checkFinite("grouped statistics of "+variable, checked...); err != nil {
		return stats.GroupedStat{}, err
	}
	return s, nil
}
