package analysis

import (
	"fmt"
	"sort"
	"strings"

	"aistats/domain/core"
	"aistats/domain/dataset"
	"aistats/domain/stats"

	mstats "github.com/montanaflynn/stats"
)

// Descriptive summarizes each requested variable. A variable that cannot be
// resolved or computed yields an error block; the rest of the batch continues.
// Blocks are keyed by column name, or by the requested text when resolution fails.
func (e *Engine) Descriptive(variables []string) (*stats.DescriptiveResult, error) {
	ds, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	result := stats.NewDescriptiveResult()

	for _, requested := range variables {
		col, fuzzy, err := lookup(ds, requested)
		if err != nil {
			e.logger.Debug("[Engine] descriptive: %v", err)
			result.Set(requested, stats.NewErrorBlock(err, nil, nil))
			continue
		}
		matchedFrom := ""
		if fuzzy {
			matchedFrom = requested
		}
		result.Set(col.Name, e.describeSafely(col, matchedFrom))
	}

	e.remember(result)
	return result, nil
}

// describeSafely converts a failure or panic inside one variable's computation into an error block
func (e *Engine) describeSafely(col *dataset.Column, matchedFrom string) (block stats.VariableBlock) {
	valid := col.NonMissing()
	n, missing := len(valid), len(col.Cells)-len(valid)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("[Engine] descriptive %q panicked: %v", col.Name, r)
			err := core.NewComputationError(col.Name, fmt.Errorf("%v", r))
			block = stats.NewErrorBlock(err, &n, &missing)
		}
	}()
	block, err := e.describe(col, valid, matchedFrom)
	if err != nil {
		e.logger.Warn("[Engine] descriptive %q: %v", col.Name, err)
		return stats.NewErrorBlock(err, &n, &missing)
	}
	return block
}

func (e *Engine) describe(col *dataset.Column, valid []dataset.Cell, matchedFrom string) (stats.VariableBlock, error) {
	missing := len(col.Cells) - len(valid)
	if len(valid) == 0 {
		return stats.EmptyBlock{Type: stats.BlockEmpty, MatchedFrom: matchedFrom, Missing: missing}, nil
	}

	labels := e.store.ValueLabels(col.Name)
	if col.IsNumeric() && len(labels) == 0 && distinctKeys(valid) > e.categoricalThreshold {
		return describeNumeric(col.Name, valid, missing, matchedFrom)
	}
	if looksMultipleChoice(valid) {
		return describeMultipleChoice(valid, missing, matchedFrom), nil
	}
	return describeCategorical(col, valid, labels, missing, matchedFrom), nil
}

func distinctKeys(cells []dataset.Cell) int {
	seen := make(map[string]struct{}, len(cells))
	for _, c := range cells {
		seen[c.Key()] = struct{}{}
	}
	return len(seen)
}

func describeNumeric(name string, valid []dataset.Cell, missing int, matchedFrom string) (stats.VariableBlock, error) {
	values := make([]float64, len(valid))
	for i, c := range valid {
		values[i] = c.NumberValue()
	}
	sorted := sortedCopy(values)

	mean, _ := mstats.Mean(values)
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	median, _ := mstats.Median(values)

	block := stats.NumericBlock{
		Type:        stats.BlockNumeric,
		MatchedFrom: matchedFrom,
		N:           len(values),
		Mean:        mean,
		Min:         min,
		Q1:          quantile(sorted, 0.25),
		Median:      median,
		Q3:          quantile(sorted, 0.75),
		Max:         max,
		Missing:     missing,
	}
	if len(values) >= 2 {
		std, err := mstats.StandardDeviationSample(values)
		if err == nil {
			if err := checkFinite(name, std); err != nil {
				return nil, err
			}
			block.Std = &std
		}
	}
	if err := checkFinite(name, block.Mean, block.Q1, block.Median, block.Q3); err != nil {
		return nil, err
	}
	return block, nil
}

func looksMultipleChoice(valid []dataset.Cell) bool {
	limit := len(valid)
	if limit > multipleChoiceSample {
		limit = multipleChoiceSample
	}
	for _, c := range valid[:limit] {
		if strings.Contains(c.Key(), ";") {
			return true
		}
	}
	return false
}

func describeMultipleChoice(valid []dataset.Cell, missing int, matchedFrom string) stats.VariableBlock {
	counts := make(map[string]int)
	respondents, selections := 0, 0
	for _, c := range valid {
		picked := 0
		for _, token := range strings.Split(c.Key(), ";") {
			option := strings.TrimSpace(token)
			if option == "" {
				continue
			}
			counts[option]++
			picked++
		}
		if picked > 0 {
			respondents++
			selections += picked
		}
	}

	options := make([]stats.OptionFrequency, 0, len(counts))
	for option, freq := range counts {
		options = append(options, stats.OptionFrequency{
			Option:     option,
			Frequency:  freq,
			Percentage: round2(float64(freq) / float64(respondents) * 100),
		})
	}
	sort.Slice(options, func(i, j int) bool {
		if options[i].Frequency != options[j].Frequency {
			return options[i].Frequency > options[j].Frequency
		}
		return options[i].Option < options[j].Option
	})

	avg := 0.0
	if respondents > 0 {
		avg = round2(float64(selections) / float64(respondents))
	}
	return stats.MultipleChoiceBlock{
		Type:         stats.BlockMultipleChoice,
		MatchedFrom:  matchedFrom,
		N:            respondents,
		NSelections:  selections,
		AvgPerPerson: avg,
		Options:      options,
		Missing:      missing,
	}
}

type category struct {
	key     string
	numeric bool
	value   float64
	count   int
}

func describeCategorical(col *dataset.Column, valid []dataset.Cell, labels dataset.ValueLabels, missing int, matchedFrom string) stats.VariableBlock {
	members := make(map[string]*category)
	order := make([]string, 0)
	for _, c := range valid {
		key := c.Key()
		m, ok := members[key]
		if !ok {
			m = &category{key: key, numeric: c.IsNumber(), value: c.NumberValue()}
			members[key] = m
			order = append(order, key)
		}
		m.count++
	}
	observed := len(order)

	// Label-only keys join the domain with zero frequency
	textColumn := !col.IsNumeric()
	for _, key := range labels.SortedKeys() {
		if _, ok := members[key]; ok {
			continue
		}
		m := &category{key: key}
		if v, ok := dataset.NumericKey(key); ok && !textColumn {
			m.numeric, m.value = true, v
		}
		members[key] = m
		order = append(order, key)
	}

	allNumeric := true
	for _, key := range order {
		if !members[key].numeric {
			allNumeric = false
			break
		}
	}
	if allNumeric {
		sort.SliceStable(order, func(i, j int) bool { return members[order[i]].value < members[order[j]].value })
	} else {
		sort.Strings(order)
	}

	n := len(valid)
	values := make([]stats.Frequency, 0, len(order))
	for _, key := range order {
		m := members[key]
		var v interface{} = m.key
		if m.numeric {
			v = m.value
		}
		values = append(values, stats.Frequency{
			Value:      v,
			Label:      labels[key],
			Frequency:  m.count,
			Percentage: round2(float64(m.count) / float64(n) * 100),
		})
	}

	block := stats.CategoricalBlock{
		Type:        stats.BlockCategorical,
		MatchedFrom: matchedFrom,
		N:           n,
		Unique:      observed,
		Values:      values,
		Missing:     missing,
	}
	if len(labels) > 0 {
		block.ValueLabels = labels
	}
	return block
}
