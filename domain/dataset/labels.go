package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueLabels maps a canonical value key (see Cell.Key) to its display label.
// Keys may name values never observed in the data.
type ValueLabels map[string]string

// Clone returns an independent copy
func (v ValueLabels) Clone() ValueLabels {
	if v == nil {
		return nil
	}
	out := make(ValueLabels, len(v))
	for k, label := range v {
		out[k] = label
	}
	return out
}

// SortedKeys orders keys numerically when every key is a number, otherwise as strings.
func (v ValueLabels) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	SortValueKeys(keys)
	return keys
}

// SortValueKeys sorts keys in place using the numeric-else-lexicographic rule.
func SortValueKeys(keys []string) {
	allNumeric := true
	nums := make(map[string]float64, len(keys))
	for _, k := range keys {
		f, ok := NumericKey(k)
		if !ok {
			allNumeric = false
			break
		}
		nums[k] = f
	}
	if allNumeric {
		sort.SliceStable(keys, func(i, j int) bool { return nums[keys[i]] < nums[keys[j]] })
		return
	}
	sort.Strings(keys)
}

// NumericKey parses a label key as a finite number. "NaN" and "Inf" are text keys,
// matching how Number stores non-finite values as missing.
func NumericKey(key string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeValueKey canonicalizes a label key so "1", "1.0" and " 1 " all match
// numeric cells holding 1.
func NormalizeValueKey(raw string) string {
	if f, ok := NumericKey(raw); ok {
		return FormatNumber(f)
	}
	return raw
}

// LabelSet holds the variable labels and value labels for one session
type LabelSet struct {
	VariableLabels map[string]string      `json:"variable_labels" yaml:"variable_labels"`
	ValueLabels    map[string]ValueLabels `json:"value_labels" yaml:"value_labels"`
}

// NewLabelSet creates an empty label set
func NewLabelSet() *LabelSet {
	return &LabelSet{
		VariableLabels: make(map[string]string),
		ValueLabels:    make(map[string]ValueLabels),
	}
}

// SetVariableLabel assigns a display label to a variable
func (l *LabelSet) SetVariableLabel(variable, label string) {
	l.ensure()
	l.VariableLabels[variable] = label
}

// VariableLabel returns the display label, falling back to the variable name
func (l *LabelSet) VariableLabel(variable string) string {
	if label, ok := l.VariableLabels[variable]; ok && label != "" {
		return label
	}
	return variable
}

// SetValueLabels replaces the value labels for a variable. Keys are normalized.
func (l *LabelSet) SetValueLabels(variable string, labels map[string]string) {
	l.ensure()
	if len(labels) == 0 {
		delete(l.ValueLabels, variable)
		return
	}
	normalized := make(ValueLabels, len(labels))
	for k, v := range labels {
		normalized[NormalizeValueKey(k)] = v
	}
	l.ValueLabels[variable] = normalized
}

// ValueLabelsFor returns a copy of the value labels for a variable (nil when none)
func (l *LabelSet) ValueLabelsFor(variable string) ValueLabels {
	return l.ValueLabels[variable].Clone()
}

// LabelledVariables lists variables with value labels, sorted by name
func (l *LabelSet) LabelledVariables() []string {
	vars := make([]string, 0, len(l.ValueLabels))
	for v, labels := range l.ValueLabels {
		if len(labels) > 0 {
			vars = append(vars, v)
		}
	}
	sort.Strings(vars)
	return vars
}

// Clear removes labels for one variable, or everything when variable is empty
func (l *LabelSet) Clear(variable string) {
	if variable == "" {
		l.VariableLabels = make(map[string]string)
		l.ValueLabels = make(map[string]ValueLabels)
		return
	}
	delete(l.VariableLabels, variable)
	delete(l.ValueLabels, variable)
}

// Clone returns a deep copy
func (l *LabelSet) Clone() *LabelSet {
	out := NewLabelSet()
	for k, v := range l.VariableLabels {
		out.VariableLabels[k] = v
	}
	for k, v := range l.ValueLabels {
		out.ValueLabels[k] = v.Clone()
	}
	return out
}

// Import replaces the sections present in other, leaving absent sections untouched.
func (l *LabelSet) Import(other *LabelSet) {
	if other == nil {
		return
	}
	l.ensure()
	if other.VariableLabels != nil {
		l.VariableLabels = make(map[string]string, len(other.VariableLabels))
		for k, v := range other.VariableLabels {
			l.VariableLabels[k] = v
		}
	}
	if other.ValueLabels != nil {
		l.ValueLabels = make(map[string]ValueLabels, len(other.ValueLabels))
		for k, v := range other.ValueLabels {
			l.SetValueLabels(k, v)
		}
	}
}

func (l *LabelSet) ensure() {
	if l.VariableLabels == nil {
		l.VariableLabels = make(map[string]string)
	}
	if l.ValueLabels == nil {
		l.ValueLabels = make(map[string]ValueLabels)
	}
}
