package stats

import (
	"encoding/json"

	"aistats/domain/core"
)

// Kind tags each analysis result variant
type Kind string

const (
	KindDescriptive Kind = "descriptive"
	KindComparison  Kind = "independent_t_test"
	KindCorrelation Kind = "pearson_correlation"
	KindError       Kind = "error"
)

// Result is the closed set of analysis outputs. Only types in this package implement it.
type Result interface {
	Kind() Kind
	sealed()
}

// BlockType tags a per-variable descriptive block
type BlockType string

const (
	BlockNumeric        BlockType = "numeric"
	BlockCategorical    BlockType = "categorical"
	BlockMultipleChoice BlockType = "multiple_choice"
	BlockEmpty          BlockType = "empty"
	BlockError          BlockType = "error"
)

// VariableBlock is one variable's descriptive statistics
type VariableBlock interface {
	BlockType() BlockType
	sealedBlock()
}

// NumericBlock summarizes a continuous numeric variable
type NumericBlock struct {
	Type        BlockType `json:"type"`
	MatchedFrom string    `json:"matched_from,omitempty"`
	N           int       `json:"n"`
	Mean        float64   `json:"mean"`
	Std         *float64  `json:"std"` // nil when n < 2
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	Missing     int       `json:"missing"`
}

// Frequency is one category row
type Frequency struct {
	Value      interface{} `json:"value"` // float64 or string
	Label      string      `json:"label,omitempty"`
	Frequency  int         `json:"frequency"`
	Percentage float64     `json:"percentage"`
}

// CategoricalBlock reports the full labelled domain, including zero-frequency values
type CategoricalBlock struct {
	Type        BlockType         `json:"type"`
	MatchedFrom string            `json:"matched_from,omitempty"`
	N           int               `json:"n"`
	Unique      int               `json:"unique"`
	Values      []Frequency       `json:"all_values"`
	ValueLabels map[string]string `json:"value_labels,omitempty"`
	Missing     int               `json:"missing"`
}

// OptionFrequency is one multiple-choice option row
type OptionFrequency struct {
	Option     string  `json:"option"`
	Frequency  int     `json:"frequency"`
	Percentage float64 `json:"percentage"`
}

// MultipleChoiceBlock tallies semicolon-delimited selections
type MultipleChoiceBlock struct {
	Type         BlockType         `json:"type"`
	MatchedFrom  string            `json:"matched_from,omitempty"`
	N            int               `json:"n"`
	NSelections  int               `json:"n_selections"`
	AvgPerPerson float64           `json:"avg_per_person"`
	Options      []OptionFrequency `json:"options"`
	Missing      int               `json:"missing"`
}

// EmptyBlock marks a variable with no valid values
type EmptyBlock struct {
	Type        BlockType `json:"type"`
	MatchedFrom string    `json:"matched_from,omitempty"`
	N           int       `json:"n"`
	Missing     int       `json:"missing"`
}

// ErrorBlock records a per-variable failure with whatever counts were available
type ErrorBlock struct {
	Type    BlockType `json:"type"`
	Error   string    `json:"error"`
	Code    string    `json:"code"`
	N       *int      `json:"n,omitempty"`
	Missing *int      `json:"missing,omitempty"`
}

func (NumericBlock) BlockType() BlockType        { return BlockNumeric }
func (CategoricalBlock) BlockType() BlockType    { return BlockCategorical }
func (MultipleChoiceBlock) BlockType() BlockType { return BlockMultipleChoice }
func (EmptyBlock) BlockType() BlockType          { return BlockEmpty }
func (ErrorBlock) BlockType() BlockType          { return BlockError }

func (NumericBlock) sealedBlock()        {}
func (CategoricalBlock) sealedBlock()    {}
func (MultipleChoiceBlock) sealedBlock() {}
func (EmptyBlock) sealedBlock()          {}
func (ErrorBlock) sealedBlock()          {}

// NewErrorBlock converts an error into a per-variable block
func NewErrorBlock(err error, n, missing *int) ErrorBlock {
	return ErrorBlock{
		Type:    BlockError,
		Error:   err.Error(),
		Code:    core.ErrorCode(err),
		N:       n,
		Missing: missing,
	}
}

// DescriptiveResult maps variable keys to blocks, preserving request order
type DescriptiveResult struct {
	Order  []string
	Blocks map[string]VariableBlock
}

// NewDescriptiveResult creates an empty descriptive result
func NewDescriptiveResult() *DescriptiveResult {
	return &DescriptiveResult{Blocks: make(map[string]VariableBlock)}
}

// Set adds or replaces a block, keeping the first position of a repeated key
func (r *DescriptiveResult) Set(key string, block VariableBlock) {
	if _, exists := r.Blocks[key]; !exists {
		r.Order = append(r.Order, key)
	}
	r.Blocks[key] = block
}

// Block returns the block for a variable key
func (r *DescriptiveResult) Block(key string) (VariableBlock, bool) {
	b, ok := r.Blocks[key]
	return b, ok
}

// MarshalJSON renders {"type":"descriptive","variables":[...],"stats":{...}}
func (r *DescriptiveResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      Kind                     `json:"type"`
		Variables []string                 `json:"variables"`
		Stats     map[string]VariableBlock `json:"stats"`
	}{KindDescriptive, r.Order, r.Blocks})
}

// ComparisonResult is an independent-samples t-test summary
type ComparisonResult struct {
	DataVar       string  `json:"data_var"`
	GroupVar      string  `json:"group_var"`
	Group1Name    string  `json:"group1_name"`
	Group2Name    string  `json:"group2_name"`
	Group1Label   string  `json:"group1_label,omitempty"`
	Group2Label   string  `json:"group2_label,omitempty"`
	Group1N       int     `json:"group1_n"`
	Group2N       int     `json:"group2_n"`
	Group1Mean    float64 `json:"group1_mean"`
	Group2Mean    float64 `json:"group2_mean"`
	Group1Std     float64 `json:"group1_std"`
	Group2Std     float64 `json:"group2_std"`
	MeanDiff      float64 `json:"mean_diff"`
	TStatistic    float64 `json:"t_statistic"`
	DF            int     `json:"df"`
	PValue        float64 `json:"p_value"`
	PooledStd     float64 `json:"pooled_std"`
	CohensD       float64 `json:"cohens_d"`
	CILower       float64 `json:"ci_95_lower"`
	CIUpper       float64 `json:"ci_95_upper"`
	CriticalValue float64 `json:"ci_critical_value"`
	CIMethod      string  `json:"ci_method"`
	Significance  string  `json:"significant"`
}

// MarshalJSON adds the type tag
func (r *ComparisonResult) MarshalJSON() ([]byte, error) {
	type plain ComparisonResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindComparison, (*plain)(r)})
}

// Matrix is a square var → var → value table
type Matrix map[string]map[string]float64

// Get returns the (row, col) entry
func (m Matrix) Get(row, col string) float64 {
	return m[row][col]
}

// CorrelationResult holds Pearson r and p matrices over complete cases
type CorrelationResult struct {
	Variables         []string `json:"variables"`
	N                 int      `json:"n"`
	CorrelationMatrix Matrix   `json:"correlation_matrix"`
	PValueMatrix      Matrix   `json:"p_value_matrix"`
}

// MarshalJSON adds the type tag
func (r *CorrelationResult) MarshalJSON() ([]byte, error) {
	type plain CorrelationResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindCorrelation, (*plain)(r)})
}

// ErrorResult is the uniform failure shape; consumers check the "error" key
type ErrorResult struct {
	Operation string `json:"operation,omitempty"`
	Message   string `json:"error"`
	Code      string `json:"code"`
}

// NewErrorResult converts an error into a result
func NewErrorResult(operation string, err error) *ErrorResult {
	return &ErrorResult{
		Operation: operation,
		Message:   err.Error(),
		Code:      core.ErrorCode(err),
	}
}

// MarshalJSON adds the type tag
func (r *ErrorResult) MarshalJSON() ([]byte, error) {
	type plain ErrorResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindError, (*plain)(r)})
}

func (*DescriptiveResult) Kind() Kind { return KindDescriptive }
func (*ComparisonResult) Kind() Kind  { return KindComparison }
func (*CorrelationResult) Kind() Kind { return KindCorrelation }
func (*ErrorResult) Kind() Kind       { return KindError }

func (*DescriptiveResult) sealed() {}
func (*ComparisonResult) sealed()  {}
func (*CorrelationResult) sealed() {}
func (*ErrorResult) sealed()       {}

// IsError reports whether a result is the error variant
func IsError(r Result) bool {
	return r != nil && r.Kind() == KindError
}

// SignificanceTier star-codes a p-value
func SignificanceTier(p float64) string {
	switch {
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	}
	return "ns"
}
