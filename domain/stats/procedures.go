package stats

import "encoding/json"

const (
	KindGroupedDescriptive Kind = "grouped_descriptive"
	KindOneSampleT         Kind = "one_sample_t_test"
	KindPairedT            Kind = "paired_t_test"
	KindANOVA              Kind = "one_way_anova"
	KindRegression         Kind = "linear_regression"
	KindReliability        Kind = "cronbach_alpha"
	KindMediation          Kind = "mediation"
)

// GroupedStat summarizes one variable (or the dimension score) inside one group.
// Pointers are nil when the group has no numeric values, std also when n < 2.
type GroupedStat struct {
	Variable string   `json:"variable"`
	N        int      `json:"n"`
	Mean     *float64 `json:"mean"`
	Std      *float64 `json:"std"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

// GroupSummary is one level of the grouping variable
type GroupSummary struct {
	Group string        `json:"group"`
	Label string        `json:"label,omitempty"`
	Rows  int           `json:"rows"`
	Stats []GroupedStat `json:"stats"`
}

// GroupedDescriptiveResult breaks numeric variables down by the levels of a grouping variable.
// In dimension mode each row is first averaged across Variables and only that score is summarized.
type GroupedDescriptiveResult struct {
	GroupVar  string         `json:"group_var"`
	Variables []string       `json:"variables"`
	Dimension bool           `json:"dimension"`
	Groups    []GroupSummary `json:"groups"`
}

// OneSampleTResult tests a mean against a fixed value
type OneSampleTResult struct {
	Variable     string  `json:"variable"`
	N            int     `json:"n"`
	Mean         float64 `json:"mean"`
	Std          float64 `json:"std"`
	TestValue    float64 `json:"test_value"`
	MeanDiff     float64 `json:"mean_diff"`
	TStatistic   float64 `json:"t_statistic"`
	DF           int     `json:"df"`
	PValue       float64 `json:"p_value"`
	CohensD      float64 `json:"cohens_d"`
	CILower      float64 `json:"ci_95_lower"`
	CIUpper      float64 `json:"ci_95_upper"`
	Significance string  `json:"significant"`
}

// PairedTResult compares two measurements taken on the same rows
type PairedTResult struct {
	Variable1    string  `json:"variable1"`
	Variable2    string  `json:"variable2"`
	N            int     `json:"n"`
	Mean1        float64 `json:"mean1"`
	Mean2        float64 `json:"mean2"`
	MeanDiff     float64 `json:"mean_diff"`
	StdDiff      float64 `json:"std_diff"`
	TStatistic   float64 `json:"t_statistic"`
	DF           int     `json:"df"`
	PValue       float64 `json:"p_value"`
	CILower      float64 `json:"ci_95_lower"`
	CIUpper      float64 `json:"ci_95_upper"`
	Significance string  `json:"significant"`
}

// ANOVAGroup is one level's share of a one-way ANOVA
type ANOVAGroup struct {
	Name  string   `json:"name"`
	Label string   `json:"label,omitempty"`
	N     int      `json:"n"`
	Mean  float64  `json:"mean"`
	Std   *float64 `json:"std"` // nil when n < 2
}

// ANOVAResult is a one-way analysis of variance with a median-centred Levene test
type ANOVAResult struct {
	DataVar      string       `json:"data_var"`
	GroupVar     string       `json:"group_var"`
	Groups       []ANOVAGroup `json:"groups"`
	SSBetween    float64      `json:"ss_between"`
	SSWithin     float64      `json:"ss_within"`
	DFBetween    int          `json:"df_between"`
	DFWithin     int          `json:"df_within"`
	MSBetween    float64      `json:"ms_between"`
	MSWithin     float64      `json:"ms_within"`
	FStatistic   float64      `json:"f_statistic"`
	PValue       float64      `json:"p_value"`
	EtaSquared   float64      `json:"eta_squared"`
	LeveneF      *float64     `json:"levene_f"` // nil when every group is constant
	LeveneP      *float64     `json:"levene_p"`
	Significance string       `json:"significant"`
}

// Coefficient is one estimated regression term
type Coefficient struct {
	Term       string  `json:"term"`
	Estimate   float64 `json:"estimate"`
	StdError   float64 `json:"std_error"`
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`
}

// InterceptTerm names the constant in Coefficients
const InterceptTerm = "(intercept)"

// RegressionResult is an ordinary least squares fit with an intercept
type RegressionResult struct {
	Outcome      string        `json:"outcome"`
	Predictors   []string      `json:"predictors"`
	N            int           `json:"n"`
	Coefficients []Coefficient `json:"coefficients"`
	RSquared     float64       `json:"r_squared"`
	AdjRSquared  float64       `json:"adj_r_squared"`
	FStatistic   float64       `json:"f_statistic"`
	FPValue      float64       `json:"f_p_value"`
	DFModel      int           `json:"df_model"`
	DFResidual   int           `json:"df_residual"`
	ResidualStd  float64       `json:"residual_std"`
	Significance string        `json:"significant"`
}

// Coefficient returns the named term
func (r *RegressionResult) Coefficient(term string) (Coefficient, bool) {
	for _, c := range r.Coefficients {
		if c.Term == term {
			return c, true
		}
	}
	return Coefficient{}, false
}

// ItemStat describes one scale item
type ItemStat struct {
	Item               string   `json:"item"`
	Mean               float64  `json:"mean"`
	Std                float64  `json:"std"`
	CorrectedItemTotal *float64 `json:"corrected_item_total_r"`
	AlphaIfItemDeleted *float64 `json:"alpha_if_deleted"`
}

// ReliabilityResult is Cronbach's alpha for a set of items
type ReliabilityResult struct {
	Items          []string   `json:"items"`
	NItems         int        `json:"n_items"`
	N              int        `json:"n"`
	Alpha          float64    `json:"alpha"`
	Interpretation string     `json:"interpretation"`
	ItemStats      []ItemStat `json:"item_stats"`
}

// AlphaTier grades internal consistency
func AlphaTier(alpha float64) string {
	switch {
	case alpha >= 0.9:
		return "excellent"
	case alpha >= 0.8:
		return "good"
	case alpha >= 0.7:
		return "acceptable"
	}
	return "poor"
}

// Path is one regression path of a mediation model
type Path struct {
	Estimate   float64 `json:"estimate"`
	StdError   float64 `json:"std_error"`
	TStatistic float64 `json:"t_statistic"`
	PValue     float64 `json:"p_value"`
}

// MediationResult decomposes the effect of X on Y through M (Baron and Kenny with a Sobel test)
type MediationResult struct {
	X              string  `json:"x_var"`
	M              string  `json:"m_var"`
	Y              string  `json:"y_var"`
	N              int     `json:"n"`
	A              Path    `json:"path_a"`       // X -> M
	B              Path    `json:"path_b"`       // M -> Y controlling for X
	CPrime         Path    `json:"path_c_prime"` // X -> Y controlling for M
	C              Path    `json:"path_c"`       // X -> Y
	Indirect       float64 `json:"indirect_effect"`
	SobelZ         float64 `json:"sobel_z"`
	SobelP         float64 `json:"sobel_p"`
	MediationRatio float64 `json:"mediation_ratio"` // indirect / c as a percentage, 0 when c is 0
	Significant    bool    `json:"mediation_significant"`
}

// MarshalJSON adds the type tag
func (r *GroupedDescriptiveResult) MarshalJSON() ([]byte, error) {
	type plain GroupedDescriptiveResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindGroupedDescriptive, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *OneSampleTResult) MarshalJSON() ([]byte, error) {
	type plain OneSampleTResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindOneSampleT, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *PairedTResult) MarshalJSON() ([]byte, error) {
	type plain PairedTResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindPairedT, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *ANOVAResult) MarshalJSON() ([]byte, error) {
	type plain ANOVAResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindANOVA, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *RegressionResult) MarshalJSON() ([]byte, error) {
	type plain RegressionResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindRegression, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *ReliabilityResult) MarshalJSON() ([]byte, error) {
	type plain ReliabilityResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindReliability, (*plain)(r)})
}

// MarshalJSON adds the type tag
func (r *MediationResult) MarshalJSON() ([]byte, error) {
	type plain MediationResult
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*plain
	}{KindMediation, (*plain)(r)})
}

func (*GroupedDescriptiveResult) Kind() Kind { return KindGroupedDescriptive }
func (*OneSampleTResult) Kind() Kind         { return KindOneSampleT }
func (*PairedTResult) Kind() Kind            { return KindPairedT }
func (*ANOVAResult) Kind() Kind              { return KindANOVA }
func (*RegressionResult) Kind() Kind         { return KindRegression }
func (*ReliabilityResult) Kind() Kind        { return KindReliability }
func (*MediationResult) Kind() Kind          { return KindMediation }

func (*GroupedDescriptiveResult) sealed() {}
func (*OneSampleTResult) sealed()         {}
func (*PairedTResult) sealed()            {}
func (*ANOVAResult) sealed()              {}
func (*RegressionResult) sealed()         {}
func (*ReliabilityResult) sealed()        {}
func (*MediationResult) sealed()          {}
