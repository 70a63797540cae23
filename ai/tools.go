package ai

import "aistats/ports"

// ToolName is one of the operations the model may call
type ToolName string

const (
	ToolIndependentTTest   ToolName = "independent_t_test"
	ToolDescriptiveStats   ToolName = "descriptive_stats"
	ToolPearsonCorrelation ToolName = "pearson_correlation"
)

// ToolNames lists every tool in schema order
var ToolNames = []ToolName{ToolIndependentTTest, ToolDescriptiveStats, ToolPearsonCorrelation}

// TTestArgs are the arguments of independent_t_test
type TTestArgs struct {
	DataVar  string `json:"data_var"`
	GroupVar string `json:"group_var"`
}

// VariablesArgs are the arguments of descriptive_stats and pearson_correlation
type VariablesArgs struct {
	Variables []string `json:"variables"`
}

func stringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// ToolDefinitions returns the JSON schemas advertised to the model
func ToolDefinitions() []ports.ToolDefinition {
	return []ports.ToolDefinition{
		{
			Name:        string(ToolIndependentTTest),
			Description: "执行独立样本 t 检验，比较两组之间的均值差异",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"data_var":  map[string]any{"type": "string", "description": "数据变量名"},
					"group_var": map[string]any{"type": "string", "description": "分组变量名（必须恰好两个取值）"},
				},
				"required": []string{"data_var", "group_var"},
			},
		},
		{
			Name: string(ToolDescriptiveStats),
			Description: "对变量进行描述统计分析。自动识别变量类型：数值型变量计算均值、标准差等；" +
				"多选题（分号分隔）自动拆分并统计每个选项的频次和百分比；普通分类变量显示频次分布。",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"variables": stringList("要分析的变量名列表，可以使用关键词"),
				},
				"required": []string{"variables"},
			},
		},
		{
			Name:        string(ToolPearsonCorrelation),
			Description: "计算变量之间的 Pearson 相关系数及 p 值（变量名必须完整准确）",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"variables": stringList("变量名列表"),
				},
				"required": []string{"variables"},
			},
		},
	}
}
