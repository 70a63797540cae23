package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"aistats/ai"
	"aistats/domain/core"
	"aistats/domain/stats"
	"aistats/ports"
)

// StatsEngine is the slice of the statistics engine the registry dispatches to
type StatsEngine interface {
	Descriptive(variables []string) (*stats.DescriptiveResult, error)
	Comparison(dataVar, groupVar string) (*stats.ComparisonResult, error)
	Correlation(variables []string) (*stats.CorrelationResult, error)
}

// ToolHandler decodes raw JSON arguments and runs one operation
type ToolHandler func(engine StatsEngine, arguments string) (stats.Result, error)

// ToolRegistry maps tool names to typed handlers
type ToolRegistry struct {
	handlers map[ai.ToolName]ToolHandler
}

// NewToolRegistry creates a registry with the three statistics tools registered
func NewToolRegistry() *ToolRegistry {
	r := &ToolRegistry{handlers: make(map[ai.ToolName]ToolHandler)}
	r.Register(ai.ToolIndependentTTest, handleTTest)
	r.Register(ai.ToolDescriptiveStats, handleDescriptive)
	r.Register(ai.ToolPearsonCorrelation, handleCorrelation)
	return r
}

// Register adds or replaces a handler
func (r *ToolRegistry) Register(name ai.ToolName, h ToolHandler) {
	r.handlers[name] = h
}

// Has reports whether a tool is registered
func (r *ToolRegistry) Has(name string) bool {
	_, ok := r.handlers[ai.ToolName(name)]
	return ok
}

// Dispatch runs one tool call. It never fails: unknown tools, malformed
// arguments and engine errors all come back as an error result.
func (r *ToolRegistry) Dispatch(engine StatsEngine, call ports.ToolCall) stats.Result {
	h, ok := r.handlers[ai.ToolName(call.Name)]
	if !ok {
		return stats.NewErrorResult(call.Name, core.NewInvalidArgumentsError(fmt.Sprintf("unknown tool %q", call.Name), nil))
	}
	result, err := h(engine, call.Arguments)
	if err != nil {
		return stats.NewErrorResult(call.Name, err)
	}
	return result
}

func decodeArguments(operation, raw string, dst interface{}) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return core.NewInvalidArgumentsError(operation, err)
	}
	return nil
}

func handleTTest(engine StatsEngine, arguments string) (stats.Result, error) {
	var args ai.TTestArgs
	if err := decodeArguments(string(ai.ToolIndependentTTest), arguments, &args); err != nil {
		return nil, err
	}
	if strings.TrimSpace(args.DataVar) == "" || strings.TrimSpace(args.GroupVar) == "" {
		return nil, core.NewInvalidArgumentsError(string(ai.ToolIndependentTTest), fmt.Errorf("data_var and group_var are required"))
	}
	res, err := engine.Comparison(args.DataVar, args.GroupVar)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func handleDescriptive(engine StatsEngine, arguments string) (stats.Result, error) {
	var args ai.VariablesArgs
	if err := decodeArguments(string(ai.ToolDescriptiveStats), arguments, &args); err != nil {
		return nil, err
	}
	if len(args.Variables) == 0 {
		return nil, core.NewInvalidArgumentsError(string(ai.ToolDescriptiveStats), fmt.Errorf("variables must not be empty"))
	}
	res, err := engine.Descriptive(args.Variables)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func handleCorrelation(engine StatsEngine, arguments string) (stats.Result, error) {
	var args ai.VariablesArgs
	if err := decodeArguments(string(ai.ToolPearsonCorrelation), arguments, &args); err != nil {
		return nil, err
	}
	res, err := engine.Correlation(args.Variables)
	if err != nil {
		return nil, err
	}
	return res, nil
}
