package ai

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"aistats/domain/dataset"
)

//go:embed templates/*.txt
var builtinTemplates embed.FS

// Template names
const (
	PromptSystem      = "system"
	PromptDataContext = "data_context"
	PromptNoData      = "no_data_context"
	PromptLabels      = "labels_context"
	PromptNarration   = "narration"
	PromptGuidance    = "guidance"
)

// ResultsPreamble opens the assistant message that carries tool results into the narration request
const ResultsPreamble = "已执行统计分析并获得结果：\n\n"

// Global map to track initialized prompt directories (to avoid duplicate logs)
var (
	initializedDirs   = make(map[string]bool)
	initializedDirsMu sync.RWMutex
)

// PromptManager loads prompt templates, preferring files in PromptsDir over the built-in set
type PromptManager struct {
	PromptsDir string
}

// NewPromptManager creates a prompt manager. An empty dir uses only built-in templates.
func NewPromptManager(promptsDir string) *PromptManager {
	if promptsDir != "" {
		initializedDirsMu.Lock()
		if !initializedDirs[promptsDir] {
			initializedDirs[promptsDir] = true
			log.Printf("[PromptManager] Overrides enabled from directory: %s", promptsDir)
		}
		initializedDirsMu.Unlock()
	}
	return &PromptManager{PromptsDir: promptsDir}
}

// LoadPrompt loads a prompt template by name
func (pm *PromptManager) LoadPrompt(name string) (string, error) {
	if pm.PromptsDir != "" {
		content, err := os.ReadFile(filepath.Join(pm.PromptsDir, name+".txt"))
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to load prompt %s: %w", name, err)
		}
	}

	content, err := builtinTemplates.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("prompt template not found: %s", name)
	}
	return string(content), nil
}

// RenderPrompt replaces {PLACEHOLDER} with values
func (pm *PromptManager) RenderPrompt(name string, replacements map[string]string) (string, error) {
	template, err := pm.LoadPrompt(name)
	if err != nil {
		return "", err
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, "{"+placeholder+"}", value)
	}
	return result, nil
}

// SystemPrompt assembles the role, dataset shape, column list, labels context and rules
func (pm *PromptManager) SystemPrompt(ds *dataset.Dataset, labels *dataset.LabelSet) (string, error) {
	dataContext, err := pm.DataContext(ds)
	if err != nil {
		return "", err
	}
	labelsContext, err := pm.LabelsContext(labels)
	if err != nil {
		return "", err
	}
	return pm.RenderPrompt(PromptSystem, map[string]string{
		"DATA_CONTEXT":   dataContext,
		"LABELS_CONTEXT": labelsContext,
	})
}

// DataContext describes the dataset shape and its columns
func (pm *PromptManager) DataContext(ds *dataset.Dataset) (string, error) {
	if ds == nil {
		return pm.LoadPrompt(PromptNoData)
	}
	var list strings.Builder
	for i, name := range ds.ColumnNames() {
		if i > 0 {
			list.WriteByte('\n')
		}
		list.WriteString("  - " + name)
	}
	return pm.RenderPrompt(PromptDataContext, map[string]string{
		"ROWS":        strconv.Itoa(ds.RowCount()),
		"COLUMNS":     strconv.Itoa(ds.ColumnCount()),
		"COLUMN_LIST": list.String(),
	})
}

// LabelsContext enumerates every labelled variable's full value domain.
// It is empty when no value labels are defined.
func (pm *PromptManager) LabelsContext(labels *dataset.LabelSet) (string, error) {
	if labels == nil {
		return "", nil
	}
	vars := labels.LabelledVariables()
	if len(vars) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&b, "\n**%s** (%s) - 完整值域定义:\n", v, labels.VariableLabel(v))
		values := labels.ValueLabels[v]
		for _, key := range values.SortedKeys() {
			fmt.Fprintf(&b, "  - %s = %s\n", key, values[key])
		}
	}
	return pm.RenderPrompt(PromptLabels, map[string]string{
		"LABELLED_VARIABLES": b.String(),
	})
}

// NarrationInstruction is the user message that asks for the constrained narration
func (pm *PromptManager) NarrationInstruction() (string, error) {
	return pm.LoadPrompt(PromptNarration)
}

// GuidanceMessage is the canned reply used when a statistical request produced no tool call
func (pm *PromptManager) GuidanceMessage() (string, error) {
	text, err := pm.LoadPrompt(PromptGuidance)
	return strings.TrimSpace(text), err
}
