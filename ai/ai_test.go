package ai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aistats/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolDefinitions(t *testing.T) {
	defs := ToolDefinitions()
	require.Len(t, defs, len(ToolNames))
	for i, def := range defs {
		assert.Equal(t, string(ToolNames[i]), def.Name)
		assert.Equal(t, "object", def.Parameters["type"])
		assert.NotEmpty(t, def.Parameters["required"])
	}
}

func TestSystemPrompt_IncludesColumnsAndLabels(t *testing.T) {
	ds, err := dataset.FromRecords("survey", []string{"年级", "满意度"}, [][]string{{"7", "1"}, {"8", "5"}})
	require.NoError(t, err)
	labels := dataset.NewLabelSet()
	labels.SetVariableLabel("满意度", "总体满意度")
	labels.SetValueLabels("满意度", map[string]string{"10": "十", "2": "不满意", "1": "非常不满意"})

	prompt, err := NewPromptManager("").SystemPrompt(ds, labels)
	require.NoError(t, err)

	assert.Contains(t, prompt, "当前数据集：2行，2列。")
	assert.Contains(t, prompt, "  - 年级")
	assert.Contains(t, prompt, "**满意度** (总体满意度) - 完整值域定义:")
	assert.Contains(t, prompt, "频次=0")
	assert.NotContains(t, prompt, "{LABELS_CONTEXT}")

	// numeric keys are listed in numeric order
	first := strings.Index(prompt, "  - 1 = 非常不满意")
	second := strings.Index(prompt, "  - 2 = 不满意")
	third := strings.Index(prompt, "  - 10 = 十")
	require.NotEqual(t, -1, first)
	assert.True(t, first < second && second < third, "labels out of order:\n%s", prompt)
}

func TestSystemPrompt_NoDataset(t *testing.T) {
	prompt, err := NewPromptManager("").SystemPrompt(nil, dataset.NewLabelSet())
	require.NoError(t, err)
	assert.Contains(t, prompt, "尚未导入数据集")
	assert.NotContains(t, prompt, "值标签说明")
}

func TestPromptManager_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, PromptGuidance+".txt"), []byte("custom guidance\n"), 0o644))

	pm := NewPromptManager(dir)
	guidance, err := pm.GuidanceMessage()
	require.NoError(t, err)
	assert.Equal(t, "custom guidance", guidance)

	// templates missing from the directory fall back to the built-in set
	narration, err := pm.NarrationInstruction()
	require.NoError(t, err)
	assert.Contains(t, narration, "严禁编造数据")

	_, err = pm.LoadPrompt("does_not_exist")
	assert.Error(t, err)
}

func TestIsStatisticalRequest(t *testing.T) {
	assert.True(t, IsStatisticalRequest("请统计一下满意度"))
	assert.True(t, IsStatisticalRequest("Describe the Income column"))
	assert.False(t, IsStatisticalRequest("你好"))
}

func TestLeaksCode(t *testing.T) {
	assert.True(t, LeaksCode("让我先看看数据"))
	assert.True(t, LeaksCode("descriptive_stats([\"age\"])"))
	assert.False(t, LeaksCode("你好，有什么可以帮你？"))
}

func TestCleanReply(t *testing.T) {
	raw := "让我来解释一下。\n基于独立样本t检验结果：t=3.45, p=0.002。\n" +
		"```python\nprint(1)\n```\n" +
		"| a | b |\n" +
		"调用 independent_t_test(score, sex) 得到结果。\n\n" +
		"因此，两组存在显著差异。undefined"

	cleaned := CleanReply(raw)
	assert.NotContains(t, cleaned, "让我")
	assert.NotContains(t, cleaned, "基于")
	assert.NotContains(t, cleaned, "print")
	assert.NotContains(t, cleaned, "| a |")
	assert.NotContains(t, cleaned, "independent_t_test(")
	assert.NotContains(t, cleaned, "undefined")
	assert.Contains(t, cleaned, "t=3.45, p=0.002。")
	assert.Contains(t, cleaned, "因此，两组存在显著差异。")
}

func TestFormatReply_TagsConclusions(t *testing.T) {
	sentences := FormatReply("根据独立样本t检验，t=3.45, p=0.002。因此，男生和女生在成绩上存在显著差异。各组人数均衡")
	require.Len(t, sentences, 3)
	assert.False(t, sentences[0].Conclusion)
	assert.True(t, sentences[1].Conclusion)
	assert.Equal(t, "各组人数均衡", sentences[2].Text)
	assert.False(t, sentences[2].Conclusion)

	assert.True(t, IsConclusion("父母监督对作业完成率有非常显著的影响。"))
	assert.True(t, IsConclusion("差异具有统计学意义"))
	assert.True(t, IsConclusion("There is a statistically significant difference."))
	assert.False(t, IsConclusion("7年级7人（35%）。"))
}
