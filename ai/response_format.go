package ai

import (
	"regexp"
	"strings"
)

// statKeywords mark an utterance as a statistical request
var statKeywords = []string{
	"统计", "分析", "描述", "多选", "频次", "百分比", "有效", "占比", "选项",
	"statistic", "analy", "describe", "frequency", "percentage", "correlat", "t-test", "ttest",
}

// leakMarkers indicate a direct reply that explains instead of calling a tool
var leakMarkers = []string{"```", "python", "descriptive_stats(", "让我", "实际效果"}

// IsStatisticalRequest reports whether the utterance asks for an analysis
func IsStatisticalRequest(utterance string) bool {
	lower := strings.ToLower(utterance)
	for _, k := range statKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// LeaksCode reports whether a reply contains code or function-call text
func LeaksCode(reply string) bool {
	for _, m := range leakMarkers {
		if strings.Contains(reply, m) {
			return true
		}
	}
	return false
}

var cleanupRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("```[\\s\\S]*?```"), ""},
	{regexp.MustCompile("`[^`]*`"), ""},
	{regexp.MustCompile(`\|.*?\|.*?\n`), ""},
	{regexp.MustCompile(`[┌┬┐├┼┤└┴┘─│]+`), ""},
	{regexp.MustCompile(`(independent_t_test|descriptive_stats|pearson_correlation)\([^)]*\)`), ""},
	{regexp.MustCompile(`基于[^：]*(检验结果|分析结果|统计)[：:]\s*`), ""},
	{regexp.MustCompile(`^让我[^。！？\n]*[。！？\n]`), ""},
	{regexp.MustCompile(`^我[将会已][^。！？\n]*[。！？\n]`), ""},
	{regexp.MustCompile(`(实际效果|分析结果|统计结果)[:：]\s*\n`), ""},
	{regexp.MustCompile(`\n\s*\n`), "\n"},
}

// CleanReply strips code, tables, function-call echoes and boilerplate lead-ins from narration
func CleanReply(content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "undefined", ""))
	for _, rule := range cleanupRules {
		content = rule.re.ReplaceAllString(content, rule.repl)
	}
	return strings.TrimSpace(content)
}

var conclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`有(非常)?显著.*?影响`),
	regexp.MustCompile(`(没有|无)显著.*?影响`),
	regexp.MustCompile(`(不)?存在显著.*?(差异|相关|关系)`),
	regexp.MustCompile(`显著(高|低|大|小)于`),
	regexp.MustCompile(`有(正面|负面|积极|消极)影响`),
	regexp.MustCompile(`具有统计学意义`),
	regexp.MustCompile(`(?i)(statistically significant|no significant|significant(ly)? (difference|correlation|relationship|effect))`),
}

// IsConclusion reports whether a sentence states a finding
func IsConclusion(sentence string) bool {
	for _, re := range conclusionPatterns {
		if re.MatchString(sentence) {
			return true
		}
	}
	return false
}

// Sentence is one piece of cleaned narration
type Sentence struct {
	Text       string `json:"text"`
	Conclusion bool   `json:"conclusion"`
}

// SplitSentences breaks narration on 。！？ and newlines, keeping the terminator
func SplitSentences(content string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range content {
		cur.WriteRune(r)
		switch r {
		case '。', '！', '？', '\n':
			flush()
		}
	}
	flush()
	return out
}

// FormatReply cleans narration and tags each sentence that states a conclusion
func FormatReply(content string) []Sentence {
	sentences := SplitSentences(CleanReply(content))
	out := make([]Sentence, 0, len(sentences))
	for _, s := range sentences {
		out = append(out, Sentence{Text: s, Conclusion: IsConclusion(s)})
	}
	return out
}
