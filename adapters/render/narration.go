package render

import (
	"strings"

	"aistats/ai"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// NarrationMarkdown joins sentences into markdown, bolding conclusions
func NarrationMarkdown(sentences []ai.Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		if s.Conclusion {
			b.WriteString("**")
			b.WriteString(s.Text)
			b.WriteString("**")
		} else {
			b.WriteString(s.Text)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// NarrationHTML renders narration sentences to HTML
func NarrationHTML(sentences []ai.Sentence) string {
	return MarkdownToHTML(NarrationMarkdown(sentences))
}

// MarkdownToHTML converts markdown to HTML. A parser holds state, so one is built per call.
func MarkdownToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return string(markdown.ToHTML([]byte(md), p, renderer))
}
