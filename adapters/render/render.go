// Package render presents analysis results as terminal tables, markdown or JSON,
// and converts narration to HTML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"aistats/domain/dataset"
	"aistats/domain/stats"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Output formats
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Renderer writes results in one format, showing variable labels when present
type Renderer struct {
	format string
	labels *dataset.LabelSet
}

// New creates a renderer; unknown formats fall back to table
func New(format string, labels *dataset.LabelSet) *Renderer {
	switch format {
	case FormatMarkdown, "md":
		format = FormatMarkdown
	case FormatJSON:
	default:
		format = FormatTable
	}
	if labels == nil {
		labels = dataset.NewLabelSet()
	}
	return &Renderer{format: format, labels: labels}
}

// Result writes one analysis result
func (r *Renderer) Result(w io.Writer, result stats.Result) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	}

	switch res := result.(type) {
	case *stats.DescriptiveResult:
		return r.descriptive(w, res)
	case *stats.ComparisonResult:
		return r.comparison(w, res)
	case *stats.CorrelationResult:
		return r.correlation(w, res)
	case *stats.GroupedDescriptiveResult:
		return r.grouped(w, res)
	case *stats.OneSampleTResult:
		return r.oneSample(w, res)
	case *stats.PairedTResult:
		return r.paired(w, res)
	case *stats.ANOVAResult:
		return r.anova(w, res)
	case *stats.RegressionResult:
		return r.regression(w, res)
	case *stats.ReliabilityResult:
		return r.reliability(w, res)
	case *stats.MediationResult:
		return r.mediation(w, res)
	case *stats.ErrorResult:
		_, err := fmt.Fprintf(w, "error [%s]: %s\n", res.Code, res.Message)
		return err
	case nil:
		_, err := fmt.Fprintln(w, "(no result)")
		return err
	}
	return fmt.Errorf("unsupported result kind %s", result.Kind())
}

func (r *Renderer) newTable(title string) table.Writer {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t := table.NewWriter()
	t.SetStyle(style)
	if title != "" && r.format == FormatTable {
		t.SetTitle(title)
	}
	return t
}

func (r *Renderer) flush(w io.Writer, title string, t table.Writer) error {
	var err error
	if r.format == FormatMarkdown {
		if title != "" {
			_, err = fmt.Fprintf(w, "**%s**\n\n", title)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "%s\n\n", t.RenderMarkdown())
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", t.Render())
	return err
}

func (r *Renderer) title(variable string) string {
	if label := r.labels.VariableLabel(variable); label != variable {
		return fmt.Sprintf("%s (%s)", variable, label)
	}
	return variable
}

func (r *Renderer) descriptive(w io.Writer, res *stats.DescriptiveResult) error {
	for _, key := range res.Order {
		block := res.Blocks[key]
		title := r.title(key)
		var t table.Writer

		switch b := block.(type) {
		case stats.NumericBlock:
			t = r.newTable(title)
			t.AppendHeader(table.Row{"statistic", "value"})
			std := "-"
			if b.Std != nil {
				std = num(*b.Std)
			}
			t.AppendRows([]table.Row{
				{"n", b.N}, {"mean", num(b.Mean)}, {"std", std},
				{"min", num(b.Min)}, {"q1", num(b.Q1)}, {"median", num(b.Median)},
				{"q3", num(b.Q3)}, {"max", num(b.Max)}, {"missing", b.Missing},
			})
		case stats.CategoricalBlock:
			t = r.newTable(title)
			t.AppendHeader(table.Row{"value", "label", "frequency", "percent"})
			for _, f := range b.Values {
				t.AppendRow(table.Row{cellValue(f.Value), f.Label, f.Frequency, pct(f.Percentage)})
			}
			t.AppendFooter(table.Row{"n", "", b.N, fmt.Sprintf("missing %d", b.Missing)})
		case stats.MultipleChoiceBlock:
			t = r.newTable(title)
			t.AppendHeader(table.Row{"option", "frequency", "percent of respondents"})
			for _, o := range b.Options {
				t.AppendRow(table.Row{o.Option, o.Frequency, pct(o.Percentage)})
			}
			t.AppendFooter(table.Row{
				fmt.Sprintf("n %d", b.N),
				fmt.Sprintf("selections %d", b.NSelections),
				fmt.Sprintf("avg %s", num(b.AvgPerPerson)),
			})
		case stats.EmptyBlock:
			if _, err := fmt.Fprintf(w, "%s: no valid values (missing %d)\n\n", title, b.Missing); err != nil {
				return err
			}
			continue
		case stats.ErrorBlock:
			if _, err := fmt.Fprintf(w, "%s: error [%s]: %s\n\n", key, b.Code, b.Error); err != nil {
				return err
			}
			continue
		default:
			continue
		}
		if err := r.flush(w, title, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) comparison(w io.Writer, res *stats.ComparisonResult) error {
	title := fmt.Sprintf("%s by %s", r.title(res.DataVar), r.title(res.GroupVar))
	groups := r.newTable(title)
	groups.AppendHeader(table.Row{"group", "label", "n", "mean", "std"})
	groups.AppendRows([]table.Row{
		{res.Group1Name, res.Group1Label, res.Group1N, num(res.Group1Mean), num(res.Group1Std)},
		{res.Group2Name, res.Group2Label, res.Group2N, num(res.Group2Mean), num(res.Group2Std)},
	})
	if err := r.flush(w, title, groups); err != nil {
		return err
	}

	test := r.newTable("")
	test.AppendHeader(table.Row{"mean diff", "t", "df", "p", "cohen's d", "95% CI", "sig"})
	test.AppendRow(table.Row{
		num(res.MeanDiff), num(res.TStatistic), res.DF, pvalue(res.PValue), num(res.CohensD),
		interval(res.CILower, res.CIUpper), res.Significance,
	})
	return r.flush(w, "", test)
}

func (r *Renderer) correlation(w io.Writer, res *stats.CorrelationResult) error {
	title := fmt.Sprintf("Pearson correlation (n = %d)", res.N)
	t := r.newTable(title)

	header := table.Row{""}
	for _, v := range res.Variables {
		header = append(header, v)
	}
	t.AppendHeader(header)
	for _, row := range res.Variables {
		line := table.Row{r.title(row)}
		for _, col := range res.Variables {
			rv := res.CorrelationMatrix.Get(row, col)
			if row == col {
				line = append(line, num(rv))
				continue
			}
			tier := stats.SignificanceTier(res.PValueMatrix.Get(row, col))
			if tier == "ns" {
				tier = ""
			}
			line = append(line, num(rv)+tier)
		}
		t.AppendRow(line)
	}
	return r.flush(w, title, t)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func pvalue(p float64) string {
	if p < 0.001 {
		return "<0.001"
	}
	return strconv.FormatFloat(p, 'f', 4, 64)
}

func cellValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return dataset.FormatNumber(f)
	}
	return fmt.Sprint(v)
}
