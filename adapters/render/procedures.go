package render

import (
	"fmt"
	"io"
	"strings"

	"aistats/domain/stats"

	"github.com/jedib0t/go-pretty/v6/table"
)

func (r *Renderer) grouped(w io.Writer, res *stats.GroupedDescriptiveResult) error {
	title := fmt.Sprintf("Grouped by %s", r.title(res.GroupVar))
	if res.Dimension {
		title += fmt.Sprintf(" (dimension score of %s)", strings.Join(res.Variables, ", "))
	}
	t := r.newTable(title)
	t.AppendHeader(table.Row{"group", "label", "rows", "variable", "n", "mean", "std", "min", "max"})
	for _, g := range res.Groups {
		for i, s := range g.Stats {
			group, label, rows := "", "", ""
			if i == 0 {
				group, label, rows = g.Group, g.Label, fmt.Sprint(g.Rows)
			}
			t.AppendRow(table.Row{group, label, rows, s.Variable, s.N, opt(s.Mean), opt(s.Std), opt(s.Min), opt(s.Max)})
		}
	}
	return r.flush(w, title, t)
}

func (r *Renderer) oneSample(w io.Writer, res *stats.OneSampleTResult) error {
	title := fmt.Sprintf("One-sample t-test: %s vs %s", r.title(res.Variable), num(res.TestValue))
	t := r.newTable(title)
	t.AppendHeader(table.Row{"n", "mean", "std", "mean diff", "t", "df", "p", "cohen's d", "95% CI", "sig"})
	t.AppendRow(table.Row{
		res.N, num(res.Mean), num(res.Std), num(res.MeanDiff), num(res.TStatistic), res.DF,
		pvalue(res.PValue), num(res.CohensD), interval(res.CILower, res.CIUpper), res.Significance,
	})
	return r.flush(w, title, t)
}

func (r *Renderer) paired(w io.Writer, res *stats.PairedTResult) error {
	title := fmt.Sprintf("Paired t-test: %s - %s", r.title(res.Variable1), r.title(res.Variable2))
	t := r.newTable(title)
	t.AppendHeader(table.Row{"pairs", "mean 1", "mean 2", "mean diff", "std diff", "t", "df", "p", "95% CI", "sig"})
	t.AppendRow(table.Row{
		res.N, num(res.Mean1), num(res.Mean2), num(res.MeanDiff), num(res.StdDiff), num(res.TStatistic),
		res.DF, pvalue(res.PValue), interval(res.CILower, res.CIUpper), res.Significance,
	})
	return r.flush(w, title, t)
}

func (r *Renderer) anova(w io.Writer, res *stats.ANOVAResult) error {
	title := fmt.Sprintf("One-way ANOVA: %s by %s", r.title(res.DataVar), r.title(res.GroupVar))
	groups := r.newTable(title)
	groups.AppendHeader(table.Row{"group", "label", "n", "mean", "std"})
	for _, g := range res.Groups {
		groups.AppendRow(table.Row{g.Name, g.Label, g.N, num(g.Mean), opt(g.Std)})
	}
	if err := r.flush(w, title, groups); err != nil {
		return err
	}

	source := r.newTable("")
	source.AppendHeader(table.Row{"source", "SS", "df", "MS", "F", "p", "sig"})
	source.AppendRows([]table.Row{
		{"between", num(res.SSBetween), res.DFBetween, num(res.MSBetween), num(res.FStatistic), pvalue(res.PValue), res.Significance},
		{"within", num(res.SSWithin), res.DFWithin, num(res.MSWithin), "", "", ""},
	})
	levene := "Levene: -"
	if res.LeveneF != nil {
		levene = fmt.Sprintf("Levene F %s, p %s", num(*res.LeveneF), pvalue(*res.LeveneP))
	}
	source.AppendFooter(table.Row{"eta²", num(res.EtaSquared), "", "", levene})
	return r.flush(w, "", source)
}

func (r *Renderer) regression(w io.Writer, res *stats.RegressionResult) error {
	title := fmt.Sprintf("OLS regression: %s ~ %s (n = %d)", r.title(res.Outcome), strings.Join(res.Predictors, " + "), res.N)
	t := r.newTable(title)
	t.AppendHeader(table.Row{"term", "estimate", "std error", "t", "p"})
	for _, c := range res.Coefficients {
		t.AppendRow(table.Row{c.Term, num(c.Estimate), num(c.StdError), num(c.TStatistic), pvalue(c.PValue)})
	}
	t.AppendFooter(table.Row{
		"R² " + num(res.RSquared),
		"adj " + num(res.AdjRSquared),
		fmt.Sprintf("F(%d, %d) %s", res.DFModel, res.DFResidual, num(res.FStatistic)),
		"p " + pvalue(res.FPValue),
		res.Significance,
	})
	return r.flush(w, title, t)
}

func (r *Renderer) reliability(w io.Writer, res *stats.ReliabilityResult) error {
	title := fmt.Sprintf("Cronbach's alpha = %s (%s, %d items, n = %d)", num(res.Alpha), res.Interpretation, res.NItems, res.N)
	t := r.newTable(title)
	t.AppendHeader(table.Row{"item", "mean", "std", "corrected item-total r", "alpha if deleted"})
	for _, s := range res.ItemStats {
		t.AppendRow(table.Row{r.title(s.Item), num(s.Mean), num(s.Std), opt(s.CorrectedItemTotal), opt(s.AlphaIfItemDeleted)})
	}
	return r.flush(w, title, t)
}

func (r *Renderer) mediation(w io.Writer, res *stats.MediationResult) error {
	title := fmt.Sprintf("Mediation: %s -> %s -> %s (n = %d)", r.title(res.X), r.title(res.M), r.title(res.Y), res.N)
	t := r.newTable(title)
	t.AppendHeader(table.Row{"path", "estimate", "std error", "t", "p"})
	for _, p := range []struct {
		name string
		path stats.Path
	}{
		{"a (X -> M)", res.A},
		{"b (M -> Y | X)", res.B},
		{"c' (X -> Y | M)", res.CPrime},
		{"c (X -> Y)", res.C},
	} {
		t.AppendRow(table.Row{p.name, num(p.path.Estimate), num(p.path.StdError), num(p.path.TStatistic), pvalue(p.path.PValue)})
	}
	t.AppendRow(table.Row{"indirect (a*b)", num(res.Indirect), "", "z " + num(res.SobelZ), pvalue(res.SobelP)})
	t.AppendFooter(table.Row{"mediated", pct(res.MediationRatio), "", "", fmt.Sprintf("significant: %t", res.Significant)})
	return r.flush(w, title, t)
}

func opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}

func interval(lo, hi float64) string {
	return fmt.Sprintf("[%s, %s]", num(lo), num(hi))
}
