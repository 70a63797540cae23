package main

import (
	"context"
	"fmt"
	"strings"

	"aistats/adapters/labelfile"
	"aistats/adapters/render"
	"aistats/internal/container"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newDescribeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [variables...]",
		Short: "Descriptive statistics with automatic variable typing",
		Long: `Describe one or more variables. Numeric variables get mean, std and quartiles;
categorical variables get the full frequency table including labelled values
that never occur; semicolon-separated answers are tallied as multiple choice.

Variable names may be keywords: "满意度" matches "满意度（1-5）".

Example: aistats describe --data survey.xlsx --labels labels.yaml 年级 满意度`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Descriptive(args)
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newTTestCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ttest [data-var] [group-var]",
		Short: "Independent-samples t-test between the two groups of a grouping variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Comparison(args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newCorrCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "corr [variables...]",
		Short: "Pearson correlation matrix over complete cases (exact column names)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Correlation(args)
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newChatCmd(flags *globalFlags) *cobra.Command {
	var showResults bool

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask the AI assistant a question about the dataset",
		Long: `Ask a question in natural language. The assistant picks the statistical
procedures, runs them on the dataset and explains the computed numbers.

Requires OPENAI_API_KEY (OPENAI_BASE_URL and LLM_MODEL select other compatible providers).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cfg, err := openSession(flags)
			if err != nil {
				return err
			}
			if !cfg.AI.Enabled() {
				return fmt.Errorf("OPENAI_API_KEY is not set")
			}
			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			outcome, err := c.Chat.Converse(ctx, s, strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showResults {
				for _, r := range outcome.Results {
					if err := printResult(cmd, flags, s, r); err != nil {
						return err
					}
				}
			}
			if flags.format == render.FormatMarkdown {
				_, err = fmt.Fprintln(out, render.NarrationMarkdown(outcome.Sentences))
				return err
			}
			_, err = fmt.Fprintln(out, outcome.Reply.Content)
			return err
		},
	}
	cmd.Flags().BoolVar(&showResults, "results", false, "Print the computed results before the narration")
	return cmd
}

func newLabelsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Inspect and convert variable and value labels",
	}
	cmd.AddCommand(newLabelsShowCmd(flags), newLabelsExportCmd(flags))
	return cmd
}

func newLabelsShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every column with its labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			labels := s.Store().Labels()

			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"column", "label", "value labels"})
			for _, name := range s.Store().ColumnNames() {
				values := labels.ValueLabelsFor(name)
				pairs := make([]string, 0, len(values))
				for _, k := range values.SortedKeys() {
					pairs = append(pairs, k+"="+values[k])
				}
				t.AppendRow(table.Row{name, labels.VariableLabels[name], strings.Join(pairs, ", ")})
			}
			if flags.format == render.FormatMarkdown {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), t.RenderMarkdown())
			} else {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			}
			return err
		},
	}
}

func newLabelsExportCmd(flags *globalFlags) *cobra.Command {
	var out string
	var template bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the labels to a YAML or JSON file",
		Long: `Write the loaded labels to --out; the extension picks YAML or JSON.
With --template every column without a variable label is listed with its own
name, giving a starting point for annotation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			labels := s.Store().Labels()
			if template {
				for _, name := range s.Store().ColumnNames() {
					if _, ok := labels.VariableLabels[name]; !ok {
						labels.SetVariableLabel(name, name)
					}
				}
			}
			if err := labelfile.Save(out, labels); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (.yaml, .yml or .json)")
	cmd.Flags().BoolVar(&template, "template", false, "Include every column")
	return cmd
}
