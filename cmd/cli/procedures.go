package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGroupedCmd(flags *globalFlags) *cobra.Command {
	var by string
	var dimension bool

	cmd := &cobra.Command{
		Use:   "grouped [variables...]",
		Short: "Mean, std, min and max of numeric variables within each level of --by",
		Long: `Summarize numeric variables per group. With --dimension the variables are
averaged per row first and only that dimension score is summarized.

Example: aistats grouped --data survey.xlsx --by 年级 --dimension q1 q2 q3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if by == "" {
				return fmt.Errorf("--by is required")
			}
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().GroupedDescriptive(by, args, dimension)
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "Grouping variable")
	cmd.Flags().BoolVar(&dimension, "dimension", false, "Summarize the per-row mean of the variables")
	return cmd
}

func newOneSampleCmd(flags *globalFlags) *cobra.Command {
	var mu float64

	cmd := &cobra.Command{
		Use:   "onesample [variable]",
		Short: "One-sample t-test of a variable's mean against --mu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().OneSampleT(args[0], mu)
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
	cmd.Flags().Float64Var(&mu, "mu", 0, "Hypothesized mean")
	return cmd
}

func newPairedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "paired [var1] [var2]",
		Short: "Paired-samples t-test over rows where both variables are numeric",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().PairedT(args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newANOVACmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "anova [data-var] [group-var]",
		Short: "One-way ANOVA with Levene's test across every level of a grouping variable",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().ANOVA(args[0], args[1])
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newRegressCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "regress [outcome] [predictors...]",
		Short: "Ordinary least squares regression of the outcome on one or more predictors",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Regression(args[0], args[1:])
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newAlphaCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "alpha [items...]",
		Short: "Cronbach's alpha with item-total statistics",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Reliability(args)
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}

func newMediateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mediate [x] [m] [y]",
		Short: "Simple mediation X -> M -> Y with a Sobel test of the indirect effect",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := openSession(flags)
			if err != nil {
				return err
			}
			result, err := s.Engine().Mediation(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return printResult(cmd, flags, s, result)
		},
	}
}
