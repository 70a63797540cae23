package main

import (
	"fmt"
	"os"

	"aistats/adapters/excel"
	"aistats/adapters/labelfile"
	"aistats/adapters/render"
	"aistats/domain/core"
	"aistats/domain/stats"
	"aistats/internal/config"
	"aistats/internal/container"
	"aistats/internal/session"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command
type globalFlags struct {
	data   string
	labels string
	format string
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "aistats",
		Short:         "AIStats CLI for descriptive and inferential statistics with AI-assisted analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.data, "data", os.Getenv("DATA_FILE"), "Dataset file (.csv or .xlsx)")
	rootCmd.PersistentFlags().StringVar(&flags.labels, "labels", os.Getenv("LABELS_FILE"), "Label file (.yaml or .json)")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", render.FormatTable, "Output format: table, markdown or json")

	rootCmd.AddCommand(
		newDescribeCmd(flags),
		newTTestCmd(flags),
		newCorrCmd(flags),
		newGroupedCmd(flags),
		newOneSampleCmd(flags),
		newPairedCmd(flags),
		newANOVACmd(flags),
		newRegressCmd(flags),
		newAlphaCmd(flags),
		newMediateCmd(flags),
		newChatCmd(flags),
		newLabelsCmd(flags),
	)
	return rootCmd
}

// openSession loads the dataset and labels into a fresh session configured from the environment
func openSession(flags *globalFlags) (*session.Session, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if flags.data == "" {
		return nil, nil, fmt.Errorf("--data is required (or set DATA_FILE)")
	}

	ds, err := excel.NewDataReader(flags.data).ReadDataset()
	if err != nil {
		return nil, nil, err
	}

	s := session.New(core.SessionID(core.NewID()), container.EngineOptions(cfg)...)
	s.ReplaceDataset(ds)

	if flags.labels != "" {
		labels, err := labelfile.Load(flags.labels)
		if err != nil {
			return nil, nil, err
		}
		s.Store().ImportLabels(labels)
	}
	return s, cfg, nil
}

func printResult(cmd *cobra.Command, flags *globalFlags, s *session.Session, result stats.Result) error {
	return render.New(flags.format, s.Store().Labels()).Result(cmd.OutOrStdout(), result)
}
