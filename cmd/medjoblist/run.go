package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/medjoblist/pipeline/internal/adapters"
	"github.com/spf13/cobra"
)

var (
	runMaxPages int
	runMaxItems int
)

var runCommand = &cobra.Command{
	Use:   "run <employer-slug>",
	Short: "Execute one full pipeline run for a single employer",
	Long: `Runs scrape, classify, and announce for the named employer.

Exit code 2 means the scrape stage failed and nothing was persisted;
exit code 3 means classification failed after listings were stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	runCommand.Flags().IntVar(&runMaxPages, "max-pages", 0, "Stop pagination after this many pages (0 = no limit)")
	runCommand.Flags().IntVar(&runMaxItems, "max-items", 0, "Stop after collecting this many listings (0 = no limit)")
	rootCmd.AddCommand(runCommand)
}

func runPipeline(_ *cobra.Command, args []string) error {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	opts := adapters.Options{
		MaxPages: runMaxPages,
		MaxItems: runMaxItems,
	}

	_, err = app.runner.Execute(ctx, args[0], opts)
	return err
}
