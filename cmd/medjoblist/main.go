package main

import (
	"fmt"
	"os"

	"github.com/medjoblist/pipeline/internal/pipeline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "medjoblist",
	Short:         "Healthcare job ingestion and activation pipeline",
	Long:          "Scrapes employer job boards, normalizes and deduplicates listings, classifies them with an AI model, and announces activated jobs to search indexes.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor distinguishes the two terminal failure stages so operators
// and cron wrappers can tell them apart without parsing logs.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrScrapeFailed):
		return 2
	case errors.Is(err, pipeline.ErrClassifyFailed):
		return 3
	default:
		return 1
	}
}
