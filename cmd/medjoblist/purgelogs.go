package main

import (
	"fmt"
	"time"

	"github.com/medjoblist/pipeline/internal/logger"
	"github.com/spf13/cobra"
)

var (
	purgeLogDir        string
	purgeRetentionDays int
)

var purgeLogsCommand = &cobra.Command{
	Use:   "purge-logs",
	Short: "Delete per-run stage log files older than the retention window",
	RunE:  runPurgeLogs,
}

func init() {
	purgeLogsCommand.Flags().StringVar(&purgeLogDir, "dir", "./logs", "Log directory to purge")
	purgeLogsCommand.Flags().IntVar(&purgeRetentionDays, "retention-days", 30, "Delete log files older than this many days")
	rootCmd.AddCommand(purgeLogsCommand)
}

func runPurgeLogs(_ *cobra.Command, _ []string) error {

	retention := time.Duration(purgeRetentionDays) * 24 * time.Hour

	removed, err := logger.PurgeOldLogs(purgeLogDir, retention)
	if err != nil {
		return err
	}

	fmt.Printf("removed %v log files older than %v days\n", removed, purgeRetentionDays)
	return nil
}
