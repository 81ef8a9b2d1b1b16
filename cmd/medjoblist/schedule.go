package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/medjoblist/pipeline/internal/scheduler"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var scheduleCommand = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline for all configured employers on a cron schedule",
	Long:  "Stays in the foreground and executes every configured employer on the cron expression from pipeline.run_schedule. Stop with SIGINT or SIGTERM.",
	RunE:  runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCommand)
}

func runSchedule(_ *cobra.Command, _ []string) error {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.cfg.Pipeline.RunSchedule == "" {
		return errors.New("pipeline.run_schedule must be set to use the scheduler")
	}

	sched, err := scheduler.NewScheduler(ctx, app.runner, app.employers, app.cfg.Pipeline.RunSchedule)
	if err != nil {
		return err
	}
	defer sched.Stop()

	<-ctx.Done()
	log.Info("shutting down scheduler")
	return nil
}
