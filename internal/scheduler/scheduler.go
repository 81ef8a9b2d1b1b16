package scheduler

import (
	"context"

	"github.com/medjoblist/pipeline/internal/adapters"
	"github.com/medjoblist/pipeline/internal/models"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type pipelineRunner interface {
	Execute(ctx context.Context, employerSlug string, opts adapters.Options) (models.RunRecord, error)
}

type employerLister interface {
	List(ctx context.Context) ([]models.Employer, error)
}

// Scheduler executes the full employer fleet on a cron schedule. Employers
// run sequentially: each run is independent, and serializing them keeps the
// identity-keyed store writes trivially free of overlap.
type Scheduler struct {
	cron      *cron.Cron
	runner    pipelineRunner
	employers employerLister
	ctx       context.Context
}

func NewScheduler(ctx context.Context, runner pipelineRunner, employers employerLister, schedule string) (*Scheduler, error) {

	if schedule == "" {
		return nil, errors.New("schedule must not be empty")
	}

	s := &Scheduler{
		cron:      cron.New(),
		runner:    runner,
		employers: employers,
		ctx:       ctx,
	}

	if _, err := s.cron.AddFunc(schedule, s.runAll); err != nil {
		return nil, err
	}

	s.cron.Start()
	log.Infof("scheduler started with schedule %q", schedule)
	return s, nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runAll() {

	employers, err := s.employers.List(s.ctx)
	if err != nil {
		log.Errorf("failed to list employers: %v", err)
		return
	}

	for _, employer := range employers {
		select {
		case <-s.ctx.Done():
			log.Info("scheduled runs interrupted")
			return
		default:
		}

		if _, err := s.runner.Execute(s.ctx, employer.Slug, adapters.Options{}); err != nil {
			// Failures are already reported through run events; the fleet
			// keeps going.
			log.Errorf("scheduled run failed for %v: %v", employer.Slug, err)
		}
	}
}
