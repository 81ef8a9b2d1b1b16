package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/medjoblist/pipeline/internal/adapters"
	"github.com/medjoblist/pipeline/internal/classifier"
	"github.com/medjoblist/pipeline/internal/events"
	"github.com/medjoblist/pipeline/internal/logger"
	"github.com/medjoblist/pipeline/internal/metrics"
	"github.com/medjoblist/pipeline/internal/models"
	"github.com/medjoblist/pipeline/internal/normalizer"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sentinel errors let the command map terminal failure states to distinct
// exit codes.
var (
	ErrScrapeFailed   = errors.New("scrape stage failed")
	ErrClassifyFailed = errors.New("classify stage failed")
)

const logRetention = 30 * 24 * time.Hour

type employerStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Employer, error)
}

type listingResolver interface {
	Apply(ctx context.Context, employer models.Employer, listings []models.RawListing) (normalizer.Result, error)
}

type classificationGate interface {
	ClassifyPending(ctx context.Context, employerID uint) (classifier.Result, error)
}

type urlAnnouncer interface {
	Announce(ctx context.Context, urls []string)
}

// AdapterFactory builds the source adapter bound to an employer.
type AdapterFactory func(employer models.Employer) (adapters.SourceAdapter, error)

// Runner sequences one employer's scrape → classify → announce run and owns
// the cross-stage failure policy. Stages themselves know nothing about each
// other.
type Runner struct {
	employers  employerStore
	newAdapter AdapterFactory
	resolver   listingResolver
	gate       classificationGate
	announcer  urlAnnouncer
	bus        EventBus.Bus
	logDir     string
}

func NewRunner(employers employerStore, newAdapter AdapterFactory, resolver listingResolver,
	gate classificationGate, announcer urlAnnouncer, bus EventBus.Bus, logDir string) *Runner {

	return &Runner{
		employers:  employers,
		newAdapter: newAdapter,
		resolver:   resolver,
		gate:       gate,
		announcer:  announcer,
		bus:        bus,
		logDir:     logDir,
	}
}

// Execute performs a full run for one employer. The scrape-failure invariant
// is hard: classification costs money and is never spent on a failed or
// partial scrape. A classify failure keeps every persisted record for retry.
func (r *Runner) Execute(ctx context.Context, employerSlug string, opts adapters.Options) (models.RunRecord, error) {

	employer, err := r.employers.GetBySlug(ctx, employerSlug)
	if err != nil {
		return models.RunRecord{}, err
	}

	run := NewRun(employer.Slug, r.logDir)
	defer run.CloseLogs()

	start := time.Now()
	log.Infof("starting run %v for employer %v", run.Record.RunID, employer.Slug)
	_ = run.Apply(EventStart)

	urls, err := r.scrapeAndClassify(ctx, run, *employer, opts)
	if err != nil {
		return r.finishFailed(run, err)
	}

	if len(urls) > 0 {
		_ = run.Apply(EventAnnounce)
		r.announcer.Announce(ctx, urls)
		_ = run.Apply(EventAnnounced)
	} else {
		_ = run.Apply(EventSkipAnnounce)
	}

	run.Record.FinishedAt = time.Now()
	metrics.RunDuration.WithLabelValues(employer.Slug).Observe(time.Since(start).Seconds())
	r.bus.Publish(events.RunFinishedTopic, events.RunFinished{Run: run.Record})

	if removed, err := logger.PurgeOldLogs(r.logDir, logRetention); err != nil {
		log.Warnf("log purge failed: %v", err)
	} else if removed > 0 {
		log.Infof("purged %v expired log files", removed)
	}

	log.Infof("run %v finished: %+v", run.Record.RunID, run.Record)
	return run.Record, nil
}

// scrapeAndClassify drives the scrape and classify stages and returns the
// URLs the announcer should submit.
func (r *Runner) scrapeAndClassify(ctx context.Context, run *Run, employer models.Employer,
	opts adapters.Options) ([]string, error) {

	scrapeLog := run.StageLogger("scrape")
	scrapeStart := time.Now()

	adapter, err := r.newAdapter(employer)
	if err != nil {
		_ = run.Apply(EventScrapeError)
		scrapeLog.Errorf("adapter construction failed: %v", err)
		return nil, errors.Wrap(ErrScrapeFailed, err.Error())
	}

	listings, err := adapter.FetchListings(ctx, opts)
	if err != nil {
		_ = run.Apply(EventScrapeError)
		scrapeLog.WithField(logger.ErrorTypeField, logger.ErrorTypeSource).Errorf("fetch failed: %v", err)
		return nil, errors.Wrap(ErrScrapeFailed, err.Error())
	}

	run.Record.JobsFound = len(listings)
	metrics.JobsFoundCounter.Add(float64(len(listings)))
	scrapeLog.Infof("fetched %v listings for %v", len(listings), employer.Slug)

	resolved, err := r.resolver.Apply(ctx, employer, listings)
	run.Record.Inserted = resolved.Inserted
	run.Record.Updated = resolved.Updated
	run.Record.Unchanged = resolved.Unchanged
	run.Record.Rejected = resolved.Rejected
	if err != nil {
		_ = run.Apply(EventScrapeError)
		scrapeLog.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("resolve failed: %v", err)
		return nil, errors.Wrap(ErrScrapeFailed, err.Error())
	}

	_ = run.Apply(EventScrapeOK)
	run.Record.ScrapeOK = true
	metrics.StageDuration.WithLabelValues("scrape").Observe(time.Since(scrapeStart).Seconds())
	scrapeLog.Infof("resolved listings: %v inserted, %v updated, %v unchanged, %v rejected",
		resolved.Inserted, resolved.Updated, resolved.Unchanged, resolved.Rejected)

	_ = run.Apply(EventClassify)
	classifyLog := run.StageLogger("classify")
	classifyStart := time.Now()

	classified, err := r.gate.ClassifyPending(ctx, employer.ID)
	run.Record.Classified = classified.Succeeded
	run.Record.ClassifyFailed = classified.Failed
	run.Record.EstimatedCostUSD = classified.CostEstimate
	metrics.ClassificationCost.Add(classified.CostEstimate)

	if err != nil {
		_ = run.Apply(EventClassifyError)
		classifyLog.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).Errorf("classification aborted: %v", err)
		return nil, errors.Wrap(ErrClassifyFailed, err.Error())
	}

	_ = run.Apply(EventClassifyOK)
	run.Record.ClassifyOK = true
	metrics.StageDuration.WithLabelValues("classify").Observe(time.Since(classifyStart).Seconds())
	classifyLog.Infof("classified %v jobs, %v failed, estimated cost $%.4f",
		classified.Succeeded, classified.Failed, classified.CostEstimate)

	return append(classified.ActivatedURLs, resolved.UpdatedActiveURLs...), nil
}

// finishFailed publishes the failure notification and maps the terminal
// state to the sentinel the caller uses for exit codes.
func (r *Runner) finishFailed(run *Run, cause error) (models.RunRecord, error) {

	run.Record.FinishedAt = time.Now()
	hostname, _ := os.Hostname()

	stage := "scrape"
	if errors.Is(cause, ErrClassifyFailed) {
		stage = "classify"
	}

	r.bus.Publish(events.RunFailedTopic, events.RunFailed{
		Run:       run.Record,
		Stage:     stage,
		Err:       cause.Error(),
		LogTail:   run.LogTail(),
		Host:      hostname,
		Timestamp: run.Record.FinishedAt.Format(time.RFC3339),
	})

	return run.Record, cause
}
