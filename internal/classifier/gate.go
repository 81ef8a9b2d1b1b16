package classifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medjoblist/pipeline/internal/metrics"
	"github.com/medjoblist/pipeline/internal/models"
	log "github.com/sirupsen/logrus"
)

type aiClient interface {
	GenerateResponse(ctx context.Context, request string) (string, error)
}

type jobStore interface {
	ListPending(ctx context.Context, employerID uint) ([]models.JobRecord, error)
	MarkActive(ctx context.Context, ids []uint, classification models.Classification) error
}

// Failure is the per-job classification error. The job stays pending and
// eligible for the next run; it is never activated or deleted on failure.
type Failure struct {
	JobID uint
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("classification failed for job %v: %v", f.JobID, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result aggregates one gate pass for run reporting.
type Result struct {
	Succeeded     int
	Failed        int
	Calls         int
	CostEstimate  float64
	ActivatedURLs []string
}

// Gate submits pending jobs to the model in bounded batches and promotes
// the successfully classified ones to active.
type Gate struct {
	ai          aiClient
	jobs        jobStore
	batchSize   int
	concurrency int
	callTimeout time.Duration
	perCallCost float64
}

func NewGate(ai aiClient, jobs jobStore, perCallCost float64) *Gate {
	return &Gate{
		ai:          ai,
		jobs:        jobs,
		batchSize:   20,
		concurrency: 3,
		callTimeout: 30 * time.Second,
		perCallCost: perCallCost,
	}
}

func (g *Gate) SetBatchSize(size int) {
	if size > 0 {
		g.batchSize = size
	}
}

func (g *Gate) SetConcurrency(n int) {
	if n > 0 {
		g.concurrency = n
	}
}

// ClassifyPending classifies every pending job for one employer. Individual
// failures are contained: the job stays pending and the pass continues.
func (g *Gate) ClassifyPending(ctx context.Context, employerID uint) (Result, error) {

	pending, err := g.jobs.ListPending(ctx, employerID)
	if err != nil {
		return Result{}, err
	}

	var result Result
	var mu sync.Mutex

	for start := 0; start < len(pending); start += g.batchSize {
		select {
		case <-ctx.Done():
			result.CostEstimate = float64(result.Calls) * g.perCallCost
			return result, ctx.Err()
		default:
		}

		end := start + g.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		g.classifyBatch(ctx, pending[start:end], &result, &mu)
	}

	result.CostEstimate = float64(result.Calls) * g.perCallCost
	return result, nil
}

func (g *Gate) classifyBatch(ctx context.Context, batch []models.JobRecord, result *Result, mu *sync.Mutex) {

	semaphore := make(chan struct{}, g.concurrency)
	var wg sync.WaitGroup

	for _, job := range batch {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(job models.JobRecord) {
			defer wg.Done()
			defer func() { <-semaphore }()

			classification, err := g.classifyJob(ctx, job)

			mu.Lock()
			defer mu.Unlock()
			result.Calls++

			if err != nil {
				result.Failed++
				metrics.ClassificationsFailedCounter.Inc()
				log.WithField("error_type", "ai_api").Warnf("%v", &Failure{JobID: job.ID, Err: err})
				return
			}

			if err := g.jobs.MarkActive(ctx, []uint{job.ID}, classification); err != nil {
				result.Failed++
				log.WithField("error_type", "db").Errorf("failed to activate job %v: %v", job.ID, err)
				return
			}

			result.Succeeded++
			result.ActivatedURLs = append(result.ActivatedURLs, job.SourceURL)
			metrics.ClassificationsCounter.Inc()
		}(job)
	}

	wg.Wait()
}

// classifyJob makes exactly one model call for one job. A call past the
// timeout counts as a failure; it is not retried within the run.
func (g *Gate) classifyJob(ctx context.Context, job models.JobRecord) (models.Classification, error) {

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	response, err := g.ai.GenerateResponse(callCtx, buildPrompt(job))
	if err != nil {
		return models.Classification{}, err
	}

	return parseResponse(response)
}
