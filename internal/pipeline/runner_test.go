package pipeline

import (
	"context"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/medjoblist/pipeline/internal/adapters"
	"github.com/medjoblist/pipeline/internal/classifier"
	"github.com/medjoblist/pipeline/internal/events"
	"github.com/medjoblist/pipeline/internal/models"
	"github.com/medjoblist/pipeline/internal/normalizer"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmployers struct {
	employer *models.Employer
	err      error
}

func (s *stubEmployers) GetBySlug(_ context.Context, _ string) (*models.Employer, error) {
	return s.employer, s.err
}

type stubAdapter struct {
	listings []models.RawListing
	err      error
}

func (s *stubAdapter) FetchListings(_ context.Context, _ adapters.Options) ([]models.RawListing, error) {
	return s.listings, s.err
}

type stubResolver struct {
	result normalizer.Result
	err    error
	calls  int
}

func (s *stubResolver) Apply(_ context.Context, _ models.Employer, _ []models.RawListing) (normalizer.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubGate struct {
	result classifier.Result
	err    error
	calls  int
}

func (s *stubGate) ClassifyPending(_ context.Context, _ uint) (classifier.Result, error) {
	s.calls++
	return s.result, s.err
}

type stubAnnouncer struct {
	announced [][]string
}

func (s *stubAnnouncer) Announce(_ context.Context, urls []string) {
	s.announced = append(s.announced, urls)
}

type runnerFixture struct {
	runner    *Runner
	adapter   *stubAdapter
	resolver  *stubResolver
	gate      *stubGate
	announcer *stubAnnouncer
	finished  []events.RunFinished
	failed    []events.RunFailed
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	f := &runnerFixture{
		adapter:   &stubAdapter{},
		resolver:  &stubResolver{},
		gate:      &stubGate{},
		announcer: &stubAnnouncer{},
	}

	bus := EventBus.New()
	require.NoError(t, bus.Subscribe(events.RunFinishedTopic, func(e events.RunFinished) {
		f.finished = append(f.finished, e)
	}))
	require.NoError(t, bus.Subscribe(events.RunFailedTopic, func(e events.RunFailed) {
		f.failed = append(f.failed, e)
	}))

	employers := &stubEmployers{employer: &models.Employer{ID: 1, Slug: "stmarys"}}
	factory := func(models.Employer) (adapters.SourceAdapter, error) { return f.adapter, nil }

	f.runner = NewRunner(employers, factory, f.resolver, f.gate, f.announcer, bus, t.TempDir())
	return f
}

func TestRunner_SuccessfulRunAnnouncesChangedURLs(t *testing.T) {

	f := newRunnerFixture(t)
	f.adapter.listings = []models.RawListing{{Title: "ICU Nurse"}, {Title: "ER Nurse"}}
	f.resolver.result = normalizer.Result{
		Inserted:          1,
		Updated:           1,
		UpdatedActiveURLs: []string{"https://medjoblist.example.com/jobs/updated"},
	}
	f.gate.result = classifier.Result{
		Succeeded:     1,
		CostEstimate:  0.0004,
		ActivatedURLs: []string{"https://medjoblist.example.com/jobs/new"},
	}

	record, err := f.runner.Execute(context.Background(), "stmarys", adapters.Options{})

	require.NoError(t, err)
	assert.True(t, record.ScrapeOK)
	assert.True(t, record.ClassifyOK)
	assert.Equal(t, 2, record.JobsFound)
	assert.Equal(t, 1, record.Inserted)
	assert.Equal(t, 1, record.Classified)
	assert.Equal(t, 0.0004, record.EstimatedCostUSD)

	require.Len(t, f.announcer.announced, 1)
	assert.Equal(t, []string{
		"https://medjoblist.example.com/jobs/new",
		"https://medjoblist.example.com/jobs/updated",
	}, f.announcer.announced[0])

	assert.Len(t, f.finished, 1)
	assert.Empty(t, f.failed)
}

func TestRunner_NoChangesSkipsAnnouncement(t *testing.T) {

	f := newRunnerFixture(t)
	f.adapter.listings = []models.RawListing{{Title: "ICU Nurse"}}
	f.resolver.result = normalizer.Result{Unchanged: 1}

	record, err := f.runner.Execute(context.Background(), "stmarys", adapters.Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, record.Unchanged)
	assert.Empty(t, f.announcer.announced)
	assert.Len(t, f.finished, 1)
}

func TestRunner_ScrapeFailureNeverReachesClassifier(t *testing.T) {

	f := newRunnerFixture(t)
	f.adapter.err = errors.New("connection refused")

	_, err := f.runner.Execute(context.Background(), "stmarys", adapters.Options{})

	assert.ErrorIs(t, err, ErrScrapeFailed)
	// The core containment invariant: a failed scrape spends zero classifier
	// calls and announces nothing.
	assert.Equal(t, 0, f.gate.calls)
	assert.Empty(t, f.announcer.announced)

	require.Len(t, f.failed, 1)
	assert.Equal(t, "scrape", f.failed[0].Stage)
	assert.Empty(t, f.finished)
}

func TestRunner_ResolveFailureIsScrapeFatal(t *testing.T) {

	f := newRunnerFixture(t)
	f.adapter.listings = []models.RawListing{{Title: "ICU Nurse"}}
	f.resolver.result = normalizer.Result{Inserted: 1}
	f.resolver.err = errors.New("disk full")

	record, err := f.runner.Execute(context.Background(), "stmarys", adapters.Options{})

	assert.ErrorIs(t, err, ErrScrapeFailed)
	assert.Equal(t, 0, f.gate.calls)
	// Counts from the partial resolve still reach the failure report.
	assert.Equal(t, 1, record.Inserted)
}

func TestRunner_ClassifyFailureKeepsPersistedRecords(t *testing.T) {

	f := newRunnerFixture(t)
	f.adapter.listings = []models.RawListing{{Title: "ICU Nurse"}}
	f.resolver.result = normalizer.Result{Inserted: 1}
	f.gate.err = errors.New("quota exhausted")

	record, err := f.runner.Execute(context.Background(), "stmarys", adapters.Options{})

	assert.ErrorIs(t, err, ErrClassifyFailed)
	assert.NotErrorIs(t, err, ErrScrapeFailed)
	// No rollback: the scrape result stands and the jobs wait as pending.
	assert.True(t, record.ScrapeOK)
	assert.False(t, record.ClassifyOK)
	assert.Equal(t, 1, record.Inserted)
	assert.Empty(t, f.announcer.announced)

	require.Len(t, f.failed, 1)
	assert.Equal(t, "classify", f.failed[0].Stage)
}

func TestRunner_UnknownEmployerFails(t *testing.T) {

	f := newRunnerFixture(t)
	bus := EventBus.New()
	runner := NewRunner(&stubEmployers{err: errors.New("employer not found")},
		func(models.Employer) (adapters.SourceAdapter, error) { return f.adapter, nil },
		f.resolver, f.gate, f.announcer, bus, t.TempDir())

	_, err := runner.Execute(context.Background(), "ghost", adapters.Options{})
	assert.Error(t, err)
	assert.Equal(t, 0, f.gate.calls)
}

func TestRunner_AdapterConstructionFailureIsScrapeFatal(t *testing.T) {

	f := newRunnerFixture(t)
	bus := EventBus.New()
	runner := NewRunner(&stubEmployers{employer: &models.Employer{ID: 1, Slug: "stmarys"}},
		func(models.Employer) (adapters.SourceAdapter, error) { return nil, errors.New("unknown adapter kind") },
		f.resolver, f.gate, f.announcer, bus, t.TempDir())

	_, err := runner.Execute(context.Background(), "stmarys", adapters.Options{})
	assert.ErrorIs(t, err, ErrScrapeFailed)
}
