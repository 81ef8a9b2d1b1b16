package classifier

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAiClient struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     int
}

func (m *mockAiClient) GenerateResponse(_ context.Context, request string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	for needle, response := range m.responses {
		if strings.Contains(request, needle) {
			return response, nil
		}
	}
	return `{"specialty": "ICU", "job_type": "full-time", "shift_type": "day"}`, nil
}

type mockJobStore struct {
	mu        sync.Mutex
	pending   []models.JobRecord
	activated map[uint]models.Classification
	listErr   error
	markErr   error
}

func (m *mockJobStore) ListPending(_ context.Context, _ uint) ([]models.JobRecord, error) {
	return m.pending, m.listErr
}

func (m *mockJobStore) MarkActive(_ context.Context, ids []uint, classification models.Classification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	if m.activated == nil {
		m.activated = map[uint]models.Classification{}
	}
	for _, id := range ids {
		m.activated[id] = classification
	}
	return nil
}

func pendingJobs(n int) []models.JobRecord {
	jobs := make([]models.JobRecord, n)
	for i := range jobs {
		jobs[i] = models.JobRecord{
			ID:             uint(i + 1),
			Title:          "ICU Nurse",
			City:           "Austin",
			State:          "TX",
			SourceURL:      "https://careers.example.com/jobs/" + string(rune('a'+i)),
			LifecycleState: models.StatePending,
		}
	}
	return jobs
}

func TestGate_ActivatesClassifiedJobs(t *testing.T) {

	ai := &mockAiClient{}
	store := &mockJobStore{pending: pendingJobs(5)}

	gate := NewGate(ai, store, 0.0004)
	result, err := gate.ClassifyPending(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 5, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 5, result.Calls)
	assert.InDelta(t, 0.002, result.CostEstimate, 1e-9)
	assert.Len(t, result.ActivatedURLs, 5)
	assert.Len(t, store.activated, 5)
	assert.Equal(t, "ICU", store.activated[1].Specialty)
}

func TestGate_ContainsPerJobFailures(t *testing.T) {

	ai := &mockAiClient{responses: map[string]string{
		// One job draws a reply outside the vocabulary.
		"Rocket Surgeon": `{"specialty": "Rocketry"}`,
	}}

	pending := pendingJobs(3)
	pending[1].Title = "Rocket Surgeon"
	store := &mockJobStore{pending: pending}

	gate := NewGate(ai, store, 0.0004)
	result, err := gate.ClassifyPending(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Calls)
	// The failed job is never activated; it stays pending for the next run.
	assert.Len(t, store.activated, 2)
	assert.NotContains(t, store.activated, uint(2))
}

func TestGate_ListFailureIsFatal(t *testing.T) {

	store := &mockJobStore{listErr: errors.New("db locked")}

	_, err := NewGate(&mockAiClient{}, store, 0).ClassifyPending(context.Background(), 1)
	assert.Error(t, err)
}

func TestGate_ActivationFailureCountsAsFailed(t *testing.T) {

	store := &mockJobStore{pending: pendingJobs(2), markErr: errors.New("db locked")}

	result, err := NewGate(&mockAiClient{}, store, 0).ClassifyPending(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, result.ActivatedURLs)
}

func TestGate_BatchesBoundConcurrency(t *testing.T) {

	ai := &mockAiClient{}
	store := &mockJobStore{pending: pendingJobs(25)}

	gate := NewGate(ai, store, 0.0001)
	gate.SetBatchSize(10)
	gate.SetConcurrency(2)

	result, err := gate.ClassifyPending(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 25, result.Succeeded)
	assert.Equal(t, 25, ai.calls)
}
