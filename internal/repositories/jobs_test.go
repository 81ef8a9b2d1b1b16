package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDb(t *testing.T) *DbContext {
	t.Helper()

	dbContext, err := NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())

	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext
}

func pendingRecord(employerID uint, externalID string) models.JobRecord {
	posted := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	key := models.IdentityKey("stmarys", externalID, "", "", time.Time{})
	return models.JobRecord{
		IdentityKey:    key,
		Slug:           "icu-nurse-austin-" + key[:8],
		EmployerID:     employerID,
		Title:          "ICU Nurse",
		City:           "Austin",
		State:          "TX",
		SalaryMin:      38.5,
		SalaryMax:      52,
		SalaryType:     models.SalaryHourly,
		PostedDate:     posted,
		SourceURL:      "https://careers.example.com/jobs/" + externalID,
		LifecycleState: models.StatePending,
	}
}

func TestJobs_UpsertIsIdempotent(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	first, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeInserted, first.Outcome)

	second, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUnchanged, second.Outcome)
	assert.Equal(t, first.Record.ID, second.Record.ID)
}

func TestJobs_UpsertUpdatesContentButKeepsLifecycle(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	inserted, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)

	classification := models.Classification{Specialty: "ICU", JobType: "full-time", ShiftType: "night"}
	require.NoError(t, jobs.MarkActive(ctx, []uint{inserted.Record.ID}, classification))

	changed := pendingRecord(1, "req-1")
	changed.Title = "Senior ICU Nurse"
	changed.SalaryMax = 58

	updated, err := jobs.Upsert(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeUpdated, updated.Outcome)
	assert.Equal(t, "Senior ICU Nurse", updated.Record.Title)
	// Re-ingestion never demotes an active job or wipes its classification.
	assert.Equal(t, models.StateActive, updated.Record.LifecycleState)
	assert.Equal(t, "ICU", updated.Record.Specialty)
	assert.Equal(t, "night", updated.Record.ShiftType)
}

func TestJobs_MarkActiveRequiresSpecialty(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	inserted, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)

	err = jobs.MarkActive(ctx, []uint{inserted.Record.ID}, models.Classification{JobType: "full-time"})
	assert.ErrorIs(t, err, ErrMissingSpecialty)

	pending, err := jobs.ListPending(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestJobs_MarkActiveOnlyPromotesPending(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	inserted, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)

	require.NoError(t, jobs.Retire(ctx, inserted.Record.Slug, "employer removed posting"))
	require.NoError(t, jobs.MarkActive(ctx, []uint{inserted.Record.ID}, models.Classification{Specialty: "ICU"}))

	record, err := jobs.FindByIdentityKey(ctx, 1, inserted.Record.IdentityKey)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, models.StateDeleted, record.LifecycleState)
}

func TestJobs_ListPendingScopedToEmployer(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	_, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)
	_, err = jobs.Upsert(ctx, pendingRecord(2, "req-2"))
	require.NoError(t, err)

	pending, err := jobs.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint(1), pending[0].EmployerID)
}

func TestJobs_LookupSlugTombstoneWins(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)
	ctx := context.Background()

	inserted, err := jobs.Upsert(ctx, pendingRecord(1, "req-1"))
	require.NoError(t, err)
	require.NoError(t, jobs.MarkActive(ctx, []uint{inserted.Record.ID}, models.Classification{Specialty: "ICU"}))

	record, err := jobs.LookupSlug(ctx, inserted.Record.Slug)
	require.NoError(t, err)
	assert.Equal(t, inserted.Record.ID, record.ID)

	require.NoError(t, jobs.Retire(ctx, inserted.Record.Slug, "employer removed posting"))

	_, err = jobs.LookupSlug(ctx, inserted.Record.Slug)
	assert.ErrorIs(t, err, ErrGone)
}

func TestJobs_LookupSlugNeverSeen(t *testing.T) {

	jobs := NewJobsRepository(newTestDb(t).DB)

	_, err := jobs.LookupSlug(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEmployers_SeedIsIdempotent(t *testing.T) {

	dbContext := newTestDb(t)
	employers := NewEmployersRepository(dbContext.DB)
	ctx := context.Background()

	seed := []models.Employer{{
		Slug:        "stmarys",
		Name:        "St. Mary's Health System",
		DisplayName: "St. Mary's",
		AdapterKind: models.AdapterParamPage,
		BaseURL:     "https://careers.stmarys.example.com/api/jobs",
	}}

	require.NoError(t, employers.Seed(ctx, seed))

	seed[0].DisplayName = "St. Mary's Health"
	require.NoError(t, employers.Seed(ctx, seed))

	all, err := employers.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "St. Mary's Health", all[0].DisplayName)

	found, err := employers.GetBySlug(ctx, "stmarys")
	require.NoError(t, err)
	assert.Equal(t, all[0].ID, found.ID)

	_, err = employers.GetBySlug(ctx, "unknown")
	assert.Error(t, err)
}
