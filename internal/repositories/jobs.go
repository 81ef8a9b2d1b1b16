package repositories

import (
	"context"
	"time"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrGone reports a slug that once existed and was permanently retired.
// Distinct from gorm.ErrRecordNotFound, which means "never existed".
var ErrGone = errors.New("job permanently removed")

// ErrMissingSpecialty guards the activation invariant: no record may turn
// active without a classified specialty.
var ErrMissingSpecialty = errors.New("cannot activate job without specialty")

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (r *Jobs) FindByIdentityKey(ctx context.Context, employerID uint, identityKey string) (*models.JobRecord, error) {
	var record models.JobRecord
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND identity_key = ?", employerID, identityKey).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Upsert applies a normalized record against the store as a single
// read-modify-write transaction per identity key. Existing records keep
// their lifecycle state and classification; only listing-derived fields
// update. Unchanged content is a no-op.
func (r *Jobs) Upsert(ctx context.Context, record models.JobRecord) (models.UpsertResult, error) {

	var result models.UpsertResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var existing models.JobRecord
		err := tx.Where("employer_id = ? AND identity_key = ?", record.EmployerID, record.IdentityKey).
			First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record.LifecycleState = models.StatePending
			if createErr := tx.Create(&record).Error; createErr != nil {
				return createErr
			}
			result = models.UpsertResult{Outcome: models.OutcomeInserted, Record: record}
			return nil
		}
		if err != nil {
			return err
		}

		if existing.ContentEquals(record) {
			result = models.UpsertResult{Outcome: models.OutcomeUnchanged, Record: existing}
			return nil
		}

		// Key collision with differing content from a concurrent run: the
		// later write wins. Should not happen under correct keying.
		if existing.UpdatedAt.After(record.UpdatedAt) && !record.UpdatedAt.IsZero() {
			log.WithField("error_type", "db").
				Warnf("identity conflict on key %v, later write wins", record.IdentityKey)
		}

		updates := map[string]any{
			"title":       record.Title,
			"city":        record.City,
			"state":       record.State,
			"salary_min":  record.SalaryMin,
			"salary_max":  record.SalaryMax,
			"salary_type": record.SalaryType,
			"posted_date": record.PostedDate,
			"source_url":  record.SourceURL,
		}
		if err := tx.Model(&models.JobRecord{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.First(&existing, existing.ID).Error; err != nil {
			return err
		}
		result = models.UpsertResult{Outcome: models.OutcomeUpdated, Record: existing}
		return nil
	})

	return result, err
}

// MarkActive promotes classified jobs to the active state. The specialty
// invariant is enforced here so no caller can publish an unclassified job.
func (r *Jobs) MarkActive(ctx context.Context, ids []uint, classification models.Classification) error {

	if classification.Specialty == "" {
		return ErrMissingSpecialty
	}
	if len(ids) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("id IN ? AND lifecycle_state = ?", ids, models.StatePending).
		Updates(map[string]any{
			"specialty":       classification.Specialty,
			"job_type":        classification.JobType,
			"shift_type":      classification.ShiftType,
			"lifecycle_state": models.StateActive,
		}).Error
}

func (r *Jobs) ListPending(ctx context.Context, employerID uint) ([]models.JobRecord, error) {
	var records []models.JobRecord
	err := r.db.WithContext(ctx).
		Where("employer_id = ? AND lifecycle_state = ?", employerID, models.StatePending).
		Order("id").
		Find(&records).Error
	return records, err
}

// Retire permanently removes a job and leaves a tombstone so lookups can
// answer "gone" definitively.
func (r *Jobs) Retire(ctx context.Context, slug string, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.JobRecord{}).
			Where("slug = ?", slug).
			Update("lifecycle_state", models.StateDeleted).Error; err != nil {
			return err
		}
		return tx.Create(&models.DeletedJobTombstone{
			Slug:      slug,
			Reason:    reason,
			CreatedAt: time.Now(),
		}).Error
	})
}

func (r *Jobs) CreateTombstone(ctx context.Context, slug string, reason string) error {
	return r.db.WithContext(ctx).Create(&models.DeletedJobTombstone{
		Slug:      slug,
		Reason:    reason,
		CreatedAt: time.Now(),
	}).Error
}

// LookupSlug resolves a public job slug. Tombstones take precedence over
// any remaining row: once a slug is retired the answer is ErrGone, never
// the stale record and never a bare "not found".
func (r *Jobs) LookupSlug(ctx context.Context, slug string) (*models.JobRecord, error) {

	var tombstone models.DeletedJobTombstone
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tombstone).Error
	if err == nil {
		return nil, ErrGone
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var record models.JobRecord
	err = r.db.WithContext(ctx).
		Where("slug = ? AND lifecycle_state = ?", slug, models.StateActive).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
