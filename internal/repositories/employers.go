package repositories

import (
	"context"

	"github.com/medjoblist/pipeline/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Employers struct {
	db *gorm.DB
}

func NewEmployersRepository(db *gorm.DB) *Employers {
	return &Employers{db: db}
}

func (r *Employers) GetBySlug(ctx context.Context, slug string) (*models.Employer, error) {
	var employer models.Employer
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&employer).Error; err != nil {
		return nil, errors.Wrapf(err, "employer %q", slug)
	}
	return &employer, nil
}

func (r *Employers) List(ctx context.Context) ([]models.Employer, error) {
	var employers []models.Employer
	if err := r.db.WithContext(ctx).Order("slug").Find(&employers).Error; err != nil {
		return nil, err
	}
	return employers, nil
}

// Seed inserts configured employers that are not present yet. Existing rows
// only get display metadata refreshed; identity fields never change.
func (r *Employers) Seed(ctx context.Context, employers []models.Employer) error {
	for _, employer := range employers {
		var existing models.Employer
		err := r.db.WithContext(ctx).Where("slug = ?", employer.Slug).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := r.db.WithContext(ctx).Create(&employer).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if existing.DisplayName != employer.DisplayName {
			err = r.db.WithContext(ctx).Model(&models.Employer{}).
				Where("id = ?", existing.ID).
				Update("display_name", employer.DisplayName).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}
