package normalizer

import (
	"context"
	"errors"
	"time"

	"github.com/medjoblist/pipeline/internal/models"
	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

type jobStore interface {
	Upsert(ctx context.Context, record models.JobRecord) (models.UpsertResult, error)
}

// Result tallies what one resolve pass did against the store.
type Result struct {
	Inserted  int
	Updated   int
	Unchanged int
	Rejected  int
	// UpdatedActiveURLs are already-active jobs whose fields changed; they
	// need re-announcing even though the classifier never touches them.
	UpdatedActiveURLs []string
}

// Resolver normalizes raw listings and applies them to the activation store,
// deciding insert/update/no-op per identity key.
type Resolver struct {
	store jobStore
	seen  *gocache.Cache
}

func NewResolver(store jobStore) *Resolver {
	return &Resolver{
		store: store,
		// Overlapping pages from a paginating source can repeat a listing
		// within one run; the cache keeps those off the store.
		seen: gocache.New(30*time.Minute, time.Hour),
	}
}

// Apply runs every listing through normalization and the store. Rejections
// are logged and counted, never fatal.
func (r *Resolver) Apply(ctx context.Context, employer models.Employer, listings []models.RawListing) (Result, error) {

	// The dedupe guard is per pass; a later run must see the listing again
	// to detect content changes.
	r.seen.Flush()

	var result Result

	for _, listing := range listings {
		record, err := Normalize(employer, listing)
		if err != nil {
			var rejection *Rejection
			if errors.As(err, &rejection) {
				log.Warnf("normalization rejected listing: %v", rejection)
				result.Rejected++
				continue
			}
			return result, err
		}

		if _, dup := r.seen.Get(record.IdentityKey); dup {
			continue
		}
		r.seen.SetDefault(record.IdentityKey, struct{}{})

		upserted, err := r.store.Upsert(ctx, record)
		if err != nil {
			return result, err
		}

		switch upserted.Outcome {
		case models.OutcomeInserted:
			result.Inserted++
		case models.OutcomeUpdated:
			result.Updated++
			if upserted.Record.LifecycleState == models.StateActive {
				result.UpdatedActiveURLs = append(result.UpdatedActiveURLs, upserted.Record.SourceURL)
			}
		case models.OutcomeUnchanged:
			result.Unchanged++
		}
	}

	return result, nil
}
