package adapters

import (
	"context"
	"fmt"

	"github.com/medjoblist/pipeline/internal/models"
)

// SourceAdapter fetches raw listings from one employer's career site.
// Each implementation encapsulates exactly one pagination strategy.
type SourceAdapter interface {
	FetchListings(ctx context.Context, opts Options) ([]models.RawListing, error)
}

// Options bounds a fetch for test runs and limited backfills. Zero values
// mean unlimited.
type Options struct {
	MaxPages int
	MaxItems int
}

func (o Options) pageLimitReached(page int) bool {
	return o.MaxPages > 0 && page > o.MaxPages
}

func (o Options) itemLimitReached(count int) bool {
	return o.MaxItems > 0 && count >= o.MaxItems
}

func (o Options) truncate(listings []models.RawListing) []models.RawListing {
	if o.MaxItems > 0 && len(listings) > o.MaxItems {
		return listings[:o.MaxItems]
	}
	return listings
}

// FetchError is the run-fatal adapter failure. Structural marks a source
// whose page layout no longer matches expectations, which must fail loudly
// instead of masquerading as an empty result.
type FetchError struct {
	Employer   string
	URL        string
	Structural bool
	Err        error
}

func (e *FetchError) Error() string {
	kind := "fetch"
	if e.Structural {
		kind = "structural"
	}
	return fmt.Sprintf("adapter %s error for %s at %s: %v", kind, e.Employer, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewForEmployer builds the adapter bound to an employer record. The
// orchestrator only ever sees the SourceAdapter contract.
func NewForEmployer(employer models.Employer, fetcher *Fetcher) (SourceAdapter, error) {
	switch employer.AdapterKind {
	case models.AdapterParamPage:
		return NewParamPageAdapter(employer, fetcher), nil
	case models.AdapterCursor:
		return NewCursorAdapter(employer, fetcher), nil
	case models.AdapterIndexed:
		return NewIndexedAdapter(employer, fetcher), nil
	default:
		return nil, fmt.Errorf("unknown adapter kind %q for employer %s", employer.AdapterKind, employer.Slug)
	}
}
