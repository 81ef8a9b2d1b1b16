package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/medjoblist/pipeline/internal/models"
	log "github.com/sirupsen/logrus"
)

const paramPageSize = 50

// ParamPageAdapter paginates a JSON listings API by incrementing a page
// request parameter. It terminates when a page comes back empty or repeats
// the previous page's content.
type ParamPageAdapter struct {
	employer models.Employer
	fetcher  *Fetcher
}

func NewParamPageAdapter(employer models.Employer, fetcher *Fetcher) *ParamPageAdapter {
	return &ParamPageAdapter{employer: employer, fetcher: fetcher}
}

type listingsResponse struct {
	Jobs []apiListing `json:"jobs"`
}

type apiListing struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Location   string `json:"location"`
	Department string `json:"department"`
	Salary     string `json:"salary"`
	PostedAt   string `json:"posted_at"`
	URL        string `json:"url"`
}

func (a *ParamPageAdapter) FetchListings(ctx context.Context, opts Options) ([]models.RawListing, error) {

	var all []models.RawListing
	var previousFirstID string

	for page := 1; ; page++ {
		if opts.pageLimitReached(page) || opts.itemLimitReached(len(all)) {
			break
		}

		pageURL := a.pageURL(page)
		body, err := a.fetcher.Get(ctx, pageURL)
		if err != nil {
			return nil, &FetchError{Employer: a.employer.Slug, URL: pageURL, Err: err}
		}

		var resp listingsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, &FetchError{
				Employer:   a.employer.Slug,
				URL:        pageURL,
				Structural: true,
				Err:        fmt.Errorf("error decoding listings response: %w", err),
			}
		}

		if len(resp.Jobs) == 0 {
			break
		}
		// Some sources clamp out-of-range pages to the last page instead of
		// returning an empty result; a repeated first id means we ran off the end.
		if resp.Jobs[0].ID == previousFirstID {
			break
		}
		previousFirstID = resp.Jobs[0].ID

		for _, job := range resp.Jobs {
			all = append(all, a.toRawListing(job))
		}
	}

	log.Debugf("param-page adapter fetched %v listings for %v", len(all), a.employer.Slug)
	return opts.truncate(all), nil
}

func (a *ParamPageAdapter) pageURL(page int) string {
	params := url.Values{}
	params.Add("page", strconv.Itoa(page))
	params.Add("per_page", strconv.Itoa(paramPageSize))
	return a.employer.BaseURL + "?" + params.Encode()
}

func (a *ParamPageAdapter) toRawListing(job apiListing) models.RawListing {
	listing := models.RawListing{
		ExternalID: job.ID,
		Title:      job.Title,
		Location:   job.Location,
		Department: job.Department,
		SalaryText: job.Salary,
		SourceURL:  job.URL,
	}
	if job.PostedAt != "" {
		if t, err := time.Parse(time.RFC3339, job.PostedAt); err == nil {
			listing.PostedDate = t
		} else if t, err := time.Parse("2006-01-02", job.PostedAt); err == nil {
			listing.PostedDate = t
		}
	}
	return listing
}
