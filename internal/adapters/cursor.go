package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/medjoblist/pipeline/internal/models"
	log "github.com/sirupsen/logrus"
)

const nextLinkSelector = "a.next, a[rel=next]"

// CursorAdapter follows the "next" link each page supplies, the way a human
// would click through a next button. It terminates when the link is absent,
// disabled, or points back at a page already visited.
type CursorAdapter struct {
	employer models.Employer
	fetcher  *Fetcher
}

func NewCursorAdapter(employer models.Employer, fetcher *Fetcher) *CursorAdapter {
	return &CursorAdapter{employer: employer, fetcher: fetcher}
}

func (a *CursorAdapter) FetchListings(ctx context.Context, opts Options) ([]models.RawListing, error) {

	var all []models.RawListing
	visited := map[string]bool{}
	pageURL := a.employer.BaseURL

	for page := 1; pageURL != "" && !visited[pageURL]; page++ {
		if opts.pageLimitReached(page) || opts.itemLimitReached(len(all)) {
			break
		}
		visited[pageURL] = true

		body, err := a.fetcher.Get(ctx, pageURL)
		if err != nil {
			return nil, &FetchError{Employer: a.employer.Slug, URL: pageURL, Err: err}
		}

		listings, doc, err := parseListingPage(a.employer, pageURL, body)
		if err != nil {
			return nil, err
		}
		all = append(all, listings...)

		pageURL = a.nextPageURL(doc, pageURL)
	}

	log.Debugf("cursor adapter fetched %v listings for %v", len(all), a.employer.Slug)
	return opts.truncate(all), nil
}

// nextPageURL returns the URL behind the next link, or "" when pagination is
// exhausted. A next reference without an href, or one rendered disabled, is
// treated as the end of the result set.
func (a *CursorAdapter) nextPageURL(doc *goquery.Document, currentURL string) string {

	next := doc.Find(nextLinkSelector).First()
	if next.Length() == 0 {
		return ""
	}

	if class, _ := next.Attr("class"); strings.Contains(class, "disabled") {
		return ""
	}
	if disabled, ok := next.Attr("aria-disabled"); ok && disabled == "true" {
		return ""
	}

	href, ok := next.Attr("href")
	if !ok || strings.TrimSpace(href) == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	return resolveURL(currentURL, href)
}
