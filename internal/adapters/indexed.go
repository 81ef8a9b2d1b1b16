package adapters

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/medjoblist/pipeline/internal/models"
	log "github.com/sirupsen/logrus"
)

const pageLinkSelector = ".pagination a"

// IndexedAdapter handles sources that render discrete numbered page links.
// It reads the page numbers off the first page and visits each in ascending
// order; there is no higher page than the largest link rendered.
type IndexedAdapter struct {
	employer models.Employer
	fetcher  *Fetcher
}

func NewIndexedAdapter(employer models.Employer, fetcher *Fetcher) *IndexedAdapter {
	return &IndexedAdapter{employer: employer, fetcher: fetcher}
}

func (a *IndexedAdapter) FetchListings(ctx context.Context, opts Options) ([]models.RawListing, error) {

	firstURL := a.employer.BaseURL
	body, err := a.fetcher.Get(ctx, firstURL)
	if err != nil {
		return nil, &FetchError{Employer: a.employer.Slug, URL: firstURL, Err: err}
	}

	all, doc, err := parseListingPage(a.employer, firstURL, body)
	if err != nil {
		return nil, err
	}

	pages := a.collectPageURLs(doc, firstURL)
	for i, pageURL := range pages {
		// Page 1 is already parsed; numbered links start at page 2.
		pageNum := i + 2
		if opts.pageLimitReached(pageNum) || opts.itemLimitReached(len(all)) {
			break
		}

		body, err := a.fetcher.Get(ctx, pageURL)
		if err != nil {
			return nil, &FetchError{Employer: a.employer.Slug, URL: pageURL, Err: err}
		}

		listings, _, err := parseListingPage(a.employer, pageURL, body)
		if err != nil {
			return nil, err
		}
		all = append(all, listings...)
	}

	log.Debugf("indexed adapter fetched %v listings for %v", len(all), a.employer.Slug)
	return opts.truncate(all), nil
}

// collectPageURLs returns the URLs of numbered page links beyond page 1,
// sorted ascending by page number. Duplicate numbers (top and bottom
// pagination bars) collapse to one visit.
func (a *IndexedAdapter) collectPageURLs(doc *goquery.Document, currentURL string) []string {

	type pageLink struct {
		num int
		url string
	}
	seen := map[int]bool{}
	var links []pageLink

	doc.Find(pageLinkSelector).Each(func(_ int, link *goquery.Selection) {
		num, err := strconv.Atoi(strings.TrimSpace(link.Text()))
		if err != nil || num <= 1 || seen[num] {
			return
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		seen[num] = true
		links = append(links, pageLink{num: num, url: resolveURL(currentURL, href)})
	})

	sort.Slice(links, func(i, j int) bool { return links[i].num < links[j].num })

	urls := make([]string, len(links))
	for i, l := range links {
		urls[i] = l.url
	}
	return urls
}
