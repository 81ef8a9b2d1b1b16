package adapters

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/medjoblist/pipeline/internal/models"
)

const (
	listContainerSelector = "div.jobs-list, ul.jobs-list"
	listingCardSelector   = ".job-card"
)

// parseListingPage extracts job cards from a listings page. The absence of
// the listing container on an otherwise successful page is a structural
// failure: the source changed its layout and an empty "success" would hide it.
func parseListingPage(employer models.Employer, pageURL string, body []byte) ([]models.RawListing, *goquery.Document, error) {

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, &FetchError{Employer: employer.Slug, URL: pageURL, Err: err}
	}

	container := doc.Find(listContainerSelector)
	if container.Length() == 0 {
		return nil, nil, &FetchError{
			Employer:   employer.Slug,
			URL:        pageURL,
			Structural: true,
			Err:        fmt.Errorf("listing container %q not found", listContainerSelector),
		}
	}

	var listings []models.RawListing
	container.Find(listingCardSelector).Each(func(_ int, card *goquery.Selection) {
		listings = append(listings, listingFromCard(employer, pageURL, card))
	})

	return listings, doc, nil
}

func listingFromCard(employer models.Employer, pageURL string, card *goquery.Selection) models.RawListing {

	titleLink := card.Find("a.job-title").First()
	href, _ := titleLink.Attr("href")

	listing := models.RawListing{
		Title:      strings.TrimSpace(titleLink.Text()),
		Location:   strings.TrimSpace(card.Find(".job-location").First().Text()),
		Department: strings.TrimSpace(card.Find(".job-department").First().Text()),
		SalaryText: strings.TrimSpace(card.Find(".job-salary").First().Text()),
		SourceURL:  resolveURL(pageURL, href),
	}

	if id, ok := card.Attr("data-job-id"); ok {
		listing.ExternalID = strings.TrimSpace(id)
	}

	if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
		if t, err := time.Parse("2006-01-02", datetime); err == nil {
			listing.PostedDate = t
		}
	}

	return listing
}

func resolveURL(pageURL, href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
