package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/medjoblist/pipeline/internal/models"
)

// Rejection is the per-listing, non-fatal normalization failure. The run
// continues; the rejection is logged and counted.
type Rejection struct {
	Listing models.RawListing
	Reason  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("listing rejected (%s): %q from %s", r.Reason, r.Listing.Title, r.Listing.SourceURL)
}

// Normalize maps a raw listing onto the canonical job record. Listings
// missing the minimum required fields come back as a *Rejection.
func Normalize(employer models.Employer, listing models.RawListing) (models.JobRecord, error) {

	title := strings.TrimSpace(listing.Title)
	if title == "" {
		return models.JobRecord{}, &Rejection{Listing: listing, Reason: "missing title"}
	}

	city, state, ok := splitLocation(listing.Location)
	if !ok {
		return models.JobRecord{}, &Rejection{Listing: listing, Reason: "missing or unparseable location"}
	}

	identityKey := models.IdentityKey(employer.Slug, listing.ExternalID, title, listing.Location, listing.PostedDate)

	record := models.JobRecord{
		IdentityKey:    identityKey,
		Slug:           buildSlug(title, city, identityKey),
		EmployerID:     employer.ID,
		Title:          title,
		City:           city,
		State:          state,
		Specialty:      inferSpecialty(listing.Department, title),
		PostedDate:     listing.PostedDate,
		SourceURL:      listing.SourceURL,
		LifecycleState: models.StatePending,
	}

	if salary, ok := parseSalary(listing.SalaryText); ok {
		record.SalaryMin = salary.min
		record.SalaryMax = salary.max
		record.SalaryType = salary.kind
	}

	return record, nil
}

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// buildSlug derives the public URL slug. The identity key suffix keeps
// slugs unique when two employers post the same title in the same city.
func buildSlug(title, city, identityKey string) string {
	base := strings.ToLower(title + " " + city)
	base = strings.Trim(slugInvalidChars.ReplaceAllString(base, "-"), "-")
	return base + "-" + identityKey[:8]
}

// splitLocation breaks "City, ST" style strings apart. A bare city is
// accepted; an empty location is not.
func splitLocation(location string) (city, state string, ok bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", "", false
	}

	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		state = strings.TrimSpace(parts[1])
	}
	if city == "" {
		return "", "", false
	}
	return city, state, true
}
