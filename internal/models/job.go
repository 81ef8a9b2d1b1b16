package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type LifecycleState string

const (
	StatePending  LifecycleState = "pending-classification"
	StateActive   LifecycleState = "active"
	StateInactive LifecycleState = "inactive"
	StateDeleted  LifecycleState = "deleted"
)

type SalaryType string

const (
	SalaryHourly SalaryType = "hourly"
	SalaryAnnual SalaryType = "annual"
)

// JobRecord is the canonical job row. A record becomes visible to end users
// only in the active state, and only the classification gate moves it there.
type JobRecord struct {
	ID             uint   `gorm:"primaryKey"`
	IdentityKey    string `gorm:"uniqueIndex:idx_employer_identity;size:32"`
	EmployerID     uint   `gorm:"uniqueIndex:idx_employer_identity"`
	Slug           string `gorm:"index"`
	Title          string
	City           string
	State          string
	Specialty      string
	JobType        string
	ShiftType      string
	SalaryMin      float64
	SalaryMax      float64
	SalaryType     SalaryType
	PostedDate     time.Time
	SourceURL      string
	LifecycleState LifecycleState `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Classification holds the fields a successful classifier call assigns.
type Classification struct {
	Specialty string
	JobType   string
	ShiftType string
}

// DeletedJobTombstone marks a permanently retired job so lookups can answer
// a definitive "gone" instead of an ambiguous "not found".
type DeletedJobTombstone struct {
	ID        uint   `gorm:"primaryKey"`
	Slug      string `gorm:"uniqueIndex"`
	Reason    string
	CreatedAt time.Time
}

// IdentityKey derives the stable per-employer key used for duplicate
// detection across repeated runs. The external id wins when the source
// provides one; otherwise the key falls back to title+location+posted date.
func IdentityKey(employerSlug, externalID, title, location string, posted time.Time) string {
	var material string
	if externalID != "" {
		material = employerSlug + "|" + externalID
	} else {
		material = employerSlug + "|" + title + "|" + location + "|" + posted.Format("2006-01-02")
	}
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:16])
}

// ContentEquals reports whether the mutable listing-derived fields match.
// Lifecycle and classification fields are deliberately excluded: they belong
// to the store, not to the upstream listing.
func (j JobRecord) ContentEquals(other JobRecord) bool {
	return j.Title == other.Title &&
		j.City == other.City &&
		j.State == other.State &&
		j.SalaryMin == other.SalaryMin &&
		j.SalaryMax == other.SalaryMax &&
		j.SalaryType == other.SalaryType &&
		j.PostedDate.Equal(other.PostedDate) &&
		j.SourceURL == other.SourceURL
}
