package models

import "time"

// AdapterKind selects the pagination strategy an employer's career site
// requires. Exactly one strategy per source, never mixed.
type AdapterKind string

const (
	AdapterParamPage AdapterKind = "param-page"
	AdapterCursor    AdapterKind = "cursor"
	AdapterIndexed   AdapterKind = "indexed"
)

// Employer binds a career site to its source adapter. Immutable once
// created except for display metadata; never deleted while jobs reference it.
type Employer struct {
	ID          uint   `gorm:"primaryKey"`
	Slug        string `gorm:"uniqueIndex"`
	Name        string
	DisplayName string
	AdapterKind AdapterKind
	BaseURL     string
	CreatedAt   time.Time
}
