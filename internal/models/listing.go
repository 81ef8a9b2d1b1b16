package models

import "time"

// RawListing is what a source adapter emits: the upstream fields as close to
// verbatim as the source allows, before any normalization.
type RawListing struct {
	ExternalID string
	Title      string
	Location   string
	Department string
	SalaryText string
	PostedDate time.Time
	SourceURL  string
}
