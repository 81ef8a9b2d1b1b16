package models

import "time"

// RunRecord is the per-execution summary used for notifications and the
// rolling summary log. It is never persisted to the database.
type RunRecord struct {
	RunID            string
	EmployerSlug     string
	StartedAt        time.Time
	FinishedAt       time.Time
	ScrapeOK         bool
	ClassifyOK       bool
	JobsFound        int
	Inserted         int
	Updated          int
	Unchanged        int
	Rejected         int
	Classified       int
	ClassifyFailed   int
	EstimatedCostUSD float64
}
