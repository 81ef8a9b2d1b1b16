package events

import "github.com/medjoblist/pipeline/internal/models"

var (
	RunFinishedTopic = "RunFinishedEvent"
	RunFailedTopic   = "RunFailedEvent"
)

// RunFinished fires once per run reaching Done.
type RunFinished struct {
	Run models.RunRecord
}

// RunFailed fires on every terminal failure state, carrying enough context
// to diagnose without re-running.
type RunFailed struct {
	Run       models.RunRecord
	Stage     string
	Err       string
	LogTail   string
	Host      string
	Timestamp string
}
