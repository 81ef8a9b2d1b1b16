package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/medjoblist/pipeline/internal/logger"
	"github.com/medjoblist/pipeline/internal/models"
	log "github.com/sirupsen/logrus"
)

// Run carries everything one pipeline execution needs: identity, counters
// and per-stage log sinks. It is passed explicitly through every stage so
// there is no ambient run state.
type Run struct {
	Record models.RunRecord
	State  State

	logDir    string
	stageLogs map[string]*logger.StageLog
}

func NewRun(employerSlug string, logDir string) *Run {
	return &Run{
		Record: models.RunRecord{
			RunID:        newRunID(),
			EmployerSlug: employerSlug,
			StartedAt:    time.Now(),
		},
		State:     ScrapePending,
		logDir:    logDir,
		stageLogs: map[string]*logger.StageLog{},
	}
}

// Apply moves the state machine; an invalid transition is a bug and panics
// in tests but is surfaced as an error to the runner.
func (r *Run) Apply(event Event) error {
	next, err := Transition(r.State, event)
	if err != nil {
		return err
	}
	r.State = next
	return nil
}

// StageLogger opens (once) and returns the dedicated logger for a stage.
// Falls back to the process logger when the file cannot be opened, so a
// full disk never kills a run by itself.
func (r *Run) StageLogger(stage string) *log.Logger {
	if stageLog, ok := r.stageLogs[stage]; ok {
		return stageLog.Logger
	}

	stageLog, err := logger.OpenStageLog(r.logDir, r.Record.EmployerSlug, r.Record.RunID, stage)
	if err != nil {
		log.Errorf("failed to open %v stage log: %v", stage, err)
		return log.StandardLogger()
	}
	r.stageLogs[stage] = stageLog
	return stageLog.Logger
}

// LogTail collects the tail of every stage log for failure notifications.
func (r *Run) LogTail() string {
	var tail string
	for _, stageLog := range r.stageLogs {
		tail += stageLog.Tail() + "\n"
	}
	return tail
}

func (r *Run) CloseLogs() {
	for _, stageLog := range r.stageLogs {
		stageLog.Close()
	}
}

func newRunID() string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return time.Now().UTC().Format("20060102-150405") + "-" + hex.EncodeToString(suffix)
}
