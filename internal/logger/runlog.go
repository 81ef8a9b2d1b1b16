package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// StageLog is a per-stage, per-run log sink: a dedicated file plus a bounded
// tail kept in memory for failure notifications.
type StageLog struct {
	Logger *log.Logger
	file   *os.File
	tail   *tailWriter
}

// OpenStageLog creates logs/<employer>/<runID>-<stage>.log and a logger
// writing to it. Every stage writes its own detailed log independent of the
// run summary.
func OpenStageLog(dir, employer, runID, stage string) (*StageLog, error) {

	stageDir := filepath.Join(dir, employer)
	if err := os.MkdirAll(stageDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(stageDir, fmt.Sprintf("%s-%s.log", runID, stage))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open stage log file: %w", err)
	}

	tail := newTailWriter(20)

	stageLogger := log.New()
	stageLogger.SetOutput(io.MultiWriter(file, tail))
	stageLogger.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	stageLogger.SetLevel(log.StandardLogger().GetLevel())

	return &StageLog{Logger: stageLogger, file: file, tail: tail}, nil
}

// Tail returns the last lines written, for inclusion in failure alerts.
func (s *StageLog) Tail() string {
	return s.tail.String()
}

func (s *StageLog) Close() {
	if s.file != nil {
		_ = s.file.Close()
	}
}

// PurgeOldLogs removes stage log files older than the retention window.
// Called after each successful run.
func PurgeOldLogs(dir string, retention time.Duration) (int, error) {

	cutoff := time.Now().Add(-retention)
	removed := 0

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".log") {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})

	return removed, err
}

// tailWriter keeps the last maxLines lines written through it.
type tailWriter struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	partial  string
}

func newTailWriter(maxLines int) *tailWriter {
	return &tailWriter{maxLines: maxLines}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	text := w.partial + string(p)
	parts := strings.Split(text, "\n")
	w.partial = parts[len(parts)-1]

	for _, line := range parts[:len(parts)-1] {
		w.lines = append(w.lines, line)
	}
	if len(w.lines) > w.maxLines {
		w.lines = w.lines[len(w.lines)-w.maxLines:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return strings.Join(w.lines, "\n")
}
