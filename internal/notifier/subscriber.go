package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/medjoblist/pipeline/internal/events"
	log "github.com/sirupsen/logrus"
)

// Subscriber turns run events into alerts. It is the only component that
// talks to the Notifier, so tests can swap in a recording stub.
type Subscriber struct {
	notifier Notifier
}

func NewSubscriber(bus EventBus.Bus, notifier Notifier) (*Subscriber, error) {

	s := &Subscriber{notifier: notifier}

	if err := bus.Subscribe(events.RunFailedTopic, s.onRunFailed); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.RunFinishedTopic, s.onRunFinished); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subscriber) onRunFailed(event events.RunFailed) {

	subject := fmt.Sprintf("[pipeline] run failed: %v (%v)", event.Run.EmployerSlug, event.Stage)

	var body strings.Builder
	fmt.Fprintf(&body, "employer: %v\n", event.Run.EmployerSlug)
	fmt.Fprintf(&body, "run: %v\n", event.Run.RunID)
	fmt.Fprintf(&body, "stage: %v\n", event.Stage)
	fmt.Fprintf(&body, "error: %v\n", event.Err)
	fmt.Fprintf(&body, "host: %v\n", event.Host)
	fmt.Fprintf(&body, "time: %v\n", event.Timestamp)
	if event.LogTail != "" {
		fmt.Fprintf(&body, "\nlog tail:\n%v", event.LogTail)
	}

	s.send(subject, body.String())
}

func (s *Subscriber) onRunFinished(event events.RunFinished) {

	run := event.Run
	subject := fmt.Sprintf("[pipeline] run finished: %v", run.EmployerSlug)

	body := fmt.Sprintf(
		"found %v listings: %v inserted, %v updated, %v unchanged, %v rejected\n"+
			"classified %v ok, %v failed, estimated cost $%.4f\n"+
			"duration %v",
		run.JobsFound, run.Inserted, run.Updated, run.Unchanged, run.Rejected,
		run.Classified, run.ClassifyFailed, run.EstimatedCostUSD,
		run.FinishedAt.Sub(run.StartedAt).Round(time.Second))

	s.send(subject, body)
}

// send never lets a notification failure escape.
func (s *Subscriber) send(subject, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendAlert(subject, body); err != nil {
		log.WithField("error_type", "notify").Errorf("failed to send alert %q: %v", subject, err)
	}
}
