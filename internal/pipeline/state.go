package pipeline

import "fmt"

// State is one node of the per-run state machine. Transitions are pure data
// so the failure policy can be tested without touching real adapters.
type State string

const (
	ScrapePending     State = "ScrapePending"
	Scraping          State = "Scraping"
	ScrapeSucceeded   State = "ScrapeSucceeded"
	ScrapeFailed      State = "ScrapeFailed"
	Classifying       State = "Classifying"
	ClassifySucceeded State = "ClassifySucceeded"
	ClassifyFailed    State = "ClassifyFailed"
	Announcing        State = "Announcing"
	Done              State = "Done"
)

type Event string

const (
	EventStart         Event = "start"
	EventScrapeOK      Event = "scrape-ok"
	EventScrapeError   Event = "scrape-error"
	EventClassify      Event = "classify"
	EventClassifyOK    Event = "classify-ok"
	EventClassifyError Event = "classify-error"
	EventAnnounce      Event = "announce"
	EventSkipAnnounce  Event = "skip-announce"
	EventAnnounced     Event = "announced"
)

var transitions = map[State]map[Event]State{
	ScrapePending: {
		EventStart: Scraping,
	},
	Scraping: {
		EventScrapeOK:    ScrapeSucceeded,
		EventScrapeError: ScrapeFailed,
	},
	ScrapeSucceeded: {
		EventClassify: Classifying,
	},
	Classifying: {
		EventClassifyOK:    ClassifySucceeded,
		EventClassifyError: ClassifyFailed,
	},
	ClassifySucceeded: {
		EventAnnounce:     Announcing,
		EventSkipAnnounce: Done,
	},
	Announcing: {
		EventAnnounced: Done,
	},
}

// Transition applies an event to a state. Invalid transitions are
// programming errors and are reported, never silently absorbed.
func Transition(state State, event Event) (State, error) {
	next, ok := transitions[state][event]
	if !ok {
		return state, fmt.Errorf("invalid transition: %v on %v", event, state)
	}
	return next, nil
}

// IsTerminal reports whether no further event applies.
func IsTerminal(state State) bool {
	return len(transitions[state]) == 0
}

// IsFailure reports the two terminal failure states.
func IsFailure(state State) bool {
	return state == ScrapeFailed || state == ClassifyFailed
}
