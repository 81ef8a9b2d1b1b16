package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_HappyPath(t *testing.T) {

	path := []Event{EventStart, EventScrapeOK, EventClassify, EventClassifyOK, EventAnnounce, EventAnnounced}

	state := ScrapePending
	for _, event := range path {
		next, err := Transition(state, event)
		require.NoError(t, err, "%v on %v", event, state)
		state = next
	}

	assert.Equal(t, Done, state)
	assert.True(t, IsTerminal(state))
	assert.False(t, IsFailure(state))
}

func TestTransition_NothingToAnnounce(t *testing.T) {

	state, err := Transition(ClassifySucceeded, EventSkipAnnounce)
	require.NoError(t, err)
	assert.Equal(t, Done, state)
}

func TestTransition_FailureStatesAreTerminal(t *testing.T) {

	scrapeFailed, err := Transition(Scraping, EventScrapeError)
	require.NoError(t, err)
	assert.Equal(t, ScrapeFailed, scrapeFailed)
	assert.True(t, IsTerminal(scrapeFailed))
	assert.True(t, IsFailure(scrapeFailed))

	classifyFailed, err := Transition(Classifying, EventClassifyError)
	require.NoError(t, err)
	assert.Equal(t, ClassifyFailed, classifyFailed)
	assert.True(t, IsTerminal(classifyFailed))
	assert.True(t, IsFailure(classifyFailed))
}

func TestTransition_NoPathFromScrapeFailureToClassify(t *testing.T) {

	// A failed scrape can never reach the classifier, not even by replaying
	// events out of order.
	_, err := Transition(ScrapeFailed, EventClassify)
	assert.Error(t, err)

	_, err = Transition(Scraping, EventClassify)
	assert.Error(t, err)
}

func TestRun_ApplyTracksState(t *testing.T) {

	run := NewRun("stmarys", t.TempDir())
	assert.Equal(t, ScrapePending, run.State)

	require.NoError(t, run.Apply(EventStart))
	assert.Equal(t, Scraping, run.State)

	err := run.Apply(EventAnnounced)
	assert.Error(t, err)
	assert.Equal(t, Scraping, run.State)
}
