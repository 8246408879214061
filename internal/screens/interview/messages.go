package interview

import (
	"time"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/interview"
)

// signalMsg relays a monitor notification.
type signalMsg attention.Signal

// monitorDoneMsg is sent once the monitor's signal channel is closed.
type monitorDoneMsg struct {
	Err error
}

// dismissMsg clears the warning banner shown at or before At.
type dismissMsg struct {
	At time.Time
}

// savedMsg confirms an answer was stored on the draft.
type savedMsg struct {
	Err error
}

// submittedMsg carries the scoring outcome.
type submittedMsg struct {
	Outcome *interview.Outcome
	Err     error
}

// abandonedMsg is sent after the draft was discarded.
type abandonedMsg struct{}
