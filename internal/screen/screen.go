package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rehearse/internal/ui/layout"
)

// Screen is one page of the terminal app.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status in the
// right corner of the header.
type StatusProvider interface {
	Status() string
}

// FocusReporter is implemented by screens that need terminal focus and
// blur events.
type FocusReporter interface {
	WantsFocusEvents() bool
}

// Guarded is implemented by screens that must not be left with esc, such
// as one with work in flight.
type Guarded interface {
	Busy() bool
}
