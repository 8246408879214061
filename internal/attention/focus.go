package attention

import (
	"context"
	"sync"
)

// Focus treats terminal focus as presence: a focused window is a visible
// face, a blurred one is absence.
type Focus struct {
	passthrough

	mu      sync.Mutex
	focused bool
	closed  bool
}

// NewFocus creates a Focus source with the given initial focus.
func NewFocus(focused bool) *Focus {
	return &Focus{focused: focused}
}

// SetFocused records a focus or blur.
func (f *Focus) SetFocused(focused bool) {
	f.mu.Lock()
	f.focused = focused
	f.mu.Unlock()
}

func (f *Focus) LoadModels(context.Context) error { return nil }

func (f *Focus) Open(context.Context) error { return nil }

func (f *Focus) Frame(context.Context) (Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.focused {
		return Frame{Faces: present()}, nil
	}
	return Frame{}, nil
}

func (f *Focus) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Closed reports whether the monitor released the source.
func (f *Focus) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
