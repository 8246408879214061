package attention

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Remote is a Camera and Detector fed by a client that runs detection
// itself, such as a browser on the other end of a WebSocket. The client
// reports model loading, camera permission and per-frame detections; the
// monitor samples the latest report on its own schedule. A tick with no
// report since the previous tick counts as absence.
type Remote struct {
	passthrough

	clock  Clock
	models chan error
	perm   chan error

	modelsOnce sync.Once
	permOnce   sync.Once

	mu     sync.Mutex
	latest []Detection
	fresh  bool
	closed bool
}

// NewRemote creates a Remote. A nil clock means the wall clock.
func NewRemote(clock Clock) *Remote {
	if clock == nil {
		clock = RealClock{}
	}
	return &Remote{
		clock:  clock,
		models: make(chan error, 1),
		perm:   make(chan error, 1),
	}
}

// ReportModels records the client's model loading outcome. Only the first
// report counts.
func (r *Remote) ReportModels(err error) {
	r.modelsOnce.Do(func() { r.models <- err })
}

// ReportPermission records the client's camera permission outcome. Only
// the first report counts.
func (r *Remote) ReportPermission(granted bool, reason string) {
	var err error
	if !granted {
		err = ErrPermissionDenied
		if reason != "" {
			err = fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
		}
	}
	r.permOnce.Do(func() { r.perm <- err })
}

// ReportDetections stores the faces found in the client's latest frame.
func (r *Remote) ReportDetections(faces []Detection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.latest = append(r.latest[:0], faces...)
	r.fresh = true
}

func (r *Remote) LoadModels(ctx context.Context) error {
	select {
	case err := <-r.models:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Remote) Open(ctx context.Context) error {
	select {
	case err := <-r.perm:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Remote) Frame(context.Context) (Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Frame{}, errors.New("remote camera closed")
	}
	f := Frame{At: r.clock.Now()}
	if r.fresh {
		f.Faces = append([]Detection(nil), r.latest...)
		r.fresh = false
	}
	return f, nil
}

func (r *Remote) Close() error {
	r.mu.Lock()
	r.closed = true
	r.latest = nil
	r.mu.Unlock()
	return nil
}

// Closed reports whether the monitor released the remote camera.
func (r *Remote) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
