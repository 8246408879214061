package attention

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the camera could not be opened.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrModelsUnavailable means the face detection models failed to load.
	ErrModelsUnavailable = errors.New("face detection models unavailable")

	// ErrTerminated is returned by Monitor.Run after MaxWarnings.
	ErrTerminated = errors.New(TerminatedMessage)
)

// TerminatedMessage is shown to the candidate when the monitor ends the
// interview.
const TerminatedMessage = "Interview terminated due to too many attention warnings. Please focus during the interview."

// Init failure reasons.
const (
	ReasonModels = "models"
	ReasonCamera = "camera"
)

// InitError is a blocking failure while starting the monitor. It is never
// retried; the interview cannot start.
type InitError struct {
	Reason string
	Err    error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("attention monitor failed to start (%s): %v", e.Reason, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func newInitError(reason string, sentinel, err error) *InitError {
	switch {
	case err == nil:
		err = sentinel
	case !errors.Is(err, sentinel):
		err = fmt.Errorf("%w: %w", sentinel, err)
	}
	return &InitError{Reason: reason, Err: err}
}
