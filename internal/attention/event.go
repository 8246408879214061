package attention

import "time"

// Event is an input to the Machine.
type Event interface{ isEvent() }

// ModelsLoaded reports that detection models are ready and the camera is
// open.
type ModelsLoaded struct{}

// InitFailed reports a blocking startup failure.
type InitFailed struct{ Err error }

// Sample is one presence classification.
type Sample struct {
	Faces []Detection
	At    time.Time
}

// TimerFired reports that the look-away timer armed with Gen elapsed.
type TimerFired struct {
	Gen uint64
	At  time.Time
}

// Stop tears the session down without a verdict.
type Stop struct{}

func (ModelsLoaded) isEvent() {}
func (InitFailed) isEvent()   {}
func (Sample) isEvent()       {}
func (TimerFired) isEvent()   {}
func (Stop) isEvent()         {}

// Effect is an instruction from the Machine to its runner.
type Effect interface{ isEffect() }

// ArmTimer starts the look-away timer, replacing any running one.
type ArmTimer struct {
	Gen   uint64
	After time.Duration
}

// CancelTimer stops the look-away timer.
type CancelTimer struct{}

// EmitReady announces the readiness latch.
type EmitReady struct{}

// EmitWarning announces a look-away warning.
type EmitWarning struct {
	Count     int
	Max       int
	DismissAt time.Time
}

// EmitTerminated announces the end of the interview.
type EmitTerminated struct{}

// EmitFailed announces a startup failure.
type EmitFailed struct{ Err error }

// StopSampling stops the sample ticker.
type StopSampling struct{}

// ReleaseCamera closes the camera.
type ReleaseCamera struct{}

func (ArmTimer) isEffect()       {}
func (CancelTimer) isEffect()    {}
func (EmitReady) isEffect()      {}
func (EmitWarning) isEffect()    {}
func (EmitTerminated) isEffect() {}
func (EmitFailed) isEffect()     {}
func (StopSampling) isEffect()   {}
func (ReleaseCamera) isEffect()  {}
