package attention

// State is the coarse monitor state.
type State int

const (
	StateInitializing State = iota
	StateFocused
	StateLookingAway
	StateTerminated
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateFocused:
		return "focused"
	case StateLookingAway:
		return "looking_away"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Machine is the headless attention state machine. It performs no I/O and
// reads no clock; every input arrives as an Event and every consequence
// leaves as an Effect. It is not safe for concurrent use.
type Machine struct {
	cfg Config

	modelsReady  bool
	sampled      bool
	faceVisible  bool
	lookingAway  bool
	warningCount int
	terminated   bool
	ready        bool
	stopped      bool
	failed       error

	gen uint64
}

// NewMachine creates a Machine in the Initializing state.
func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg.withDefaults()}
}

// Apply feeds one event through the machine. Once terminated, failed or
// stopped, the machine ignores everything.
func (m *Machine) Apply(ev Event) []Effect {
	if m.terminated || m.stopped || m.failed != nil {
		return nil
	}

	switch e := ev.(type) {
	case ModelsLoaded:
		m.modelsReady = true
		return m.latchReady(nil)

	case InitFailed:
		m.failed = e.Err
		if m.failed == nil {
			m.failed = ErrModelsUnavailable
		}
		return []Effect{EmitFailed{Err: m.failed}, StopSampling{}, ReleaseCamera{}}

	case Sample:
		if !m.modelsReady {
			return nil
		}
		return m.sample(e)

	case TimerFired:
		return m.timerFired(e)

	case Stop:
		m.stopped = true
		return []Effect{CancelTimer{}, StopSampling{}, ReleaseCamera{}}
	}
	return nil
}

func (m *Machine) sample(e Sample) []Effect {
	m.sampled = true
	m.faceVisible = m.anyFace(e.Faces)

	var out []Effect
	switch {
	case !m.faceVisible && !m.lookingAway:
		m.lookingAway = true
		m.gen++
		out = append(out, ArmTimer{Gen: m.gen, After: m.cfg.LookAwayThreshold})
	case m.faceVisible && m.lookingAway:
		m.lookingAway = false
		m.gen++
		out = append(out, CancelTimer{})
	}
	return m.latchReady(out)
}

func (m *Machine) timerFired(e TimerFired) []Effect {
	if e.Gen != m.gen || !m.lookingAway {
		return nil
	}

	m.warningCount++
	m.lookingAway = false
	m.gen++

	out := []Effect{EmitWarning{
		Count:     m.warningCount,
		Max:       m.cfg.MaxWarnings,
		DismissAt: e.At.Add(m.cfg.WarningDisplay),
	}}

	if m.warningCount >= m.cfg.MaxWarnings {
		m.terminated = true
		out = append(out, CancelTimer{}, StopSampling{}, ReleaseCamera{}, EmitTerminated{})
	}
	return out
}

func (m *Machine) anyFace(faces []Detection) bool {
	for _, f := range faces {
		if f.Score >= m.cfg.ScoreThreshold {
			return true
		}
	}
	return false
}

// latchReady sets the readiness latch the first time the models are ready
// and a face is in view.
func (m *Machine) latchReady(out []Effect) []Effect {
	if m.ready || !m.modelsReady || !m.faceVisible || m.lookingAway {
		return out
	}
	m.ready = true
	return append(out, EmitReady{})
}

// State reports the coarse state.
func (m *Machine) State() State {
	switch {
	case m.failed != nil:
		return StateFailed
	case m.terminated:
		return StateTerminated
	case m.stopped:
		return StateStopped
	case !m.modelsReady || !m.sampled:
		return StateInitializing
	case m.lookingAway:
		return StateLookingAway
	}
	return StateFocused
}

// Warnings returns the number of warnings issued.
func (m *Machine) Warnings() int { return m.warningCount }

// MaxWarnings returns the termination threshold.
func (m *Machine) MaxWarnings() int { return m.cfg.MaxWarnings }

// Ready reports whether the readiness latch has been set.
func (m *Machine) Ready() bool { return m.ready }

// Terminated reports whether the interview was ended.
func (m *Machine) Terminated() bool { return m.terminated }

// Err returns the startup failure, if any.
func (m *Machine) Err() error { return m.failed }

// FaceVisible reports the latest classification.
func (m *Machine) FaceVisible() bool { return m.faceVisible }
