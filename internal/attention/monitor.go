package attention

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/metrics"
)

// SignalKind identifies a monitor notification.
type SignalKind int

const (
	SignalState SignalKind = iota
	SignalReady
	SignalWarning
	SignalTerminated
	SignalFailed
)

func (k SignalKind) String() string {
	switch k {
	case SignalState:
		return "state"
	case SignalReady:
		return "ready"
	case SignalWarning:
		return "warning"
	case SignalTerminated:
		return "terminated"
	case SignalFailed:
		return "failed"
	}
	return "unknown"
}

// Signal is published by a running Monitor.
type Signal struct {
	Kind      SignalKind
	State     State
	Warnings  int
	Max       int
	DismissAt time.Time
	Err       error
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithReadyFunc registers a callback fired at most once, when the
// readiness latch is set. It runs on the monitor goroutine.
func WithReadyFunc(f func()) Option {
	return func(m *Monitor) { m.onReady = f }
}

// WithBuffer sets the signal channel capacity.
func WithBuffer(n int) Option {
	return func(m *Monitor) { m.buffer = n }
}

// Monitor runs a Machine against a camera and detector. One goroutine owns
// the machine, the sample ticker, the look-away timer and the camera.
type Monitor struct {
	cfg     Config
	det     Detector
	cam     Camera
	clock   Clock
	logger  *zap.Logger
	onReady func()
	buffer  int

	machine *Machine
	signals chan Signal
	started atomic.Bool

	ticker    Ticker
	timer     Timer
	timerGen  uint64
	camClosed bool
	lastState State

	// stepped, when set, receives after startup and after every handled
	// tick or timer.
	stepped chan struct{}
}

// NewMonitor creates a monitor. Run starts it.
func NewMonitor(cfg Config, det Detector, cam Camera, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:    cfg.withDefaults(),
		det:    det,
		cam:    cam,
		clock:  RealClock{},
		logger: zap.NewNop(),
		buffer: 16,
	}
	for _, o := range opts {
		o(m)
	}
	m.machine = NewMachine(m.cfg)
	m.signals = make(chan Signal, m.buffer)
	return m
}

// Signals returns the notification channel. It is closed when Run returns.
func (m *Monitor) Signals() <-chan Signal { return m.signals }

// Config returns the effective settings.
func (m *Monitor) Config() Config { return m.cfg }

// Run loads the models, opens the camera and samples until the context is
// cancelled or the interview is terminated. It returns nil on
// cancellation, ErrTerminated after MaxWarnings and an *InitError when the
// monitor cannot start. The camera is closed exactly once on every path.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("attention: monitor already started")
	}
	defer close(m.signals)
	defer m.releaseCamera()

	metrics.ActiveMonitors.Inc()
	defer metrics.ActiveMonitors.Dec()

	if err := m.start(ctx); err != nil {
		return err
	}
	m.step()

	for {
		var tickC, timerC <-chan time.Time
		if m.ticker != nil {
			tickC = m.ticker.C()
		}
		if m.timer != nil {
			timerC = m.timer.C()
		}

		select {
		case <-ctx.Done():
			m.apply(ctx, Stop{})
			return nil
		case now := <-tickC:
			m.tick(ctx, now)
		case now := <-timerC:
			m.timer = nil
			m.apply(ctx, TimerFired{Gen: m.timerGen, At: now})
		}
		m.step()

		if m.machine.Terminated() {
			return ErrTerminated
		}
	}
}

func (m *Monitor) start(ctx context.Context) error {
	m.publish(ctx, Signal{Kind: SignalState, State: StateInitializing, Max: m.cfg.MaxWarnings})

	if err := m.det.LoadModels(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return m.fail(ctx, newInitError(ReasonModels, ErrModelsUnavailable, err))
	}
	if err := m.cam.Open(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return m.fail(ctx, newInitError(ReasonCamera, ErrPermissionDenied, err))
	}

	m.ticker = m.clock.NewTicker(m.cfg.SampleInterval)
	m.apply(ctx, ModelsLoaded{})
	return nil
}

func (m *Monitor) fail(ctx context.Context, err *InitError) error {
	m.apply(ctx, InitFailed{Err: err})
	return err
}

func (m *Monitor) tick(ctx context.Context, now time.Time) {
	frame, err := m.cam.Frame(ctx)
	if err != nil {
		m.logger.Debug("frame capture failed", zap.Error(err))
		return
	}
	faces, err := m.det.DetectFaces(ctx, frame)
	if err != nil {
		m.logger.Warn("face detection failed", zap.Error(err))
		return
	}
	m.apply(ctx, Sample{Faces: faces, At: now})
}

func (m *Monitor) apply(ctx context.Context, ev Event) {
	for _, eff := range m.machine.Apply(ev) {
		m.execute(ctx, eff)
	}
	if s := m.machine.State(); s != m.lastState {
		m.lastState = s
		m.publish(ctx, Signal{
			Kind:     SignalState,
			State:    s,
			Warnings: m.machine.Warnings(),
			Max:      m.cfg.MaxWarnings,
		})
	}
}

func (m *Monitor) execute(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case ArmTimer:
		m.stopTimer()
		m.timer = m.clock.NewTimer(e.After)
		m.timerGen = e.Gen

	case CancelTimer:
		m.stopTimer()

	case StopSampling:
		if m.ticker != nil {
			m.ticker.Stop()
			m.ticker = nil
		}

	case ReleaseCamera:
		m.releaseCamera()

	case EmitReady:
		m.logger.Info("candidate in view, monitor ready")
		if m.onReady != nil {
			m.onReady()
		}
		m.publish(ctx, Signal{Kind: SignalReady, State: m.machine.State(), Max: m.cfg.MaxWarnings})

	case EmitWarning:
		metrics.AttentionWarnings.Inc()
		m.logger.Warn("look-away warning", zap.Int("count", e.Count), zap.Int("max", e.Max))
		m.publish(ctx, Signal{
			Kind:      SignalWarning,
			State:     m.machine.State(),
			Warnings:  e.Count,
			Max:       e.Max,
			DismissAt: e.DismissAt,
		})

	case EmitTerminated:
		metrics.AttentionTerminations.Inc()
		m.logger.Warn("interview terminated by attention monitor", zap.Int("warnings", m.machine.Warnings()))
		m.publish(ctx, Signal{
			Kind:     SignalTerminated,
			State:    StateTerminated,
			Warnings: m.machine.Warnings(),
			Max:      m.cfg.MaxWarnings,
		})

	case EmitFailed:
		reason := "unknown"
		var ie *InitError
		if errors.As(e.Err, &ie) {
			reason = ie.Reason
		}
		metrics.AttentionInitFailures.WithLabelValues(reason).Inc()
		m.logger.Warn("attention monitor failed to start", zap.String("reason", reason), zap.Error(e.Err))
		m.publish(ctx, Signal{Kind: SignalFailed, State: StateFailed, Max: m.cfg.MaxWarnings, Err: e.Err})
	}
}

func (m *Monitor) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// releaseCamera closes the camera once, whether or not Open succeeded.
func (m *Monitor) releaseCamera() {
	if m.camClosed {
		return
	}
	m.camClosed = true
	if err := m.cam.Close(); err != nil {
		m.logger.Debug("camera close failed", zap.Error(err))
	}
}

func (m *Monitor) publish(ctx context.Context, s Signal) {
	select {
	case m.signals <- s:
	case <-ctx.Done():
	}
}

func (m *Monitor) step() {
	if m.stepped != nil {
		m.stepped <- struct{}{}
	}
}
