// Package interview is the screen where the questions are answered under
// the attention monitor.
package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/router"
	"github.com/abhisek/rehearse/internal/screen"
	"github.com/abhisek/rehearse/internal/screens/results"
	"github.com/abhisek/rehearse/internal/ui/components"
	"github.com/abhisek/rehearse/internal/ui/layout"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

// Options configures the screen.
type Options struct {
	Interviews *interview.Service
	Draft      *interview.Draft
	Attention  attention.Config
	Logger     *zap.Logger

	// Clock drives the monitor. Nil means the wall clock.
	Clock attention.Clock
}

// InterviewScreen shows one question at a time with an answer editor.
type InterviewScreen struct {
	svc    *interview.Service
	draft  *interview.Draft
	logger *zap.Logger

	idx     int
	answers map[string]string
	box     components.AnswerBox

	presence *attention.Focus
	monitor  *attention.Monitor
	cancel   context.CancelFunc
	done     chan error

	attState   attention.State
	ready      bool
	warning    *attention.Signal
	warnings   int
	terminated bool
	monitorErr error

	submitting bool
	spin       spinner.Model
	errMsg     string
}

var _ screen.Screen = (*InterviewScreen)(nil)

// New creates the screen for a freshly generated draft.
func New(opts Options) *InterviewScreen {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := opts.Clock
	if clock == nil {
		clock = attention.RealClock{}
	}

	presence := attention.NewFocus(true)
	s := &InterviewScreen{
		svc:      opts.Interviews,
		draft:    opts.Draft,
		logger:   logger.With(zap.String("draft_id", opts.Draft.ID)),
		answers:  make(map[string]string, len(opts.Draft.Questions)),
		box:      components.NewAnswerBox(70, 8),
		presence: presence,
		monitor: attention.NewMonitor(opts.Attention, presence, presence,
			attention.WithClock(clock), attention.WithLogger(logger)),
		spin: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
	}
	for k, v := range opts.Draft.Answers {
		s.answers[k] = v
	}
	s.loadAnswer()
	return s
}

// Init starts the attention monitor.
func (s *InterviewScreen) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.done = make(chan error, 1)
	go func() { s.done <- s.monitor.Run(ctx) }()

	return tea.Batch(s.box.Model.Focus(), waitSignal(s.monitor.Signals(), s.done))
}

// waitSignal blocks for the next monitor notification.
func waitSignal(ch <-chan attention.Signal, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		sig, ok := <-ch
		if !ok {
			return monitorDoneMsg{Err: <-done}
		}
		return signalMsg(sig)
	}
}

func (s *InterviewScreen) Title() string {
	return "Interview"
}

// WantsFocusEvents turns on terminal focus reporting; focus stands in for
// a visible face.
func (s *InterviewScreen) WantsFocusEvents() bool { return !s.terminated }

// Busy keeps esc from dropping a running rehearsal.
func (s *InterviewScreen) Busy() bool { return !s.terminated }

func (s *InterviewScreen) KeyHints() []layout.KeyHint {
	if s.terminated {
		return []layout.KeyHint{{Key: "Enter", Description: "Home"}}
	}
	if s.submitting {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Ctrl+S", Description: "Submit"},
		{Key: "Ctrl+Q", Description: "Abandon"},
	}
}

// Status summarises the monitor for the header.
func (s *InterviewScreen) Status() string {
	switch {
	case s.monitorErr != nil:
		return "◌ monitor off"
	case s.terminated:
		return "■ terminated"
	case !s.ready:
		return "◌ starting"
	case s.attState == attention.StateLookingAway:
		return "▲ looking away"
	}
	if s.warnings > 0 {
		return fmt.Sprintf("● focused  ⚠ %d/%d", s.warnings, s.monitor.Config().MaxWarnings)
	}
	return "● focused"
}

func (s *InterviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		s.presence.SetFocused(true)
		return s, nil
	case tea.BlurMsg:
		s.presence.SetFocused(false)
		return s, nil

	case signalMsg:
		return s, tea.Batch(s.handleSignal(attention.Signal(msg)), waitSignal(s.monitor.Signals(), s.done))

	case monitorDoneMsg:
		s.handleMonitorDone(msg.Err)
		return s, nil

	case dismissMsg:
		if s.warning != nil && !s.warning.DismissAt.After(msg.At) {
			s.warning = nil
		}
		return s, nil

	case savedMsg:
		if msg.Err != nil {
			s.errMsg = "Could not save answer: " + msg.Err.Error()
		}
		return s, nil

	case submittedMsg:
		return s.handleSubmitted(msg)

	case abandonedMsg:
		return s, nil

	case spinner.TickMsg:
		if !s.submitting {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.WindowSizeMsg:
		w := components.ContentWidth(msg.Width) - 6
		h := layout.ContentHeight(msg.Height) - 12
		if h < 3 {
			h = 3
		}
		s.box.Resize(w, h)
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.box, cmd = s.box.Update(msg)
	return s, cmd
}

func (s *InterviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.terminated {
		if msg.String() == "enter" {
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
		return s, nil
	}
	if s.submitting {
		return s, nil
	}

	switch msg.String() {
	case "tab":
		return s, s.move(1)
	case "shift+tab":
		return s, s.move(-1)
	case "ctrl+s":
		return s, s.submit()
	case "ctrl+q":
		s.stopMonitor()
		abandon := s.abandon("user")
		return s, tea.Sequence(abandon, func() tea.Msg { return router.PopToRootMsg{} })
	}

	var cmd tea.Cmd
	s.box, cmd = s.box.Update(msg)
	return s, cmd
}

// move stores the current answer and shows the question delta away.
func (s *InterviewScreen) move(delta int) tea.Cmd {
	save := s.storeAnswer()
	next := s.idx + delta
	if next < 0 || next >= len(s.draft.Questions) {
		return save
	}
	s.idx = next
	s.loadAnswer()
	return save
}

// storeAnswer copies the editor into the answer map and persists it when
// it changed.
func (s *InterviewScreen) storeAnswer() tea.Cmd {
	q := s.draft.Questions[s.idx]
	text := s.box.Value()
	if s.answers[q.ID] == text {
		return nil
	}
	s.answers[q.ID] = text

	svc, id := s.svc, s.draft.ID
	return func() tea.Msg {
		_, err := svc.Answer(context.Background(), id, q.ID, text)
		return savedMsg{Err: err}
	}
}

func (s *InterviewScreen) loadAnswer() {
	s.box.SetValue(s.answers[s.draft.Questions[s.idx].ID])
}

func (s *InterviewScreen) submit() tea.Cmd {
	q := s.draft.Questions[s.idx]
	s.answers[q.ID] = s.box.Value()

	s.errMsg = ""
	s.submitting = true

	svc, id := s.svc, s.draft.ID
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	order := s.draft.Questions
	run := func() tea.Msg {
		ctx := context.Background()
		for _, q := range order {
			if _, err := svc.Answer(ctx, id, q.ID, answers[q.ID]); err != nil {
				return submittedMsg{Err: err}
			}
		}
		out, err := svc.Submit(ctx, id)
		return submittedMsg{Outcome: out, Err: err}
	}
	return tea.Batch(s.spin.Tick, run)
}

func (s *InterviewScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false

	var unanswered *interview.UnansweredError
	var scoring *interview.ScoringError
	var persist *interview.PersistenceError
	switch {
	case msg.Err == nil:
		s.stopMonitor()
		next := results.New(results.FromOutcome(s.draft.Questions, s.answers, msg.Outcome), nil)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case errors.As(msg.Err, &persist):
		s.stopMonitor()
		next := results.New(results.FromPersistence(s.draft.Questions, s.answers, persist), persist)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
	case errors.As(msg.Err, &unanswered):
		s.errMsg = unanswered.Error()
	case errors.As(msg.Err, &scoring):
		s.errMsg = scoring.Error() + " Press Ctrl+S to retry."
	case errors.Is(msg.Err, interview.ErrDraftNotFound):
		s.errMsg = "This interview has expired. Press Ctrl+Q to return home."
	default:
		s.errMsg = "Failed to submit: " + msg.Err.Error()
	}
	return s, nil
}

func (s *InterviewScreen) handleSignal(sig attention.Signal) tea.Cmd {
	s.attState = sig.State
	switch sig.Kind {
	case attention.SignalReady:
		s.ready = true
	case attention.SignalWarning:
		s.warnings = sig.Warnings
		w := sig
		s.warning = &w
		wait := time.Until(sig.DismissAt)
		if wait < 0 {
			wait = 0
		}
		at := sig.DismissAt
		return tea.Tick(wait, func(time.Time) tea.Msg { return dismissMsg{At: at} })
	case attention.SignalTerminated:
		s.terminated = true
		s.warning = nil
		s.presence.SetFocused(false)
		s.logger.Warn("rehearsal terminated by attention monitor", zap.Int("warnings", sig.Warnings))
		return s.abandon("attention")
	case attention.SignalFailed:
		s.monitorErr = sig.Err
	}
	return nil
}

func (s *InterviewScreen) handleMonitorDone(err error) {
	var initErr *attention.InitError
	switch {
	case err == nil, errors.Is(err, attention.ErrTerminated):
	case errors.As(err, &initErr):
		s.monitorErr = err
		s.logger.Warn("attention monitor unavailable", zap.Error(err))
	default:
		s.monitorErr = err
		s.logger.Error("attention monitor stopped", zap.Error(err))
	}
}

func (s *InterviewScreen) stopMonitor() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *InterviewScreen) abandon(reason string) tea.Cmd {
	svc, id, logger := s.svc, s.draft.ID, s.logger
	return func() tea.Msg {
		if err := svc.Abandon(context.Background(), id, reason); err != nil && !errors.Is(err, interview.ErrDraftNotFound) {
			logger.Warn("abandon draft failed", zap.Error(err))
		}
		return abandonedMsg{}
	}
}
