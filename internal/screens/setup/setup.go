// Package setup is the screen where a rehearsal is configured and its
// questions are generated.
package setup

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/router"
	"github.com/abhisek/rehearse/internal/screen"
	interviewscreen "github.com/abhisek/rehearse/internal/screens/interview"
	"github.com/abhisek/rehearse/internal/store"
	"github.com/abhisek/rehearse/internal/ui/components"
	"github.com/abhisek/rehearse/internal/ui/layout"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

// Deps are the services the rehearsal screens run on.
type Deps struct {
	Interviews *interview.Service
	Sessions   store.SessionRepo
	Catalog    questions.Catalog
	Attention  attention.Config
	UserID     string
	Logger     *zap.Logger

	// GenerateTimeout bounds question generation. Zero means no limit.
	GenerateTimeout time.Duration
}

type field int

const (
	fieldRole field = iota
	fieldLevel
	fieldIndustry
	fieldCompany
	fieldStart
	fieldCount
)

// startedMsg reports the outcome of question generation.
type startedMsg struct {
	draft *interview.Draft
	err   error
}

// SetupScreen collects the job role, level, industry and company.
type SetupScreen struct {
	deps     Deps
	role     components.TextField
	level    components.Picker
	industry components.Picker
	company  components.TextField
	focus    field

	loading bool
	spin    spinner.Model
	errMsg  string
}

var _ screen.Screen = (*SetupScreen)(nil)

// New creates the setup screen.
func New(deps Deps) *SetupScreen {
	role := components.NewTextField("Job role", "e.g. Software Engineer", 100)
	role.Suggest(deps.Catalog.Roles)
	return &SetupScreen{
		deps:     deps,
		role:     role,
		level:    components.NewPicker("Experience level", deps.Catalog.Levels, questions.DefaultLevel),
		industry: components.NewPicker("Industry", deps.Catalog.Industries, questions.DefaultIndustry),
		company:  components.NewTextField("Company (optional)", "e.g. Acme Corp", 100),
		spin:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary))),
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.role.Focus()
}

func (s *SetupScreen) Title() string {
	return "New Rehearsal"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	hints := []layout.KeyHint{
		{Key: "↑/↓", Description: "Field"},
	}
	switch s.focus {
	case fieldRole:
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Complete"})
	case fieldLevel, fieldIndustry:
		hints = append(hints, layout.KeyHint{Key: "←/→", Description: "Change"})
	}
	return append(hints,
		layout.KeyHint{Key: "Enter", Description: "Next / Start"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

// Busy keeps esc from leaving while questions are generated.
func (s *SetupScreen) Busy() bool { return s.loading }

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		s.loading = false
		if msg.err != nil {
			s.errMsg = describe(msg.err)
			return s, s.focusField(fieldRole)
		}
		next := interviewscreen.New(interviewscreen.Options{
			Interviews: s.deps.Interviews,
			Draft:      msg.draft,
			Attention:  s.deps.Attention,
			Logger:     s.deps.Logger,
		})
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, s.updateFocused(msg)
}

func (s *SetupScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "down":
		return s, s.focusField((s.focus + 1) % fieldCount)
	case "up", "shift+tab":
		return s, s.focusField((s.focus + fieldCount - 1) % fieldCount)
	case "tab":
		if s.focus == fieldRole && s.role.Suggesting() {
			break
		}
		return s, s.focusField((s.focus + 1) % fieldCount)
	case "enter":
		if s.focus == fieldStart || s.focus == fieldCompany {
			return s, s.start()
		}
		return s, s.focusField(s.focus + 1)
	}
	return s, s.updateFocused(msg)
}

func (s *SetupScreen) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.focus {
	case fieldRole:
		s.role, cmd = s.role.Update(msg)
	case fieldLevel:
		s.level, cmd = s.level.Update(msg)
	case fieldIndustry:
		s.industry, cmd = s.industry.Update(msg)
	case fieldCompany:
		s.company, cmd = s.company.Update(msg)
	}
	return cmd
}

func (s *SetupScreen) focusField(f field) tea.Cmd {
	s.role.Blur()
	s.company.Blur()
	s.focus = f
	switch f {
	case fieldRole:
		return s.role.Focus()
	case fieldCompany:
		return s.company.Focus()
	}
	return nil
}

func (s *SetupScreen) start() tea.Cmd {
	if _, err := questions.ValidateRole(s.role.Value()); err != nil {
		s.errMsg = err.Error()
		return s.focusField(fieldRole)
	}
	s.errMsg = ""
	s.loading = true

	svc := s.deps.Interviews
	timeout := s.deps.GenerateTimeout
	in := interview.StartInput{
		UserID:          s.deps.UserID,
		JobRole:         s.role.Value(),
		ExperienceLevel: s.level.Value(),
		Industry:        s.industry.Value(),
		Company:         s.company.Value(),
	}
	generate := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		d, err := svc.Start(ctx, in)
		return startedMsg{draft: d, err: err}
	}
	return tea.Batch(s.spin.Tick, generate)
}

// describe turns a start failure into the message shown under the form.
func describe(err error) string {
	switch {
	case errors.Is(err, questions.ErrEmptyRole), errors.Is(err, questions.ErrUnparseable):
		return err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Question generation timed out. Please try again."
	}
	return "Failed to generate questions: " + err.Error()
}

func (s *SetupScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 70 {
		cw = 70
	}

	if s.loading {
		msg := s.spin.View() + " Generating questions for " + theme.Label.Render(s.role.Value()) + "..."
		return components.Center(msg, width, height)
	}

	var b strings.Builder
	b.WriteString(s.role.View(s.focus == fieldRole))
	b.WriteString("\n\n")
	b.WriteString(s.level.View(s.focus == fieldLevel))
	b.WriteString("\n\n")
	b.WriteString(s.industry.View(s.focus == fieldIndustry))
	b.WriteString("\n\n")
	b.WriteString(s.company.View(s.focus == fieldCompany))
	b.WriteString("\n\n")
	b.WriteString(components.Button("Generate questions", s.focus == fieldStart))
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	}

	return components.Center(components.Card(b.String(), cw), width, height)
}
