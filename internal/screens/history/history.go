package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rehearse/internal/screen"
	"github.com/abhisek/rehearse/internal/screens/results"
	"github.com/abhisek/rehearse/internal/store"
	"github.com/abhisek/rehearse/internal/ui/layout"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type sessionLoadedMsg struct {
	Session *store.Session
	Err     error
}

type sessionDeletedMsg struct {
	ID  string
	Err error
}

// HistoryScreen lists saved sessions, opens one in detail and deletes.
type HistoryScreen struct {
	repo     store.SessionRepo
	userID   string
	sessions []store.SessionSummary
	selected int
	loaded   bool
	errMsg   string

	confirming bool
	detail     *store.Session
	vp         viewport.Model
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen for one user's sessions.
func New(repo store.SessionRepo, userID string) *HistoryScreen {
	return &HistoryScreen{repo: repo, userID: userID, vp: viewport.New()}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, user := s.repo, s.userID
	return func() tea.Msg {
		list, err := repo.ListSessions(context.Background(), user)
		return historyLoadedMsg{Sessions: list, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	if s.detail != nil {
		return "History · " + s.detail.JobRole
	}
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirming:
		return []layout.KeyHint{
			{Key: "y", Description: "Delete"},
			{Key: "n", Description: "Keep"},
		}
	case s.detail != nil:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "Esc", Description: "List"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "d", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

// Busy keeps esc inside the screen while a detail or prompt is open.
func (s *HistoryScreen) Busy() bool {
	return s.confirming || s.detail != nil
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.errMsg = ""
		}
		s.loaded = true
		if s.selected >= len(s.sessions) {
			s.selected = max(len(s.sessions)-1, 0)
		}
		return s, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		s.detail = msg.Session
		s.vp.SetYOffset(0)
		return s, nil

	case sessionDeletedMsg:
		if msg.Err != nil && !errors.Is(msg.Err, store.ErrNotFound) {
			s.errMsg = "Delete failed: " + msg.Err.Error()
			return s, nil
		}
		return s, s.Init()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.detail != nil {
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HistoryScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.confirming {
		s.confirming = false
		if msg.String() == "y" && s.selected < len(s.sessions) {
			return s, s.delete(s.sessions[s.selected].ID)
		}
		return s, nil
	}

	if s.detail != nil {
		if msg.String() == "esc" {
			s.detail = nil
			return s, nil
		}
		var cmd tea.Cmd
		s.vp, cmd = s.vp.Update(msg)
		return s, cmd
	}

	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.sessions)-1 {
			s.selected++
		}
	case "enter":
		if s.selected < len(s.sessions) {
			return s, s.open(s.sessions[s.selected].ID)
		}
	case "d", "delete":
		if s.selected < len(s.sessions) {
			s.confirming = true
		}
	}
	return s, nil
}

func (s *HistoryScreen) open(id string) tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		sess, err := repo.GetSession(context.Background(), id)
		return sessionLoadedMsg{Session: sess, Err: err}
	}
}

func (s *HistoryScreen) delete(id string) tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		return sessionDeletedMsg{ID: id, Err: repo.DeleteSession(context.Background(), id)}
	}
}

func describe(err error) string {
	if errors.Is(err, store.ErrNotFound) {
		return "Interview session not found"
	}
	return err.Error()
}

func (s *HistoryScreen) View(width, height int) string {
	if s.detail != nil {
		return s.renderDetail(width, height)
	}
	if s.errMsg != "" && !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No rehearsals yet. Start one from the home screen!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-28s  %d questions  ",
			prefix, sess.CreatedAt.Local().Format("Jan 02, 2006 15:04"), truncate(sess.JobRole, 28), sess.QuestionCount)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		score := theme.ScoreStyle(sess.TotalScore).Render(fmt.Sprintf("%4.1f", sess.TotalScore))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)+score))
		b.WriteString("\n")
	}

	if s.confirming {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Fair.Render("Delete this session? (y/n)")))
	} else if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.ErrorText.Render(s.errMsg)))
	}
	return b.String()
}

func (s *HistoryScreen) renderDetail(width, height int) string {
	cw := width - 8
	if cw > 90 {
		cw = 90
	}
	d := s.detail
	head := theme.Label.Render(fmt.Sprintf("%s · %s · %s", d.JobRole, d.ExperienceLevel, d.Industry))
	if d.Company != "" {
		head += theme.Hint.Render("  at " + d.Company)
	}
	head += "\n" + theme.Hint.Render(d.CreatedAt.Local().Format("Monday, Jan 02 2006 15:04")) + "\n\n"

	s.vp.SetWidth(cw)
	s.vp.SetHeight(height - lipgloss.Height(head) - 2)
	s.vp.SetContent(results.Render(results.FromSession(d), cw))

	return lipgloss.NewStyle().Padding(1, 2).Render(head + s.vp.View())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
