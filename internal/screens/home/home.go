package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rehearse/internal/router"
	"github.com/abhisek/rehearse/internal/screen"
	"github.com/abhisek/rehearse/internal/screens/history"
	"github.com/abhisek/rehearse/internal/screens/setup"
	"github.com/abhisek/rehearse/internal/store"
	"github.com/abhisek/rehearse/internal/ui/components"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

// statsMsg carries the saved-session summary shown under the title.
type statsMsg struct {
	count int
	avg   float64
	best  float64
	err   error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps  setup.Deps
	menu  components.Menu
	stats statsMsg
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen. deps are handed on to the screens it opens.
func New(deps setup.Deps) *HomeScreen {
	items := []components.MenuItem{
		{Label: "START REHEARSAL", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: setup.New(deps)}
			}
		}, Disabled: deps.Interviews == nil},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(deps.Sessions, deps.UserID)}
			}
		}, Disabled: deps.Sessions == nil},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	return &HomeScreen{deps: deps, menu: components.NewMenu(items)}
}

// Init reloads the stats; the router calls it again when the stack unwinds
// to home.
func (h *HomeScreen) Init() tea.Cmd {
	repo, user := h.deps.Sessions, h.deps.UserID
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := repo.ListSessions(context.Background(), user)
		if err != nil {
			return statsMsg{err: err}
		}
		return summarize(list)
	}
}

func summarize(list []store.SessionSummary) statsMsg {
	s := statsMsg{count: len(list)}
	if len(list) == 0 {
		return s
	}
	var sum float64
	for _, it := range list {
		sum += it.TotalScore
		if it.TotalScore > s.best {
			s.best = it.TotalScore
		}
	}
	s.avg = sum / float64(len(list))
	return s
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsMsg); ok {
		h.stats = m
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 60 {
		cw = 60
	}

	title := theme.Title.Width(cw).Render("R E H E A R S E")
	sub := theme.Subtitle.Width(cw).Render("Practice interviews with AI feedback")

	sections := []string{
		title + "\n" + sub,
		components.Card(h.renderStats(), cw),
		components.Card(h.menu.View(), cw),
	}
	return components.Center(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) renderStats() string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch {
	case h.stats.err != nil:
		return theme.ErrorText.Render("Could not load history")
	case h.stats.count == 0:
		return dim.Render("No rehearsals yet")
	}
	return fmt.Sprintf("%s %d   %s %s   %s %s",
		dim.Render("Sessions"), h.stats.count,
		dim.Render("Average"), theme.ScoreStyle(h.stats.avg).Render(fmt.Sprintf("%.1f", h.stats.avg)),
		dim.Render("Best"), theme.ScoreStyle(h.stats.best).Render(fmt.Sprintf("%.1f", h.stats.best)),
	)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
