// Package results renders scored interviews, both right after submission
// and from history.
package results

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rehearse/internal/feedback"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/questions"
	"github.com/abhisek/rehearse/internal/router"
	"github.com/abhisek/rehearse/internal/screen"
	"github.com/abhisek/rehearse/internal/store"
	"github.com/abhisek/rehearse/internal/ui/components"
	"github.com/abhisek/rehearse/internal/ui/layout"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

// Item is one question with its answer and feedback. Entry is nil when the
// question was not scored.
type Item struct {
	Question string
	Answer   string
	Entry    *feedback.ScoreEntry
}

// Summary is a scored interview ready to render.
type Summary struct {
	Items      []Item
	Overall    *feedback.OverallScore
	TotalScore float64
}

// FromScores pairs questions, answers and scores in question order.
func FromScores(qs []questions.Question, answers map[string]string, scores map[string]feedback.ScoreEntry, overall *feedback.OverallScore, total float64) Summary {
	s := Summary{Overall: overall, TotalScore: total}
	for _, q := range qs {
		it := Item{Question: q.Text, Answer: answers[q.ID]}
		if e, ok := scores[q.ID]; ok {
			it.Entry = &e
		}
		s.Items = append(s.Items, it)
	}
	return s
}

// FromOutcome builds a summary from a successful submission.
func FromOutcome(qs []questions.Question, answers map[string]string, out *interview.Outcome) Summary {
	return FromScores(qs, answers, out.Scores, out.Overall, out.TotalScore)
}

// FromPersistence builds a summary from scores that were not saved.
func FromPersistence(qs []questions.Question, answers map[string]string, err *interview.PersistenceError) Summary {
	return FromScores(qs, answers, err.Scores, err.Overall, err.TotalScore)
}

// FromSession builds a summary from a saved session. Overall data that
// cannot be decoded is left out.
func FromSession(sess *store.Session) Summary {
	s := Summary{TotalScore: sess.TotalScore}
	if len(sess.Overall) > 0 {
		if o, err := feedback.DecodeOverall(sess.Overall); err == nil {
			s.Overall = o
		}
	}
	for _, r := range sess.Responses {
		it := Item{Question: r.Question, Answer: r.Answer}
		if r.Score != nil {
			e := feedback.ScoreEntry{
				Score:          *r.Score,
				Strengths:      r.Strengths,
				AreasToImprove: r.AreasToImprove,
			}
			if r.Feedback != nil {
				e.Feedback = *r.Feedback
			}
			it.Entry = &e
		}
		s.Items = append(s.Items, it)
	}
	return s
}

// Render lays the summary out at width w.
func Render(s Summary, w int) string {
	var b strings.Builder

	b.WriteString(components.NewScoreBar("Overall", s.TotalScore, w).View())
	b.WriteString("\n\n")

	if o := s.Overall; o != nil {
		if o.GeneralFeedback != "" {
			b.WriteString(wrap(o.GeneralFeedback, w))
			b.WriteString("\n\n")
		}
		b.WriteString(bullets("Key strengths", o.KeyStrengths, theme.Good, w))
		b.WriteString(bullets("Development areas", o.DevelopmentAreas, theme.Fair, w))
		if o.HiringRecommendation != "" {
			b.WriteString(theme.Label.Render("Recommendation"))
			b.WriteString("\n")
			b.WriteString(wrap(o.HiringRecommendation, w))
			b.WriteString("\n\n")
		}
	}

	rule := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", w))
	for i, it := range s.Items {
		b.WriteString(rule)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Width(w).
			Render(fmt.Sprintf("Q%d. %s", i+1, it.Question)))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(w).Render(it.Answer))
		b.WriteString("\n\n")
		if it.Entry == nil {
			b.WriteString(theme.Hint.Render("Not scored"))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(components.NewScoreBar("Score", it.Entry.Score, w).View())
		b.WriteString("\n\n")
		if it.Entry.Feedback != "" {
			b.WriteString(wrap(it.Entry.Feedback, w))
			b.WriteString("\n\n")
		}
		b.WriteString(bullets("Strengths", it.Entry.Strengths, theme.Good, w))
		b.WriteString(bullets("To improve", it.Entry.AreasToImprove, theme.Fair, w))
	}
	return strings.TrimRight(b.String(), "\n")
}

func wrap(text string, w int) string {
	return lipgloss.NewStyle().Foreground(theme.Text).Width(w).Render(text)
}

func bullets(title string, items []string, style lipgloss.Style, w int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(style.Render(title))
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(w).Render("  • " + it))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// ResultsScreen shows a freshly scored interview.
type ResultsScreen struct {
	summary Summary
	saveErr error
	vp      viewport.Model
}

var _ screen.Screen = (*ResultsScreen)(nil)

// New creates the screen. saveErr is set when the session was scored but
// not stored.
func New(summary Summary, saveErr error) *ResultsScreen {
	return &ResultsScreen{summary: summary, saveErr: saveErr, vp: viewport.New()}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Home"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return s, cmd
}

func (s *ResultsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var top string
	if s.saveErr != nil {
		top = theme.ErrorText.Width(cw).Render("Your answers were scored but could not be saved to history.") + "\n\n"
	}

	s.vp.SetWidth(cw)
	s.vp.SetHeight(height - lipgloss.Height(top) - 2)
	s.vp.SetContent(Render(s.summary, cw))

	return lipgloss.NewStyle().Padding(1, 2).Render(top + s.vp.View())
}
