package interview

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/ui/components"
	"github.com/abhisek/rehearse/internal/ui/theme"
)

func (s *InterviewScreen) View(width, height int) string {
	if s.terminated {
		msg := theme.Poor.Render("Interview terminated") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Width(components.ContentWidth(width)-4).Render(attention.TerminatedMessage)
		return components.Center(components.Card(msg, components.ContentWidth(width)), width, height)
	}
	if s.submitting {
		return components.Center(s.spin.View()+" Scoring your answers...", width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	b.WriteString(s.renderInfoLine(cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n\n")

	q := s.draft.Questions[s.idx]
	b.WriteString(lipgloss.NewStyle().
		Width(cw).
		Foreground(theme.Text).
		Bold(true).
		Render(q.Text))
	b.WriteString("\n\n")
	b.WriteString(s.box.View())
	b.WriteString("\n")

	if s.warning != nil {
		b.WriteString("\n")
		b.WriteString(renderWarning(*s.warning, cw))
	} else if !s.ready && s.monitorErr == nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Keep this window focused while you answer."))
	}
	if s.monitorErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Attention monitoring is off: " + s.monitorErr.Error()))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorText.Width(cw).Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (s *InterviewScreen) renderInfoLine(cw int) string {
	left := theme.Label.Render(fmt.Sprintf("%s · %s", s.draft.JobRole, s.draft.ExperienceLevel))

	answered := 0
	for _, q := range s.draft.Questions {
		if strings.TrimSpace(s.answers[q.ID]) != "" {
			answered++
		}
	}
	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(
		"Q %d/%d   answered %d", s.idx+1, len(s.draft.Questions), answered))

	gap := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderWarning(sig attention.Signal, cw int) string {
	text := fmt.Sprintf("⚠ Please look at the screen. Warning %d of %d.", sig.Warnings, sig.Max)
	return lipgloss.NewStyle().
		Width(cw).
		Foreground(theme.BgDark).
		Background(theme.Warning).
		Bold(true).
		Padding(0, 1).
		Render(text)
}
