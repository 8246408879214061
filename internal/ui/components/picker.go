package components

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rehearse/internal/ui/theme"
)

// Picker cycles through a fixed list of options with left and right.
type Picker struct {
	Label    string
	Options  []string
	Selected int
}

// NewPicker creates a picker positioned on initial when present.
func NewPicker(label string, options []string, initial string) Picker {
	p := Picker{Label: label, Options: options}
	for i, o := range options {
		if o == initial {
			p.Selected = i
			break
		}
	}
	return p
}

// Update handles left/right cycling.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(p.Options) == 0 {
		return p, nil
	}
	switch kmsg.String() {
	case "left", "h":
		p.Selected = (p.Selected - 1 + len(p.Options)) % len(p.Options)
	case "right", "l", "space":
		p.Selected = (p.Selected + 1) % len(p.Options)
	}
	return p, nil
}

// Value returns the selected option, or "" when there are none.
func (p Picker) Value() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected]
}

// View renders the label and the current option between arrows.
func (p Picker) View(focused bool) string {
	label := theme.Label.Render(p.Label)
	value := lipgloss.NewStyle().Foreground(theme.Text).Render(p.Value())
	if focused {
		label = theme.Selected.Render("▸ " + p.Label)
		value = theme.Selected.Render("‹ " + p.Value() + " ›")
	}
	return label + "\n  " + value
}
