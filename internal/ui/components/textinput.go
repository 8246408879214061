package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rehearse/internal/ui/theme"
)

// TextField is a labelled single-line input.
type TextField struct {
	Label string
	Model textinput.Model
}

// NewTextField creates an unfocused field. limit caps the rune count when
// positive.
func NewTextField(label, placeholder string, limit int) TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextField{Label: label, Model: ti}
}

// Suggest enables inline completion from options. tab accepts the
// suggestion; ctrl+n and ctrl+p cycle so that up and down stay free for
// moving between fields.
func (t *TextField) Suggest(options []string) {
	t.Model.SetSuggestions(options)
	t.Model.ShowSuggestions = true
	t.Model.KeyMap.NextSuggestion = key.NewBinding(key.WithKeys("ctrl+n"))
	t.Model.KeyMap.PrevSuggestion = key.NewBinding(key.WithKeys("ctrl+p"))
}

// Suggesting reports whether a completion is currently offered.
func (t TextField) Suggesting() bool {
	return t.Model.ShowSuggestions && t.Model.CurrentSuggestion() != "" &&
		t.Model.CurrentSuggestion() != t.Model.Value()
}

// Focus gives the field the cursor.
func (t *TextField) Focus() tea.Cmd { return t.Model.Focus() }

// Blur takes the cursor away.
func (t *TextField) Blur() { t.Model.Blur() }

// Update handles messages.
func (t TextField) Update(msg tea.Msg) (TextField, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label and the input.
func (t TextField) View(focused bool) string {
	label := theme.Label.Render(t.Label)
	if focused {
		label = theme.Selected.Render("▸ " + t.Label)
	}
	return label + "\n  " + t.Model.View()
}

// Value returns the trimmed input value.
func (t TextField) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetValue replaces the input value.
func (t *TextField) SetValue(s string) { t.Model.SetValue(s) }
