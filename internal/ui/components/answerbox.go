package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// AnswerCharLimit bounds a single typed answer.
const AnswerCharLimit = 4000

// AnswerBox is a multi-line answer editor.
type AnswerBox struct {
	Model textarea.Model
}

// NewAnswerBox creates a focused editor of the given size.
func NewAnswerBox(width, height int) AnswerBox {
	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.ShowLineNumbers = false
	ta.CharLimit = AnswerCharLimit
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return AnswerBox{Model: ta}
}

// Update handles messages.
func (a AnswerBox) Update(msg tea.Msg) (AnswerBox, tea.Cmd) {
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// View renders the editor.
func (a AnswerBox) View() string { return a.Model.View() }

// Value returns the raw text.
func (a AnswerBox) Value() string { return a.Model.Value() }

// SetValue replaces the text.
func (a *AnswerBox) SetValue(s string) { a.Model.SetValue(s) }

// Resize adapts the editor to a new content area.
func (a *AnswerBox) Resize(width, height int) {
	a.Model.SetWidth(width)
	a.Model.SetHeight(height)
}
