package components

import (
	"github.com/abhisek/rehearse/internal/ui/theme"
)

// Button renders a one-line action label, highlighted when focused.
func Button(label string, focused bool) string {
	if focused {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render(label)
}
