package home

import (
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/rehearse/internal/screens/setup"
	"github.com/abhisek/rehearse/internal/store"
)

func TestSummarize(t *testing.T) {
	got := summarize([]store.SessionSummary{{TotalScore: 4}, {TotalScore: 8}, {TotalScore: 6}})
	if got.count != 3 || got.avg != 6 || got.best != 8 {
		t.Errorf("summarize = %+v", got)
	}
	if empty := summarize(nil); empty.count != 0 || empty.avg != 0 {
		t.Errorf("summarize(nil) = %+v", empty)
	}
}

func TestHomeScreen_MenuWithoutServices(t *testing.T) {
	h := New(setup.Deps{})
	if !h.menu.Items[0].Disabled || !h.menu.Items[1].Disabled {
		t.Error("start and history should be disabled without services")
	}
	if h.menu.Selected != 2 {
		t.Errorf("Selected = %d, want the quit item", h.menu.Selected)
	}
	if h.Init() != nil {
		t.Error("expected no stats load without a repo")
	}
}

func TestHomeScreen_Stats(t *testing.T) {
	h := New(setup.Deps{})
	h.Update(statsMsg{count: 2, avg: 6.5, best: 8})
	if view := h.View(100, 30); !strings.Contains(view, "6.5") {
		t.Errorf("expected average in view")
	}
	h.Update(statsMsg{err: errors.New("db down")})
	if view := h.View(100, 30); !strings.Contains(view, "Could not load history") {
		t.Errorf("expected error in view")
	}
}
