package tui

import (
	"strings"
	"testing"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		runAttempts:  4,
		runCorrect:   3,
		recentScores: []float64{40, 80},
		hasLast:      true,
		lastAcc:      0.978,
		lastScore:    0.724,
		allAttempts:  10,
		allCorrect:   7,
		allScoreSum:  5.5,
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Now 3/4 · 75.0%", "Last 97.8% · score 72.4%", "All-time 70.0% · score 55.0%", "[ @]"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterEmpty(t *testing.T) {
	m := &Model{}
	if out := m.renderFooter(); out != "" {
		t.Fatalf("expected no footer before any drawing, got %q", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
