package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/verte-zerg/kanadraw/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	acc, sc := SessionMetrics(model.SessionAggregate{Attempts: 4, Correct: 3, ScoreSum: 2})
	if acc != 0.75 || sc != 0.5 {
		t.Fatalf("got accuracy %v score %v", acc, sc)
	}
	acc, sc = SessionMetrics(model.SessionAggregate{})
	if acc != 0 || sc != 0 {
		t.Fatalf("expected zero metrics for empty session")
	}
}

func TestMetricsFor(t *testing.T) {
	m := MetricsFor(model.CharAggregate{Attempts: 2, Correct: 1, ScoreSum: 1.2, PrecisionSum: 1.6, RecallSum: 0.4})
	if m.Accuracy != 0.5 || math.Abs(m.Score-0.6) > 1e-9 || math.Abs(m.Precision-0.8) > 1e-9 || math.Abs(m.Recall-0.2) > 1e-9 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3}); got != "++" {
		t.Fatalf("flat sparkline %q", got)
	}
}

func TestSelectWeakChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "あ", Attempts: 10, Correct: 9, ScoreSum: 6},
		{Char: "ぬ", Attempts: 10, Correct: 2, ScoreSum: 3},
		{Char: "め", Attempts: 10, Correct: 2, ScoreSum: 2},
		{Char: "ね", Attempts: 10, Correct: 5, ScoreSum: 5},
	}
	weak := SelectWeakChars(aggs, 2)
	if len(weak) != 2 {
		t.Fatalf("expected 2 weak chars, got %v", weak)
	}
	for _, ch := range []string{"ぬ", "め"} {
		if _, ok := weak[ch]; !ok {
			t.Fatalf("expected %s to be weak, got %v", ch, weak)
		}
	}
	sorted := SortByAccuracy(aggs)
	if sorted[0].Char != "め" {
		t.Fatalf("expected lower score to break the tie, got %s", sorted[0].Char)
	}
	if all := SelectWeakChars(aggs, 0); len(all) != 4 {
		t.Fatalf("expected every char for top 0, got %v", all)
	}
}

func TestRenderCharTable(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.CharAggregate{
		{Char: "し", Attempts: 2, Correct: 2, ScoreSum: 1.5, PrecisionSum: 1.6, RecallSum: 1},
		{Char: "つ", Attempts: 2, Correct: 0, ScoreSum: 0.5, PrecisionSum: 0.4, RecallSum: 0.6},
	}
	reading := func(ch string) string {
		return map[string]string{"し": "shi", "つ": "tsu"}[ch]
	}
	if err := RenderCharTable(&buf, aggs, reading); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
	if !strings.HasPrefix(lines[2], "つ   tsu") {
		t.Fatalf("expected weakest char first, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "100.0%") {
		t.Fatalf("expected full accuracy for し, got %q", lines[3])
	}
}

func TestRenderCharCurvesCarriesForward(t *testing.T) {
	sessions := []model.SessionAggregate{{SessionID: "a"}, {SessionID: "b"}, {SessionID: "c"}}
	per := map[string]map[string]model.CharAggregate{
		"a": {"ふ": {Char: "ふ", Attempts: 1, Correct: 1, ScoreSum: 0.5}},
		"c": {"ふ": {Char: "ふ", Attempts: 2, Correct: 0, ScoreSum: 0.2}},
	}
	var buf bytes.Buffer
	if err := RenderCharCurvesWithSize(&buf, sessions, per, []string{"ふ"}, 1, 40, 4, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Char ふ") {
		t.Fatalf("expected char title, got:\n%s", out)
	}
	if !strings.Contains(out, "Accuracy: min=0.0% max=100.0% last=0.0%") {
		t.Fatalf("unexpected accuracy range, got:\n%s", out)
	}
}
