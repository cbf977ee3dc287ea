package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "kanadraw.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	ids := []string{"first", "second", "third"}
	for i, id := range ids {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		if err := st.StartSession(ctx, model.PracticeSession{ID: id, StartedAt: start, Groups: []string{"h_a"}, StageLength: 10}); err != nil {
			t.Fatalf("start session: %v", err)
		}
		for j, ch := range []string{"あ", "い", "ア"} {
			script := "hiragana"
			if ch == "ア" {
				script = "katakana"
			}
			a := model.Attempt{
				SessionID: id,
				CreatedAt: start.Add(time.Duration(j+1) * time.Second),
				Char:      ch,
				Script:    script,
				Prompt:    "kana",
				Stage:     1,
				Score:     0.6,
				Correct:   j != 1,
			}
			if err := st.InsertAttempt(ctx, a); err != nil {
				t.Fatalf("insert attempt: %v", err)
			}
		}
	}

	cfg := model.StatsConfig{
		Script:      "hiragana",
		Last:        2,
		CurveWindow: 1,
	}
	report, err := BuildReport(ctx, st, cfg)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window session ids: %v", report.WindowSessionIDs)
	}
	if len(report.CharAggsAll) != 2 {
		t.Fatalf("expected hiragana aggregates only, got %+v", report.CharAggsAll)
	}
	for _, agg := range report.CharAggsAll {
		if agg.Attempts != 2 {
			t.Fatalf("expected 2 drawings of %s, got %d", agg.Char, agg.Attempts)
		}
	}
	if len(report.CharAggsWindow) != 2 || report.CharAggsWindow[0].Attempts != 1 {
		t.Fatalf("unexpected window aggregates: %+v", report.CharAggsWindow)
	}
}
