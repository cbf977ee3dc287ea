// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Groups      []string
	StageLength int
	Prompt      string
	Hint        bool
	Locked      bool
	FocusWeak   bool
	WeakTop     int
	WeakFactor  float64
	WeakWindow  int
	PoolFile    string
	CanvasSize  int
	StrokeWidth float64
	FontPath    string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Script      string
	Since       *time.Time
	Last        int
	CurveWindow int
	Chars       string
}

// PracticeSession describes one run of the drawing drill.
type PracticeSession struct {
	ID          string
	StartedAt   time.Time
	Groups      []string
	StageLength int
}

// Attempt captures one scored drawing.
type Attempt struct {
	SessionID string
	CreatedAt time.Time
	Char      string
	Script    string
	Prompt    string
	Hint      bool
	Stage     int
	Score     float64
	Precision float64
	Recall    float64
	Correct   bool
	DrawnPx   int
	TargetPx  int
	DrawMs    int64
}

// CharAggregate aggregates attempts for one character across sessions.
type CharAggregate struct {
	Char         string
	Attempts     int
	Correct      int
	ScoreSum     float64
	PrecisionSum float64
	RecallSum    float64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID string
	EndedAt   time.Time
	Attempts  int
	Correct   int
	ScoreSum  float64
}
