// Package session drives one drawing drill: question lifecycle, progress
// counter and stage signal.
//
// The lifecycle is a pure state machine. Transition maps a State and an
// Event to the next State plus the Effects to run; Controller runs them
// against the question's bitmaps and feeds results back as events.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/kanadraw/internal/raster"
	"github.com/verte-zerg/kanadraw/internal/score"
)

// DefaultStageLength is the progress needed to clear a stage.
const DefaultStageLength = 10

// StageAdvanceDelay leaves the verdict on screen before the stage changes.
const StageAdvanceDelay = 300 * time.Millisecond

// Phase is the lifecycle position of the current question.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDrawing
	PhaseScored
	PhaseStageComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDrawing:
		return "drawing"
	case PhaseScored:
		return "scored"
	case PhaseStageComplete:
		return "stage-complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// PromptMode selects how the character to draw is shown.
type PromptMode string

const (
	PromptKana   PromptMode = "kana"
	PromptRomaji PromptMode = "romaji"
)

// ParsePromptMode validates a prompt mode name.
func ParsePromptMode(s string) (PromptMode, error) {
	switch PromptMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", PromptKana:
		return PromptKana, nil
	case PromptRomaji:
		return PromptRomaji, nil
	default:
		return "", fmt.Errorf("prompt must be kana or romaji")
	}
}

// State is everything the lifecycle decides on. It holds no bitmaps.
type State struct {
	Phase         Phase
	Current       string
	Previous      string
	Prompt        PromptMode
	ShowHint      bool
	ShowDebugMaps bool
	PenDown       bool
	Progress      int
	StageLength   int
	Stage         int
	Locked        bool
	Result        score.Record
	HasResult     bool
}

// NewState returns the state before the first question.
func NewState(stageLength int, locked bool, prompt PromptMode) State {
	if stageLength <= 0 {
		stageLength = DefaultStageLength
	}
	if prompt == "" {
		prompt = PromptKana
	}
	return State{Phase: PhaseIdle, StageLength: stageLength, Stage: 1, Locked: locked, Prompt: prompt}
}

// Inert reports whether pointer input is currently ignored.
func (s State) Inert() bool {
	return s.Phase == PhaseScored || s.Phase == PhaseStageComplete
}

// Event is an input to Transition.
type Event interface{ isEvent() }

type (
	PointerDown     struct{ At raster.Point }
	PointerMove     struct{ At raster.Point }
	PointerUp       struct{}
	PointerLeave    struct{}
	Submit          struct{}
	Clear           struct{}
	Next            struct{}
	ToggleHint      struct{}
	ToggleDebugMaps struct{}
	ToggleLock      struct{}
	SetPrompt       struct{ Mode PromptMode }
	// Scored carries the record computed for a ScoreInk effect.
	Scored struct{ Record score.Record }
	// NewQuestion carries the character chosen for a RequestCharacter effect.
	NewQuestion struct{ Char string }
	// StageAdvanced is sent by the host once the StageAdvance delay elapsed.
	StageAdvanced struct{}
)

func (PointerDown) isEvent()     {}
func (PointerMove) isEvent()     {}
func (PointerUp) isEvent()       {}
func (PointerLeave) isEvent()    {}
func (Submit) isEvent()          {}
func (Clear) isEvent()           {}
func (Next) isEvent()            {}
func (ToggleHint) isEvent()      {}
func (ToggleDebugMaps) isEvent() {}
func (ToggleLock) isEvent()      {}
func (SetPrompt) isEvent()       {}
func (Scored) isEvent()          {}
func (NewQuestion) isEvent()     {}
func (StageAdvanced) isEvent()   {}

// Effect is an action requested by Transition.
type Effect interface{ isEffect() }

type (
	BeginStroke  struct{ At raster.Point }
	ExtendStroke struct{ At raster.Point }
	EndStroke    struct{}
	ClearInk     struct{}
	RenderTarget struct{ Char string }
	Recompose    struct{}
	ScoreInk     struct{}
	// RequestCharacter asks for a new character other than Exclude.
	RequestCharacter struct{ Exclude string }
	// RecordVerdict reports a finished question to the host.
	RecordVerdict struct {
		Char    string
		Stage   int
		Correct bool
		Record  score.Record
		Elapsed time.Duration
	}
	// StageAdvance asks the host to send StageAdvanced after Delay.
	StageAdvance struct {
		Stage int
		Delay time.Duration
	}
)

func (BeginStroke) isEffect()      {}
func (ExtendStroke) isEffect()     {}
func (EndStroke) isEffect()        {}
func (ClearInk) isEffect()         {}
func (RenderTarget) isEffect()     {}
func (Recompose) isEffect()        {}
func (ScoreInk) isEffect()         {}
func (RequestCharacter) isEffect() {}
func (RecordVerdict) isEffect()    {}
func (StageAdvance) isEffect()     {}

// Transition is the question lifecycle. It never touches bitmaps.
func Transition(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case PointerDown:
		if s.Inert() {
			return s, nil
		}
		s.Phase = PhaseDrawing
		s.PenDown = true
		return s, []Effect{BeginStroke{At: ev.At}}

	case PointerMove:
		if s.Inert() || !s.PenDown {
			return s, nil
		}
		return s, []Effect{ExtendStroke{At: ev.At}, Recompose{}}

	case PointerUp, PointerLeave:
		if s.Inert() || !s.PenDown {
			return s, nil
		}
		s.PenDown = false
		return s, []Effect{EndStroke{}}

	case Submit:
		if s.Inert() {
			return s, nil
		}
		var effects []Effect
		if s.PenDown {
			s.PenDown = false
			effects = append(effects, EndStroke{})
		}
		s.Phase = PhaseScored
		return s, append(effects, ScoreInk{})

	case Scored:
		if s.Phase != PhaseScored {
			return s, nil
		}
		s.Result = ev.Record
		s.HasResult = true
		return s, nil

	case Clear:
		if s.Inert() {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.PenDown = false
		s.Result.Reset()
		s.HasResult = false
		return s, []Effect{ClearInk{}, Recompose{}}

	case Next:
		if s.Phase != PhaseScored || !s.HasResult {
			return s, nil
		}
		correct := s.Result.Correct
		if correct {
			s.Progress = min(s.Progress+1, s.StageLength)
		} else if s.Progress > 0 {
			s.Progress--
		}
		effects := []Effect{RecordVerdict{Char: s.Current, Stage: s.Stage, Correct: correct, Record: s.Result}}
		s.Previous = s.Current
		if s.Progress >= s.StageLength && !s.Locked {
			s.Phase = PhaseStageComplete
			return s, append(effects, StageAdvance{Stage: s.Stage + 1, Delay: StageAdvanceDelay})
		}
		s.Phase = PhaseIdle
		return s, append(effects, RequestCharacter{Exclude: s.Previous})

	case NewQuestion:
		if s.Phase == PhaseScored || s.Phase == PhaseStageComplete {
			return s, nil
		}
		s.Phase = PhaseIdle
		s.Current = ev.Char
		s.PenDown = false
		s.Result.Reset()
		s.HasResult = false
		return s, []Effect{ClearInk{}, RenderTarget{Char: ev.Char}, Recompose{}}

	case StageAdvanced:
		if s.Phase != PhaseStageComplete {
			return s, nil
		}
		s.Stage++
		s.Progress = 0
		s.Phase = PhaseIdle
		return s, []Effect{RequestCharacter{Exclude: s.Previous}}

	case ToggleHint:
		s.ShowHint = !s.ShowHint
		return s, []Effect{Recompose{}}

	case ToggleDebugMaps:
		s.ShowDebugMaps = !s.ShowDebugMaps
		return s, nil

	case ToggleLock:
		s.Locked = !s.Locked
		return s, nil

	case SetPrompt:
		if ev.Mode != PromptKana && ev.Mode != PromptRomaji {
			return s, nil
		}
		s.Prompt = ev.Mode
		return s, nil
	}
	return s, nil
}
