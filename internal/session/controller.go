package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/kanadraw/internal/logging"
	"github.com/verte-zerg/kanadraw/internal/raster"
	"github.com/verte-zerg/kanadraw/internal/score"
)

// ErrNoCharacters is returned by Start when the pool is empty.
var ErrNoCharacters = errors.New("session: no characters selected")

// Picker chooses the next character.
type Picker interface {
	NextWeighted(pool []string, exclude string, weakSet map[string]struct{}, factor float64) (string, error)
}

// TargetRenderer rasterizes target characters.
type TargetRenderer interface {
	RenderTarget(char string, size int) (*raster.Bitmap, error)
}

// Config fixes the parameters of a drill for its whole lifetime.
type Config struct {
	Size        int
	StrokeWidth float64
	StageLength int
	Locked      bool
	Prompt      PromptMode
	Hint        bool
	Pool        []string
	Policy      score.Policy
	WeakSet     map[string]struct{}
	WeakFactor  float64
}

// Question owns the bitmaps of the character being drawn. Everything in it
// is replaced when the next question starts.
type Question struct {
	Char    string
	Target  *raster.Bitmap
	Ink     *raster.InkLayer
	Visible *raster.Bitmap
	// Diagnostics is set once per submission.
	Diagnostics    raster.Diagnostics
	HasDiagnostics bool

	shownAt time.Time
	elapsed time.Duration
}

// Controller runs the lifecycle against real bitmaps.
//
// Rendering and scoring faults are logged and swallowed: the affected
// bitmap keeps its previous contents and the interaction continues.
type Controller struct {
	cfg    Config
	state  State
	q      Question
	grid   *raster.Bitmap
	picker Picker
	glyphs TargetRenderer
	now    func() time.Time
	notice string
}

// NewController prepares a drill. Call Start to ask the first question.
func NewController(cfg Config, picker Picker, glyphs TargetRenderer) *Controller {
	if cfg.Size <= 0 {
		cfg.Size = raster.DefaultSize
	}
	if cfg.StrokeWidth <= 0 {
		cfg.StrokeWidth = raster.DefaultStrokeWidth
	}
	if cfg.Policy == (score.Policy{}) {
		cfg.Policy = score.DefaultPolicy
	}
	state := NewState(cfg.StageLength, cfg.Locked, cfg.Prompt)
	state.ShowHint = cfg.Hint
	grid := raster.Grid(cfg.Size, cfg.Size)
	return &Controller{
		cfg:    cfg,
		state:  state,
		grid:   grid,
		picker: picker,
		glyphs: glyphs,
		now:    time.Now,
		q: Question{
			Target:  raster.NewBitmap(cfg.Size, cfg.Size),
			Ink:     raster.NewInkLayer(cfg.Size, cfg.Size, cfg.StrokeWidth),
			Visible: grid.Clone(),
		},
	}
}

// SetClock replaces the time source used for draw durations.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Start asks the first question.
func (c *Controller) Start() error {
	if len(c.cfg.Pool) == 0 {
		return ErrNoCharacters
	}
	char, err := c.pick("")
	if err != nil {
		return fmt.Errorf("failed to start drill: %w", err)
	}
	c.Dispatch(NewQuestion{Char: char})
	return nil
}

// State returns a copy of the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Question returns the current question. The pointer stays valid for the
// controller's lifetime; its bitmaps change between events.
func (c *Controller) Question() *Question {
	return &c.q
}

// SetWeakSet replaces the characters favoured by the picker.
func (c *Controller) SetWeakSet(set map[string]struct{}) {
	c.cfg.WeakSet = set
}

// Similarity scores the current ink without submitting it.
func (c *Controller) Similarity() (score.Record, error) {
	return c.cfg.Policy.Score(c.q.Ink.Bitmap(), c.q.Target)
}

// Notice returns the last swallowed fault, or "".
func (c *Controller) Notice() string {
	return c.notice
}

// Dispatch applies ev and every event it causes, and returns the effects
// the host must act on: RecordVerdict and StageAdvance.
func (c *Controller) Dispatch(ev Event) []Effect {
	var host []Effect
	queue := []Event{ev}
	for len(queue) > 0 {
		ev := queue[0]
		queue = queue[1:]

		next, effects := Transition(c.state, ev)
		c.state = next
		for _, eff := range effects {
			switch eff := eff.(type) {
			case RecordVerdict:
				eff.Elapsed = c.q.elapsed
				host = append(host, eff)
			case StageAdvance:
				host = append(host, eff)
			default:
				if follow := c.run(eff); follow != nil {
					queue = append(queue, follow)
				}
			}
		}
	}
	return host
}

// run executes one engine effect, returning a follow-up event if any.
func (c *Controller) run(eff Effect) Event {
	switch eff := eff.(type) {
	case BeginStroke:
		c.q.Ink.BeginStroke(eff.At)
	case ExtendStroke:
		c.guard("extend stroke", func() error {
			c.q.Ink.ExtendStroke(eff.At)
			return nil
		})
	case EndStroke:
		c.q.Ink.EndStroke()
	case ClearInk:
		c.q.Ink.Clear()
		c.q.Diagnostics = raster.Diagnostics{}
		c.q.HasDiagnostics = false
	case RenderTarget:
		c.renderTarget(eff.Char)
	case Recompose:
		c.recompose()
	case ScoreInk:
		return Scored{Record: c.scoreInk()}
	case RequestCharacter:
		char, err := c.pick(eff.Exclude)
		if err != nil {
			c.fault("pick character", err)
			return nil
		}
		return NewQuestion{Char: char}
	}
	return nil
}

func (c *Controller) renderTarget(char string) {
	c.q.Char = char
	c.q.shownAt = c.now()
	c.q.elapsed = 0
	c.notice = ""
	c.guard("render target", func() error {
		target, err := c.glyphs.RenderTarget(char, c.cfg.Size)
		if target != nil {
			c.q.Target = target
		}
		return err
	})
}

func (c *Controller) recompose() {
	c.guard("recompose", func() error {
		var hint *raster.Bitmap
		if c.state.ShowHint {
			hint = c.q.Target
		}
		visible, err := raster.Compose(c.grid, hint, c.q.Ink.Bitmap())
		if err != nil {
			return err
		}
		c.q.Visible = visible
		return nil
	})
}

// scoreInk scores and diagnoses the current ink. A failed score counts as
// the zero record, which is never correct.
func (c *Controller) scoreInk() score.Record {
	c.q.elapsed = c.now().Sub(c.q.shownAt)
	var rec score.Record
	c.guard("score", func() error {
		r, err := c.cfg.Policy.Score(c.q.Ink.Bitmap(), c.q.Target)
		if err != nil {
			return err
		}
		rec = r
		return nil
	})
	c.guard("diagnose", func() error {
		d, err := raster.Diagnose(c.q.Ink.Bitmap(), c.q.Target)
		if err != nil {
			return err
		}
		c.q.Diagnostics = d
		c.q.HasDiagnostics = true
		return nil
	})
	logging.L().Debug("scored drawing",
		"char", c.q.Char,
		"score", rec.Score,
		"precision", rec.Precision,
		"recall", rec.Recall,
		"correct", rec.Correct,
	)
	return rec
}

func (c *Controller) pick(exclude string) (string, error) {
	return c.picker.NextWeighted(c.cfg.Pool, exclude, c.cfg.WeakSet, c.cfg.WeakFactor)
}

// guard runs fn, logging and swallowing both errors and panics.
func (c *Controller) guard(op string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.fault(op, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := fn(); err != nil {
		c.fault(op, err)
	}
}

func (c *Controller) fault(op string, err error) {
	logging.L().Warn("drawing step failed", "op", op, "char", c.q.Char, "err", err)
	c.notice = fmt.Sprintf("%s: %v", op, err)
}
