// Package score compares a drawing against its target glyph.
//
// The comparison is a pixel-overlap heuristic, not recognition: it counts
// how much of the ink lands on the target (precision) and how much of the
// target the ink covers (recall), then weighs the two into a verdict.
package score

import (
	"fmt"

	"github.com/verte-zerg/kanadraw/internal/raster"
)

// Policy holds the weights and thresholds of the verdict.
type Policy struct {
	PrecisionWeight float64
	RecallWeight    float64
	// MinRecall is required in every passing verdict so a tiny precise dot
	// cannot pass.
	MinRecall float64
	// PassScore and PassPrecision are alternative pass conditions.
	PassScore     float64
	PassPrecision float64
}

// DefaultPolicy is tuned so drawings that hug the outline pass while
// covering only part of the filled glyph.
var DefaultPolicy = Policy{
	PrecisionWeight: 0.7,
	RecallWeight:    0.3,
	MinRecall:       0.15,
	PassScore:       0.40,
	PassPrecision:   0.55,
}

// Record is the outcome of scoring one drawing.
type Record struct {
	Precision    float64
	Recall       float64
	Score        float64
	Correct      bool
	Drawn        int
	Target       int
	Intersection int
}

// Reset returns r to the zero record.
func (r *Record) Reset() {
	*r = Record{}
}

// Validate checks that every field lies in [0, 1].
func (p Policy) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"precision-weight", p.PrecisionWeight},
		{"recall-weight", p.RecallWeight},
		{"min-recall", p.MinRecall},
		{"pass-score", p.PassScore},
		{"pass-precision", p.PassPrecision},
	}
	for _, f := range fields {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("scoring %s must be between 0 and 1", f.name)
		}
	}
	return nil
}

// Decide combines precision and recall into a score and a verdict.
func (p Policy) Decide(precision, recall float64) (float64, bool) {
	s := p.PrecisionWeight*precision + p.RecallWeight*recall
	ok := recall >= p.MinRecall && (s >= p.PassScore || precision >= p.PassPrecision)
	return s, ok
}

// Score compares ink against target in a single pass over both buffers.
func (p Policy) Score(ink, target *raster.Bitmap) (Record, error) {
	if ink == nil || target == nil {
		return Record{}, fmt.Errorf("score: nil bitmap")
	}
	if !ink.SameSize(target) {
		return Record{}, raster.ErrSizeMismatch
	}

	var rec Record
	dp, tp := ink.Image().Pix, target.Image().Pix
	for i := 3; i < len(dp); i += 4 {
		d := dp[i] > raster.AlphaThreshold
		t := tp[i] > raster.AlphaThreshold
		if d {
			rec.Drawn++
		}
		if t {
			rec.Target++
		}
		if d && t {
			rec.Intersection++
		}
	}

	if rec.Drawn > 0 {
		rec.Precision = float64(rec.Intersection) / float64(rec.Drawn)
	}
	if rec.Target > 0 {
		rec.Recall = float64(rec.Intersection) / float64(rec.Target)
	}
	rec.Score, rec.Correct = p.Decide(rec.Precision, rec.Recall)
	return rec, nil
}

// Score compares ink against target under DefaultPolicy.
func Score(ink, target *raster.Bitmap) (Record, error) {
	return DefaultPolicy.Score(ink, target)
}
