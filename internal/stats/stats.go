// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/kanadraw/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionMetrics computes accuracy and mean score for a session, both in [0,1].
func SessionMetrics(s model.SessionAggregate) (accuracy, avgScore float64) {
	if s.Attempts <= 0 {
		return 0, 0
	}
	n := float64(s.Attempts)
	return float64(s.Correct) / n, s.ScoreSum / n
}

// CharMetrics holds the per-attempt means of a character aggregate.
type CharMetrics struct {
	Accuracy  float64
	Score     float64
	Precision float64
	Recall    float64
}

// MetricsFor averages a character aggregate. A character never attempted has
// zero metrics.
func MetricsFor(agg model.CharAggregate) CharMetrics {
	if agg.Attempts <= 0 {
		return CharMetrics{}
	}
	n := float64(agg.Attempts)
	return CharMetrics{
		Accuracy:  float64(agg.Correct) / n,
		Score:     agg.ScoreSum / n,
		Precision: agg.PrecisionSum / n,
		Recall:    agg.RecallSum / n,
	}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - lo) / (hi - lo)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[max(0, min(idx, len(sparkChars)-1))])
	}
	return b.String()
}

// RenderSummary prints a summary of the sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalAcc, totalScore, bestAcc float64
	attempts := 0
	for _, s := range sessions {
		acc, sc := SessionMetrics(s)
		totalAcc += acc
		totalScore += sc
		bestAcc = math.Max(bestAcc, acc)
		attempts += s.Attempts
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Drawings: %d", attempts),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count*100),
		fmt.Sprintf("Best Accuracy: %.2f%%", bestAcc*100),
		fmt.Sprintf("Avg Score: %.2f%%", totalScore/count*100),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints learning curves for accuracy and score.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	accs := make([]float64, len(sessions))
	scores := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, sc := SessionMetrics(s)
		accs[i] = acc * 100
		scores[i] = sc * 100
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Score", Values: MovingAverage(scores, window)},
	}, width, height, useColor)
}

// CharTableHeaders are the columns of the per-character table.
var CharTableHeaders = []string{"Char", "Reading", "Accuracy", "Avg Score", "Precision", "Recall", "Drawings"}

// CharTableRows formats aggregates, weakest first. reading may be nil.
func CharTableRows(aggs []model.CharAggregate, reading func(string) string) [][]string {
	sorted := SortByAccuracy(aggs)
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		m := MetricsFor(agg)
		r := ""
		if reading != nil {
			r = reading(agg.Char)
		}
		rows = append(rows, []string{
			agg.Char,
			r,
			fmt.Sprintf("%.1f%%", m.Accuracy*100),
			fmt.Sprintf("%.1f%%", m.Score*100),
			fmt.Sprintf("%.1f%%", m.Precision*100),
			fmt.Sprintf("%.1f%%", m.Recall*100),
			fmt.Sprintf("%d", agg.Attempts),
		})
	}
	return rows
}

// SortByAccuracy orders aggregates by ascending accuracy, then ascending
// mean score, then character.
func SortByAccuracy(aggs []model.CharAggregate) []model.CharAggregate {
	out := append([]model.CharAggregate(nil), aggs...)
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := MetricsFor(out[i]), MetricsFor(out[j])
		if mi.Accuracy != mj.Accuracy {
			return mi.Accuracy < mj.Accuracy
		}
		if mi.Score != mj.Score {
			return mi.Score < mj.Score
		}
		return out[i].Char < out[j].Char
	})
	return out
}

// RenderCharTable prints per-character aggregates.
func RenderCharTable(w io.Writer, aggs []model.CharAggregate, reading func(string) string) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No character stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character (Windowed)"); err != nil {
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(CharTableHeaders, CharTableRows(aggs, reading), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCharCurves prints per-character learning curves.
func RenderCharCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.CharAggregate, chars []string, window int) error {
	return RenderCharCurvesWithSize(w, sessions, perSession, chars, window, 0, defaultPlotHeight, false)
}

// RenderCharCurvesWithSize prints per-character learning curves sized to a given total width.
// Sessions in which a character was not drawn carry its previous value forward.
func RenderCharCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[string]map[string]model.CharAggregate, chars []string, window, totalWidth, height int, useColor bool) error {
	if len(chars) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Character Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, ch := range chars {
		accSeries := make([]float64, 0, len(sessions))
		scoreSeries := make([]float64, 0, len(sessions))
		var last CharMetrics
		for _, s := range sessions {
			if agg, ok := perSession[s.SessionID][ch]; ok && agg.Attempts > 0 {
				last = MetricsFor(agg)
			}
			accSeries = append(accSeries, last.Accuracy*100)
			scoreSeries = append(scoreSeries, last.Score*100)
		}
		if err := PlotSeriesWithColor(w, fmt.Sprintf("Char %s", ch), []Series{
			{Name: "Accuracy", Values: MovingAverage(accSeries, window)},
			{Name: "Score", Values: MovingAverage(scoreSeries, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}
