package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named run of percentages to plot.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackTermWidth = 80

	axisLabelTop    = "100%"
	axisLabelMid    = "50%"
	axisLabelBottom = "0%"
	axisSeparator   = " │ "
	scaleNote       = "All series in percent."
	scaleMin        = 0.0
	scaleMax        = 100.0

	colorReset = "\x1b[0m"
)

// dash is a line pattern: of every period dot columns the first lit are drawn.
type dash struct {
	name   string
	period int
	lit    int
}

func (d dash) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	return absInt(x)%d.period < d.lit
}

var dashes = []dash{
	{name: "solid", period: 1, lit: 1},
	{name: "dashed", period: 6, lit: 3},
	{name: "dotted", period: 4, lit: 1},
	{name: "dashdot", period: 8, lit: 3},
}

// cyan, magenta, yellow, green, blue
var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m", "\x1b[34m"}

// PlotSeries renders series as a braille line chart on a 0-100% scale.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return plot(w, title, series, width, height, false)
}

// PlotSeriesWithColor is PlotSeries with colour forced on, unless NO_COLOR is set.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	return plot(w, title, series, width, height, forceColor)
}

func plot(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = nonEmpty(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	width = max(width, minPlotWidth)

	grids := make([]*brailleGrid, len(series))
	for i, s := range series {
		grids[i] = trace(resample(s.Values, width), width, height, dashes[i%len(dashes)])
	}
	color := shouldUseColor(w, forceColor)

	var out strings.Builder
	if title != "" {
		out.WriteString(title + "\n")
	}
	out.WriteString(scaleNote + "\n")
	for _, s := range series {
		lo, hi := valueRange(s.Values)
		fmt.Fprintf(&out, "%s: min=%.1f%% max=%.1f%% last=%.1f%%\n", s.Name, lo, hi, s.Values[len(s.Values)-1])
	}
	labelWidth := runewidth.StringWidth(axisLabelTop)
	for row := 0; row < height; row++ {
		fmt.Fprintf(&out, "%*s%s", labelWidth, axisLabel(row, height), axisSeparator)
		for col := 0; col < width; col++ {
			mask, owner := overlay(grids, col, row)
			if color && owner >= 0 {
				out.WriteString(palette[owner%len(palette)] + string(braille(mask)) + colorReset)
				continue
			}
			out.WriteRune(braille(mask))
		}
		out.WriteByte('\n')
	}
	out.WriteString(legend(series, color) + "\n\n")
	_, err := io.WriteString(w, out.String())
	return err
}

// PlotWidthFor returns the chart width that fits totalWidth next to the axis.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := runewidth.StringWidth(axisLabelTop) + runewidth.StringWidth(axisSeparator)
	return max(minPlotWidth, totalWidth-axis)
}

func terminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return fallbackTermWidth
}

func shouldUseColor(w io.Writer, force bool) bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case force:
		return true
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func nonEmpty(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func axisLabel(row, height int) string {
	switch {
	case row == 0:
		return axisLabelTop
	case height > 1 && row == height-1:
		return axisLabelBottom
	case height > 2 && row == height/2:
		return axisLabelMid
	default:
		return ""
	}
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", braille(0x01), s.Name, dashes[i%len(dashes)].name)
		if color {
			label = palette[i%len(palette)] + label + colorReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// trace draws values as a polyline, two dot columns per value.
func trace(values []float64, cols, rows int, d dash) *brailleGrid {
	g := newBrailleGrid(cols, rows)
	prevX, prevY := -1, 0
	for i, v := range values {
		x, y := 2*i, valueToRow(v, scaleMin, scaleMax, rows*4)
		if prevX < 0 {
			if d.draws(x) {
				g.set(x, y)
			}
		} else {
			g.line(prevX, prevY, x, y, d.draws)
		}
		prevX, prevY = x, y
	}
	return g
}

// overlay merges the dots of every grid at a cell. owner is the first grid
// with a dot there, or -1.
func overlay(grids []*brailleGrid, col, row int) (mask uint8, owner int) {
	owner = -1
	for i, g := range grids {
		m := g.mask(col, row)
		if m == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= m
	}
	return mask, owner
}

// resample fits values to n points, averaging buckets when shrinking and
// interpolating linearly when stretching.
func resample(values []float64, n int) []float64 {
	if len(values) == 0 || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) >= n:
		for i := range out {
			lo := i * len(values) / n
			hi := max((i+1)*len(values)/n, lo+1)
			out[i] = mean(values[lo:hi])
		}
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		step := float64(len(values)-1) / float64(n-1)
		for i := range out {
			pos := float64(i) * step
			j := min(int(pos), len(values)-2)
			out[i] = values[j] + (values[j+1]-values[j])*(pos-float64(j))
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func valueRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// valueToRow maps v onto dot rows, top row for hi, clamping out-of-range values.
func valueToRow(v, lo, hi float64, rows int) int {
	if rows <= 1 || hi <= lo {
		return 0
	}
	row := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(rows-1)))
	return max(0, min(rows-1, row))
}

// brailleGrid is a dot canvas where every text cell holds 2x4 dots.
type brailleGrid struct {
	cols, rows int
	cells      []uint8
}

// brailleBits[y][x] is the bit of dot (x, y) within a cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func newBrailleGrid(cols, rows int) *brailleGrid {
	return &brailleGrid{cols: cols, rows: rows, cells: make([]uint8, cols*rows)}
}

func (g *brailleGrid) set(x, y int) {
	col, row := x/2, y/4
	if x < 0 || y < 0 || col >= g.cols || row >= g.rows {
		return
	}
	g.cells[row*g.cols+col] |= brailleBits[y%4][x%2]
}

func (g *brailleGrid) mask(col, row int) uint8 {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return 0
	}
	return g.cells[row*g.cols+col]
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm, skipping
// dot columns keep rejects.
func (g *brailleGrid) line(x0, y0, x1, y1 int, keep func(x int) bool) {
	dx, dy := absInt(x1-x0), -absInt(y1-y0)
	sx, sy := 1, 1
	if x1 < x0 {
		sx = -1
	}
	if y1 < y0 {
		sy = -1
	}
	err := dx + dy
	for {
		if keep(x0) {
			g.set(x0, y0)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func braille(mask uint8) rune {
	return 0x2800 + rune(mask)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
