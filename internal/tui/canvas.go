package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanadraw/internal/raster"
)

// halfBlock shows two vertically stacked pixels in one cell: the upper one
// as foreground, the lower one as background.
const halfBlock = "▀"

type cell struct {
	top    color.RGBA
	bottom color.RGBA
}

type cellRun struct {
	cell  cell
	count int
}

// renderBitmap draws b into cols×rows terminal cells over a white page.
func renderBitmap(b *raster.Bitmap, cols, rows int) string {
	if b == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	img := raster.Flatten(raster.Thumbnail(b, cols, rows*2), image.White).Image()
	lines := make([]string, rows)
	for y := 0; y < rows; y++ {
		var line strings.Builder
		for _, run := range rowRuns(img, y, cols) {
			line.WriteString(run.render())
		}
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}

// rowRuns groups the cells of text row y into runs of identical colours so
// each run needs one style.
func rowRuns(img *image.RGBA, y, cols int) []cellRun {
	var runs []cellRun
	for x := 0; x < cols; x++ {
		c := cell{top: img.RGBAAt(x, 2*y), bottom: img.RGBAAt(x, 2*y+1)}
		if n := len(runs); n > 0 && runs[n-1].cell == c {
			runs[n-1].count++
			continue
		}
		runs = append(runs, cellRun{cell: c, count: 1})
	}
	return runs
}

func (r cellRun) render() string {
	return lipgloss.NewStyle().
		Foreground(hexColor(r.cell.top)).
		Background(hexColor(r.cell.bottom)).
		Render(strings.Repeat(halfBlock, r.count))
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// canvasSize picks the largest square canvas, in cells, that fits the
// window. A cell is about twice as tall as it is wide, so a square is
// rows×2rows. With maps shown, room is kept for a half-width column.
func canvasSize(width, height int, maps bool) (cols, rows int) {
	rows = height - chromeHeight
	maxCols := width - 2
	if maps {
		maxCols = (width - 2 - mapGap) * 2 / 3
	}
	rows = min(rows, maxCols/2)
	if rows < minCanvasRows {
		rows = minCanvasRows
	}
	return rows * 2, rows
}

// centerLine pads s on the left so it sits in the middle of width cells.
// Kana count as two cells.
func centerLine(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return runewidth.Truncate(s, width, "…")
	}
	return strings.Repeat(" ", (width-w)/2) + s
}

func indent(block string, left int) string {
	if left <= 0 || block == "" {
		return block
	}
	pad := strings.Repeat(" ", left)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

// progressBar renders progress out of total as a fixed-width bar.
func progressBar(progress, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := max(0, min(width, progress*width/total))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
