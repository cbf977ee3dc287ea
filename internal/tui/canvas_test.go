package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/kanadraw/internal/raster"
)

func TestRowRunsMergesEqualCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetRGBA(x, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
		img.SetRGBA(x, 1, color.RGBA{A: 0xff})
	}
	img.SetRGBA(3, 1, color.RGBA{R: 0xff, A: 0xff})

	runs := rowRuns(img, 0, 4)
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].count != 3 || runs[1].count != 1 {
		t.Fatalf("unexpected run lengths %d, %d", runs[0].count, runs[1].count)
	}
	if runs[1].cell.bottom.R != 0xff {
		t.Fatalf("expected lower pixel in the background colour")
	}
}

func TestRenderBitmapDimensions(t *testing.T) {
	b := raster.NewBitmap(40, 40)
	out := renderBitmap(b, 10, 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 10 {
			t.Fatalf("row %d: expected width 10, got %d", i, w)
		}
	}
	if renderBitmap(nil, 10, 5) != "" || renderBitmap(b, 0, 5) != "" {
		t.Fatalf("expected empty output for degenerate input")
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(color.RGBA{R: 0xee, G: 0x10, B: 0x01, A: 0xff}); got != lipgloss.Color("#ee1001") {
		t.Fatalf("unexpected colour %q", got)
	}
}

func TestCanvasSize(t *testing.T) {
	cols, rows := canvasSize(200, 47, false)
	if rows != 40 || cols != 80 {
		t.Fatalf("expected height-bound 80x40, got %dx%d", cols, rows)
	}
	cols, rows = canvasSize(42, 47, false)
	if rows != 20 || cols != 40 {
		t.Fatalf("expected width-bound 40x20, got %dx%d", cols, rows)
	}
	cols, rows = canvasSize(62, 47, true)
	if cols+mapGap+cols/2 > 62 {
		t.Fatalf("canvas and maps overflow: %dx%d", cols, rows)
	}
	if _, rows = canvasSize(10, 5, false); rows != minCanvasRows {
		t.Fatalf("expected minimum rows, got %d", rows)
	}
}

func TestCenterLineWideCharacters(t *testing.T) {
	if got := centerLine("Draw: あ", 20); got != "      Draw: あ" {
		t.Fatalf("unexpected centering %q", got)
	}
	if got := centerLine("しゃしゃしゃ", 5); lipgloss.Width(got) > 5 {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(5, 10, 10); got != "[#####-----]" {
		t.Fatalf("unexpected bar %q", got)
	}
	if got := progressBar(12, 10, 4); got != "[####]" {
		t.Fatalf("expected clamped bar, got %q", got)
	}
	if got := progressBar(1, 0, 4); got != "" {
		t.Fatalf("expected empty bar, got %q", got)
	}
}
