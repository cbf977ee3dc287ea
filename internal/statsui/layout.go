package statsui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// curveStep is the increment of the -/= window keys.
const curveStep = 5

func nextCurveWindow(n int) int {
	return (max(n, 0)/curveStep + 1) * curveStep
}

func prevCurveWindow(n int) int {
	if n <= curveStep {
		return 1
	}
	return (n - 1) / curveStep * curveStep
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

// modalInnerWidth subtracts the modal border and padding.
func modalInnerWidth(width int) int {
	return max(10, modalWidth(width)-6)
}

// fitLines pads every line to width and clips or fills to height lines.
func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if pad := width - lipgloss.Width(line); pad > 0 {
			lines[i] = line + strings.Repeat(" ", pad)
		}
	}
	return strings.Join(lines, "\n")
}

// truncateLine shortens plain text to width cells. Kana take two.
func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
