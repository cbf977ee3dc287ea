package raster

import "image/color"

// DefaultStrokeWidth is the ink line width in pixels.
const DefaultStrokeWidth = 10

// InkLayer accumulates freehand strokes into its own bitmap.
//
// The layer never sees the background or the hint, so the visible canvas
// can be recomposed at any time without losing ink. Only the rasterized
// result is kept: there is no stroke history to undo or replay.
type InkLayer struct {
	bmp     *Bitmap
	pen     *pen
	last    Point
	drawing bool
	painted bool
	strokes int
}

// NewInkLayer returns an empty w×h layer drawing lines of the given width.
func NewInkLayer(w, h int, width float64) *InkLayer {
	if width <= 0 {
		width = DefaultStrokeWidth
	}
	return &InkLayer{bmp: NewBitmap(w, h), pen: newPen(w, h, width)}
}

// BeginStroke puts the pen down at p.
func (l *InkLayer) BeginStroke(p Point) {
	l.drawing = true
	l.last = p
	l.strokes++
}

// ExtendStroke draws the segment from the previous point to p. It is a
// no-op while the pen is up.
func (l *InkLayer) ExtendStroke(p Point) {
	if !l.drawing {
		return
	}
	l.pen.reset()
	l.pen.segment(l.last, p)
	l.pen.paint(l.bmp, color.Black)
	l.last = p
	l.painted = true
}

// EndStroke lifts the pen.
func (l *InkLayer) EndStroke() {
	l.drawing = false
}

// Drawing reports whether the pen is down.
func (l *InkLayer) Drawing() bool {
	return l.drawing
}

// Empty reports whether no ink has been laid down since the last Clear.
// A pen-down without movement paints nothing.
func (l *InkLayer) Empty() bool {
	return !l.painted
}

// Strokes returns how many strokes were started since the last Clear.
func (l *InkLayer) Strokes() int {
	return l.strokes
}

// Bitmap returns the ink buffer. Callers must not retain it across Clear.
func (l *InkLayer) Bitmap() *Bitmap {
	return l.bmp
}

// Clear erases all ink and lifts the pen.
func (l *InkLayer) Clear() {
	l.bmp.Clear()
	l.drawing = false
	l.painted = false
	l.strokes = 0
}
