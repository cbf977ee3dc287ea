package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Point is a position in canvas pixel space, origin top-left, y down.
type Point struct {
	X, Y float64
}

// capSegments is the number of edges used to approximate a round cap.
const capSegments = 24

// pen accumulates round-capped line segments into a coverage rasterizer.
//
// Each segment becomes a rectangle plus a disc at either end. All shapes are
// emitted with the same orientation so that overlaps saturate instead of
// cancelling under the rasterizer's accumulation rule.
type pen struct {
	r     *vector.Rasterizer
	width float64
}

func newPen(w, h int, width float64) *pen {
	return &pen{r: vector.NewRasterizer(w, h), width: width}
}

func (p *pen) reset() {
	b := p.r.Bounds()
	p.r.Reset(b.Dx(), b.Dy())
}

// segment adds the capsule covering a→b.
func (p *pen) segment(a, b Point) {
	hw := p.width / 2
	if hw <= 0 {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	if l := math.Hypot(dx, dy); l > 1e-9 {
		nx, ny := -dy/l*hw, dx/l*hw
		p.polygon([]Point{
			{a.X + nx, a.Y + ny},
			{b.X + nx, b.Y + ny},
			{b.X - nx, b.Y - ny},
			{a.X - nx, a.Y - ny},
		})
	}
	p.disc(a, hw)
	p.disc(b, hw)
}

// polyline strokes consecutive points; closed appends the edge back to the start.
func (p *pen) polyline(pts []Point, closed bool) {
	if len(pts) == 1 {
		p.disc(pts[0], p.width/2)
		return
	}
	for i := 1; i < len(pts); i++ {
		p.segment(pts[i-1], pts[i])
	}
	if closed && len(pts) > 2 && pts[0] != pts[len(pts)-1] {
		p.segment(pts[len(pts)-1], pts[0])
	}
}

func (p *pen) disc(c Point, radius float64) {
	pts := make([]Point, capSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSegments
		pts[i] = Point{c.X + radius*math.Cos(a), c.Y + radius*math.Sin(a)}
	}
	p.polygon(pts)
}

// polygon adds a closed polygon, reversed if needed to keep a positive area.
func (p *pen) polygon(pts []Point) {
	if len(pts) < 3 {
		return
	}
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	p.r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, pt := range pts[1:] {
		p.r.LineTo(float32(pt.X), float32(pt.Y))
	}
	p.r.ClosePath()
}

// paint composites the accumulated coverage onto dst in colour c.
func (p *pen) paint(dst *Bitmap, c color.Color) {
	p.r.DrawOp = draw.Over
	p.r.Draw(dst.img, dst.img.Rect, image.NewUniform(c), image.Point{})
}

func signedArea(pts []Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// opacity converts a 0..1 fraction into an 8-bit alpha.
func opacity(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 1 {
		return 0xff
	}
	return uint8(math.Round(f * 0xff))
}
