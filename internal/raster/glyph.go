package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// FontScale is the font size as a fraction of the canvas height.
	FontScale = 0.7
	// OutlineRatio is the outline width as a fraction of the font size.
	OutlineRatio = 0.03
	// MinOutlineWidth is the narrowest outline in pixels.
	MinOutlineWidth = 4
	// FillOpacity is the opacity of the glyph interior.
	FillOpacity = 0.15
	// MaxLineWidth caps the advance of the laid out text as a fraction of
	// the canvas width.
	MaxLineWidth = 0.9
)

// ErrGlyphMissing is returned when the font cannot draw a character.
var ErrGlyphMissing = errors.New("raster: font has no glyph for character")

// GlyphRasterizer renders target characters into bitmaps.
//
// The target is an outline stroke at full opacity plus a faint fill. The
// outline widens the area that counts as "on the character" so near misses
// still register, and the fill keeps the interior inside the mask without
// reading as bold when shown as a hint.
type GlyphRasterizer struct {
	font *Font
}

// NewGlyphRasterizer returns a rasterizer drawing with f.
func NewGlyphRasterizer(f *Font) *GlyphRasterizer {
	return &GlyphRasterizer{font: f}
}

// Font returns the glyph source.
func (g *GlyphRasterizer) Font() *Font {
	return g.font
}

// RenderTarget draws char centred on a new size×size bitmap.
//
// An empty char yields a blank bitmap and no error. A char the font cannot
// draw yields a blank bitmap and ErrGlyphMissing; scoring against it
// degrades to zero recall.
func (g *GlyphRasterizer) RenderTarget(char string, size int) (*Bitmap, error) {
	bmp := NewBitmap(size, size)
	if char == "" || size <= 0 {
		return bmp, nil
	}
	if !g.font.Covers(char) {
		return bmp, fmt.Errorf("%w: %q", ErrGlyphMissing, char)
	}

	fontSize := math.Floor(float64(size) * FontScale)
	centre := float64(size) / 2
	contours, advance, err := g.outline(char, fontSize, centre, centre)
	if err != nil {
		return bmp, err
	}
	// Yoon pairs are two full-width glyphs and overflow the square canvas.
	if limit := float64(size) * MaxLineWidth; advance > limit {
		fontSize = math.Floor(fontSize * limit / advance)
		if contours, _, err = g.outline(char, fontSize, centre, centre); err != nil {
			return bmp, err
		}
	}

	stroke := newPen(size, size, math.Max(MinOutlineWidth, math.Floor(fontSize*OutlineRatio)))
	for _, c := range contours {
		stroke.polyline(c, true)
	}
	stroke.paint(bmp, color.Black)

	fill := vector.NewRasterizer(size, size)
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		fill.MoveTo(float32(c[0].X), float32(c[0].Y))
		for _, pt := range c[1:] {
			fill.LineTo(float32(pt.X), float32(pt.Y))
		}
		fill.ClosePath()
	}
	fill.DrawOp = draw.Over
	fill.Draw(bmp.img, bmp.img.Rect, image.NewUniform(color.RGBA{A: opacity(FillOpacity)}), image.Point{})
	return bmp, nil
}

// outline lays s out on one line centred on (cx, cy) and returns its
// flattened contours in canvas space along with the total advance. Vertical centring uses the middle of
// the ascent/descent box, as a canvas "middle" baseline does.
func (g *GlyphRasterizer) outline(s string, fontSize, cx, cy float64) ([][]Point, float64, error) {
	var buf sfnt.Buffer
	sf := g.font.sf
	ppem := fixed.Int26_6(math.Round(fontSize * 64))

	metrics, err := sf.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, 0, fmt.Errorf("raster: failed to read font metrics: %w", err)
	}

	type placed struct {
		idx sfnt.GlyphIndex
		x   float64
	}
	var glyphs []placed
	var advance float64
	for _, r := range s {
		idx, err := sf.GlyphIndex(&buf, r)
		if err != nil {
			return nil, 0, fmt.Errorf("raster: failed to map %q: %w", r, err)
		}
		adv, err := sf.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, 0, fmt.Errorf("raster: failed to measure %q: %w", r, err)
		}
		glyphs = append(glyphs, placed{idx: idx, x: advance})
		advance += fixedToFloat(adv)
	}

	originX := cx - advance/2
	baseline := cy + (fixedToFloat(metrics.Ascent)-fixedToFloat(metrics.Descent))/2

	var contours [][]Point
	for _, gl := range glyphs {
		segs, err := sf.LoadGlyph(&buf, gl.idx, ppem, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("raster: failed to load glyph %d: %w", gl.idx, err)
		}
		contours = append(contours, flatten(segs, originX+gl.x, baseline)...)
	}
	return contours, advance, nil
}

// flatten converts glyph segments into closed polylines offset by (ox, oy).
func flatten(segs sfnt.Segments, ox, oy float64) [][]Point {
	pt := func(p fixed.Point26_6) Point {
		return Point{X: ox + fixedToFloat(p.X), Y: oy + fixedToFloat(p.Y)}
	}
	var out [][]Point
	var cur []Point
	for _, s := range segs {
		if s.Op == sfnt.SegmentOpMoveTo {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = []Point{pt(s.Args[0])}
			continue
		}
		if len(cur) == 0 {
			cur = append(cur, Point{X: ox, Y: oy})
		}
		from := cur[len(cur)-1]
		switch s.Op {
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			cur = appendQuad(cur, from, pt(s.Args[0]), pt(s.Args[1]))
		case sfnt.SegmentOpCubeTo:
			cur = appendCubic(cur, from, pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2]))
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func appendQuad(dst []Point, p0, p1, p2 Point) []Point {
	n := curveSteps(dist(p0, p1) + dist(p1, p2))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		dst = append(dst, Point{
			X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		})
	}
	return dst
}

func appendCubic(dst []Point, p0, p1, p2, p3 Point) []Point {
	n := curveSteps(dist(p0, p1) + dist(p1, p2) + dist(p2, p3))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		dst = append(dst, Point{
			X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
			Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
		})
	}
	return dst
}

// curveSteps picks roughly one line segment per 3 px of control polygon.
func curveSteps(length float64) int {
	n := int(math.Ceil(length / 3))
	if n < 2 {
		return 2
	}
	if n > 32 {
		return 32
	}
	return n
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
