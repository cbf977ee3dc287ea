// Package raster holds the pixel buffers of a drawing question and the pure
// functions that paint, combine and inspect them.
//
// Every buffer is a Bitmap: a fixed-size premultiplied RGBA grid. The target
// glyph, the user's ink and the visible composite are separate Bitmaps so
// that any one of them can be regenerated without touching the others.
package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// AlphaThreshold is the alpha value a pixel must exceed to count as painted.
const AlphaThreshold = 10

// DefaultSize is the edge length of the square drawing canvas.
const DefaultSize = 320

// ErrSizeMismatch is returned when two bitmaps of one question differ in size.
var ErrSizeMismatch = errors.New("raster: bitmap sizes differ")

// Bitmap is a fixed-size RGBA pixel buffer anchored at the origin.
type Bitmap struct {
	img *image.RGBA
}

// NewBitmap allocates a fully transparent w×h bitmap.
func NewBitmap(w, h int) *Bitmap {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Bitmap{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// BitmapFromImage copies any image into a new origin-anchored Bitmap.
func BitmapFromImage(src image.Image) *Bitmap {
	b := src.Bounds()
	out := NewBitmap(b.Dx(), b.Dy())
	draw.Draw(out.img, out.img.Bounds(), src, b.Min, draw.Src)
	return out
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.img.Rect.Dx() }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.img.Rect.Dy() }

// Bounds returns the pixel rectangle, always starting at (0, 0).
func (b *Bitmap) Bounds() image.Rectangle { return b.img.Rect }

// Image exposes the underlying buffer for encoding and drawing.
func (b *Bitmap) Image() *image.RGBA { return b.img }

// AlphaAt returns the alpha channel at (x, y), or 0 outside the bitmap.
func (b *Bitmap) AlphaAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}).In(b.img.Rect) {
		return 0
	}
	return b.img.Pix[b.img.PixOffset(x, y)+3]
}

// Opaque reports whether the pixel at (x, y) counts as painted.
func (b *Bitmap) Opaque(x, y int) bool {
	return b.AlphaAt(x, y) > AlphaThreshold
}

// Footprint counts the painted pixels.
func (b *Bitmap) Footprint() int {
	n := 0
	for i := 3; i < len(b.img.Pix); i += 4 {
		if b.img.Pix[i] > AlphaThreshold {
			n++
		}
	}
	return n
}

// Clear makes every pixel transparent.
func (b *Bitmap) Clear() {
	clear(b.img.Pix)
}

// Clone returns an independent copy.
func (b *Bitmap) Clone() *Bitmap {
	img := image.NewRGBA(b.img.Rect)
	copy(img.Pix, b.img.Pix)
	return &Bitmap{img: img}
}

// SameSize reports whether o has the same dimensions.
func (b *Bitmap) SameSize(o *Bitmap) bool {
	return o != nil && b.img.Rect.Eq(o.img.Rect)
}

// Equal reports whether both bitmaps hold identical pixels.
func (b *Bitmap) Equal(o *Bitmap) bool {
	return b.SameSize(o) && bytes.Equal(b.img.Pix, o.img.Pix)
}

// Fill paints every pixel with c, replacing what was there.
func (b *Bitmap) Fill(c color.Color) {
	draw.Draw(b.img, b.img.Rect, image.NewUniform(c), image.Point{}, draw.Src)
}

func sameSize(bitmaps ...*Bitmap) error {
	if len(bitmaps) == 0 {
		return nil
	}
	first := bitmaps[0]
	if first == nil {
		return errors.New("raster: nil bitmap")
	}
	for _, b := range bitmaps[1:] {
		if b == nil {
			return errors.New("raster: nil bitmap")
		}
		if !first.SameSize(b) {
			return ErrSizeMismatch
		}
	}
	return nil
}
