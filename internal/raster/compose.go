package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Layer opacities used when stacking bitmaps.
const (
	HintOpacity          = 0.12
	OverlayTargetOpacity = 0.10
	OverlayInkOpacity    = 0.48
)

// GridColor is the colour of the quartering guide lines.
var GridColor = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

// Grid returns a transparent w×h bitmap with 1 px guide lines splitting the
// canvas into quarters both ways.
func Grid(w, h int) *Bitmap {
	bmp := NewBitmap(w, h)
	src := image.NewUniform(GridColor)
	for i := 1; i < 4; i++ {
		x := w * i / 4
		y := h * i / 4
		draw.Draw(bmp.img, image.Rect(x, 0, x+1, h), src, image.Point{}, draw.Src)
		draw.Draw(bmp.img, image.Rect(0, y, w, y+1), src, image.Point{}, draw.Src)
	}
	return bmp
}

// Compose stacks background, hint and ink into a new bitmap.
//
// hint may be nil. It is drawn at HintOpacity; the other layers are drawn
// at full strength, in order, source-over. The inputs are not modified.
func Compose(background, hint, ink *Bitmap) (*Bitmap, error) {
	layers := []*Bitmap{background, ink}
	if hint != nil {
		layers = append(layers, hint)
	}
	if err := sameSize(layers...); err != nil {
		return nil, err
	}

	out := background.Clone()
	if hint != nil {
		blend(out, hint, HintOpacity)
	}
	blend(out, ink, 1)
	return out, nil
}

// blend draws src over dst with its alpha scaled by op.
func blend(dst, src *Bitmap, op float64) {
	a := opacity(op)
	switch a {
	case 0:
		return
	case 0xff:
		draw.Draw(dst.img, dst.img.Rect, src.img, image.Point{}, draw.Over)
	default:
		mask := image.NewUniform(color.Alpha{A: a})
		draw.DrawMask(dst.img, dst.img.Rect, src.img, image.Point{}, mask, image.Point{}, draw.Over)
	}
}
