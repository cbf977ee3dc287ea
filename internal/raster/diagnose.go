package raster

import "image/color"

// Diagnostic map colours, straight (non-premultiplied) alpha.
var (
	HitColor       = color.NRGBA{R: 30, G: 200, B: 30, A: 180}
	MissColor      = color.NRGBA{R: 220, G: 40, B: 40, A: 180}
	CoveredColor   = color.NRGBA{R: 30, G: 200, B: 30, A: 160}
	UncoveredColor = color.NRGBA{R: 240, G: 140, B: 20, A: 160}
)

// Diagnostics are the three images shown after a submission.
type Diagnostics struct {
	// Overlay is the grid with the target faintly underneath the ink.
	Overlay *Bitmap
	// PrecisionMap marks every inked pixel as on or off the target.
	PrecisionMap *Bitmap
	// RecallMap marks every target pixel as covered or missed by ink.
	RecallMap *Bitmap
}

// Diagnose builds the overlay and the precision and recall maps for ink
// against target. Pixels outside the relevant set stay transparent.
func Diagnose(ink, target *Bitmap) (Diagnostics, error) {
	if err := sameSize(ink, target); err != nil {
		return Diagnostics{}, err
	}
	w, h := ink.Width(), ink.Height()

	overlay := Grid(w, h)
	blend(overlay, target, OverlayTargetOpacity)
	blend(overlay, ink, OverlayInkOpacity)

	prec := NewBitmap(w, h)
	rec := NewBitmap(w, h)
	hit, miss := premultiply(HitColor), premultiply(MissColor)
	covered, uncovered := premultiply(CoveredColor), premultiply(UncoveredColor)

	dp, tp := ink.img.Pix, target.img.Pix
	for i := 3; i < len(dp); i += 4 {
		d := dp[i] > AlphaThreshold
		t := tp[i] > AlphaThreshold
		if d {
			if t {
				putPixel(prec.img.Pix, i-3, hit)
			} else {
				putPixel(prec.img.Pix, i-3, miss)
			}
		}
		if t {
			if d {
				putPixel(rec.img.Pix, i-3, covered)
			} else {
				putPixel(rec.img.Pix, i-3, uncovered)
			}
		}
	}

	return Diagnostics{Overlay: overlay, PrecisionMap: prec, RecallMap: rec}, nil
}

func premultiply(c color.NRGBA) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func putPixel(pix []uint8, off int, c color.RGBA) {
	pix[off] = c.R
	pix[off+1] = c.G
	pix[off+2] = c.B
	pix[off+3] = c.A
}
