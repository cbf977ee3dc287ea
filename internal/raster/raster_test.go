package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func paintRect(b *Bitmap, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Image().SetRGBA(x, y, color.RGBA{A: 0xff})
		}
	}
}

func TestBitmapFootprintUsesThreshold(t *testing.T) {
	b := NewBitmap(4, 1)
	b.Image().SetRGBA(0, 0, color.RGBA{A: AlphaThreshold})
	b.Image().SetRGBA(1, 0, color.RGBA{A: AlphaThreshold + 1})
	b.Image().SetRGBA(2, 0, color.RGBA{A: 0xff})
	if got := b.Footprint(); got != 2 {
		t.Fatalf("expected footprint 2, got %d", got)
	}
	if b.Opaque(0, 0) || !b.Opaque(1, 0) {
		t.Fatalf("threshold must be strictly greater than %d", AlphaThreshold)
	}
	if b.AlphaAt(-1, 0) != 0 || b.AlphaAt(4, 0) != 0 {
		t.Fatalf("expected zero alpha outside bounds")
	}
}

func TestBitmapCloneIsIndependent(t *testing.T) {
	b := NewBitmap(3, 3)
	paintRect(b, image.Rect(0, 0, 1, 1))
	c := b.Clone()
	if !b.Equal(c) {
		t.Fatalf("expected clone to equal source")
	}
	c.Clear()
	if b.Footprint() != 1 || c.Footprint() != 0 {
		t.Fatalf("clear on clone leaked into source")
	}
}

func TestInkLayerStrokes(t *testing.T) {
	ink := NewInkLayer(100, 100, DefaultStrokeWidth)

	ink.ExtendStroke(Point{X: 10, Y: 10})
	if !ink.Empty() {
		t.Fatalf("move without pen down must not paint")
	}

	ink.BeginStroke(Point{X: 20, Y: 50})
	if !ink.Empty() || !ink.Drawing() {
		t.Fatalf("pen down alone must not paint")
	}
	ink.ExtendStroke(Point{X: 80, Y: 50})
	ink.EndStroke()

	if ink.Empty() || ink.Drawing() {
		t.Fatalf("expected painted layer with pen up")
	}
	bmp := ink.Bitmap()
	if got := bmp.AlphaAt(50, 50); got != 0xff {
		t.Fatalf("expected solid ink on the line, got alpha %d", got)
	}
	if !bmp.Opaque(50, 53) {
		t.Fatalf("expected ink within half the stroke width")
	}
	if bmp.Opaque(50, 60) {
		t.Fatalf("unexpected ink beyond the stroke width")
	}
	if !bmp.Opaque(17, 50) {
		t.Fatalf("expected round cap past the first point")
	}

	// A second pass over the same line must saturate, not cancel.
	ink.BeginStroke(Point{X: 20, Y: 50})
	ink.ExtendStroke(Point{X: 80, Y: 50})
	ink.EndStroke()
	if got := bmp.AlphaAt(50, 50); got != 0xff {
		t.Fatalf("overlapping strokes cancelled: alpha %d", got)
	}
	if ink.Strokes() != 2 {
		t.Fatalf("expected 2 strokes, got %d", ink.Strokes())
	}

	ink.Clear()
	if !ink.Empty() || bmp.Footprint() != 0 {
		t.Fatalf("expected clear to erase all ink")
	}
}

func TestGridLines(t *testing.T) {
	g := Grid(8, 8)
	if g.AlphaAt(2, 0) != 0xff || g.AlphaAt(0, 4) != 0xff {
		t.Fatalf("expected guide lines at quarter marks")
	}
	if g.AlphaAt(1, 1) != 0 {
		t.Fatalf("expected transparent field between lines")
	}
}

func TestComposeOrderAndDeterminism(t *testing.T) {
	bg := Grid(40, 40)
	hint := NewBitmap(40, 40)
	paintRect(hint, image.Rect(0, 0, 40, 40))
	ink := NewBitmap(40, 40)
	paintRect(ink, image.Rect(5, 5, 8, 8))
	before := ink.Clone()

	a, err := Compose(bg, hint, ink)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	b, err := Compose(bg, hint, ink)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected identical output for identical inputs")
	}
	if !ink.Equal(before) {
		t.Fatalf("compose modified the ink layer")
	}
	if got := a.AlphaAt(6, 6); got != 0xff {
		t.Fatalf("expected ink at full opacity, got %d", got)
	}
	if got := a.AlphaAt(1, 1); got < 25 || got > 40 {
		t.Fatalf("expected faint hint alpha near 31, got %d", got)
	}
	if got := a.Image().RGBAAt(10, 1); got.A != 0xff {
		t.Fatalf("hint must not attenuate the grid, got %v", got)
	}

	plain, err := Compose(bg, nil, ink)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if plain.AlphaAt(1, 1) != 0 {
		t.Fatalf("expected no hint when hint is nil")
	}
}

func TestComposeSizeMismatch(t *testing.T) {
	_, err := Compose(NewBitmap(10, 10), nil, NewBitmap(12, 10))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestDiagnoseMaps(t *testing.T) {
	ink := NewBitmap(4, 1)
	target := NewBitmap(4, 1)
	// x=0 hit, x=1 stray ink, x=2 missed target, x=3 empty.
	paintRect(ink, image.Rect(0, 0, 2, 1))
	paintRect(target, image.Rect(0, 0, 1, 1))
	paintRect(target, image.Rect(2, 0, 3, 1))

	d, err := Diagnose(ink, target)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}

	p := d.PrecisionMap.Image()
	if c := p.RGBAAt(0, 0); c.A != HitColor.A || c.G <= c.R {
		t.Fatalf("expected green hit, got %v", c)
	}
	if c := p.RGBAAt(1, 0); c.A != MissColor.A || c.R <= c.G {
		t.Fatalf("expected red miss, got %v", c)
	}
	if p.RGBAAt(2, 0).A != 0 || p.RGBAAt(3, 0).A != 0 {
		t.Fatalf("precision map must only mark inked pixels")
	}

	r := d.RecallMap.Image()
	if c := r.RGBAAt(0, 0); c.A != CoveredColor.A || c.G <= c.R {
		t.Fatalf("expected green covered, got %v", c)
	}
	if c := r.RGBAAt(2, 0); c.A != UncoveredColor.A || c.R <= c.B {
		t.Fatalf("expected orange uncovered, got %v", c)
	}
	if r.RGBAAt(1, 0).A != 0 || r.RGBAAt(3, 0).A != 0 {
		t.Fatalf("recall map must only mark target pixels")
	}

	if _, err := Diagnose(ink, NewBitmap(5, 1)); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestDiagnoseOverlay(t *testing.T) {
	ink := NewBitmap(40, 40)
	target := NewBitmap(40, 40)
	paintRect(ink, image.Rect(4, 4, 6, 6))
	paintRect(target, image.Rect(34, 34, 36, 36))

	d, err := Diagnose(ink, target)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	if got := d.Overlay.AlphaAt(5, 5); got < 115 || got > 130 {
		t.Fatalf("expected ink near 48%% in overlay, got %d", got)
	}
	if got := d.Overlay.AlphaAt(35, 35); got < 20 || got > 32 {
		t.Fatalf("expected target near 10%% in overlay, got %d", got)
	}
	if d.Overlay.AlphaAt(10, 0) != 0xff {
		t.Fatalf("expected grid in overlay")
	}
}

// inkBounds returns the bounding box of the opaque pixels of b.
func inkBounds(b *Bitmap) image.Rectangle {
	minX, minY, maxX, maxY := b.Width(), b.Height(), -1, -1
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			if !b.Opaque(x, y) {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func TestRenderTargetDefaultFont(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	g := NewGlyphRasterizer(f)
	fillAlpha := opacity(FillOpacity)

	for _, char := range []string{"あ", "きゃ", "シャ", "ん", "A"} {
		t.Run(char, func(t *testing.T) {
			if !f.Covers(char) {
				t.Fatalf("default font does not cover %q", char)
			}
			a, err := g.RenderTarget(char, DefaultSize)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			b, _ := g.RenderTarget(char, DefaultSize)
			if !a.Equal(b) {
				t.Fatalf("expected deterministic rendering")
			}
			if a.Footprint() == 0 {
				t.Fatalf("expected painted target")
			}

			box := inkBounds(a)
			if box.Min.X == 0 || box.Min.Y == 0 || box.Max.X == DefaultSize || box.Max.Y == DefaultSize {
				t.Fatalf("glyph clipped by the canvas: bbox %v", box)
			}
			cx, cy := (box.Min.X+box.Max.X)/2, (box.Min.Y+box.Max.Y)/2
			if cx < 130 || cx > 190 || cy < 120 || cy > 200 {
				t.Fatalf("glyph not centred: bbox %v", box)
			}

			var outline, fill int
			for y := box.Min.Y; y < box.Max.Y; y++ {
				for x := box.Min.X; x < box.Max.X; x++ {
					switch a.AlphaAt(x, y) {
					case 0xff:
						outline++
					case fillAlpha:
						fill++
					}
				}
			}
			if outline == 0 || fill == 0 {
				t.Fatalf("expected outline band and faint fill, got %d outline and %d fill pixels", outline, fill)
			}
		})
	}
}

func TestRenderTargetYoonFitsCanvas(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	g := NewGlyphRasterizer(f)

	single, err := g.RenderTarget("き", DefaultSize)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	pair, err := g.RenderTarget("きゃ", DefaultSize)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	one, two := inkBounds(single), inkBounds(pair)
	if two.Dx() <= one.Dx() {
		t.Fatalf("expected the pair wider than one kana: %v vs %v", two, one)
	}
	if two.Dy() >= one.Dy() {
		t.Fatalf("expected the pair scaled down to fit: %v vs %v", two, one)
	}
}

func TestRenderTargetDegenerate(t *testing.T) {
	f, err := DefaultFont()
	if err != nil {
		t.Fatalf("default font: %v", err)
	}
	g := NewGlyphRasterizer(f)

	blank, err := g.RenderTarget("", 64)
	if err != nil || blank.Footprint() != 0 {
		t.Fatalf("expected blank bitmap for empty char, err=%v", err)
	}

	latin, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}
	missing, err := NewGlyphRasterizer(latin).RenderTarget("あ", 64)
	if !errors.Is(err, ErrGlyphMissing) {
		t.Fatalf("expected ErrGlyphMissing, got %v", err)
	}
	if missing == nil || missing.Footprint() != 0 || missing.Width() != 64 {
		t.Fatalf("expected blank 64px bitmap for missing glyph")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	b := NewBitmap(6, 6)
	paintRect(b, image.Rect(1, 1, 4, 4))

	path := filepath.Join(t.TempDir(), "ink.png")
	if err := WritePNGFile(path, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadPNGFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !got.Equal(b) {
		t.Fatalf("png round trip changed pixels")
	}

	url, err := DataURL(b)
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected data url prefix: %.30s", url)
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, b); err != nil || buf.Len() == 0 {
		t.Fatalf("expected encoded bytes, err=%v", err)
	}
}

func TestReadInkRejectsOpaqueImages(t *testing.T) {
	dir := t.TempDir()

	drawn := NewBitmap(8, 8)
	paintRect(drawn, image.Rect(2, 2, 5, 5))
	inkPath := filepath.Join(dir, "ink.png")
	if err := WritePNGFile(inkPath, drawn); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadInkPNGFile(inkPath)
	if err != nil || !got.Equal(drawn) {
		t.Fatalf("expected transparent ink to load unchanged, err=%v", err)
	}

	scan := Flatten(drawn, image.NewUniform(color.White))
	scanPath := filepath.Join(dir, "scan.png")
	if err := WritePNGFile(scanPath, scan); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadInkPNGFile(scanPath); !errors.Is(err, ErrOpaqueInk) {
		t.Fatalf("expected ErrOpaqueInk for an opaque image, got %v", err)
	}

	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		t.Fatalf("encode: %v", err)
	}
	grayPath := filepath.Join(dir, "gray.png")
	if err := os.WriteFile(grayPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadInkPNGFile(grayPath); !errors.Is(err, ErrOpaqueInk) {
		t.Fatalf("expected ErrOpaqueInk for a grayscale image, got %v", err)
	}
}

func TestThumbnail(t *testing.T) {
	b := NewBitmap(320, 320)
	paintRect(b, image.Rect(0, 0, 320, 320))
	th := Thumbnail(b, 160, 160)
	if th.Width() != 160 || th.Height() != 160 {
		t.Fatalf("unexpected thumbnail size %dx%d", th.Width(), th.Height())
	}
	if th.AlphaAt(80, 80) != 0xff {
		t.Fatalf("expected solid thumbnail")
	}
}
