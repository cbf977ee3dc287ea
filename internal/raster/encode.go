package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// EncodePNG writes b to w as PNG.
func EncodePNG(w io.Writer, b *Bitmap) error {
	if err := png.Encode(w, b.img); err != nil {
		return fmt.Errorf("raster: failed to encode png: %w", err)
	}
	return nil
}

// WritePNGFile writes b to path as PNG.
func WritePNGFile(path string, b *Bitmap) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster: failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return EncodePNG(f, b)
}

// ReadPNGFile decodes a PNG file into a Bitmap.
func ReadPNGFile(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster: failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster: failed to decode %s: %w", path, err)
	}
	return BitmapFromImage(img), nil
}

// ErrOpaqueInk is returned for a drawing with no transparent background.
var ErrOpaqueInk = errors.New("raster: ink has no transparent background")

// ReadInkPNGFile decodes a drawing saved as PNG. Ink is read from the alpha
// channel, so a PNG without a single transparent pixel is rejected instead
// of being scored as fully drawn.
func ReadInkPNGFile(path string) (*Bitmap, error) {
	b, err := ReadPNGFile(path)
	if err != nil {
		return nil, err
	}
	if b.Width() > 0 && b.Footprint() == b.Width()*b.Height() {
		return nil, fmt.Errorf("%w: %s", ErrOpaqueInk, path)
	}
	return b, nil
}

// DataURL returns b as a data:image/png;base64 URL.
func DataURL(b *Bitmap) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, b); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Thumbnail returns a w×h bilinear downscale of b.
func Thumbnail(b *Bitmap, w, h int) *Bitmap {
	out := NewBitmap(w, h)
	if w == 0 || h == 0 || b.Width() == 0 || b.Height() == 0 {
		return out
	}
	draw.BiLinear.Scale(out.img, out.img.Rect, b.img, b.img.Rect, draw.Src, nil)
	return out
}

// Flatten returns b composited over an opaque background colour.
func Flatten(b *Bitmap, bg image.Image) *Bitmap {
	out := NewBitmap(b.Width(), b.Height())
	draw.Draw(out.img, out.img.Rect, bg, image.Point{}, draw.Src)
	draw.Draw(out.img, out.img.Rect, b.img, image.Point{}, draw.Over)
	return out
}
