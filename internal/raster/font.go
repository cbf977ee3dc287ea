package raster

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed OpenType/TrueType font used as the glyph source.
//
// Fonts are always loaded from explicit bytes so that the rendered target,
// and therefore every score, is the same on every machine.
type Font struct {
	sf   *sfnt.Font
	name string
}

// ParseFont parses TrueType or OpenType font data.
func ParseFont(data []byte) (*Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("raster: failed to parse font: %w", err)
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		name = ""
	}
	return &Font{sf: f, name: name}, nil
}

// LoadFont reads and parses a font file.
func LoadFont(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("raster: failed to read font: %w", err)
	}
	return ParseFont(data)
}

// DefaultFont returns the bundled M+ 1p Regular font, which covers
// hiragana, katakana and the small kana used in yoon.
func DefaultFont() (*Font, error) {
	return ParseFont(fonts.MPlus1pRegular_ttf)
}

// Name returns the font family name, if the font declares one.
func (f *Font) Name() string {
	return f.name
}

// HasGlyph reports whether the font maps r to a real glyph.
func (f *Font) HasGlyph(r rune) bool {
	var buf sfnt.Buffer
	idx, err := f.sf.GlyphIndex(&buf, r)
	return err == nil && idx != 0
}

// Covers reports whether every rune of s has a glyph.
func (f *Font) Covers(s string) bool {
	for _, r := range s {
		if !f.HasGlyph(r) {
			return false
		}
	}
	return true
}
