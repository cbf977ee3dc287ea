package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/kanadraw/internal/config"
	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/raster"
	"github.com/verte-zerg/kanadraw/internal/score"
)

func validConfig() model.Config {
	return model.Config{
		StageLength: 10,
		WeakTop:     8,
		WeakFactor:  2,
		WeakWindow:  20,
		CanvasSize:  raster.DefaultSize,
		StrokeWidth: raster.DefaultStrokeWidth,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := map[string]func(*model.Config){
		"--stage-length": func(c *model.Config) { c.StageLength = 0 },
		"--weak-factor":  func(c *model.Config) { c.WeakFactor = -1 },
		"--size":         func(c *model.Config) { c.CanvasSize = 8 },
		"--stroke-width": func(c *model.Config) { c.StrokeWidth = float64(c.CanvasSize) },
	}
	for flag, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		err := validateConfig(cfg)
		if err == nil || !strings.HasPrefix(err.Error(), flag) {
			t.Fatalf("%s: expected flag error, got %v", flag, err)
		}
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var size int
	var groups []string
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&size, "size", 320, "")
	cmd.Flags().StringSliceVar(&groups, "groups", nil, "")
	if err := cmd.Flags().Parse([]string{"--size", "200"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	fileSize := 500
	fileGroups := []string{"k_a", "k_ka"}
	applyIntConfig(cmd, "size", &size, &fileSize)
	applyStringSliceConfig(cmd, "groups", &groups, &fileGroups)
	if size != 200 {
		t.Fatalf("expected flag to win, got %d", size)
	}
	if len(groups) != 2 || groups[1] != "k_ka" {
		t.Fatalf("expected config groups, got %v", groups)
	}
	fileGroups[0] = "changed"
	if groups[0] != "k_a" {
		t.Fatalf("expected a copy of config groups")
	}
}

func TestScoringPolicyOverrides(t *testing.T) {
	pass := 0.5
	p, err := scoringPolicy(config.ScoringConfig{PassScore: &pass})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PassScore != 0.5 || p.PrecisionWeight != score.DefaultPolicy.PrecisionWeight {
		t.Fatalf("unexpected policy %+v", p)
	}
	bad := 1.5
	if _, err := scoringPolicy(config.ScoringConfig{MinRecall: &bad}); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestValidateScript(t *testing.T) {
	for _, s := range []string{"", "hiragana", "Katakana"} {
		if err := validateScript("--script", s); err != nil {
			t.Fatalf("%q: unexpected error %v", s, err)
		}
	}
	if err := validateScript("--script", "latin"); err == nil {
		t.Fatalf("expected error for unknown script")
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Practice.Groups != nil || cfg.Canvas.Size != nil || cfg.Scoring.PassScore != nil {
		t.Fatalf("expected every template value commented out, got %+v", cfg)
	}
}

func TestWriteMapsWithThumbnails(t *testing.T) {
	ink := raster.NewBitmap(32, 32)
	target := raster.NewBitmap(32, 32)
	diag, err := raster.Diagnose(ink, target)
	if err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "maps")
	if err := writeMaps(dir, diag, 8); err != nil {
		t.Fatalf("write maps: %v", err)
	}
	thumb, err := raster.ReadPNGFile(filepath.Join(dir, "recall_8.png"))
	if err != nil {
		t.Fatalf("read thumbnail: %v", err)
	}
	if thumb.Width() != 8 || thumb.Height() != 8 {
		t.Fatalf("unexpected thumbnail size %dx%d", thumb.Width(), thumb.Height())
	}
	if _, err := os.Stat(filepath.Join(dir, "overlay.png")); err != nil {
		t.Fatalf("expected overlay: %v", err)
	}
}

func TestDefaultFontDrawsBuiltinKana(t *testing.T) {
	font, err := loadFont("")
	if err != nil {
		t.Fatalf("load default font: %v", err)
	}
	dict := kana.Builtin()
	chars, err := dict.CharactersFor(dict.SortedKeys())
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	for _, ch := range chars {
		if !font.Covers(ch) {
			t.Fatalf("default font cannot draw %q", ch)
		}
	}
	fontPath, canvasSize = "", raster.DefaultSize
	target, err := renderTarget("きゃ")
	if err != nil || target.Footprint() == 0 {
		t.Fatalf("expected rendered target, err=%v", err)
	}
}
