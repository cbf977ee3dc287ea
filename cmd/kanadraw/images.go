package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/kanadraw/internal/config"
	"github.com/verte-zerg/kanadraw/internal/logging"
	"github.com/verte-zerg/kanadraw/internal/raster"
)

var (
	renderOut     string
	renderHint    bool
	renderDataURL bool

	scoreOutDir string
	scoreThumb  int
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <char>",
		Short: "Render the target glyph of a character to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  runRenderCmd,
	}
	cmd.Flags().StringVarP(&renderOut, "out", "o", "", "output PNG path")
	cmd.Flags().BoolVar(&renderHint, "hint", false, "render the grid with the faint hint instead of the bare target")
	cmd.Flags().BoolVar(&renderDataURL, "data-url", false, "print a PNG data URL to stdout")
	addCanvasFlags(cmd)
	return cmd
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	if renderOut == "" && !renderDataURL {
		return fmt.Errorf("--out or --data-url is required")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyCanvasConfig(cmd, fileCfg.Canvas)
	if err := validateCanvas(canvasSize, strokeWidth); err != nil {
		return err
	}
	closeLog, err := initLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	target, err := renderTarget(args[0])
	if err != nil {
		return err
	}
	out := target
	if renderHint {
		out, err = raster.Compose(raster.Grid(canvasSize, canvasSize), target, raster.NewBitmap(canvasSize, canvasSize))
		if err != nil {
			return fmt.Errorf("failed to compose hint: %w", err)
		}
	}

	if renderOut != "" {
		if err := raster.WritePNGFile(renderOut, out); err != nil {
			return fmt.Errorf("failed to write %s: %w", renderOut, err)
		}
		logging.L().Info("rendered target", "char", args[0], "path", renderOut, "pixels", target.Footprint())
	}
	if renderDataURL {
		url, err := raster.DataURL(out)
		if err != nil {
			return fmt.Errorf("failed to encode data URL: %w", err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), url); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

const scoreLong = `Score a drawing stored as PNG against a character.

Ink is read from the alpha channel, so draw on a transparent background.
Opaque images such as scans or photos are rejected. The image must be
square and is scored at its own size.`

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <char> <ink.png>",
		Short: "Score a drawing stored as PNG against a character",
		Long:  scoreLong,
		Args:  cobra.ExactArgs(2),
		RunE:  runScoreCmd,
	}
	cmd.Flags().StringVar(&scoreOutDir, "out", "", "directory for overlay, precision and recall maps")
	cmd.Flags().IntVar(&scoreThumb, "thumb", 0, "also write thumbnails of the maps at this size (0 disables)")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType/OpenType font with kana glyphs (default: bundled M+ 1p)")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	char, inkPath := args[0], args[1]
	if scoreThumb < 0 {
		return fmt.Errorf("--thumb must be >= 0")
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "font", &fontPath, fileCfg.Canvas.Font)
	policy, err := scoringPolicy(fileCfg.Scoring)
	if err != nil {
		return err
	}
	closeLog, err := initLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	ink, err := raster.ReadInkPNGFile(inkPath)
	if err != nil {
		return fmt.Errorf("failed to read ink: %w", err)
	}
	if ink.Width() != ink.Height() {
		return fmt.Errorf("ink must be square, got %dx%d", ink.Width(), ink.Height())
	}
	canvasSize = ink.Width()
	target, err := renderTarget(char)
	if err != nil {
		return err
	}
	rec, err := policy.Score(ink, target)
	if err != nil {
		return fmt.Errorf("failed to score: %w", err)
	}

	verdict := "Not quite."
	if rec.Correct {
		verdict = "Correct!"
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(),
		"%s  %s\nScore %.1f%% · Precision %.1f%% · Recall %.1f%%\nDrawn %d px · Target %d px · Overlap %d px\n",
		char, verdict, rec.Score*100, rec.Precision*100, rec.Recall*100, rec.Drawn, rec.Target, rec.Intersection,
	); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if scoreOutDir == "" {
		return nil
	}
	diag, err := raster.Diagnose(ink, target)
	if err != nil {
		return fmt.Errorf("failed to build maps: %w", err)
	}
	return writeMaps(scoreOutDir, diag, scoreThumb)
}

func renderTarget(char string) (*raster.Bitmap, error) {
	font, err := loadFont(fontPath)
	if err != nil {
		return nil, err
	}
	target, err := raster.NewGlyphRasterizer(font).RenderTarget(char, canvasSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render %q with %s: %w", char, font.Name(), err)
	}
	return target, nil
}

func writeMaps(dir string, diag raster.Diagnostics, thumb int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	maps := []struct {
		name string
		b    *raster.Bitmap
	}{
		{"overlay", diag.Overlay},
		{"precision", diag.PrecisionMap},
		{"recall", diag.RecallMap},
	}
	for _, m := range maps {
		path := filepath.Join(dir, m.name+".png")
		if err := raster.WritePNGFile(path, m.b); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if thumb == 0 {
			continue
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.png", m.name, thumb))
		if err := raster.WritePNGFile(path, raster.Thumbnail(m.b, thumb, thumb)); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	logging.L().Info("wrote diagnostic maps", "dir", dir, "thumb", thumb)
	return nil
}
