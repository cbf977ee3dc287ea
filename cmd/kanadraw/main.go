// Package main provides the CLI entrypoint for kanadraw.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/kanadraw/internal/config"
	"github.com/verte-zerg/kanadraw/internal/generator"
	"github.com/verte-zerg/kanadraw/internal/kana"
	"github.com/verte-zerg/kanadraw/internal/logging"
	"github.com/verte-zerg/kanadraw/internal/model"
	"github.com/verte-zerg/kanadraw/internal/pool"
	"github.com/verte-zerg/kanadraw/internal/raster"
	"github.com/verte-zerg/kanadraw/internal/score"
	"github.com/verte-zerg/kanadraw/internal/session"
	"github.com/verte-zerg/kanadraw/internal/stats"
	"github.com/verte-zerg/kanadraw/internal/statsui"
	"github.com/verte-zerg/kanadraw/internal/store"
	"github.com/verte-zerg/kanadraw/internal/tui"
)

const (
	defaultGroup       = "h_a"
	defaultPrompt      = string(session.PromptKana)
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 20
	defaultLogLevel    = "warn"
	minCanvasSize      = 32
	maxCanvasSize      = 2048
)

var (
	practiceGroups      []string
	practiceStageLength int
	practicePrompt      string
	practiceHint        bool
	practiceLock        bool
	practiceFocusWeak   bool
	practiceWeakTop     int
	practiceWeakFactor  float64
	practiceWeakWindow  int
	practicePoolFile    string

	canvasSize  int
	strokeWidth float64
	fontPath    string

	logLevel string

	statsScript      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsChars       string
	statsPlain       bool

	groupsScript string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kanadraw",
		Short:         "Kana handwriting trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().StringSliceVar(&practiceGroups, "groups", nil, "kana groups to practice (see: kanadraw groups)")
	rootCmd.Flags().IntVar(&practiceStageLength, "stage-length", session.DefaultStageLength, "correct drawings needed to clear a stage")
	rootCmd.Flags().StringVar(&practicePrompt, "prompt", defaultPrompt, "prompt type: kana or romaji")
	rootCmd.Flags().BoolVar(&practiceHint, "hint", false, "show the target faintly under the ink")
	rootCmd.Flags().BoolVar(&practiceLock, "lock", false, "stay on the current stage")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias practice toward weak kana")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak kana to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak kana")
	rootCmd.Flags().IntVar(&practiceWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak kana")
	rootCmd.Flags().StringVar(&practicePoolFile, "pool-file", "", "extra characters (.txt or .yaml)")
	addCanvasFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGroupsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newScoreCmd())

	return rootCmd
}

func addCanvasFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&canvasSize, "size", raster.DefaultSize, "canvas size in pixels")
	cmd.Flags().Float64Var(&strokeWidth, "stroke-width", raster.DefaultStrokeWidth, "pen width in pixels")
	cmd.Flags().StringVar(&fontPath, "font", "", "TrueType/OpenType font with kana glyphs (default: bundled M+ 1p)")
}

func applyCanvasConfig(cmd *cobra.Command, fileCfg config.CanvasConfig) {
	applyIntConfig(cmd, "size", &canvasSize, fileCfg.Size)
	applyFloatConfig(cmd, "stroke-width", &strokeWidth, fileCfg.StrokeWidth)
	applyStringConfig(cmd, "font", &fontPath, fileCfg.Font)
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringSliceConfig(cmd, "groups", &practiceGroups, fileCfg.Practice.Groups)
	applyIntConfig(cmd, "stage-length", &practiceStageLength, fileCfg.Practice.StageLength)
	applyStringConfig(cmd, "prompt", &practicePrompt, fileCfg.Practice.Prompt)
	applyBoolConfig(cmd, "hint", &practiceHint, fileCfg.Practice.Hint)
	applyBoolConfig(cmd, "lock", &practiceLock, fileCfg.Practice.Locked)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, fileCfg.Practice.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, fileCfg.Practice.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, fileCfg.Practice.WeakFactor)
	applyIntConfig(cmd, "weak-window", &practiceWeakWindow, fileCfg.Practice.WeakWindow)
	applyStringConfig(cmd, "pool-file", &practicePoolFile, fileCfg.Practice.PoolFile)
	applyCanvasConfig(cmd, fileCfg.Canvas)

	cfg := model.Config{
		Groups:      practiceGroups,
		StageLength: practiceStageLength,
		Prompt:      practicePrompt,
		Hint:        practiceHint,
		Locked:      practiceLock,
		FocusWeak:   practiceFocusWeak,
		WeakTop:     practiceWeakTop,
		WeakFactor:  practiceWeakFactor,
		WeakWindow:  practiceWeakWindow,
		PoolFile:    practicePoolFile,
		CanvasSize:  canvasSize,
		StrokeWidth: strokeWidth,
		FontPath:    fontPath,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	prompt, err := session.ParsePromptMode(cfg.Prompt)
	if err != nil {
		return fmt.Errorf("--%w", err)
	}
	policy, err := scoringPolicy(fileCfg.Scoring)
	if err != nil {
		return err
	}

	closeLog, err := initLogging(true)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logging.L().Error("failed to close db", "err", cerr)
		}
	}()

	ctx := context.Background()
	dict := kana.Builtin()
	groups := cfg.Groups
	if cfg.PoolFile != "" {
		keys, err := pool.Merge(dict, config.ResolvePoolPath(cfg.PoolFile))
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			groups = keys
		}
	}
	chosen := len(groups) > 0
	if !chosen {
		saved, err := st.LoadGroups(ctx)
		if err != nil {
			logging.L().Warn("failed to load saved groups", "err", err)
		}
		groups = saved
	}
	if len(groups) == 0 {
		groups = []string{defaultGroup}
	}
	chars, err := dict.CharactersFor(groups)
	if errors.Is(err, kana.ErrUnknownGroup) && !chosen {
		logging.L().Warn("saved groups no longer available; using default", "err", err)
		groups = []string{defaultGroup}
		chars, err = dict.CharactersFor(groups)
	}
	if errors.Is(err, kana.ErrUnknownGroup) {
		return fmt.Errorf("failed to select groups: %w (known: %s)", err, strings.Join(dict.SortedKeys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("failed to select groups: %w", err)
	}
	if len(chars) == 0 {
		return fmt.Errorf("--groups selects no kana")
	}
	if chosen {
		if err := st.SaveGroups(ctx, groups); err != nil {
			logging.L().Warn("failed to save groups", "err", err)
		}
	}

	font, err := loadFont(cfg.FontPath)
	if err != nil {
		return err
	}
	drawable := pool.Apply(chars, font.Covers)
	if len(drawable) == 0 {
		return fmt.Errorf("font %q has no glyphs for the selected kana; set --font (or [canvas] font) to a Japanese font", font.Name())
	}
	if skipped := len(chars) - len(drawable); skipped > 0 {
		logging.L().Warn("skipping characters missing from font", "font", font.Name(), "skipped", skipped)
	}

	weakSet := map[string]struct{}{}
	weakNoticePrinted := false
	if cfg.FocusWeak {
		aggs, err := st.GetWeakChars(ctx, cfg.WeakWindow, "")
		if err != nil {
			logging.L().Error("failed to load weak chars", "err", err)
		} else {
			weakSet = stats.SelectWeakChars(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logging.L().Info("no stats available for weak-char focus yet; using uniform selection")
				weakNoticePrinted = true
			}
		}
	}
	weakFactor := 0.0
	if cfg.FocusWeak {
		weakFactor = cfg.WeakFactor
	}

	ctrl := session.NewController(session.Config{
		Size:        cfg.CanvasSize,
		StrokeWidth: cfg.StrokeWidth,
		StageLength: cfg.StageLength,
		Locked:      cfg.Locked,
		Prompt:      prompt,
		Hint:        cfg.Hint,
		Pool:        drawable,
		Policy:      policy,
		WeakSet:     weakSet,
		WeakFactor:  weakFactor,
	}, generator.New(), raster.NewGlyphRasterizer(font))
	if err := ctrl.Start(); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	if err := st.StartSession(ctx, model.PracticeSession{
		ID:          sessionID,
		StartedAt:   time.Now(),
		Groups:      groups,
		StageLength: cfg.StageLength,
	}); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	logging.L().Info("practice started", "session", sessionID, "groups", groups, "characters", len(drawable), "font", font.Name())

	m := tui.NewModel(cfg, st, dict, ctrl, sessionID, weakNoticePrinted)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List kana groups",
		Args:  cobra.NoArgs,
		RunE:  runGroupsCmd,
	}
	cmd.Flags().StringVar(&groupsScript, "script", "", "only hiragana or katakana")
	cmd.Flags().StringVar(&practicePoolFile, "pool-file", "", "also list groups from this pool file")
	return cmd
}

func runGroupsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "pool-file", &practicePoolFile, fileCfg.Practice.PoolFile)
	if err := validateScript("--script", groupsScript); err != nil {
		return err
	}
	closeLog, err := initLogging(false)
	if err != nil {
		return err
	}
	defer closeLog()

	dict := kana.Builtin()
	if practicePoolFile != "" {
		if _, err := pool.Merge(dict, config.ResolvePoolPath(practicePoolFile)); err != nil {
			return err
		}
	}
	keep := pool.FilterForScript(groupsScript)
	for _, g := range dict.Groups() {
		chars := pool.Apply(g.Characters(), keep)
		if len(chars) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-24s %s\n", g.Key, g.Label, strings.Join(chars, " ")); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsScript, "script", "", "script filter (hiragana or katakana)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsChars, "char", "", "kana for per-kana curves")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if err := validateScript("--script", statsScript); err != nil {
		return err
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Script:      strings.ToLower(statsScript),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Chars:       statsChars,
	}

	closeLog, err := initLogging(!statsPlain)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logging.L().Error("failed to close db", "err", cerr)
		}
	}()

	dict := kana.Builtin()
	if statsPlain {
		return printStats(cmd, st, dict, cfg)
	}
	m := statsui.NewModel(st, dict, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(cmd *cobra.Command, st *store.Store, dict *kana.Dictionary, cfg model.StatsConfig) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderCurves(out, report.Sessions, cfg.CurveWindow); err != nil {
		return err
	}
	if err := stats.RenderCharTable(out, report.CharAggsWindow, dict.Reading); err != nil {
		return err
	}
	chars := kana.Split(strings.ReplaceAll(cfg.Chars, ",", " "))
	if len(chars) == 0 {
		chars = stats.TopCharsByFrequency(report.CharAggsAll, 5)
	}
	perSession, err := st.ListCharStatsForSessions(ctx, stats.SessionIDs(report.Sessions), chars)
	if err != nil {
		return fmt.Errorf("failed to load kana curves: %w", err)
	}
	return stats.RenderCharCurves(out, report.Sessions, perSession, chars, cfg.CurveWindow)
}

func initLogging(toFile bool) (func(), error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	if !toFile {
		logging.Set(logging.NewText(os.Stderr, level))
		return func() { logging.Set(nil) }, nil
	}
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logging.Set(logging.NewText(file, level))
	return func() {
		logging.Set(nil)
		if cerr := file.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}, nil
}

func loadFont(path string) (*raster.Font, error) {
	if path == "" {
		font, err := raster.DefaultFont()
		if err != nil {
			return nil, fmt.Errorf("failed to load default font: %w", err)
		}
		return font, nil
	}
	font, err := raster.LoadFont(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return font, nil
}

func scoringPolicy(fileCfg config.ScoringConfig) (score.Policy, error) {
	p := score.DefaultPolicy
	set := func(target *float64, value *float64) {
		if value != nil {
			*target = *value
		}
	}
	set(&p.PrecisionWeight, fileCfg.PrecisionWeight)
	set(&p.RecallWeight, fileCfg.RecallWeight)
	set(&p.MinRecall, fileCfg.MinRecall)
	set(&p.PassScore, fileCfg.PassScore)
	set(&p.PassPrecision, fileCfg.PassPrecision)
	if err := p.Validate(); err != nil {
		return score.Policy{}, fmt.Errorf("invalid config: %w", err)
	}
	return p, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	p := score.DefaultPolicy
	return fmt.Sprintf(`# kanadraw configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# groups = [%q]          # Kana groups (see: kanadraw groups)
# stage-length = %d        # Correct drawings needed to clear a stage
# prompt = %q           # kana or romaji
# hint = false              # Show the target faintly under the ink
# locked = false            # Stay on the current stage
# focus-weak = false        # Bias practice toward weak kana
# weak-top = %d              # Number of weak kana to focus on
# weak-factor = %.1f        # Weight factor for weak kana
# weak-window = %d          # Number of recent sessions to compute weak kana
# pool-file = "extra.yaml"  # Extra characters; bare names resolve to %s

[canvas]
# size = %d                # Canvas size in pixels
# stroke-width = %.0f        # Pen width in pixels
# font = "/path/to/font.otf"  # Font with kana glyphs; defaults to the bundled M+ 1p

[scoring]
# precision-weight = %.2f
# recall-weight = %.2f
# min-recall = %.2f
# pass-score = %.2f
# pass-precision = %.2f
`,
		defaultGroup,
		session.DefaultStageLength,
		defaultPrompt,
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
		config.DefaultPoolDir(),
		raster.DefaultSize,
		float64(raster.DefaultStrokeWidth),
		p.PrecisionWeight,
		p.RecallWeight,
		p.MinRecall,
		p.PassScore,
		p.PassPrecision,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.StageLength <= 0 {
		return fmt.Errorf("--stage-length must be > 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return validateCanvas(cfg.CanvasSize, cfg.StrokeWidth)
}

func validateCanvas(size int, width float64) error {
	if size < minCanvasSize || size > maxCanvasSize {
		return fmt.Errorf("--size must be between %d and %d", minCanvasSize, maxCanvasSize)
	}
	if width <= 0 || width >= float64(size)/2 {
		return fmt.Errorf("--stroke-width must be > 0 and less than half of --size")
	}
	return nil
}

func validateScript(flag, script string) error {
	switch kana.Script(strings.ToLower(strings.TrimSpace(script))) {
	case "", kana.Hiragana, kana.Katakana:
		return nil
	default:
		return fmt.Errorf("%s must be hiragana or katakana", flag)
	}
}
