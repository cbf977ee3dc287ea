// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Scoring  ScoringConfig  `toml:"scoring"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Groups      *[]string `toml:"groups"`
	StageLength *int      `toml:"stage-length"`
	Prompt      *string   `toml:"prompt"`
	Hint        *bool     `toml:"hint"`
	Locked      *bool     `toml:"locked"`
	FocusWeak   *bool     `toml:"focus-weak"`
	WeakTop     *int      `toml:"weak-top"`
	WeakFactor  *float64  `toml:"weak-factor"`
	WeakWindow  *int      `toml:"weak-window"`
	PoolFile    *string   `toml:"pool-file"`
}

// CanvasConfig maps drawing surface settings.
type CanvasConfig struct {
	Size        *int     `toml:"size"`
	StrokeWidth *float64 `toml:"stroke-width"`
	Font        *string  `toml:"font"`
}

// ScoringConfig overrides the pass/fail policy. Unset values keep the defaults.
type ScoringConfig struct {
	PrecisionWeight *float64 `toml:"precision-weight"`
	RecallWeight    *float64 `toml:"recall-weight"`
	MinRecall       *float64 `toml:"min-recall"`
	PassScore       *float64 `toml:"pass-score"`
	PassPrecision   *float64 `toml:"pass-precision"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
