// Package config loads the probe CLI configuration and batch manifests.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

const (
	// EnvConfig names the config file when --config is not given.
	EnvConfig = "PROBE_CONFIG"

	DefaultHistorySize = 100
	DefaultJobs        = 4
)

// Config is the decoded probe.toml.
type Config struct {
	LogLevel       string           `toml:"log_level"`
	Color          string           `toml:"color"`
	Journal        string           `toml:"journal"`
	HistorySize    int              `toml:"-"`
	Verbose        bool             `toml:"verbose"`
	FeatureDefault bool             `toml:"feature_default"`
	SettingsPrefix string           `toml:"settings_prefix"`
	Settings       map[string]int64 `toml:"settings"`
	Modules        []string         `toml:"modules"`
}

type rawConfig struct {
	Config
	HistorySize int64 `toml:"history_size"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:       "info",
		Color:          "auto",
		HistorySize:    DefaultHistorySize,
		FeatureDefault: true,
		SettingsPrefix: "PROBE_",
		Settings:       map[string]int64{},
	}
}

// Path resolves the config file: the explicit flag value, then PROBE_CONFIG.
// An empty result means no file.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(EnvConfig)
}

// Load reads path over the defaults. A missing file is not an error when the
// path came from the environment or was empty.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw := rawConfig{Config: cfg, HistorySize: int64(cfg.HistorySize)}
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	size, err := safecast.Conv[int](raw.HistorySize)
	if err != nil || size <= 0 {
		return Config{}, fmt.Errorf("%s: invalid history_size %d", path, raw.HistorySize)
	}

	cfg = raw.Config
	cfg.HistorySize = size
	if cfg.Settings == nil {
		cfg.Settings = map[string]int64{}
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	switch cfg.Color {
	case "auto", "on", "off":
	default:
		return Config{}, fmt.Errorf("%s: invalid color %q (must be auto, on or off)", path, cfg.Color)
	}
	return cfg, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q", name)
	}
}

// Target is one [[probe]] entry of a batch manifest.
type Target struct {
	Name    string   `toml:"name"`
	Locator string   `toml:"locator"`
	Type    string   `toml:"type"`
	Member  string   `toml:"member"`
	Params  []string `toml:"params"`
}

// Manifest lists targets probed by `probe batch`.
type Manifest struct {
	Jobs    int
	Targets []Target
}

type rawManifest struct {
	Jobs    int64    `toml:"jobs"`
	Targets []Target `toml:"probe"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw := rawManifest{Jobs: DefaultJobs}
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("probe") || len(raw.Targets) == 0 {
		return nil, fmt.Errorf("%s: missing [[probe]]", path)
	}

	jobs, err := safecast.Conv[int](raw.Jobs)
	if err != nil || jobs <= 0 {
		return nil, fmt.Errorf("%s: invalid jobs %d", path, raw.Jobs)
	}

	for i := range raw.Targets {
		t := &raw.Targets[i]
		if strings.TrimSpace(t.Type) == "" {
			return nil, fmt.Errorf("%s: [[probe]] #%d: missing type", path, i+1)
		}
		if t.Name == "" {
			t.Name = t.Type
			if t.Member != "" {
				t.Name += "#" + t.Member
			}
		}
		if t.Member == "" && len(t.Params) > 0 {
			return nil, fmt.Errorf("%s: [[probe]] %s: params without member", path, t.Name)
		}
	}

	return &Manifest{Jobs: jobs, Targets: raw.Targets}, nil
}
