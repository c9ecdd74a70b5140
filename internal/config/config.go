// Package config loads vmdb.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"vmdb/internal/dbgtrace"
	"vmdb/internal/evlog"
)

// FileName is the configuration file looked up from the program directory.
const FileName = "vmdb.toml"

// Config is the decoded vmdb.toml.
type Config struct {
	Debug DebugConfig `toml:"debug"`
	Log   LogConfig   `toml:"log"`

	// Path of the loaded file, "" for defaults.
	Path string `toml:"-"`
}

type DebugConfig struct {
	Basename     bool   `toml:"basename"`
	WatchDefault string `toml:"watch_default"`
	Prompt       string `toml:"prompt"`
}

type LogConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Debug: DebugConfig{
			WatchDefault: dbgtrace.DefaultWatchMode.String(),
			Prompt:       "(vmdb) ",
		},
		Log: LogConfig{
			Level:    "off",
			Mode:     "stream",
			Format:   "text",
			RingSize: 4096,
		},
	}
}

// Find walks up from startDir looking for vmdb.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest vmdb.toml above startDir, or the defaults.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("debug", "prompt") && cfg.Debug.Prompt == "" {
		return Config{}, fmt.Errorf("%s: [debug].prompt must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	if _, err := c.WatchMode(); err != nil {
		return fmt.Errorf("[debug].watch_default: %w", err)
	}
	if _, err := evlog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("[log].level: %w", err)
	}
	if _, err := evlog.ParseMode(c.Log.Mode); err != nil {
		return fmt.Errorf("[log].mode: %w", err)
	}
	if _, err := evlog.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("[log].format: %w", err)
	}
	if c.Log.RingSize < 0 {
		return fmt.Errorf("[log].ring_size: must not be negative, got %d", c.Log.RingSize)
	}
	return nil
}

// WatchMode returns the parsed [debug].watch_default.
func (c Config) WatchMode() (dbgtrace.WatchMode, error) {
	return dbgtrace.ParseWatchMode(c.Debug.WatchDefault)
}

// TracerConfig converts [log] to an evlog configuration.
func (c Config) TracerConfig() (evlog.Config, error) {
	level, err := evlog.ParseLevel(c.Log.Level)
	if err != nil {
		return evlog.Config{}, err
	}
	mode, err := evlog.ParseMode(c.Log.Mode)
	if err != nil {
		return evlog.Config{}, err
	}
	format, err := evlog.ParseFormat(c.Log.Format)
	if err != nil {
		return evlog.Config{}, err
	}
	out := c.Log.Output
	if out == "" {
		out = "-"
	}
	return evlog.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: out,
		RingSize:   c.Log.RingSize,
	}, nil
}
