// Package config holds the command-line tool settings.
//
// Settings come from, in increasing priority: built-in defaults, an optional
// YAML file, and SCOREDRAFT_* environment variables. A .env file in the
// working directory is loaded into the environment first when present.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const EnvPrefix = "SCOREDRAFT_"

type Config struct {
	// Tempo and RefFreq are used by songs that do not set their own.
	Tempo    int     `yaml:"tempo,omitempty"`
	RefFreq  float64 `yaml:"ref_freq,omitempty"`
	Channels int     `yaml:"channels,omitempty"`
	// ExtensionsDir is the root scanned for an Extensions directory.
	ExtensionsDir string `yaml:"extensions_dir,omitempty"`
	LogLevel      string `yaml:"log_level,omitempty"`
	// Normalize scales rendered output down when it would clip.
	Normalize bool `yaml:"normalize,omitempty"`
}

func Default() *Config {
	return &Config{
		Tempo:         120,
		RefFreq:       264,
		Channels:      2,
		ExtensionsDir: ".",
		LogLevel:      "info",
		Normalize:     true,
	}
}

// Load builds the configuration. An empty path skips the file; a named file
// that does not exist is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	var errs []error
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, set func(string) error) {
		if v := getenv(EnvPrefix + key); v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
			}
		}
	}

	num("TEMPO", func(v string) (err error) { c.Tempo, err = strconv.Atoi(v); return })
	num("REF_FREQ", func(v string) (err error) { c.RefFreq, err = strconv.ParseFloat(v, 64); return })
	num("CHANNELS", func(v string) (err error) { c.Channels, err = strconv.Atoi(v); return })
	num("NORMALIZE", func(v string) (err error) { c.Normalize, err = strconv.ParseBool(v); return })
	str("EXTENSIONS_DIR", &c.ExtensionsDir)
	str("LOG_LEVEL", &c.LogLevel)
	return errors.Join(errs...)
}

// Level maps LogLevel to a slog level, defaulting to Info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
