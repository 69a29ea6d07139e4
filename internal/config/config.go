// SPDX-License-Identifier: EPL-2.0

// Package config loads runtime settings from DECKMIX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pion/logging"
)

var ErrInvalid = errors.New("invalid configuration")

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Engine
	SampleRate  int
	BlockFrames int
	Channels    int

	// Reverb send, applied to every deck
	ReverbRoom    float64
	ReverbDamping float64

	// Console
	LogLevel    string
	LibraryFile string
	HistoryFile string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		SampleRate:  envInt("DECKMIX_SAMPLE_RATE", 44100),
		BlockFrames: envInt("DECKMIX_BLOCK_FRAMES", 512),
		Channels:    envInt("DECKMIX_CHANNELS", 2),

		ReverbRoom:    envFloat("DECKMIX_REVERB_ROOM", 0.5),
		ReverbDamping: envFloat("DECKMIX_REVERB_DAMPING", 0.5),

		LogLevel:    envStr("DECKMIX_LOG_LEVEL", "info"),
		LibraryFile: envStr("DECKMIX_LIBRARY_FILE", "MusicLibrary.csv"),
		HistoryFile: envStr("DECKMIX_HISTORY_FILE", ""),
	}
}

// Validate reports the first setting the engine cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample rate %d: %w", c.SampleRate, ErrInvalid)
	case c.BlockFrames <= 0:
		return fmt.Errorf("block frames %d: %w", c.BlockFrames, ErrInvalid)
	case c.Channels < 1 || c.Channels > 2:
		return fmt.Errorf("channels %d: %w", c.Channels, ErrInvalid)
	case c.ReverbRoom < 0 || c.ReverbRoom > 1:
		return fmt.Errorf("reverb room %v: %w", c.ReverbRoom, ErrInvalid)
	case c.ReverbDamping < 0 || c.ReverbDamping > 1:
		return fmt.Errorf("reverb damping %v: %w", c.ReverbDamping, ErrInvalid)
	}

	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("log level %q: %w", c.LogLevel, ErrInvalid)
	}
	return nil
}

// LoggerFactory returns a pion logger factory writing to stderr at the
// configured level.
func (c Config) LoggerFactory() *logging.DefaultLoggerFactory {
	level, _ := parseLevel(c.LogLevel)

	f := logging.NewDefaultLoggerFactory()
	f.DefaultLogLevel = level
	return f
}

func parseLevel(s string) (logging.LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off", "none":
		return logging.LogLevelDisabled, true
	case "error":
		return logging.LogLevelError, true
	case "warn", "warning":
		return logging.LogLevelWarn, true
	case "info":
		return logging.LogLevelInfo, true
	case "debug":
		return logging.LogLevelDebug, true
	case "trace":
		return logging.LogLevelTrace, true
	}
	return logging.LogLevelInfo, false
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
