package main

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config holds the process-level configuration of the binary.
// Configuration can be set via environment variables with the specified defaults.
type Config struct {
	// Log level ("debug", "info", "warn", "error").
	LogLevel string `env:"SLOTWORLD_LOG_LEVEL" envDefault:"info"`

	// Log format ("json", "pretty").
	LogFormat string `env:"SLOTWORLD_LOG_FORMAT" envDefault:"pretty"`

	// Frame updates per second.
	FrameRate float64 `env:"SLOTWORLD_FRAME_RATE" envDefault:"30"`

	// Run the debug HTTP server next to the frame loop.
	Server bool `env:"SLOTWORLD_SERVER" envDefault:"true"`
}

// loadConfig loads the binary configuration from environment variables.
func loadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *Config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return eris.Errorf("invalid log level: %s (must be 'debug', 'info', 'warn', or 'error')", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "pretty" {
		return eris.Errorf("invalid log format: %s (must be 'json' or 'pretty')", cfg.LogFormat)
	}
	if cfg.FrameRate <= 0 || cfg.FrameRate > 1000 {
		return eris.Errorf("frame rate must be in (0, 1000], got %v", cfg.FrameRate)
	}
	return nil
}

// framePeriod returns the time between two frame updates.
func (cfg *Config) framePeriod() time.Duration {
	return time.Duration(float64(time.Second) / cfg.FrameRate)
}

// newLogger creates the process logger.
func (cfg *Config) newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.LogFormat == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).
		With().
		Timestamp().
		Caller().
		Logger()
}
