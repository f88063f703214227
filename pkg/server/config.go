package server

import (
	"strconv"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// Config holds the configuration of the debug server.
// Configuration can be set via environment variables with the specified defaults.
type Config struct {
	// Port the debug server listens on.
	Port string `env:"SLOTWORLD_SERVER_PORT" envDefault:"4040"`

	// Allow cross-origin requests, for browser based debug tools.
	EnableCORS bool `env:"SLOTWORLD_SERVER_CORS" envDefault:"true"`
}

// loadConfig loads the server configuration from environment variables.
func loadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse server config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *Config) validate() error {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 || port > 65535 {
		return eris.Errorf("invalid port: %q", cfg.Port)
	}
	return nil
}

// applyToOptions applies the configuration values to the given Options.
func (cfg *Config) applyToOptions(opt *Options) {
	opt.Port = cfg.Port
	opt.EnableCORS = cfg.EnableCORS
}

type Options struct {
	Port       string // Port to listen on
	EnableCORS bool   // Allow cross-origin requests
}

// newDefaultOptions creates Options with default values.
func newDefaultOptions() Options {
	return Options{
		Port:       "",
		EnableCORS: false,
	}
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *Options) apply(newOpt Options) {
	if newOpt.Port != "" {
		opt.Port = newOpt.Port
	}
	if newOpt.EnableCORS {
		opt.EnableCORS = true
	}
}

// validate checks that all required options are set and valid.
func (opt *Options) validate() error {
	if opt.Port == "" {
		return eris.New("port cannot be empty")
	}
	return nil
}
