package engine

import (
	"strings"

	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

// Config holds the configuration of an engine.
// Configuration can be set via environment variables with the specified defaults.
type Config struct {
	// Capacities of every world's allocators.
	MaxEntities     int `env:"SLOTWORLD_MAX_ENTITIES"      envDefault:"4096"`
	MaxStaticMeshes int `env:"SLOTWORLD_MAX_STATIC_MESHES" envDefault:"1024"`
	MaxLevelMeshes  int `env:"SLOTWORLD_MAX_LEVEL_MESHES"  envDefault:"16"`
	MaxTextures     int `env:"SLOTWORLD_MAX_TEXTURES"      envDefault:"1024"`
	MaxMaterials    int `env:"SLOTWORLD_MAX_MATERIALS"     envDefault:"1024"`
	MaxNPCs         int `env:"SLOTWORLD_MAX_NPCS"          envDefault:"512"`

	// Directory the level archive is read from when no Redis address is set.
	ArchiveDir string `env:"SLOTWORLD_ARCHIVE_DIR" envDefault:"levels"`

	// Address of a Redis server holding the level archive.
	RedisAddress string `env:"SLOTWORLD_REDIS_ADDRESS"`

	// Prefix of the Redis keys of the level archive.
	RedisNamespace string `env:"SLOTWORLD_REDIS_NAMESPACE" envDefault:"slotworld"`

	// Address of the statsd agent. Metrics are disabled if empty.
	StatsdAddress string `env:"SLOTWORLD_STATSD_ADDRESS"`
}

// loadConfig loads the engine configuration from environment variables.
func loadConfig() (Config, error) {
	cfg := Config{}

	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse engine config")
	}

	if err := cfg.validate(); err != nil {
		return cfg, eris.Wrap(err, "failed to validate config")
	}

	return cfg, nil
}

// validate performs validation on the loaded configuration.
func (cfg *Config) validate() error {
	if err := cfg.capacities().Validate(); err != nil {
		return err
	}
	if cfg.ArchiveDir == "" && cfg.RedisAddress == "" {
		return eris.New("either an archive directory or a redis address is required")
	}
	if cfg.RedisAddress != "" && strings.TrimSpace(cfg.RedisNamespace) == "" {
		return eris.New("redis namespace cannot be empty")
	}
	return nil
}

func (cfg *Config) capacities() world.Capacities {
	return world.Capacities{
		Entities:     cfg.MaxEntities,
		StaticMeshes: cfg.MaxStaticMeshes,
		LevelMeshes:  cfg.MaxLevelMeshes,
		Textures:     cfg.MaxTextures,
		Materials:    cfg.MaxMaterials,
		NPCs:         cfg.MaxNPCs,
	}
}

// applyToOptions applies the configuration values to the given Options.
func (cfg *Config) applyToOptions(opt *Options) {
	opt.Capacities = cfg.capacities()
	opt.ArchiveDir = cfg.ArchiveDir
	opt.RedisAddress = cfg.RedisAddress
	opt.RedisNamespace = cfg.RedisNamespace
	opt.StatsdAddress = cfg.StatsdAddress
}

type Options struct {
	Capacities     world.Capacities        // Allocator capacities of every world
	ArchiveDir     string                  // Level directory, used if Index and RedisAddress are unset
	RedisAddress   string                  // Redis server of the level archive, used if Index is unset
	RedisNamespace string                  // Key prefix of the Redis level archive
	StatsdAddress  string                  // Statsd agent address, metrics are off if empty
	Index          level.Index             // Level archive, takes precedence over ArchiveDir and RedisAddress
	OnWorldCreated func(w *world.Instance) // Called after a world was added
	OnFrameUpdate  func(dt float64)        // Called after every world was updated
}

// newDefaultOptions creates Options with default values.
func newDefaultOptions() Options {
	return Options{
		Capacities:     world.DefaultCapacities(),
		ArchiveDir:     "",
		RedisAddress:   "",
		RedisNamespace: "",
		StatsdAddress:  "",
		Index:          nil,
		OnWorldCreated: nil,
		OnFrameUpdate:  nil,
	}
}

// apply merges the given options into the current options, overriding non-zero values.
func (opt *Options) apply(newOpt Options) {
	caps := &opt.Capacities
	if newOpt.Capacities.Entities != 0 {
		caps.Entities = newOpt.Capacities.Entities
	}
	if newOpt.Capacities.StaticMeshes != 0 {
		caps.StaticMeshes = newOpt.Capacities.StaticMeshes
	}
	if newOpt.Capacities.LevelMeshes != 0 {
		caps.LevelMeshes = newOpt.Capacities.LevelMeshes
	}
	if newOpt.Capacities.Textures != 0 {
		caps.Textures = newOpt.Capacities.Textures
	}
	if newOpt.Capacities.Materials != 0 {
		caps.Materials = newOpt.Capacities.Materials
	}
	if newOpt.Capacities.NPCs != 0 {
		caps.NPCs = newOpt.Capacities.NPCs
	}
	if newOpt.ArchiveDir != "" {
		opt.ArchiveDir = newOpt.ArchiveDir
	}
	if newOpt.RedisAddress != "" {
		opt.RedisAddress = newOpt.RedisAddress
	}
	if newOpt.RedisNamespace != "" {
		opt.RedisNamespace = newOpt.RedisNamespace
	}
	if newOpt.StatsdAddress != "" {
		opt.StatsdAddress = newOpt.StatsdAddress
	}
	if newOpt.Index != nil {
		opt.Index = newOpt.Index
	}
	if newOpt.OnWorldCreated != nil {
		opt.OnWorldCreated = newOpt.OnWorldCreated
	}
	if newOpt.OnFrameUpdate != nil {
		opt.OnFrameUpdate = newOpt.OnFrameUpdate
	}
}

// validate checks that all required options are set and valid.
func (opt *Options) validate() error {
	if err := opt.Capacities.Validate(); err != nil {
		return err
	}
	if opt.Index == nil && opt.ArchiveDir == "" && opt.RedisAddress == "" {
		return eris.New("no level archive configured")
	}
	return nil
}
