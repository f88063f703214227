// Package server is the HTTP debug server. It lists worlds and levels, loads and removes worlds,
// and dumps or queries a world's entities between frames.
package server

import (
	"context"
	"time"

	"github.com/argus-labs/slotworld/pkg/world"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Provider is what the server needs from the engine. World and Worlds are only called inside Read.
type Provider interface {
	Read(fn func())
	World(h world.Handle) (*world.Instance, bool)
	Worlds() []world.Handle
	AddWorld(ctx context.Context, levelName string) (world.Handle, error)
	RemoveWorld(h world.Handle) error
	Levels(ctx context.Context) ([]string, error)
	Frames() uint64
}

type Server struct {
	app      *fiber.App
	provider Provider
	options  Options
	logger   zerolog.Logger
}

type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New returns a debug server over the provider. Options set in the environment are overridden by
// non-zero fields of opts.
func New(provider Provider, opts Options, serverOpts ...Option) (*Server, error) {
	if provider == nil {
		return nil, eris.New("server requires a non-nil provider")
	}

	options := newDefaultOptions()
	cfg, err := loadConfig()
	if err != nil {
		return nil, eris.Wrap(err, "failed to load config")
	}
	cfg.applyToOptions(&options)
	options.apply(opts)
	if err := options.validate(); err != nil {
		return nil, eris.Wrap(err, "invalid server options")
	}

	app := fiber.New(fiber.Config{
		Network:               "tcp", // Enable server listening on both ipv4 & ipv6 (default: ipv4 only)
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})
	app.Use(recover.New())
	if options.EnableCORS {
		app.Use(cors.New())
	}

	s := &Server{
		app:      app,
		provider: provider,
		options:  options,
		logger:   zerolog.Nop(),
	}
	for _, opt := range serverOpts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "server").Logger()
	s.setupRoutes()

	return s, nil
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve serves the application until ctx is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info().Msgf("Starting HTTP server at port %s", s.options.Port)
		if err := s.app.Listen(":" + s.options.Port); err != nil {
			serverErr <- eris.Wrap(err, "error starting http server")
		}
	}()

	select {
	case err := <-serverErr:
		return eris.Wrap(err, "server encountered an error")
	case <-ctx.Done():
		if err := s.shutdown(); err != nil {
			return eris.Wrap(err, "error shutting down server")
		}
	}
	return nil
}

func (s *Server) shutdown() error {
	s.logger.Info().Msg("Shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return eris.Wrap(err, "error shutting down server")
	}
	s.logger.Info().Msg("Successfully shut down server")
	return nil
}

func (s *Server) setupRoutes() {
	// Route: /...
	s.app.Get("/health", GetHealth(s.provider))
	s.app.Get("/levels", GetLevels(s.provider))

	// Route: /worlds/...
	worlds := s.app.Group("/worlds")
	worlds.Get("/", GetWorlds(s.provider))
	worlds.Post("/", PostWorld(s.provider))
	worlds.Delete("/:index/:generation", DeleteWorld(s.provider))
	worlds.Get("/:index/:generation/state", GetDebugState(s.provider))
	worlds.Post("/:index/:generation/cql", PostCQL(s.provider))
	worlds.Post("/:index/:generation/search", PostSearch(s.provider))
}
