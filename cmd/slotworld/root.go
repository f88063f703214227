package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/argus-labs/slotworld/pkg/engine"
	"github.com/argus-labs/slotworld/pkg/level"
	"github.com/argus-labs/slotworld/pkg/server"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type rootFlags struct {
	levels  []string
	archive string
}

func newRootCmd() *cobra.Command {
	flags := rootFlags{}
	cmd := &cobra.Command{
		Use:           "slotworld",
		Short:         "Run worlds loaded from a level archive",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := cfg.newLogger()
			log.Logger = logger //nolint:reassign // process logger

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, flags, logger)
		},
	}
	cmd.Flags().StringSliceVar(&flags.levels, "level", nil, "level to load at startup, repeatable")
	cmd.Flags().StringVar(&flags.archive, "archive", "", "level archive directory, overrides SLOTWORLD_ARCHIVE_DIR")

	cmd.AddCommand(newLevelsCmd(), newCheckCmd())
	return cmd
}

func run(ctx context.Context, cfg Config, flags rootFlags, logger zerolog.Logger) error {
	eng, err := engine.New(engine.Options{ArchiveDir: flags.archive}, engine.WithLogger(logger))
	if err != nil {
		return eris.Wrap(err, "failed to create engine")
	}
	defer closeEngine(eng, logger)

	for _, name := range flags.levels {
		if _, err := eng.AddWorld(ctx, name); err != nil {
			return eris.Wrapf(err, "failed to load level %q", name)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return frameLoop(ctx, eng, cfg.framePeriod())
	})
	if cfg.Server {
		srv, err := server.New(eng, server.Options{}, server.WithLogger(logger))
		if err != nil {
			return eris.Wrap(err, "failed to create server")
		}
		g.Go(func() error {
			return srv.Serve(ctx)
		})
	}

	if err := g.Wait(); err != nil && !eris.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Uint64("frames", eng.Frames()).Msg("shut down")
	return nil
}

// frameLoop steps the engine at a fixed rate with the measured time since the last frame.
func frameLoop(ctx context.Context, eng *engine.Engine, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			eng.FrameUpdate(now.Sub(last).Seconds())
			last = now
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func closeEngine(eng io.Closer, logger zerolog.Logger) {
	if err := eng.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close engine")
	}
}

func newLevelsCmd() *cobra.Command {
	var archive string
	cmd := &cobra.Command{
		Use:   "levels",
		Short: "List the levels of the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := engine.New(engine.Options{ArchiveDir: archive})
			if err != nil {
				return eris.Wrap(err, "failed to create engine")
			}
			defer closeEngine(eng, log.Logger)

			names, err := eng.Levels(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "level archive directory, overrides SLOTWORLD_ARCHIVE_DIR")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse and validate level files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return eris.Wrapf(err, "failed to read %s", path)
				}
				doc, err := level.Parse(filepath.Base(path), data)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d static meshes, %d vobs, %d npcs)\n",
					path, len(doc.StaticMeshes), len(doc.Vobs), len(doc.NPCs))
			}
			if failed > 0 {
				return eris.Errorf("%d of %d levels are invalid", failed, len(args))
			}
			return nil
		},
	}
}
