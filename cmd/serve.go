package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/msx/internal/repositories"
	"github.com/desertthunder/msx/internal/server"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/storage"
	"github.com/urfave/cli/v3"
)

// Serve runs the submission server until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := *r.config
	if host := cmd.String("host"); host != "" {
		cfg.Server.Host = host
	}
	if cmd.IsSet("port") {
		port := cmd.Int("port")
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: port %d out of range", shared.ErrInvalidFlag, port)
		}
		cfg.Server.Port = port
	}

	store, err := storage.New(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	router, err := server.New(&cfg, server.Deps{
		Files:       store,
		Submissions: repositories.NewSubmissionRepository(db),
		Logger:      r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}
	r.logger.Debug("routes registered", "patterns", router.Patterns())

	ready := make(chan string, 1)
	if cmd.Bool("open") || cfg.Server.OpenBrowser {
		go func() {
			select {
			case addr := <-ready:
				url := "http://" + addr + "/"
				if err := shared.OpenBrowser(url); err != nil {
					r.logger.Warn("failed to open browser", "url", url, "error", err)
				}
			case <-ctx.Done():
			}
		}()
	}

	return server.Serve(ctx, cfg.Server.Addr(), router, r.logger, ready)
}
