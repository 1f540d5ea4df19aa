package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/flatten"
	"github.com/fyrsmithlabs/repoflat/internal/gitapi"
	"github.com/fyrsmithlabs/repoflat/internal/logging"
	"github.com/fyrsmithlabs/repoflat/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the render API server",
	Long: `Serve starts the HTTP API. Renders are submitted as asynchronous jobs and
polled for completion:

  POST /api/v1/render       submit {owner, name, ref, mode}
  GET  /api/v1/render/:id   poll job status
  GET  /view/:id            finished rendering
  GET  /health              liveness
  GET  /metrics             Prometheus metrics`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := gitapi.NewClient(ctx, cfg.GitHub, cfg.Flatten, cfg.Retry, logger)
	if err != nil {
		return err
	}
	filter, err := flatten.NewFilter(cfg.Flatten)
	if err != nil {
		return err
	}
	pipeline := flatten.NewPipeline(client, client, filter, logger)

	srv, err := server.NewServer(pipeline, cfg.Server, cfg.Flatten, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
