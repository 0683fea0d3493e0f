package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/porticus-lab/go-html-render/internal/config"
	"github.com/porticus-lab/go-html-render/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		ef   engineFlags
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the render HTTP service",
		Long: `Run the render HTTP service.

Endpoints:
  POST /render   render a JSON request; requires the X-Render-Secret header
  GET  /health   liveness probe

Configuration is read from --config (or $` + config.EnvConfig + `), then
environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g, cmd.Flags(), &ef)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), g, cfg)
		},
	}

	ef.register(cmd.Flags())
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default $PORT or 3000)")
	return cmd
}

func serve(ctx context.Context, g *globalFlags, cfg *config.Config) error {
	logger := newLogger(g, cfg)

	r, err := newRenderer(ctx, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.Server.Secret == "" {
		logger.Warn(config.EnvSecret + " is not set; every render request will be rejected")
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: server.New(r, server.Config{
			Secret:    cfg.Server.Secret,
			BodyLimit: cfg.Server.BodyLimit,
			Logger:    logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "engine", cfg.Renderer.Engine,
			"cache", strconv.FormatBool(cfg.Cache.RedisURL != ""))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
