package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foomo/mddocs/config"
	"github.com/foomo/mddocs/mcp"
	"github.com/foomo/mddocs/render"
	"github.com/foomo/mddocs/server"
	"github.com/foomo/mddocs/service"
	"github.com/foomo/mddocs/store"
)

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// newService opens the content store and builds the document service.
func newService(cfg *config.Config, publisher service.Publisher) (service.Service, *store.Store, error) {
	st, err := store.New(cfg.ContentDir)
	if err != nil {
		return nil, nil, err
	}
	return service.NewService(st, service.Settings{
		AllowImport: cfg.Import.Enabled,
		HTTPClient:  &http.Client{Timeout: cfg.Import.Timeout.Std()},
	}, publisher), st, nil
}

// sharesContentRoot reports whether static files are served from the content
// directory, in which case the ignore rules apply to them too.
func sharesContentRoot(cfg *config.Config, st *store.Store) bool {
	staticRoot, err := filepath.Abs(cfg.StaticRoot())
	if err != nil {
		return true
	}
	return staticRoot == st.Root()
}

// newHandler assembles the HTTP handler and returns the event server so the
// caller can close it on shutdown.
func newHandler(cfg *config.Config, logger *zap.Logger) (http.Handler, *mcp.EventServer, error) {
	events := mcp.NewEventServer(logger.Named("events"), &mcp.SSEServerConfig{
		KeepaliveInterval: cfg.Events.KeepaliveInterval.Std(),
		BufferSize:        cfg.Events.BufferSize,
		ClientBufferSize:  mcp.DefaultSSEServerConfig().ClientBufferSize,
	})

	svc, st, err := newService(cfg, events)
	if err != nil {
		events.Close()
		return nil, nil, err
	}
	renderer, err := render.New()
	if err != nil {
		events.Close()
		return nil, nil, err
	}

	opts := server.Options{
		Logger:    logger.Named("http"),
		Service:   svc,
		Renderer:  renderer,
		StaticDir: cfg.StaticRoot(),
		Events:    events,
	}
	if sharesContentRoot(cfg, st) {
		opts.Hidden = st.Hidden
	}
	if cfg.MCP.Enabled {
		opts.MCPHandler = mcp.NewMcpHTTPServer(mcp.NewServer(svc), cfg.MCP.Endpoint)
		opts.MCPEndpoint = cfg.MCP.Endpoint
	}
	return server.New(opts).Router(), events, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	handler, events, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.Addr),
			zap.String("contentDir", cfg.ContentDir),
			zap.String("staticDir", cfg.StaticRoot()),
			zap.Bool("mcp", cfg.MCP.Enabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	events.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
