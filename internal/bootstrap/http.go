package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	storefront "github.com/onepos/storefront"
	"github.com/onepos/storefront/config"
	httpx "github.com/onepos/storefront/internal/http"
)

// HTTPServerDeps contains dependencies for the HTTP server.
type HTTPServerDeps struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// StartHTTPServer builds the router and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(deps *HTTPServerDeps) (*http.Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	templateFS, staticFS, err := assetFilesystems(cfg.IsDev)
	if err != nil {
		return nil, err
	}

	if cfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
	}

	handler, err := httpx.NewRouter(httpx.RouterServices{
		Sessions:          deps.Services.Sessions,
		Catalog:           deps.Services.Catalog,
		Provider:          deps.Services.Provider,
		TemplateFS:        templateFS,
		StaticFS:          staticFS,
		DefaultTenantSlug: cfg.Backend.DefaultTenantSlug,
		CookieDomain:      cfg.HTTP.CookieDomain,
		Compression:       cfg.HTTP.CompressionEnabled,
		GzipLevel:         cfg.HTTP.CompressionLevel,
		GzipMinSize:       cfg.HTTP.CompressionMinSize,
		Metrics:           nilSafeSink(deps.Services.Metrics),
		Logger:            logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	return startServer(logger, handler, cfg.HTTP.Addr), nil
}

// assetFilesystems picks embedded assets in production and on-disk assets
// in dev mode for hot reloading.
func assetFilesystems(isDev bool) (fs.FS, fs.FS, error) {
	if isDev {
		return os.DirFS("frontend/templates"), os.DirFS("frontend/static"), nil
	}

	templateFS, err := fs.Sub(storefront.TemplateFS, "frontend/templates")
	if err != nil {
		return nil, nil, fmt.Errorf("template filesystem: %w", err)
	}
	staticFS, err := fs.Sub(storefront.StaticFS, "frontend/static")
	if err != nil {
		return nil, nil, fmt.Errorf("static filesystem: %w", err)
	}
	return templateFS, staticFS, nil
}

func startServer(logger *slog.Logger, handler http.Handler, addr string) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}

	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}

	return nil
}
