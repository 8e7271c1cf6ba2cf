package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/onepos/storefront/config"
	oidcadapter "github.com/onepos/storefront/internal/adapters/oidc"
	redisadapter "github.com/onepos/storefront/internal/adapters/redis"
	"github.com/onepos/storefront/internal/commerce"
	"github.com/onepos/storefront/internal/observability/statsd"
	"github.com/onepos/storefront/internal/ports"
	"github.com/onepos/storefront/internal/service"
)

// ServiceDeps contains the shared dependencies services are built from.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services. It is the
// explicit dependency graph: adapters at the bottom, services on top,
// handed to the HTTP layer as a unit.
type ServiceContainer struct {
	Creds    ports.CredentialStore
	Backend  *commerce.Client
	Provider ports.ThirdPartyProvider // nil when third-party sign-in is not configured
	Sessions *service.SessionService
	Catalog  *service.CatalogService
	Metrics  *statsd.Client
}

// NewServices wires adapters and services from shared dependencies.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  "storefront",
		Logger:  logger,
	})
	if err != nil {
		// Metrics are best-effort; a dead sink must not block startup.
		logger.Warn("statsd client unavailable, metrics disabled", "error", err)
		metrics = nil
	}

	creds := redisadapter.NewCredentialStore(deps.RedisClient)

	backend, err := commerce.NewClient(commerce.ClientConfig{
		BaseURL: cfg.Backend.BaseURL,
		Creds:   creds,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("backend client: %w", err)
	}

	var provider ports.ThirdPartyProvider
	if cfg.Auth.OAuth.Enabled() {
		p, perr := oidcadapter.NewProvider(oidcadapter.ProviderConfig{
			ClientID:     cfg.Auth.OAuth.ClientID,
			ClientSecret: cfg.Auth.OAuth.ClientSecret,
			RedirectURL:  cfg.Auth.OAuth.RedirectURL,
			Scope:        cfg.Auth.OAuth.Scope,
			DiscoveryURL: cfg.Auth.OAuth.DiscoveryURL,
		})
		if perr != nil {
			return nil, fmt.Errorf("oidc provider: %w", perr)
		}
		provider = p
	} else {
		logger.Info("third-party sign-in not configured")
	}

	sessions := service.NewSessionService(service.SessionServiceOptions{
		API:       backend,
		Creds:     creds,
		Logger:    logger,
		Metrics:   nilSafeSink(metrics),
		OTPLength: cfg.Auth.OTPLength,
	})

	var cache ports.CatalogCache
	if cfg.Cache.Enabled {
		cache = redisadapter.NewCatalogCache(deps.RedisClient)
	}
	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		API:     backend,
		Cache:   cache,
		TTL:     cfg.Cache.CatalogTTL,
		Logger:  logger,
		Metrics: nilSafeSink(metrics),
	})

	return &ServiceContainer{
		Creds:    creds,
		Backend:  backend,
		Provider: provider,
		Sessions: sessions,
		Catalog:  catalog,
		Metrics:  metrics,
	}, nil
}

// Close releases service-owned resources.
func (c *ServiceContainer) Close() error {
	if c.Metrics != nil {
		return c.Metrics.Close()
	}
	return nil
}

// nilSafeSink converts a nil *statsd.Client into a nil Sink interface so
// downstream nil checks behave.
func nilSafeSink(client *statsd.Client) statsd.Sink {
	if client == nil {
		return nil
	}
	return client
}
