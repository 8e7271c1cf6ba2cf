package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	"github.com/onepos/storefront/internal/observability/metrics"
	"github.com/onepos/storefront/internal/observability/statsd"
	"github.com/onepos/storefront/internal/ports"
)

// DefaultCatalogTTL bounds staleness of cached catalog reads.
const DefaultCatalogTTL = 5 * time.Minute

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	API     ports.CatalogAPI
	Cache   ports.CatalogCache
	TTL     time.Duration // defaults to DefaultCatalogTTL
	Logger  *slog.Logger
	Metrics statsd.Sink
}

// CatalogService is a read-through caching layer over the backend's
// public catalog endpoints. Cache adapter failures degrade to a backend
// fetch; they are logged, never surfaced to callers. With a nil cache it
// is a plain pass-through.
type CatalogService struct {
	api     ports.CatalogAPI
	cache   ports.CatalogCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics statsd.Sink
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogService{
		api:     opts.API,
		cache:   opts.Cache,
		ttl:     ttl,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

func (s *CatalogService) Products(ctx context.Context, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	key := cacheKey("products", q.TenantSlug, q.Search, q.Category, q.CategoryID, q.ProductType, boolKey(q.IsActive))
	return fetchCached(ctx, s, "products", key, func(ctx context.Context) ([]domaincatalog.Product, error) {
		return s.api.Products(ctx, q)
	})
}

func (s *CatalogService) Product(ctx context.Context, id, tenantSlug string) (domaincatalog.Product, error) {
	return fetchCached(ctx, s, "product", cacheKey("product", id, tenantSlug), func(ctx context.Context) (domaincatalog.Product, error) {
		return s.api.Product(ctx, id, tenantSlug)
	})
}

func (s *CatalogService) Services(ctx context.Context, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	key := cacheKey("services", q.TenantSlug, q.Search, q.Category, q.CategoryID)
	return fetchCached(ctx, s, "services", key, func(ctx context.Context) ([]domaincatalog.Service, error) {
		return s.api.Services(ctx, q)
	})
}

func (s *CatalogService) Service(ctx context.Context, id, tenantSlug string) (domaincatalog.Service, error) {
	return fetchCached(ctx, s, "service", cacheKey("service", id, tenantSlug), func(ctx context.Context) (domaincatalog.Service, error) {
		return s.api.Service(ctx, id, tenantSlug)
	})
}

func (s *CatalogService) Stores(ctx context.Context, q domaincatalog.StoreQuery) ([]domaincatalog.Store, error) {
	key := cacheKey("stores", q.Search, boolKey(q.IsActive))
	return fetchCached(ctx, s, "stores", key, func(ctx context.Context) ([]domaincatalog.Store, error) {
		return s.api.Stores(ctx, q)
	})
}

func (s *CatalogService) Store(ctx context.Context, slug string) (domaincatalog.Store, error) {
	return fetchCached(ctx, s, "store", cacheKey("store", slug), func(ctx context.Context) (domaincatalog.Store, error) {
		return s.api.Store(ctx, slug)
	})
}

func (s *CatalogService) StoreProducts(ctx context.Context, slug string, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	key := cacheKey("store-products", slug, q.Search, q.Category, q.CategoryID, q.ProductType, boolKey(q.IsActive))
	return fetchCached(ctx, s, "store_products", key, func(ctx context.Context) ([]domaincatalog.Product, error) {
		return s.api.StoreProducts(ctx, slug, q)
	})
}

func (s *CatalogService) StoreServices(ctx context.Context, slug string, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	key := cacheKey("store-services", slug, q.Search, q.Category, q.CategoryID)
	return fetchCached(ctx, s, "store_services", key, func(ctx context.Context) ([]domaincatalog.Service, error) {
		return s.api.StoreServices(ctx, slug, q)
	})
}

func (s *CatalogService) StoreCategories(ctx context.Context, slug, search string) ([]domaincatalog.Category, error) {
	return fetchCached(ctx, s, "store_categories", cacheKey("store-categories", slug, search), func(ctx context.Context) ([]domaincatalog.Category, error) {
		return s.api.StoreCategories(ctx, slug, search)
	})
}

func (s *CatalogService) Categories(ctx context.Context, tenantSlug, search string) ([]domaincatalog.Category, error) {
	return fetchCached(ctx, s, "categories", cacheKey("categories", tenantSlug, search), func(ctx context.Context) ([]domaincatalog.Category, error) {
		return s.api.Categories(ctx, tenantSlug, search)
	})
}

func (s *CatalogService) Discounts(ctx context.Context, tenantSlug string) ([]domaincatalog.Discount, error) {
	return fetchCached(ctx, s, "discounts", cacheKey("discounts", tenantSlug), func(ctx context.Context) ([]domaincatalog.Discount, error) {
		return s.api.Discounts(ctx, tenantSlug)
	})
}

func (s *CatalogService) Bundles(ctx context.Context, tenantSlug, search, categoryID string) ([]domaincatalog.Bundle, error) {
	return fetchCached(ctx, s, "bundles", cacheKey("bundles", tenantSlug, search, categoryID), func(ctx context.Context) ([]domaincatalog.Bundle, error) {
		return s.api.Bundles(ctx, tenantSlug, search, categoryID)
	})
}

func (s *CatalogService) Search(ctx context.Context, q domaincatalog.SearchQuery) (domaincatalog.SearchResult, error) {
	key := cacheKey("search", q.Term, q.Type, q.TenantSlug)
	return fetchCached(ctx, s, "search", key, func(ctx context.Context) (domaincatalog.SearchResult, error) {
		return s.api.Search(ctx, q)
	})
}

// fetchCached performs one read-through lookup. Corrupt or unreadable
// cache entries are treated as misses; write failures only cost the next
// caller a fetch.
func fetchCached[T any](ctx context.Context, s *CatalogService, endpoint, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if s.cache == nil {
		return fetch(ctx)
	}

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var out T
		if err = json.Unmarshal(raw, &out); err == nil {
			metrics.EmitCacheLookup(s.metrics, metrics.CacheMetric{Endpoint: endpoint, Hit: true})
			return out, nil
		}
		s.logger.WarnContext(ctx, "discarding corrupt cache entry", "key", key, "error", err)
	} else if !errors.Is(err, ports.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	metrics.EmitCacheLookup(s.metrics, metrics.CacheMetric{Endpoint: endpoint, Hit: false})

	out, err := fetch(ctx)
	if err != nil {
		return zero, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err = s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// cacheKey joins the endpoint and its parameters into a stable key.
// Parameter order is fixed per endpoint, so equal queries collide.
func cacheKey(endpoint string, parts ...string) string {
	b := strings.Builder{}
	b.WriteString(endpoint)
	for _, p := range parts {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

func boolKey(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
