package ports

import (
	"context"
	"time"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
)

// CatalogAPI exposes the backend's public catalog endpoints.
type CatalogAPI interface {
	Products(ctx context.Context, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error)
	Product(ctx context.Context, id, tenantSlug string) (domaincatalog.Product, error)
	Services(ctx context.Context, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error)
	Service(ctx context.Context, id, tenantSlug string) (domaincatalog.Service, error)
	Stores(ctx context.Context, q domaincatalog.StoreQuery) ([]domaincatalog.Store, error)
	Store(ctx context.Context, slug string) (domaincatalog.Store, error)
	StoreProducts(ctx context.Context, slug string, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error)
	StoreServices(ctx context.Context, slug string, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error)
	StoreCategories(ctx context.Context, slug, search string) ([]domaincatalog.Category, error)
	Categories(ctx context.Context, tenantSlug, search string) ([]domaincatalog.Category, error)
	Discounts(ctx context.Context, tenantSlug string) ([]domaincatalog.Discount, error)
	Bundles(ctx context.Context, tenantSlug, search, categoryID string) ([]domaincatalog.Bundle, error)
	Search(ctx context.Context, q domaincatalog.SearchQuery) (domaincatalog.SearchResult, error)
}

// CatalogCache is a byte-level read-through cache for catalog responses.
// A miss returns ErrCacheMiss; adapter failures should be treated as
// misses by callers, never surfaced.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ErrCacheMiss is returned when a cache key is absent.
type cacheMissError struct{}

func (cacheMissError) Error() string { return "cache miss" }

var ErrCacheMiss error = cacheMissError{}
