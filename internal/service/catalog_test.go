package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	"github.com/onepos/storefront/internal/mocks"
	mockcatalog "github.com/onepos/storefront/internal/mocks/catalog"
	"github.com/onepos/storefront/internal/ports"
)

func TestCatalogService_NilCachePassesThrough(t *testing.T) {
	t.Parallel()
	api := mockcatalog.NewFakeCatalogAPI()
	svc := NewCatalogService(CatalogServiceOptions{API: api})

	products, err := svc.Products(context.Background(), domaincatalog.ProductQuery{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, mockcatalog.FixtureProduct.ID, products[0].ID)
	assert.Equal(t, int64(1), api.Calls.Load())
}

func TestCatalogService_CacheHitSkipsBackend(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	stored := []domaincatalog.Store{{ID: "s-1", Slug: "cached", Name: "Cached Store"}}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)

	cache := mocks.NewMockCatalogCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "stores||").Return(raw, nil)

	api := mockcatalog.NewFakeCatalogAPI()
	svc := NewCatalogService(CatalogServiceOptions{API: api, Cache: cache})

	stores, err := svc.Stores(context.Background(), domaincatalog.StoreQuery{})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "cached", stores[0].Slug)
	assert.Equal(t, int64(0), api.Calls.Load(), "hit must not reach the backend")
}

func TestCatalogService_MissFetchesAndWrites(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cache := mocks.NewMockCatalogCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), "store|fixture-store").Return(nil, ports.ErrCacheMiss)
	cache.EXPECT().
		Set(gomock.Any(), "store|fixture-store", gomock.Any(), 5*time.Minute).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			var store domaincatalog.Store
			require.NoError(t, json.Unmarshal(value, &store))
			assert.Equal(t, "fixture-store", store.Slug)
			return nil
		})

	api := mockcatalog.NewFakeCatalogAPI()
	svc := NewCatalogService(CatalogServiceOptions{API: api, Cache: cache})

	store, err := svc.Store(context.Background(), "fixture-store")
	require.NoError(t, err)
	assert.Equal(t, "fixture-store", store.Slug)
	assert.Equal(t, int64(1), api.Calls.Load())
}

func TestCatalogService_CacheFailuresDegradeToFetch(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cache := mocks.NewMockCatalogCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	api := mockcatalog.NewFakeCatalogAPI()
	svc := NewCatalogService(CatalogServiceOptions{API: api, Cache: cache})

	products, err := svc.Products(context.Background(), domaincatalog.ProductQuery{TenantSlug: "acme"})
	require.NoError(t, err, "cache outage must not surface")
	require.Len(t, products, 1)
	assert.Equal(t, int64(1), api.Calls.Load())
}

func TestCatalogService_CorruptEntryTreatedAsMiss(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cache := mocks.NewMockCatalogCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return([]byte("{not json"), nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	api := mockcatalog.NewFakeCatalogAPI()
	svc := NewCatalogService(CatalogServiceOptions{API: api, Cache: cache})

	_, err := svc.Product(context.Background(), "prod-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(1), api.Calls.Load())
}

func TestCatalogService_BackendErrorNotCached(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	cache := mocks.NewMockCatalogCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, ports.ErrCacheMiss)

	api := mockcatalog.NewFakeCatalogAPI()
	api.SearchFunc = func(context.Context, domaincatalog.SearchQuery) (domaincatalog.SearchResult, error) {
		return domaincatalog.SearchResult{}, errors.New("backend unavailable")
	}
	svc := NewCatalogService(CatalogServiceOptions{API: api, Cache: cache})

	_, err := svc.Search(context.Background(), domaincatalog.SearchQuery{Term: "mug"})
	require.Error(t, err)
}

func TestCacheKey_Stable(t *testing.T) {
	t.Parallel()
	active := true
	q := domaincatalog.ProductQuery{TenantSlug: "acme", Search: "mug", IsActive: &active}

	key := cacheKey("products", q.TenantSlug, q.Search, q.Category, q.CategoryID, q.ProductType, boolKey(q.IsActive))
	assert.Equal(t, "products|acme|mug||||true", key)

	assert.Equal(t, "stores||", cacheKey("stores", "", boolKey(nil)))
}
