// Package catalog provides hand-written test doubles for the catalog
// backend port. Each method counts its calls and delegates to an optional
// override; without one it returns a small fixed fixture.
package catalog

import (
	"context"
	"sync/atomic"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	"github.com/onepos/storefront/internal/ports"
)

var _ ports.CatalogAPI = (*FakeCatalogAPI)(nil)

// FakeCatalogAPI implements ports.CatalogAPI for tests.
type FakeCatalogAPI struct {
	ProductsFunc        func(ctx context.Context, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error)
	ProductFunc         func(ctx context.Context, id, tenantSlug string) (domaincatalog.Product, error)
	ServicesFunc        func(ctx context.Context, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error)
	ServiceFunc         func(ctx context.Context, id, tenantSlug string) (domaincatalog.Service, error)
	StoresFunc          func(ctx context.Context, q domaincatalog.StoreQuery) ([]domaincatalog.Store, error)
	StoreFunc           func(ctx context.Context, slug string) (domaincatalog.Store, error)
	StoreProductsFunc   func(ctx context.Context, slug string, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error)
	StoreServicesFunc   func(ctx context.Context, slug string, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error)
	StoreCategoriesFunc func(ctx context.Context, slug, search string) ([]domaincatalog.Category, error)
	CategoriesFunc      func(ctx context.Context, tenantSlug, search string) ([]domaincatalog.Category, error)
	DiscountsFunc       func(ctx context.Context, tenantSlug string) ([]domaincatalog.Discount, error)
	BundlesFunc         func(ctx context.Context, tenantSlug, search, categoryID string) ([]domaincatalog.Bundle, error)
	SearchFunc          func(ctx context.Context, q domaincatalog.SearchQuery) (domaincatalog.SearchResult, error)

	Calls atomic.Int64
}

// NewFakeCatalogAPI returns a fake whose methods succeed with fixtures.
func NewFakeCatalogAPI() *FakeCatalogAPI {
	return &FakeCatalogAPI{}
}

// FixtureProduct is the default product returned by the fake.
var FixtureProduct = domaincatalog.Product{ID: "prod-1", Name: "Fixture Product", Price: 9.99, IsActive: true}

// FixtureService is the default service returned by the fake.
var FixtureService = domaincatalog.Service{ID: "svc-1", Name: "Fixture Service", Price: 19.99}

// FixtureStore is the default store returned by the fake.
var FixtureStore = domaincatalog.Store{ID: "store-1", Slug: "fixture-store", Name: "Fixture Store", IsActive: true}

func (f *FakeCatalogAPI) Products(ctx context.Context, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	f.Calls.Add(1)
	if f.ProductsFunc != nil {
		return f.ProductsFunc(ctx, q)
	}
	return []domaincatalog.Product{FixtureProduct}, nil
}

func (f *FakeCatalogAPI) Product(ctx context.Context, id, tenantSlug string) (domaincatalog.Product, error) {
	f.Calls.Add(1)
	if f.ProductFunc != nil {
		return f.ProductFunc(ctx, id, tenantSlug)
	}
	return FixtureProduct, nil
}

func (f *FakeCatalogAPI) Services(ctx context.Context, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	f.Calls.Add(1)
	if f.ServicesFunc != nil {
		return f.ServicesFunc(ctx, q)
	}
	return []domaincatalog.Service{FixtureService}, nil
}

func (f *FakeCatalogAPI) Service(ctx context.Context, id, tenantSlug string) (domaincatalog.Service, error) {
	f.Calls.Add(1)
	if f.ServiceFunc != nil {
		return f.ServiceFunc(ctx, id, tenantSlug)
	}
	return FixtureService, nil
}

func (f *FakeCatalogAPI) Stores(ctx context.Context, q domaincatalog.StoreQuery) ([]domaincatalog.Store, error) {
	f.Calls.Add(1)
	if f.StoresFunc != nil {
		return f.StoresFunc(ctx, q)
	}
	return []domaincatalog.Store{FixtureStore}, nil
}

func (f *FakeCatalogAPI) Store(ctx context.Context, slug string) (domaincatalog.Store, error) {
	f.Calls.Add(1)
	if f.StoreFunc != nil {
		return f.StoreFunc(ctx, slug)
	}
	return FixtureStore, nil
}

func (f *FakeCatalogAPI) StoreProducts(ctx context.Context, slug string, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	f.Calls.Add(1)
	if f.StoreProductsFunc != nil {
		return f.StoreProductsFunc(ctx, slug, q)
	}
	return []domaincatalog.Product{FixtureProduct}, nil
}

func (f *FakeCatalogAPI) StoreServices(ctx context.Context, slug string, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	f.Calls.Add(1)
	if f.StoreServicesFunc != nil {
		return f.StoreServicesFunc(ctx, slug, q)
	}
	return []domaincatalog.Service{FixtureService}, nil
}

func (f *FakeCatalogAPI) StoreCategories(ctx context.Context, slug, search string) ([]domaincatalog.Category, error) {
	f.Calls.Add(1)
	if f.StoreCategoriesFunc != nil {
		return f.StoreCategoriesFunc(ctx, slug, search)
	}
	return []domaincatalog.Category{{ID: "cat-1", Name: "Fixture Category"}}, nil
}

func (f *FakeCatalogAPI) Categories(ctx context.Context, tenantSlug, search string) ([]domaincatalog.Category, error) {
	f.Calls.Add(1)
	if f.CategoriesFunc != nil {
		return f.CategoriesFunc(ctx, tenantSlug, search)
	}
	return []domaincatalog.Category{{ID: "cat-1", Name: "Fixture Category"}}, nil
}

func (f *FakeCatalogAPI) Discounts(ctx context.Context, tenantSlug string) ([]domaincatalog.Discount, error) {
	f.Calls.Add(1)
	if f.DiscountsFunc != nil {
		return f.DiscountsFunc(ctx, tenantSlug)
	}
	return []domaincatalog.Discount{{ID: "disc-1", Name: "Fixture Discount", Percentage: 10}}, nil
}

func (f *FakeCatalogAPI) Bundles(ctx context.Context, tenantSlug, search, categoryID string) ([]domaincatalog.Bundle, error) {
	f.Calls.Add(1)
	if f.BundlesFunc != nil {
		return f.BundlesFunc(ctx, tenantSlug, search, categoryID)
	}
	return []domaincatalog.Bundle{{ID: "bundle-1", Name: "Fixture Bundle", Price: 29.99}}, nil
}

func (f *FakeCatalogAPI) Search(ctx context.Context, q domaincatalog.SearchQuery) (domaincatalog.SearchResult, error) {
	f.Calls.Add(1)
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, q)
	}
	return domaincatalog.SearchResult{Products: []domaincatalog.Product{FixtureProduct}}, nil
}
