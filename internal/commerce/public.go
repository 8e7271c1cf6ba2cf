package commerce

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	"github.com/onepos/storefront/internal/ports"
)

// Compile-time conformance to the catalog port.
var _ ports.CatalogAPI = (*Client)(nil)

// Products lists products matching the query.
func (c *Client) Products(ctx context.Context, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	var out []domaincatalog.Product
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/products",
		query:  productQueryValues(q),
	}, &out)
	return out, err
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id, tenantSlug string) (domaincatalog.Product, error) {
	var out domaincatalog.Product
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/products/" + url.PathEscape(id),
		query:  tenantValues(tenantSlug),
	}, &out)
	return out, err
}

// Services lists service offerings matching the query.
func (c *Client) Services(ctx context.Context, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	var out []domaincatalog.Service
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/services",
		query:  serviceQueryValues(q),
	}, &out)
	return out, err
}

// Service fetches a single service by ID.
func (c *Client) Service(ctx context.Context, id, tenantSlug string) (domaincatalog.Service, error) {
	var out domaincatalog.Service
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/services/" + url.PathEscape(id),
		query:  tenantValues(tenantSlug),
	}, &out)
	return out, err
}

// Stores lists storefronts.
func (c *Client) Stores(ctx context.Context, q domaincatalog.StoreQuery) ([]domaincatalog.Store, error) {
	values := url.Values{}
	setIfPresent(values, "search", q.Search)
	if q.IsActive != nil {
		values.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	var out []domaincatalog.Store
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/stores",
		query:  values,
	}, &out)
	return out, err
}

// Store fetches a storefront by slug.
func (c *Client) Store(ctx context.Context, slug string) (domaincatalog.Store, error) {
	var out domaincatalog.Store
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/stores/" + url.PathEscape(slug),
	}, &out)
	return out, err
}

// StoreProducts lists one storefront's products.
func (c *Client) StoreProducts(ctx context.Context, slug string, q domaincatalog.ProductQuery) ([]domaincatalog.Product, error) {
	var out []domaincatalog.Product
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/stores/" + url.PathEscape(slug) + "/products",
		query:  productQueryValues(q),
	}, &out)
	return out, err
}

// StoreServices lists one storefront's services.
func (c *Client) StoreServices(ctx context.Context, slug string, q domaincatalog.ServiceQuery) ([]domaincatalog.Service, error) {
	var out []domaincatalog.Service
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/stores/" + url.PathEscape(slug) + "/services",
		query:  serviceQueryValues(q),
	}, &out)
	return out, err
}

// StoreCategories lists one storefront's categories.
func (c *Client) StoreCategories(ctx context.Context, slug, search string) ([]domaincatalog.Category, error) {
	values := url.Values{}
	setIfPresent(values, "search", search)
	var out []domaincatalog.Category
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/stores/" + url.PathEscape(slug) + "/categories",
		query:  values,
	}, &out)
	return out, err
}

// Categories lists categories for a tenant.
func (c *Client) Categories(ctx context.Context, tenantSlug, search string) ([]domaincatalog.Category, error) {
	values := tenantValues(tenantSlug)
	setIfPresent(values, "search", search)
	var out []domaincatalog.Category
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/categories",
		query:  values,
	}, &out)
	return out, err
}

// Discounts lists active discounts for a tenant.
func (c *Client) Discounts(ctx context.Context, tenantSlug string) ([]domaincatalog.Discount, error) {
	var out []domaincatalog.Discount
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/discounts",
		query:  tenantValues(tenantSlug),
	}, &out)
	return out, err
}

// Bundles lists product bundles for a tenant.
func (c *Client) Bundles(ctx context.Context, tenantSlug, search, categoryID string) ([]domaincatalog.Bundle, error) {
	values := tenantValues(tenantSlug)
	setIfPresent(values, "search", search)
	setIfPresent(values, "categoryId", categoryID)
	var out []domaincatalog.Bundle
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/bundles",
		query:  values,
	}, &out)
	return out, err
}

// Search runs the universal search endpoint.
func (c *Client) Search(ctx context.Context, q domaincatalog.SearchQuery) (domaincatalog.SearchResult, error) {
	values := url.Values{}
	values.Set("q", q.Term)
	setIfPresent(values, "type", q.Type)
	setIfPresent(values, "tenantSlug", q.TenantSlug)
	var out domaincatalog.SearchResult
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/public/search",
		query:  values,
	}, &out)
	return out, err
}

func productQueryValues(q domaincatalog.ProductQuery) url.Values {
	values := tenantValues(q.TenantSlug)
	setIfPresent(values, "search", q.Search)
	setIfPresent(values, "category", q.Category)
	setIfPresent(values, "categoryId", q.CategoryID)
	setIfPresent(values, "productType", q.ProductType)
	if q.IsActive != nil {
		values.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	return values
}

func serviceQueryValues(q domaincatalog.ServiceQuery) url.Values {
	values := tenantValues(q.TenantSlug)
	setIfPresent(values, "search", q.Search)
	setIfPresent(values, "category", q.Category)
	setIfPresent(values, "categoryId", q.CategoryID)
	return values
}

func tenantValues(tenantSlug string) url.Values {
	values := url.Values{}
	setIfPresent(values, "tenantSlug", tenantSlug)
	return values
}

func setIfPresent(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
