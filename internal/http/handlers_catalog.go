package httpx

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	apperrors "github.com/onepos/storefront/internal/errors"
)

// Home renders the storefront landing page. Products, services and
// categories are fetched concurrently; a partial failure degrades the
// page rather than erroring it.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	tenant := h.tenantSlug()
	data := h.basePageData(r, "Storefront")

	var (
		products   []domaincatalog.Product
		services   []domaincatalog.Service
		categories []domaincatalog.Category
		discounts  []domaincatalog.Discount
		bundles    []domaincatalog.Bundle
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		products, err = h.Catalog.Products(ctx, domaincatalog.ProductQuery{TenantSlug: tenant})
		return err
	})
	g.Go(func() error {
		var err error
		services, err = h.Catalog.Services(ctx, domaincatalog.ServiceQuery{TenantSlug: tenant})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.Catalog.Categories(ctx, tenant, "")
		return err
	})
	g.Go(func() error {
		var err error
		discounts, err = h.Catalog.Discounts(ctx, tenant)
		return err
	})
	g.Go(func() error {
		var err error
		bundles, err = h.Catalog.Bundles(ctx, tenant, "", "")
		return err
	})
	if err := g.Wait(); err != nil {
		h.logger().WarnContext(r.Context(), "home catalog fetch failed", "error", err)
		data["Error"] = apperrors.UserMessage(err)
	}

	data["Products"] = products
	data["Services"] = services
	data["Categories"] = categories
	data["Discounts"] = discounts
	data["Bundles"] = bundles
	h.renderPage(w, r, "home", data)
}

// ProductList renders the product listing with optional search and
// category filters.
func (h *UIHandlers) ProductList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domaincatalog.ProductQuery{
		TenantSlug: h.tenantSlug(),
		Search:     q.Get("search"),
		CategoryID: q.Get("category"),
	}

	data := h.basePageData(r, "Products")
	data["Search"] = query.Search
	products, err := h.Catalog.Products(r.Context(), query)
	if err != nil {
		h.logger().WarnContext(r.Context(), "product list fetch failed", "error", err)
		data["Error"] = apperrors.UserMessage(err)
	}
	data["Products"] = products
	h.renderPage(w, r, "products", data)
}

// ProductDetail renders one product.
func (h *UIHandlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := h.Catalog.Product(r.Context(), id, h.tenantSlug())
	if err != nil {
		h.renderCatalogError(w, r, err)
		return
	}

	data := h.basePageData(r, product.Name)
	data["Product"] = product
	h.renderPage(w, r, "product-detail", data)
}

// ServiceList renders the bookable-service listing.
func (h *UIHandlers) ServiceList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domaincatalog.ServiceQuery{
		TenantSlug: h.tenantSlug(),
		Search:     q.Get("search"),
		CategoryID: q.Get("category"),
	}

	data := h.basePageData(r, "Services")
	data["Search"] = query.Search
	services, err := h.Catalog.Services(r.Context(), query)
	if err != nil {
		h.logger().WarnContext(r.Context(), "service list fetch failed", "error", err)
		data["Error"] = apperrors.UserMessage(err)
	}
	data["Services"] = services
	h.renderPage(w, r, "services", data)
}

// ServiceDetail renders one service.
func (h *UIHandlers) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	svc, err := h.Catalog.Service(r.Context(), id, h.tenantSlug())
	if err != nil {
		h.renderCatalogError(w, r, err)
		return
	}

	data := h.basePageData(r, svc.Name)
	data["Service"] = svc
	h.renderPage(w, r, "service-detail", data)
}

// StoreList renders the store directory.
func (h *UIHandlers) StoreList(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Stores")
	stores, err := h.Catalog.Stores(r.Context(), domaincatalog.StoreQuery{
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "store list fetch failed", "error", err)
		data["Error"] = apperrors.UserMessage(err)
	}
	data["Stores"] = stores
	h.renderPage(w, r, "stores", data)
}

// StoreDetail renders one store with its products and services, fetched
// concurrently.
func (h *UIHandlers) StoreDetail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	store, err := h.Catalog.Store(r.Context(), slug)
	if err != nil {
		h.renderCatalogError(w, r, err)
		return
	}

	var (
		products   []domaincatalog.Product
		services   []domaincatalog.Service
		categories []domaincatalog.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var gerr error
		products, gerr = h.Catalog.StoreProducts(ctx, slug, domaincatalog.ProductQuery{})
		return gerr
	})
	g.Go(func() error {
		var gerr error
		services, gerr = h.Catalog.StoreServices(ctx, slug, domaincatalog.ServiceQuery{})
		return gerr
	})
	g.Go(func() error {
		var gerr error
		categories, gerr = h.Catalog.StoreCategories(ctx, slug, "")
		return gerr
	})

	data := h.basePageData(r, store.Name)
	if err := g.Wait(); err != nil {
		h.logger().WarnContext(r.Context(), "store detail fetch failed", "slug", slug, "error", err)
		data["Error"] = apperrors.UserMessage(err)
	}
	data["Store"] = store
	data["Products"] = products
	data["Services"] = services
	data["Categories"] = categories
	h.renderPage(w, r, "store-detail", data)
}

// SearchPage runs the universal search across catalog entities.
func (h *UIHandlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("q")

	data := h.basePageData(r, "Search")
	data["Term"] = term
	if term != "" {
		result, err := h.Catalog.Search(r.Context(), domaincatalog.SearchQuery{
			Term:       term,
			Type:       q.Get("type"),
			TenantSlug: h.tenantSlug(),
		})
		if err != nil {
			h.logger().WarnContext(r.Context(), "search failed", "term", term, "error", err)
			data["Error"] = apperrors.UserMessage(err)
		}
		data["Result"] = result
	}
	h.renderPage(w, r, "search", data)
}

// Profile renders the signed-in principal's details from the session
// snapshot; no backend call is made.
func (h *UIHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	snap, _ := GetSessionFromContext(r.Context())
	data := h.basePageData(r, "Profile")
	data["Customer"] = snap.Customer
	data["Guest"] = snap.Guest
	h.renderPage(w, r, "profile", data)
}

func (h *UIHandlers) renderCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsNotFound(err) {
		h.NotFound(w, r)
		return
	}
	h.logger().ErrorContext(r.Context(), "catalog fetch failed", "path", r.URL.Path, "error", err)
	data := h.basePageData(r, "Something went wrong")
	data["Error"] = apperrors.UserMessage(err)
	h.renderPageStatus(w, r, http.StatusBadGateway, "error", data)
}
