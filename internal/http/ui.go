package httpx

import (
	"context"
	"log/slog"
	"net/http"

	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	domainsession "github.com/onepos/storefront/internal/domain/session"
	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/ports"
	"github.com/onepos/storefront/internal/service"
)

// SessionManager is the minimal session surface the UI needs.
type SessionManager interface {
	Snapshot() domainsession.Snapshot
	OTPLength() int
	AuthenticateWithPassword(ctx context.Context, in ports.LoginInput) error
	Register(ctx context.Context, in ports.RegisterInput) error
	SendOneTimeCode(ctx context.Context, phone, tenantSlug string) error
	AuthenticateWithOneTimeCode(ctx context.Context, in ports.VerifyOTPInput) error
	AuthenticateWithThirdPartyToken(ctx context.Context, accessToken, tenantSlug string) error
	CreateGuestSession(ctx context.Context, tenantSlug string) error
	Logout(ctx context.Context)
}

// CatalogReadService is the minimal catalog surface the UI needs.
type CatalogReadService interface {
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

// Compile-time interface assertions for the concrete services.
var (
	_ SessionManager     = (*service.SessionService)(nil)
	_ CatalogReadService = (*service.CatalogService)(nil)
)

// UIHandlers serves the browser-facing storefront routes.
type UIHandlers struct {
	T        *TemplateRenderer
	Sessions SessionManager
	Catalog  CatalogReadService
	Provider ports.ThirdPartyProvider // optional; social sign-in hidden when nil

	// DefaultTenant scopes catalog browsing when no tenant slug has been
	// chosen through sign-in.
	DefaultTenant string
	CookieDomain  string

	Logger *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// basePageData constructs the common page data map with session context.
func (h *UIHandlers) basePageData(r *http.Request, title string) map[string]any {
	snap, _ := GetSessionFromContext(r.Context())
	return map[string]any{
		"Title":           title,
		"Session":         snap,
		"IsAuthenticated": snap.IsAuthenticated(),
		"IsGuest":         snap.IsGuest(),
		"DisplayName":     snap.DisplayName(),
		"HasThirdParty":   h.Provider != nil,
	}
}

// renderPage renders a page template, degrading to a plain 500 when the
// template itself fails.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	h.renderPageStatus(w, r, http.StatusOK, page, data)
}

func (h *UIHandlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if err := h.T.RenderPageStatus(w, status, page, data); err != nil {
		h.logger().ErrorContext(r.Context(), "page render failed",
			"page", page,
			"path", r.URL.Path,
			"error", err,
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// renderFormError re-renders a form page with a user-facing message.
func (h *UIHandlers) renderFormError(w http.ResponseWriter, r *http.Request, page string, data map[string]any, err error) {
	data["Error"] = apperrors.UserMessage(err)
	if field := apperrors.GetField(err); field != "" {
		data["ErrorField"] = field
	}
	status := http.StatusUnprocessableEntity
	if !apperrors.IsValidation(err) && !apperrors.IsAuthRejected(err) {
		status = http.StatusBadGateway
	}
	h.renderPageStatus(w, r, status, page, data)
}

// Loading renders the neutral loading page shown while the session is
// still being reconciled.
func (h *UIHandlers) Loading(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Loading"}
	h.renderPage(w, r, "loading", data)
}

// NotFound renders the storefront 404 page.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Not Found")
	h.renderPageStatus(w, r, http.StatusNotFound, "notfound", data)
}

// tenantSlug picks the browsing tenant: the stored slug is ambient in
// backend calls, so the UI only supplies the configured default.
func (h *UIHandlers) tenantSlug() string {
	return h.DefaultTenant
}
