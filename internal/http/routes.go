package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/onepos/storefront/internal/observability/statsd"
	"github.com/onepos/storefront/internal/ports"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Sessions SessionManager
	Catalog  CatalogReadService
	Provider ports.ThirdPartyProvider // optional

	TemplateFS fs.FS
	StaticFS   fs.FS // optional

	DefaultTenantSlug string
	CookieDomain      string

	Compression bool
	GzipLevel   int
	GzipMinSize int

	Metrics statsd.Sink // optional
	Logger  *slog.Logger
}

// NewRouter creates and configures the storefront HTTP handler: routes,
// template renderer, and the middleware chain (request ID, logging,
// panic recovery, optional gzip, route guard).
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: services.TemplateFS,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:             renderer,
		Sessions:      services.Sessions,
		Catalog:       services.Catalog,
		Provider:      services.Provider,
		DefaultTenant: services.DefaultTenantSlug,
		CookieDomain:  services.CookieDomain,
		Logger:        logger,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, ui, services.StaticFS)

	var handler http.Handler = &notFoundHandler{mux: mux, ui: ui}
	handler = RouteGuard(services.Sessions, ui.Loading)(handler)
	if services.Compression {
		handler = Compression(CompressionConfig{
			Level:   services.GzipLevel,
			MinSize: services.GzipMinSize,
			Logger:  logger,
		})(handler)
	}
	handler = Recover(logger)(handler)
	handler = RequestMetrics(services.Metrics)(handler)
	handler = Logging(logger)(handler)
	handler = RequestID()(handler)
	return handler, nil
}

func registerRoutes(mux *http.ServeMux, ui *UIHandlers, staticFS fs.FS) {
	// Sign-in partition
	mux.HandleFunc("GET /login", ui.LoginPage)
	mux.HandleFunc("POST /login", ui.LoginSubmit)
	mux.HandleFunc("GET /register", ui.RegisterPage)
	mux.HandleFunc("POST /register", ui.RegisterSubmit)
	mux.HandleFunc("GET /verify-otp", ui.VerifyOTPPage)
	mux.HandleFunc("POST /verify-otp/send", ui.SendOTPSubmit)
	mux.HandleFunc("POST /verify-otp", ui.VerifyOTPSubmit)
	mux.HandleFunc("GET /guest", ui.GuestPage)
	mux.HandleFunc("POST /guest", ui.GuestSubmit)
	mux.HandleFunc("GET /oauth/begin", ui.OAuthBegin)
	mux.HandleFunc("GET /oauth/callback", ui.OAuthCallback)

	// Storefront
	mux.HandleFunc("GET /{$}", ui.Home)
	mux.HandleFunc("GET /products", ui.ProductList)
	mux.HandleFunc("GET /products/{id}", ui.ProductDetail)
	mux.HandleFunc("GET /services", ui.ServiceList)
	mux.HandleFunc("GET /services/{id}", ui.ServiceDetail)
	mux.HandleFunc("GET /stores", ui.StoreList)
	mux.HandleFunc("GET /stores/{slug}", ui.StoreDetail)
	mux.HandleFunc("GET /search", ui.SearchPage)
	mux.HandleFunc("GET /profile", ui.Profile)
	mux.HandleFunc("POST /logout", ui.LogoutSubmit)

	// Infrastructure
	mux.HandleFunc("GET /auth/status", ui.AuthStatus)
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("HEAD /health", healthHandler)
	if staticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	}
}

// notFoundHandler renders the storefront 404 page for unmatched routes
// instead of the bare net/http default.
type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Serve matched routes through the mux so path wildcards bind;
	// Handler only resolves the pattern.
	if _, pattern := h.mux.Handler(r); pattern == "" {
		h.ui.NotFound(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}
