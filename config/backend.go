package config

import (
	"strings"
	"time"
)

// BackendConfig contains commerce backend client configuration.
type BackendConfig struct {
	// BaseURL is the backend API root, including the /api path segment.
	BaseURL string `env:"BACKEND_BASE_URL" envDefault:"https://api.1pos.com/api"`

	// Timeout bounds every backend HTTP call.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// DefaultTenantSlug scopes catalog browsing and guest sessions when
	// no tenant has been established through sign-in.
	DefaultTenantSlug string `env:"BACKEND_DEFAULT_TENANT_SLUG" envDefault:""`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	b.DefaultTenantSlug = strings.TrimSpace(b.DefaultTenantSlug)
	if b.Timeout <= 0 {
		b.Timeout = 10 * time.Second
	}
}
