package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepos/storefront/internal/ports"
)

// newDiscoveryServer serves a minimal OIDC discovery document plus a
// token endpoint that returns the given token response.
func newDiscoveryServer(t *testing.T, tokenResponse map[string]any) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"userinfo_endpoint":      srv.URL + "/userinfo",
			"jwks_uri":               srv.URL + "/jwks",
		}
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(tokenResponse))
	})
	mux.HandleFunc("/jwks", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keys":[]}`)
	})

	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server, scope string) *Provider {
	t.Helper()

	p, err := NewProvider(ProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://storefront.example.com/oauth/callback",
		Scope:        scope,
		DiscoveryURL: srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  ProviderConfig
		wantErr string
	}{
		{
			name:    "missing client ID",
			config:  ProviderConfig{ClientSecret: "s", RedirectURL: "r", DiscoveryURL: "d"},
			wantErr: "client ID is required",
		},
		{
			name:    "missing client secret",
			config:  ProviderConfig{ClientID: "c", RedirectURL: "r", DiscoveryURL: "d"},
			wantErr: "client secret is required",
		},
		{
			name:    "missing redirect URL",
			config:  ProviderConfig{ClientID: "c", ClientSecret: "s", DiscoveryURL: "d"},
			wantErr: "redirect URL is required",
		},
		{
			name:    "missing discovery URL",
			config:  ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "r"},
			wantErr: "discovery URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, nil)
	p := newTestProvider(t, srv, "email public_profile")

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{
		RedirectURL: "https://storefront.example.com/oauth/callback",
	})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
}

func TestProvider_Begin_RequiresRedirectURL(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, nil)
	p := newTestProvider(t, srv, "email")

	_, _, _, err := p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_Exchange_ReturnsAccessToken(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, map[string]any{
		"access_token": "provider-access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
	// No openid scope: access token is released without id_token checks.
	p := newTestProvider(t, srv, "email public_profile")

	accessToken, err := p.Exchange(context.Background(), ports.ExchangeInput{
		Code:  "auth-code",
		State: "opaque-state",
	})
	require.NoError(t, err)
	assert.Equal(t, "provider-access-token", accessToken)
}

func TestProvider_Exchange_Validation(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, nil)
	p := newTestProvider(t, srv, "email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{State: "s"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code is required")

	_, err = p.Exchange(context.Background(), ports.ExchangeInput{Code: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state is required")
}

func TestProvider_Exchange_MissingAccessToken(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, map[string]any{
		"token_type": "Bearer",
	})
	p := newTestProvider(t, srv, "email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s"})
	require.Error(t, err)
}

func TestProvider_Exchange_OpenIDRequiresIDToken(t *testing.T) {
	t.Parallel()
	srv := newDiscoveryServer(t, map[string]any{
		"access_token": "tok",
		"token_type":   "Bearer",
	})
	p := newTestProvider(t, srv, "openid email")

	_, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "c", State: "s", Nonce: "n"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id_token")
}

func TestGenerateRandomString(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, 1, 16, 32, 64} {
		s, err := generateRandomString(length)
		require.NoError(t, err)
		assert.Len(t, s, length)
	}

	a, err := generateRandomString(32)
	require.NoError(t, err)
	b, err := generateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
