package commerce

// Package commerce is the HTTP client for the multi-tenant commerce
// backend. Auth headers are attached by an explicit request-building step
// that reads the current credential from the Credential Store on every
// call; there is no interceptor hidden in a shared http.Client.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/ports"
)

// DefaultTimeout bounds every backend request. No retries, no caller
// timeouts beyond this; an in-flight request runs to completion or failure.
const DefaultTimeout = 10 * time.Second

// Client talks to the commerce backend. It implements ports.AuthAPI and
// ports.CatalogAPI. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      ports.CredentialStore
	logger     *slog.Logger
}

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	BaseURL    string                // required, e.g. "https://api.1pos.com/api"
	Creds      ports.CredentialStore // required
	Timeout    time.Duration         // optional, defaults to DefaultTimeout
	HTTPClient *http.Client          // optional, overrides Timeout when set
	Logger     *slog.Logger          // optional
}

// NewClient creates a backend client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Creds == nil {
		return nil, errors.New("credential store is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		creds:      cfg.Creds,
		logger:     logger,
	}, nil
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// callParams groups the inputs for a single backend call.
type callParams struct {
	method string
	path   string
	query  url.Values
	body   any
}

// call performs one backend request and returns the decoded envelope data.
// A success=false envelope maps to an AuthRejected AppError carrying the
// server message; transport failures map via MapBackendError. A 401 on a
// call that carried a customer token drops that token from the store.
func (c *Client) call(ctx context.Context, p callParams, out any) error {
	req, sentCustomerToken, err := c.newRequest(ctx, p)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.MapBackendError(err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.WarnContext(ctx, "close response body failed", "error", cerr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return apperrors.MapBackendError(err)
	}

	if resp.StatusCode == http.StatusUnauthorized && sentCustomerToken {
		// The stored customer token is no longer valid. Drop it; the Route
		// Guard redirects on the next state check.
		if delErr := c.creds.Delete(ctx, ports.KeyCustomerToken); delErr != nil {
			c.logger.WarnContext(ctx, "drop invalid customer token failed", "error", delErr)
		}
	}

	var env envelope
	if unmarshalErr := json.Unmarshal(raw, &env); unmarshalErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return apperrors.MapBackendStatus(resp.StatusCode)
		}
		return apperrors.Wrap(unmarshalErr, apperrors.ErrCodeInternal, "decode backend response")
	}

	if !env.Success {
		message := env.Message
		if message == "" {
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return apperrors.MapBackendStatus(resp.StatusCode)
			}
			message = "The request was declined. Please try again."
		}
		return apperrors.AuthRejected(message)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if unmarshalErr := json.Unmarshal(env.Data, out); unmarshalErr != nil {
		return apperrors.Wrap(unmarshalErr, apperrors.ErrCodeInternal, "decode backend payload")
	}
	return nil
}

// maxResponseBytes caps backend response bodies (catalog listings stay
// well under this).
const maxResponseBytes = 8 << 20

// newRequest builds one backend request, attaching the bearer token and
// tenant scope read from the Credential Store. The second return reports
// whether a customer token was attached (drives 401 handling).
func (c *Client) newRequest(ctx context.Context, p callParams) (*http.Request, bool, error) {
	endpoint := c.baseURL + p.path
	if tenant := c.storedValue(ctx, ports.KeyTenantSlug); tenant != "" {
		if p.query == nil {
			p.query = url.Values{}
		}
		if p.query.Get("tenant") == "" {
			p.query.Set("tenant", tenant)
		}
	}
	if len(p.query) > 0 {
		endpoint += "?" + p.query.Encode()
	}

	var body io.Reader
	if p.body != nil {
		buf, err := json.Marshal(p.body)
		if err != nil {
			return nil, false, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, endpoint, body)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, isCustomer := c.bearerToken(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, isCustomer, nil
}

// bearerToken returns the stored customer token, falling back to the
// guest token. The raw secret never leaves this call path.
func (c *Client) bearerToken(ctx context.Context) (token string, isCustomer bool) {
	if v := c.storedValue(ctx, ports.KeyCustomerToken); v != "" {
		return v, true
	}
	return c.storedValue(ctx, ports.KeyGuestToken), false
}

// storedValue reads a credential key, treating absence and store errors
// as empty. Store failures degrade to unauthenticated calls.
func (c *Client) storedValue(ctx context.Context, key string) string {
	v, err := c.creds.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCredentialNotFound) {
			c.logger.WarnContext(ctx, "read credential failed", "key", key, "error", err)
		}
		return ""
	}
	return v
}
