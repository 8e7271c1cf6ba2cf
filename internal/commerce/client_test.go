package commerce

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onepos/storefront/internal/adapters/memory"
	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/ports"
)

func catalogProductQuery() domaincatalog.ProductQuery {
	return domaincatalog.ProductQuery{}
}

// newTestClient wires a client against a test server with a fresh
// in-memory credential store.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *memory.CredentialStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := memory.NewCredentialStore()
	client, err := NewClient(ClientConfig{
		BaseURL: server.URL,
		Creds:   creds,
	})
	require.NoError(t, err)
	return client, creds
}

func TestNewClient_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{Creds: memory.NewCredentialStore()})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "https://api.example.com"})
	assert.Error(t, err)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/customer/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"T1","customer":{"_id":"1","firstName":"Ann"}}}`))
	})
	client, _ := newTestClient(t, handler)

	result, err := client.Login(context.Background(), ports.LoginInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "T1", result.Token)
	assert.Equal(t, "1", result.Customer.ID)
	assert.Equal(t, "Ann", result.Customer.FirstName)
}

func TestLogin_BackendDeclined(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Invalid email or password"}`))
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Login(context.Background(), ports.LoginInput{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRejected(err))
	assert.Equal(t, "Invalid email or password", apperrors.UserMessage(err))
}

func TestCall_NetworkError(t *testing.T) {
	t.Parallel()

	creds := memory.NewCredentialStore()
	client, err := NewClient(ClientConfig{
		// Nothing listens here; connection is refused immediately.
		BaseURL: "http://127.0.0.1:1",
		Creds:   creds,
	})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), ports.LoginInput{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
}

func TestMe_AttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"customer":{"_id":"42","firstName":"Ann"}}}`))
	})
	client, creds := newTestClient(t, handler)
	require.NoError(t, creds.Set(context.Background(), ports.KeyCustomerToken, "T-cust"))

	customer, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T-cust", gotAuth)
	assert.Equal(t, "42", customer.ID)
}

func TestCall_GuestTokenFallback(t *testing.T) {
	t.Parallel()

	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})
	client, creds := newTestClient(t, handler)
	require.NoError(t, creds.Set(context.Background(), ports.KeyGuestToken, "T-guest"))

	_, err := client.Products(context.Background(), catalogProductQuery())
	require.NoError(t, err)
	assert.Equal(t, "Bearer T-guest", gotAuth)
}

func TestCall_TenantScopeFromStore(t *testing.T) {
	t.Parallel()

	var gotTenant string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = r.URL.Query().Get("tenant")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	})
	client, creds := newTestClient(t, handler)
	require.NoError(t, creds.Set(context.Background(), ports.KeyTenantSlug, "acme"))

	_, err := client.Products(context.Background(), catalogProductQuery())
	require.NoError(t, err)
	assert.Equal(t, "acme", gotTenant)
}

func TestCall_Unauthorized_DropsCustomerToken(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"Token expired"}`))
	})
	client, creds := newTestClient(t, handler)
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyCustomerToken, "stale"))

	_, err := client.Me(ctx)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRejected(err))

	_, err = creds.Get(ctx, ports.KeyCustomerToken)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestCall_Unauthorized_KeepsGuestToken(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"message":"nope"}`))
	})
	client, creds := newTestClient(t, handler)
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyGuestToken, "T-guest"))

	_, err := client.Me(ctx)
	require.Error(t, err)

	// Only the customer token is dropped on 401; guest credentials stay.
	v, err := creds.Get(ctx, ports.KeyGuestToken)
	require.NoError(t, err)
	assert.Equal(t, "T-guest", v)
}

func TestCreateGuestSession_Success(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/guest/create", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"G1","guestId":"g-9","tenantId":"t-3"}}`))
	})
	client, _ := newTestClient(t, handler)

	result, err := client.CreateGuestSession(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, "G1", result.Token)
	assert.Equal(t, "g-9", result.Guest.GuestID)
	assert.Equal(t, "t-3", result.Guest.TenantID)
}

func TestCall_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	client, _ := newTestClient(t, handler)

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNetwork(err))
}
