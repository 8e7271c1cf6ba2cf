package httpx

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	storefront "github.com/onepos/storefront"
	domainsession "github.com/onepos/storefront/internal/domain/session"
	catalogmocks "github.com/onepos/storefront/internal/mocks/catalog"
	"github.com/onepos/storefront/internal/ports"
	"github.com/onepos/storefront/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTemplateFS(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(storefront.TemplateFS, "frontend/templates")
	require.NoError(t, err)
	return sub
}

// testCustomer is the principal adopted by fakeSessions on success.
var testCustomer = domainsession.Customer{
	ID:        "cust-9",
	FirstName: "Ann",
	LastName:  "Lee",
	Email:     "ann@example.com",
}

var testGuest = domainsession.Guest{GuestID: "guest-7", TenantID: "tenant-3"}

// fakeSessions is a hand-written SessionManager double. Acquisitions
// record their inputs and, unless an error is configured, adopt the
// fixture principal so redirects and guard behavior can be asserted.
type fakeSessions struct {
	snap      domainsession.Snapshot
	otpLength int

	loginErr    error
	registerErr error
	sendErr     error
	verifyErr   error
	thirdErr    error
	guestErr    error

	lastLogin    ports.LoginInput
	lastRegister ports.RegisterInput
	lastVerify   ports.VerifyOTPInput

	lastSendPhone  string
	lastSendTenant string
	lastToken      string
	lastTenant     string

	loginCalls  int
	verifyCalls int
	guestCalls  int
	logoutCalls int
}

func newFakeSessions(snap domainsession.Snapshot) *fakeSessions {
	return &fakeSessions{snap: snap, otpLength: service.DefaultOTPLength}
}

func (f *fakeSessions) Snapshot() domainsession.Snapshot { return f.snap }
func (f *fakeSessions) OTPLength() int                   { return f.otpLength }

func (f *fakeSessions) AuthenticateWithPassword(_ context.Context, in ports.LoginInput) error {
	f.loginCalls++
	f.lastLogin = in
	if f.loginErr != nil {
		return f.loginErr
	}
	f.snap = domainsession.ForCustomer(testCustomer)
	return nil
}

func (f *fakeSessions) Register(_ context.Context, in ports.RegisterInput) error {
	f.lastRegister = in
	if f.registerErr != nil {
		return f.registerErr
	}
	f.snap = domainsession.ForCustomer(testCustomer)
	return nil
}

func (f *fakeSessions) SendOneTimeCode(_ context.Context, phone, tenantSlug string) error {
	f.lastSendPhone = phone
	f.lastSendTenant = tenantSlug
	return f.sendErr
}

func (f *fakeSessions) AuthenticateWithOneTimeCode(_ context.Context, in ports.VerifyOTPInput) error {
	f.verifyCalls++
	f.lastVerify = in
	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.snap = domainsession.ForCustomer(testCustomer)
	return nil
}

func (f *fakeSessions) AuthenticateWithThirdPartyToken(_ context.Context, accessToken, tenantSlug string) error {
	f.lastToken = accessToken
	f.lastTenant = tenantSlug
	if f.thirdErr != nil {
		return f.thirdErr
	}
	f.snap = domainsession.ForCustomer(testCustomer)
	return nil
}

func (f *fakeSessions) CreateGuestSession(_ context.Context, tenantSlug string) error {
	f.guestCalls++
	f.lastTenant = tenantSlug
	if f.guestErr != nil {
		return f.guestErr
	}
	f.snap = domainsession.ForGuest(testGuest)
	return nil
}

func (f *fakeSessions) Logout(_ context.Context) {
	f.logoutCalls++
	f.snap = domainsession.Anonymous()
}

var _ SessionManager = (*fakeSessions)(nil)

// fakeProvider is a hand-written ThirdPartyProvider double.
type fakeProvider struct {
	authURL string
	state   string
	nonce   string

	beginErr    error
	exchangeErr error
	accessToken string

	lastExchange ports.ExchangeInput
}

func (f *fakeProvider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	if f.beginErr != nil {
		return "", "", "", f.beginErr
	}
	return f.authURL, f.state, f.nonce, nil
}

func (f *fakeProvider) Exchange(_ context.Context, in ports.ExchangeInput) (string, error) {
	f.lastExchange = in
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return f.accessToken, nil
}

var _ ports.ThirdPartyProvider = (*fakeProvider)(nil)

// routerOpts tweaks the test router; the zero value gives a pass-through
// catalog over the fixture backend and no third-party provider.
type routerOpts struct {
	api      *catalogmocks.FakeCatalogAPI
	provider ports.ThirdPartyProvider
}

func newTestRouter(t *testing.T, sessions SessionManager, opts routerOpts) http.Handler {
	t.Helper()

	api := opts.api
	if api == nil {
		api = catalogmocks.NewFakeCatalogAPI()
	}
	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		API:    api,
		Logger: testLogger(),
	})

	h, err := NewRouter(RouterServices{
		Sessions:          sessions,
		Catalog:           catalog,
		Provider:          opts.provider,
		TemplateFS:        testTemplateFS(t),
		DefaultTenantSlug: "acme",
		Logger:            testLogger(),
	})
	require.NoError(t, err)
	return h
}
