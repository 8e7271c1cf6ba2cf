package auth

// Package auth contains simple hand-written test doubles for the auth
// ports. These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync/atomic"

	domainsession "github.com/onepos/storefront/internal/domain/session"
	"github.com/onepos/storefront/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI            = (*FakeAuthAPI)(nil)
	_ ports.ThirdPartyProvider = (*FakeThirdPartyProvider)(nil)
)

// FakeAuthAPI simulates the commerce backend's auth endpoints. Each
// endpoint delegates to its func field when set and otherwise returns a
// deterministic default. Call counters allow asserting exactly how many
// network calls an operation made.
type FakeAuthAPI struct {
	SendOTPFunc            func(ctx context.Context, phone, tenantSlug string) error
	VerifyOTPFunc          func(ctx context.Context, in ports.VerifyOTPInput) (ports.AuthResult, error)
	RegisterFunc           func(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error)
	LoginFunc              func(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error)
	ExchangeFunc           func(ctx context.Context, accessToken, tenantSlug string) (ports.AuthResult, error)
	MeFunc                 func(ctx context.Context) (domainsession.Customer, error)
	LogoutFunc             func(ctx context.Context) error
	CreateGuestSessionFunc func(ctx context.Context, tenantSlug string) (ports.GuestResult, error)

	// DefaultCustomer backs endpoints with no func override.
	DefaultCustomer domainsession.Customer
	DefaultToken    string

	SendOTPCalls   atomic.Int64
	VerifyOTPCalls atomic.Int64
	RegisterCalls  atomic.Int64
	LoginCalls     atomic.Int64
	ExchangeCalls  atomic.Int64
	MeCalls        atomic.Int64
	LogoutCalls    atomic.Int64
	GuestCalls     atomic.Int64
}

// NewFakeAuthAPI creates a FakeAuthAPI with sensible defaults.
func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		DefaultToken: "fake-token",
		DefaultCustomer: domainsession.Customer{
			ID:        "cust-1",
			FirstName: "Fake",
			LastName:  "Customer",
			Email:     "fake.customer@example.com",
		},
	}
}

func (f *FakeAuthAPI) defaultResult() ports.AuthResult {
	return ports.AuthResult{Token: f.DefaultToken, Customer: f.DefaultCustomer}
}

func (f *FakeAuthAPI) SendOTP(ctx context.Context, phone, tenantSlug string) error {
	f.SendOTPCalls.Add(1)
	if f.SendOTPFunc != nil {
		return f.SendOTPFunc(ctx, phone, tenantSlug)
	}
	return nil
}

func (f *FakeAuthAPI) VerifyOTP(ctx context.Context, in ports.VerifyOTPInput) (ports.AuthResult, error) {
	f.VerifyOTPCalls.Add(1)
	if f.VerifyOTPFunc != nil {
		return f.VerifyOTPFunc(ctx, in)
	}
	return f.defaultResult(), nil
}

func (f *FakeAuthAPI) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	f.RegisterCalls.Add(1)
	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, in)
	}
	return f.defaultResult(), nil
}

func (f *FakeAuthAPI) Login(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error) {
	f.LoginCalls.Add(1)
	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, in)
	}
	return f.defaultResult(), nil
}

func (f *FakeAuthAPI) ExchangeThirdPartyToken(ctx context.Context, accessToken, tenantSlug string) (ports.AuthResult, error) {
	f.ExchangeCalls.Add(1)
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, accessToken, tenantSlug)
	}
	return f.defaultResult(), nil
}

func (f *FakeAuthAPI) Me(ctx context.Context) (domainsession.Customer, error) {
	f.MeCalls.Add(1)
	if f.MeFunc != nil {
		return f.MeFunc(ctx)
	}
	return f.DefaultCustomer, nil
}

func (f *FakeAuthAPI) Logout(ctx context.Context) error {
	f.LogoutCalls.Add(1)
	if f.LogoutFunc != nil {
		return f.LogoutFunc(ctx)
	}
	return nil
}

func (f *FakeAuthAPI) CreateGuestSession(ctx context.Context, tenantSlug string) (ports.GuestResult, error) {
	f.GuestCalls.Add(1)
	if f.CreateGuestSessionFunc != nil {
		return f.CreateGuestSessionFunc(ctx, tenantSlug)
	}
	return ports.GuestResult{
		Token: "fake-guest-token",
		Guest: domainsession.Guest{GuestID: "guest-1", TenantID: "tenant-1"},
	}, nil
}

// FakeThirdPartyProvider simulates the external OAuth dance with
// deterministic state/nonce values.
type FakeThirdPartyProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (string, error)

	AuthURL     string
	State       string
	Nonce       string
	AccessToken string
}

// NewFakeThirdPartyProvider creates a provider double with fixed values.
func NewFakeThirdPartyProvider() *FakeThirdPartyProvider {
	return &FakeThirdPartyProvider{
		AuthURL:     "https://fake-provider/auth",
		State:       "state-1",
		Nonce:       "nonce-1",
		AccessToken: "provider-access-token",
	}
}

func (f *FakeThirdPartyProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if f.BeginFunc != nil {
		return f.BeginFunc(ctx, in)
	}
	return f.AuthURL, f.State, f.Nonce, nil
}

func (f *FakeThirdPartyProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (string, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, in)
	}
	return f.AccessToken, nil
}
