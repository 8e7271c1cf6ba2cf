package ports

// Package ports defines interfaces (hexagonal ports) for the storefront's
// auth and credential behavior. Implementations live in internal/adapters
// and internal/commerce; orchestration in internal/service.

import (
	"context"

	domainsession "github.com/onepos/storefront/internal/domain/session"
)

// Credential Store keys. The store is addressed by these exact keys;
// each operation is independently atomic with no cross-key transaction.
const (
	KeyCustomerToken = "customer-token"
	KeyGuestToken    = "guest-token"
	KeyTenantSlug    = "tenant-slug"
	KeyGuestID       = "guest-id"
	KeyTenantID      = "tenant-id"
)

// ErrCredentialNotFound is returned when a credential key is absent.
type credentialNotFoundError struct{}

func (credentialNotFoundError) Error() string { return "credential not found" }

var ErrCredentialNotFound error = credentialNotFoundError{}

// CredentialStore persists secrets durably and securely, addressed by
// fixed keys. The Session Manager is its only writer.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LoginInput groups parameters for password login.
type LoginInput struct {
	Email      string
	Password   string
	TenantSlug string
}

// RegisterInput groups parameters for account registration.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      string
	TenantSlug string
}

// VerifyOTPInput groups parameters for one-time-code verification.
type VerifyOTPInput struct {
	Phone      string
	Code       string
	FirstName  string
	LastName   string
	TenantSlug string
}

// AuthResult is the backend's answer to a successful customer acquisition.
type AuthResult struct {
	Token    string
	Customer domainsession.Customer
}

// GuestResult is the backend's answer to a successful guest session request.
type GuestResult struct {
	Token string
	Guest domainsession.Guest
}

// AuthAPI exposes the backend's customer/guest auth endpoints.
// Implementations return AuthRejected AppErrors when the backend reports
// failure and Network/Timeout AppErrors when the call cannot complete.
type AuthAPI interface {
	SendOTP(ctx context.Context, phone, tenantSlug string) error
	VerifyOTP(ctx context.Context, in VerifyOTPInput) (AuthResult, error)
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	ExchangeThirdPartyToken(ctx context.Context, accessToken, tenantSlug string) (AuthResult, error)
	Me(ctx context.Context) (domainsession.Customer, error)
	Logout(ctx context.Context) error
	CreateGuestSession(ctx context.Context, tenantSlug string) (GuestResult, error)
}

// BeginInput carries inputs for initiating a third-party auth flow.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the third-party code exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// ThirdPartyProvider runs the external OAuth dance and yields an opaque
// provider access token. The Session Manager never sees the dance; it only
// receives the token for backend exchange.
type ThirdPartyProvider interface {
	// Begin starts the flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the flow, verifying state and nonce, and returns the provider access token.
	Exchange(ctx context.Context, in ExchangeInput) (accessToken string, err error)
}
