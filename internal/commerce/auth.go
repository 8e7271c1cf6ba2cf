package commerce

import (
	"context"
	"net/http"

	domainsession "github.com/onepos/storefront/internal/domain/session"
	"github.com/onepos/storefront/internal/ports"
)

// Compile-time conformance to the auth port.
var _ ports.AuthAPI = (*Client)(nil)

// authPayload is the {token, customer} payload shared by the customer
// acquisition endpoints.
type authPayload struct {
	Token    string                 `json:"token"`
	Customer domainsession.Customer `json:"customer"`
}

// guestPayload is the create-guest-session payload.
type guestPayload struct {
	Token    string `json:"token"`
	GuestID  string `json:"guestId"`
	TenantID string `json:"tenantId"`
}

// mePayload wraps the who-am-I customer.
type mePayload struct {
	Customer domainsession.Customer `json:"customer"`
}

// SendOTP asks the backend to deliver a one-time code out-of-band.
func (c *Client) SendOTP(ctx context.Context, phone, tenantSlug string) error {
	body := map[string]string{"phone": phone}
	if tenantSlug != "" {
		body["tenantSlug"] = tenantSlug
	}
	return c.call(ctx, callParams{
		method: http.MethodPost,
		path:   "/auth/customer/send-otp",
		body:   body,
	}, nil)
}

// VerifyOTP exchanges a delivered one-time code for a session token.
func (c *Client) VerifyOTP(ctx context.Context, in ports.VerifyOTPInput) (ports.AuthResult, error) {
	body := map[string]string{
		"phone": in.Phone,
		"otp":   in.Code,
	}
	if in.FirstName != "" {
		body["firstName"] = in.FirstName
	}
	if in.LastName != "" {
		body["lastName"] = in.LastName
	}
	if in.TenantSlug != "" {
		body["tenantSlug"] = in.TenantSlug
	}
	return c.customerAuth(ctx, "/auth/customer/verify-otp", body)
}

// Register creates an account and returns a session token for it.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) (ports.AuthResult, error) {
	body := map[string]string{
		"email":     in.Email,
		"password":  in.Password,
		"firstName": in.FirstName,
		"lastName":  in.LastName,
	}
	if in.Phone != "" {
		body["phone"] = in.Phone
	}
	if in.TenantSlug != "" {
		body["tenantSlug"] = in.TenantSlug
	}
	return c.customerAuth(ctx, "/auth/customer/register", body)
}

// Login performs password login.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (ports.AuthResult, error) {
	body := map[string]string{
		"email":    in.Email,
		"password": in.Password,
	}
	if in.TenantSlug != "" {
		body["tenantSlug"] = in.TenantSlug
	}
	return c.customerAuth(ctx, "/auth/customer/login", body)
}

// ExchangeThirdPartyToken exchanges an already-obtained provider access
// token for a backend session token.
func (c *Client) ExchangeThirdPartyToken(ctx context.Context, accessToken, tenantSlug string) (ports.AuthResult, error) {
	body := map[string]string{"accessToken": accessToken}
	if tenantSlug != "" {
		body["tenantSlug"] = tenantSlug
	}
	return c.customerAuth(ctx, "/auth/customer/facebook", body)
}

// Me returns the customer identified by the stored bearer token.
func (c *Client) Me(ctx context.Context) (domainsession.Customer, error) {
	var payload mePayload
	err := c.call(ctx, callParams{
		method: http.MethodGet,
		path:   "/auth/customer/me",
	}, &payload)
	if err != nil {
		return domainsession.Customer{}, err
	}
	return payload.Customer, nil
}

// Logout notifies the backend that the current session ends.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, callParams{
		method: http.MethodPost,
		path:   "/auth/customer/logout",
	}, nil)
}

// CreateGuestSession requests an anonymous session.
func (c *Client) CreateGuestSession(ctx context.Context, tenantSlug string) (ports.GuestResult, error) {
	body := map[string]string{}
	if tenantSlug != "" {
		body["tenantSlug"] = tenantSlug
	}
	var payload guestPayload
	err := c.call(ctx, callParams{
		method: http.MethodPost,
		path:   "/auth/guest/create",
		body:   body,
	}, &payload)
	if err != nil {
		return ports.GuestResult{}, err
	}
	return ports.GuestResult{
		Token: payload.Token,
		Guest: domainsession.Guest{GuestID: payload.GuestID, TenantID: payload.TenantID},
	}, nil
}

func (c *Client) customerAuth(ctx context.Context, path string, body map[string]string) (ports.AuthResult, error) {
	var payload authPayload
	err := c.call(ctx, callParams{
		method: http.MethodPost,
		path:   path,
		body:   body,
	}, &payload)
	if err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{Token: payload.Token, Customer: payload.Customer}, nil
}
