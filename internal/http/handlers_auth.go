package httpx

import (
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/ports"
)

const (
	oauthStateCookie = "oauth_state"
	oauthNonceCookie = "oauth_nonce"
	oauthCookieTTL   = 10 * time.Minute
)

// LoginPage renders the password sign-in screen.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Sign In")
	data["Email"] = ""
	h.renderPage(w, r, "login", data)
}

// LoginSubmit handles the password sign-in form post. Success follows the
// PRG pattern; failure re-renders the form with the entered email kept.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	in := ports.LoginInput{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		TenantSlug: h.tenantSlug(),
	}

	if err := h.Sessions.AuthenticateWithPassword(r.Context(), in); err != nil {
		data := h.basePageData(r, "Sign In")
		data["Email"] = in.Email
		h.renderFormError(w, r, "login", data, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage renders the account creation screen.
func (h *UIHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Create Account")
	h.renderPage(w, r, "register", data)
}

// RegisterSubmit handles the registration form post.
func (h *UIHandlers) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	in := ports.RegisterInput{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		FirstName:  r.PostFormValue("firstName"),
		LastName:   r.PostFormValue("lastName"),
		Phone:      r.PostFormValue("phone"),
		TenantSlug: h.tenantSlug(),
	}

	if err := h.Sessions.Register(r.Context(), in); err != nil {
		data := h.basePageData(r, "Create Account")
		data["Form"] = in
		h.renderFormError(w, r, "register", data, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// VerifyOTPPage renders the one-time-code entry screen: one box per
// digit, posted together as otp1..otpN.
func (h *UIHandlers) VerifyOTPPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Verify Code")
	data["Phone"] = r.URL.Query().Get("phone")
	data["Digits"] = otpDigitIndexes(h.Sessions.OTPLength())
	h.renderPage(w, r, "verify-otp", data)
}

// SendOTPSubmit asks the backend to deliver a code, then lands on the
// code entry screen for that phone.
func (h *UIHandlers) SendOTPSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	phone := r.PostFormValue("phone")
	if err := h.Sessions.SendOneTimeCode(r.Context(), phone, h.tenantSlug()); err != nil {
		data := h.basePageData(r, "Verify Code")
		data["Phone"] = phone
		data["Digits"] = otpDigitIndexes(h.Sessions.OTPLength())
		h.renderFormError(w, r, "verify-otp", data, err)
		return
	}

	http.Redirect(w, r, "/verify-otp?phone="+url.QueryEscape(phone), http.StatusSeeOther)
}

// VerifyOTPSubmit assembles the per-digit inputs and performs exactly one
// verification call. Assembly failures never reach the backend.
func (h *UIHandlers) VerifyOTPSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	phone := r.PostFormValue("phone")
	renderError := func(err error) {
		data := h.basePageData(r, "Verify Code")
		data["Phone"] = phone
		data["Digits"] = otpDigitIndexes(h.Sessions.OTPLength())
		h.renderFormError(w, r, "verify-otp", data, err)
	}

	code, err := AssembleOTP(r.PostForm, h.Sessions.OTPLength())
	if err != nil {
		renderError(err)
		return
	}

	in := ports.VerifyOTPInput{
		Phone:      phone,
		Code:       code,
		FirstName:  r.PostFormValue("firstName"),
		LastName:   r.PostFormValue("lastName"),
		TenantSlug: h.tenantSlug(),
	}
	if err := h.Sessions.AuthenticateWithOneTimeCode(r.Context(), in); err != nil {
		renderError(err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GuestPage renders the continue-as-guest screen.
func (h *UIHandlers) GuestPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, "Continue as Guest")
	h.renderPage(w, r, "guest", data)
}

// GuestSubmit requests an anonymous backend session.
func (h *UIHandlers) GuestSubmit(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.CreateGuestSession(r.Context(), h.tenantSlug()); err != nil {
		data := h.basePageData(r, "Continue as Guest")
		h.renderFormError(w, r, "guest", data, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutSubmit signs out and lands on the sign-in screen. Logout cannot
// fail from the operator's point of view.
func (h *UIHandlers) LogoutSubmit(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AuthStatus reports the current session as JSON for probes and scripts.
func (h *UIHandlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.Sessions.Snapshot()
	payload := map[string]any{
		"state":           string(snap.State()),
		"isLoading":       snap.IsLoading,
		"isAuthenticated": snap.IsAuthenticated(),
		"isGuest":         snap.IsGuest(),
	}
	if snap.Customer != nil {
		payload["customer"] = snap.Customer
	}
	if snap.Guest != nil {
		payload["guest"] = snap.Guest
	}
	WriteJSON(w, http.StatusOK, payload)
}

// OAuthBegin starts the third-party dance: state and nonce are parked in
// short-lived cookies and the browser is sent to the provider.
func (h *UIHandlers) OAuthBegin(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		h.NotFound(w, r)
		return
	}

	authURL, state, nonce, err := h.Provider.Begin(r.Context(), ports.BeginInput{
		RedirectURL: "/oauth/callback",
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "oauth begin failed", "error", err)
		data := h.basePageData(r, "Sign In")
		data["Email"] = ""
		h.renderFormError(w, r, "login", data, apperrors.Network("Could not reach the sign-in provider"))
		return
	}

	h.setOAuthCookie(w, oauthStateCookie, state)
	h.setOAuthCookie(w, oauthNonceCookie, nonce)
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// OAuthCallback completes the dance: the code is exchanged for the
// provider access token, which the backend then trades for its own
// customer session.
func (h *UIHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		h.NotFound(w, r)
		return
	}

	defer func() {
		h.clearOAuthCookie(w, oauthStateCookie)
		h.clearOAuthCookie(w, oauthNonceCookie)
	}()

	renderError := func(err error) {
		data := h.basePageData(r, "Sign In")
		data["Email"] = ""
		h.renderFormError(w, r, "login", data, err)
	}

	q := r.URL.Query()
	state := q.Get("state")
	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || stateCookie.Value != state {
		renderError(apperrors.AuthRejected("Sign-in session expired. Please try again."))
		return
	}

	nonce := ""
	if nonceCookie, cerr := r.Cookie(oauthNonceCookie); cerr == nil {
		nonce = nonceCookie.Value
	}

	accessToken, err := h.Provider.Exchange(r.Context(), ports.ExchangeInput{
		Code:  q.Get("code"),
		State: state,
		Nonce: nonce,
	})
	if err != nil {
		h.logger().WarnContext(r.Context(), "oauth exchange failed", "error", err)
		renderError(apperrors.AuthRejected("Sign-in with the provider failed. Please try again."))
		return
	}

	if err := h.Sessions.AuthenticateWithThirdPartyToken(r.Context(), accessToken, h.tenantSlug()); err != nil {
		renderError(err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UIHandlers) setOAuthCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/oauth/",
		Domain:   h.CookieDomain,
		MaxAge:   int(oauthCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *UIHandlers) clearOAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/oauth/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// otpDigitIndexes drives the per-digit inputs in the verify-otp template.
func otpDigitIndexes(length int) []int {
	idx := make([]int, length)
	for i := range idx {
		idx[i] = i + 1
	}
	return idx
}
