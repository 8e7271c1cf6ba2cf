package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainsession "github.com/onepos/storefront/internal/domain/session"
	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/observability/metrics"
	"github.com/onepos/storefront/internal/observability/statsd"
	"github.com/onepos/storefront/internal/ports"
)

// DefaultOTPLength is the one-time-code policy length.
const DefaultOTPLength = 6

// ErrOperationInFlight is returned when an acquisition operation is
// invoked while another one is still outstanding. Callers should disable
// re-entry while a call is pending; this guard is the backstop.
var ErrOperationInFlight = apperrors.Conflict("Another sign-in is already in progress. Please wait.")

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	API       ports.AuthAPI
	Creds     ports.CredentialStore
	Logger    *slog.Logger
	Metrics   statsd.Sink
	OTPLength int // defaults to DefaultOTPLength
}

// SessionService owns the process-wide authentication state machine: the
// four credential-acquisition flows, logout, and startup reconciliation.
// Acquisition calls are single-flight: a second concurrent acquisition is
// rejected rather than racing the first one's state write. Logout and
// reconciliation serialize behind whatever call is outstanding.
//
// Raw tokens pass through to the Credential Store and are never retained;
// the customer principal is always re-derived via the who-am-I endpoint.
type SessionService struct {
	api       ports.AuthAPI
	creds     ports.CredentialStore
	logger    *slog.Logger
	metrics   statsd.Sink
	otpLength int

	// opMu serializes every state-mutating operation. Acquisitions
	// TryLock and reject; Logout/Reconcile block.
	opMu sync.Mutex

	mu   sync.RWMutex
	snap domainsession.Snapshot

	reconcileOnce sync.Once
}

// NewSessionService constructs a SessionService in the Unknown (loading)
// state. ReconcileOnStartup must run before the session is meaningful.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	otpLength := opts.OTPLength
	if otpLength <= 0 {
		otpLength = DefaultOTPLength
	}
	return &SessionService{
		api:       opts.API,
		creds:     opts.Creds,
		logger:    logger,
		metrics:   opts.Metrics,
		otpLength: otpLength,
		snap:      domainsession.Loading(),
	}
}

// Snapshot returns the current session state. The returned value is a
// copy; principal transitions are atomic from the observer's perspective.
func (s *SessionService) Snapshot() domainsession.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// OTPLength returns the one-time-code policy length.
func (s *SessionService) OTPLength() int { return s.otpLength }

// AuthenticateWithPassword performs password login. On success the
// returned token is persisted under customer-token and the session
// becomes Customer; on failure the session is left unchanged.
func (s *SessionService) AuthenticateWithPassword(ctx context.Context, in ports.LoginInput) error {
	if in.Email == "" {
		return apperrors.ValidationField("email", "Email is required")
	}
	if in.Password == "" {
		return apperrors.ValidationField("password", "Password is required")
	}

	return s.acquire(ctx, "password", func(ctx context.Context) error {
		result, err := s.api.Login(ctx, in)
		if err != nil {
			return err
		}
		return s.adoptCustomer(ctx, result, in.TenantSlug)
	})
}

// Register creates an account and signs the new customer in.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) error {
	switch {
	case in.Email == "":
		return apperrors.ValidationField("email", "Email is required")
	case in.Password == "":
		return apperrors.ValidationField("password", "Password is required")
	case in.FirstName == "":
		return apperrors.ValidationField("firstName", "First name is required")
	case in.LastName == "":
		return apperrors.ValidationField("lastName", "Last name is required")
	}

	return s.acquire(ctx, "register", func(ctx context.Context) error {
		result, err := s.api.Register(ctx, in)
		if err != nil {
			return err
		}
		return s.adoptCustomer(ctx, result, in.TenantSlug)
	})
}

// SendOneTimeCode asks the backend to deliver a code to the given phone.
// It does not mutate the session and is not subject to the in-flight guard.
func (s *SessionService) SendOneTimeCode(ctx context.Context, phone, tenantSlug string) error {
	if phone == "" {
		return apperrors.ValidationField("phone", "Phone number is required")
	}
	start := time.Now()
	err := s.api.SendOTP(ctx, phone, tenantSlug)
	s.observe("send_otp", start, err)
	return err
}

// AuthenticateWithOneTimeCode exchanges a fully-assembled one-time code
// for a customer session. The code must match the policy length exactly;
// assembling it from individual input fields is the calling screen's job.
func (s *SessionService) AuthenticateWithOneTimeCode(ctx context.Context, in ports.VerifyOTPInput) error {
	if in.Phone == "" {
		return apperrors.ValidationField("phone", "Phone number is required")
	}
	if len(in.Code) != s.otpLength {
		return apperrors.ValidationField("otp", "Enter the complete verification code")
	}

	return s.acquire(ctx, "otp", func(ctx context.Context) error {
		result, err := s.api.VerifyOTP(ctx, in)
		if err != nil {
			return err
		}
		return s.adoptCustomer(ctx, result, in.TenantSlug)
	})
}

// AuthenticateWithThirdPartyToken exchanges an externally-obtained
// provider access token for a customer session. The OAuth dance that
// produced the token lives in the provider adapter, not here.
func (s *SessionService) AuthenticateWithThirdPartyToken(ctx context.Context, accessToken, tenantSlug string) error {
	if accessToken == "" {
		return apperrors.ValidationField("accessToken", "Access token is required")
	}

	return s.acquire(ctx, "third_party", func(ctx context.Context) error {
		result, err := s.api.ExchangeThirdPartyToken(ctx, accessToken, tenantSlug)
		if err != nil {
			return err
		}
		return s.adoptCustomer(ctx, result, tenantSlug)
	})
}

// CreateGuestSession requests an anonymous backend session. On success
// the guest token and identity are persisted and the session becomes
// Guest; any customer credential is dropped so reconciliation cannot
// resurrect the previous customer over the newer guest choice.
func (s *SessionService) CreateGuestSession(ctx context.Context, tenantSlug string) error {
	return s.acquire(ctx, "guest", func(ctx context.Context) error {
		result, err := s.api.CreateGuestSession(ctx, tenantSlug)
		if err != nil {
			return err
		}

		if err = s.creds.Set(ctx, ports.KeyGuestToken, result.Token); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist guest token")
		}
		s.persistBestEffort(ctx, ports.KeyGuestID, result.Guest.GuestID)
		s.persistBestEffort(ctx, ports.KeyTenantID, result.Guest.TenantID)
		if tenantSlug != "" {
			s.persistBestEffort(ctx, ports.KeyTenantSlug, tenantSlug)
		}
		if err = s.creds.Delete(ctx, ports.KeyCustomerToken); err != nil {
			s.logger.WarnContext(ctx, "drop customer token on guest creation failed", "error", err)
		}

		s.setSnapshot(domainsession.ForGuest(result.Guest))
		return nil
	})
}

// Logout best-effort notifies the backend, then unconditionally deletes
// both tokens and resets the session to Anonymous. It cannot fail from
// the caller's point of view; it queues behind any outstanding operation.
func (s *SessionService) Logout(ctx context.Context) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	start := time.Now()
	if err := s.api.Logout(ctx); err != nil {
		// Backend notify is best-effort; local logout proceeds regardless.
		s.logger.WarnContext(ctx, "backend logout failed", "error", err)
	}

	for _, key := range []string{
		ports.KeyCustomerToken,
		ports.KeyGuestToken,
		ports.KeyGuestID,
		ports.KeyTenantID,
	} {
		if err := s.creds.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "delete credential failed", "key", key, "error", err)
		}
	}

	s.setSnapshot(domainsession.Anonymous())
	s.observe("logout", start, nil)
}

// ReconcileOnStartup re-derives the session from stored credentials. It
// runs once per process lifetime; later calls are no-ops. It never fails
// outward: every terminating path leaves IsLoading=false exactly once.
func (s *SessionService) ReconcileOnStartup(ctx context.Context) {
	s.reconcileOnce.Do(func() {
		s.opMu.Lock()
		defer s.opMu.Unlock()

		start := time.Now()
		snap := s.reconcile(ctx)
		s.setSnapshot(snap)
		s.observe("reconcile", start, nil)
		s.logger.InfoContext(ctx, "session reconciled", "state", string(snap.State()))
	})
}

// reconcile computes the startup snapshot. A stored customer token wins
// when the who-am-I call confirms it; otherwise a stored guest token
// restores the persisted guest identity; otherwise Anonymous.
func (s *SessionService) reconcile(ctx context.Context) domainsession.Snapshot {
	if token := s.storedValue(ctx, ports.KeyCustomerToken); token != "" {
		customer, err := s.api.Me(ctx)
		if err == nil {
			return domainsession.ForCustomer(customer)
		}
		// Expired/invalid token or network failure: fall through, no retry.
		s.logger.WarnContext(ctx, "customer reconciliation failed", "error", err)
	}

	if token := s.storedValue(ctx, ports.KeyGuestToken); token != "" {
		return domainsession.ForGuest(domainsession.Guest{
			GuestID:  s.storedValue(ctx, ports.KeyGuestID),
			TenantID: s.storedValue(ctx, ports.KeyTenantID),
		})
	}

	return domainsession.Anonymous()
}

// acquire runs one credential-acquisition operation under the
// single-flight guard and emits its metrics.
func (s *SessionService) acquire(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if !s.opMu.TryLock() {
		s.observe(op, time.Now(), ErrOperationInFlight)
		return ErrOperationInFlight
	}
	defer s.opMu.Unlock()

	start := time.Now()
	err := fn(ctx)
	s.observe(op, start, err)
	return err
}

// adoptCustomer persists a successful customer acquisition and swaps the
// session to the new principal, clearing any guest state.
func (s *SessionService) adoptCustomer(ctx context.Context, result ports.AuthResult, tenantSlug string) error {
	if err := s.creds.Set(ctx, ports.KeyCustomerToken, result.Token); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist customer token")
	}
	if tenantSlug != "" {
		s.persistBestEffort(ctx, ports.KeyTenantSlug, tenantSlug)
	}

	s.setSnapshot(domainsession.ForCustomer(result.Customer))
	return nil
}

func (s *SessionService) setSnapshot(snap domainsession.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *SessionService) storedValue(ctx context.Context, key string) string {
	v, err := s.creds.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCredentialNotFound) {
			s.logger.WarnContext(ctx, "read credential failed", "key", key, "error", err)
		}
		return ""
	}
	return v
}

func (s *SessionService) persistBestEffort(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	if err := s.creds.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "persist credential failed", "key", key, "error", err)
	}
}

func (s *SessionService) observe(op string, start time.Time, err error) {
	metrics.EmitAuthOperation(s.metrics, metrics.AuthMetric{
		Operation: op,
		Result:    metrics.ResultFor(err),
		Duration:  time.Since(start),
		Err:       err,
	})
}
