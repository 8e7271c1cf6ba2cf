package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/onepos/storefront/internal/adapters/memory"
	domainsession "github.com/onepos/storefront/internal/domain/session"
	apperrors "github.com/onepos/storefront/internal/errors"
	"github.com/onepos/storefront/internal/mocks"
	mockauth "github.com/onepos/storefront/internal/mocks/auth"
	"github.com/onepos/storefront/internal/ports"
)

// newSessionService wires a SessionService against a fake backend and a
// fresh in-memory credential store.
func newSessionService(t *testing.T) (*mockauth.FakeAuthAPI, *memory.CredentialStore, *SessionService) {
	t.Helper()

	api := mockauth.NewFakeAuthAPI()
	creds := memory.NewCredentialStore()
	svc := NewSessionService(SessionServiceOptions{
		API:   api,
		Creds: creds,
	})
	return api, creds, svc
}

func TestSessionService_StartsInLoadingState(t *testing.T) {
	t.Parallel()
	_, _, svc := newSessionService(t)

	snap := svc.Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Equal(t, domainsession.StateUnknown, snap.State())
}

func TestAuthenticateWithPassword_Success(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	api.LoginFunc = func(_ context.Context, in ports.LoginInput) (ports.AuthResult, error) {
		assert.Equal(t, "a@b.com", in.Email)
		assert.Equal(t, "secret1", in.Password)
		return ports.AuthResult{
			Token:    "T1",
			Customer: domainsession.Customer{ID: "1", FirstName: "Ann"},
		}, nil
	}

	ctx := context.Background()
	err := svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	snap := svc.Snapshot()
	assert.True(t, snap.IsAuthenticated())
	assert.False(t, snap.IsGuest())
	assert.Equal(t, "1", snap.Customer.ID)
	assert.Equal(t, "Ann", snap.Customer.FirstName)

	token, err := creds.Get(ctx, ports.KeyCustomerToken)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)
}

func TestAuthenticateWithPassword_PersistsTenantSlug(t *testing.T) {
	t.Parallel()
	_, creds, svc := newSessionService(t)

	ctx := context.Background()
	err := svc.AuthenticateWithPassword(ctx, ports.LoginInput{
		Email: "a@b.com", Password: "secret1", TenantSlug: "acme",
	})
	require.NoError(t, err)

	slug, err := creds.Get(ctx, ports.KeyTenantSlug)
	require.NoError(t, err)
	assert.Equal(t, "acme", slug)
}

func TestAuthenticateWithPassword_ValidationNeverReachesNetwork(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)
	ctx := context.Background()

	err := svc.AuthenticateWithPassword(ctx, ports.LoginInput{Password: "x"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "email", apperrors.GetField(err))

	err = svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com"})
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, int64(0), api.LoginCalls.Load())
}

func TestAuthenticateWithPassword_RejectedLeavesSessionUnchanged(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	api.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{}, apperrors.AuthRejected("Invalid email or password")
	}

	ctx := context.Background()
	err := svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com", Password: "nope"})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRejected(err))

	snap := svc.Snapshot()
	assert.True(t, snap.IsLoading, "failed login must not change state")

	_, err = creds.Get(ctx, ports.KeyCustomerToken)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestAuthenticateWithOneTimeCode_WrongLengthRejectedLocally(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)

	err := svc.AuthenticateWithOneTimeCode(context.Background(), ports.VerifyOTPInput{
		Phone: "+15551234567",
		Code:  "12345",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int64(0), api.VerifyOTPCalls.Load())
}

func TestAuthenticateWithOneTimeCode_Success(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)
	api.VerifyOTPFunc = func(_ context.Context, in ports.VerifyOTPInput) (ports.AuthResult, error) {
		assert.Equal(t, "123456", in.Code)
		return ports.AuthResult{
			Token:    "T-otp",
			Customer: domainsession.Customer{ID: "7", FirstName: "Pat"},
		}, nil
	}

	err := svc.AuthenticateWithOneTimeCode(context.Background(), ports.VerifyOTPInput{
		Phone: "+15551234567",
		Code:  "123456",
	})
	require.NoError(t, err)
	assert.True(t, svc.Snapshot().IsAuthenticated())
	assert.Equal(t, int64(1), api.VerifyOTPCalls.Load())
}

func TestSendOneTimeCode_RequiresPhone(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)

	err := svc.SendOneTimeCode(context.Background(), "", "")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, int64(0), api.SendOTPCalls.Load())
}

func TestAuthenticateWithThirdPartyToken_Success(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)
	api.ExchangeFunc = func(_ context.Context, accessToken, _ string) (ports.AuthResult, error) {
		assert.Equal(t, "fb-token", accessToken)
		return ports.AuthResult{Token: "T-fb", Customer: domainsession.Customer{ID: "9"}}, nil
	}

	err := svc.AuthenticateWithThirdPartyToken(context.Background(), "fb-token", "")
	require.NoError(t, err)
	assert.True(t, svc.Snapshot().IsAuthenticated())
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@b.com", Password: "pw", FirstName: "Ann",
	})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "lastName", apperrors.GetField(err))
	assert.Equal(t, int64(0), api.RegisterCalls.Load())
}

func TestCreateGuestSession_Success(t *testing.T) {
	t.Parallel()
	_, creds, svc := newSessionService(t)
	ctx := context.Background()

	err := svc.CreateGuestSession(ctx, "acme")
	require.NoError(t, err)

	snap := svc.Snapshot()
	assert.True(t, snap.IsGuest())
	assert.False(t, snap.IsAuthenticated())
	assert.Equal(t, "guest-1", snap.Guest.GuestID)

	token, err := creds.Get(ctx, ports.KeyGuestToken)
	require.NoError(t, err)
	assert.Equal(t, "fake-guest-token", token)

	guestID, err := creds.Get(ctx, ports.KeyGuestID)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", guestID)
}

func TestCreateGuestSession_DropsStoredCustomerToken(t *testing.T) {
	t.Parallel()
	_, creds, svc := newSessionService(t)
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyCustomerToken, "old-customer"))

	require.NoError(t, svc.CreateGuestSession(ctx, ""))

	// A newer guest choice must not be resurrected as the old customer on
	// the next startup reconciliation.
	_, err := creds.Get(ctx, ports.KeyCustomerToken)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestGuestThenPassword_LaterCallWins(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)
	api.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{Token: "T2", Customer: domainsession.Customer{ID: "2"}}, nil
	}
	ctx := context.Background()

	require.NoError(t, svc.CreateGuestSession(ctx, ""))
	require.NoError(t, svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com", Password: "pw"}))

	snap := svc.Snapshot()
	assert.True(t, snap.IsAuthenticated())
	assert.False(t, snap.IsGuest())
	assert.Nil(t, snap.Guest)
}

func TestLogout_AlwaysClearsEvenWhenBackendFails(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	api.LogoutFunc = func(context.Context) error {
		return apperrors.Network("backend unreachable")
	}
	ctx := context.Background()

	require.NoError(t, svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com", Password: "pw"}))
	require.True(t, svc.Snapshot().IsAuthenticated())

	svc.Logout(ctx)

	snap := svc.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.False(t, snap.IsGuest())
	assert.Nil(t, snap.Customer)
	assert.Equal(t, domainsession.StateAnonymous, snap.State())

	_, err := creds.Get(ctx, ports.KeyCustomerToken)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
	_, err = creds.Get(ctx, ports.KeyGuestToken)
	assert.ErrorIs(t, err, ports.ErrCredentialNotFound)
}

func TestReconcileOnStartup_ValidCustomerToken(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	api.MeFunc = func(context.Context) (domainsession.Customer, error) {
		return domainsession.Customer{ID: "1", FirstName: "Ann"}, nil
	}
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyCustomerToken, "stored"))

	svc.ReconcileOnStartup(ctx)

	snap := svc.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.True(t, snap.IsAuthenticated())
	assert.Equal(t, "Ann", snap.Customer.FirstName)
}

func TestReconcileOnStartup_InvalidTokenFallsBackToGuest(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	api.MeFunc = func(context.Context) (domainsession.Customer, error) {
		return domainsession.Customer{}, apperrors.AuthRejected("token expired")
	}
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyCustomerToken, "stale"))
	require.NoError(t, creds.Set(ctx, ports.KeyGuestToken, "g-token"))
	require.NoError(t, creds.Set(ctx, ports.KeyGuestID, "g-55"))
	require.NoError(t, creds.Set(ctx, ports.KeyTenantID, "t-2"))

	svc.ReconcileOnStartup(ctx)

	snap := svc.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.True(t, snap.IsGuest())
	assert.Equal(t, "g-55", snap.Guest.GuestID)
	assert.Equal(t, "t-2", snap.Guest.TenantID)
}

func TestReconcileOnStartup_NoCredentials(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)

	svc.ReconcileOnStartup(context.Background())

	snap := svc.Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Equal(t, domainsession.StateAnonymous, snap.State())
	assert.Equal(t, int64(0), api.MeCalls.Load(), "no stored token, no who-am-I call")
}

func TestReconcileOnStartup_RunsOncePerProcess(t *testing.T) {
	t.Parallel()
	api, creds, svc := newSessionService(t)
	ctx := context.Background()
	require.NoError(t, creds.Set(ctx, ports.KeyCustomerToken, "stored"))

	svc.ReconcileOnStartup(ctx)
	svc.ReconcileOnStartup(ctx)

	assert.Equal(t, int64(1), api.MeCalls.Load())
}

func TestAcquire_SecondConcurrentCallRejected(t *testing.T) {
	t.Parallel()
	api, _, svc := newSessionService(t)

	release := make(chan struct{})
	started := make(chan struct{})
	api.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		close(started)
		<-release
		return ports.AuthResult{Token: "T1", Customer: domainsession.Customer{ID: "1"}}, nil
	}

	ctx := context.Background()
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- svc.AuthenticateWithPassword(ctx, ports.LoginInput{Email: "a@b.com", Password: "pw"})
	}()

	<-started
	err := svc.CreateGuestSession(ctx, "")
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(release)
	require.NoError(t, <-firstDone)
	assert.True(t, svc.Snapshot().IsAuthenticated())
}

func TestAdoptCustomer_PersistFailureLeavesSessionUnchanged(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := mocks.NewMockCredentialStore(ctrl)
	store.EXPECT().
		Set(gomock.Any(), ports.KeyCustomerToken, "T1").
		Return(errors.New("keychain unavailable"))

	api := mockauth.NewFakeAuthAPI()
	api.LoginFunc = func(context.Context, ports.LoginInput) (ports.AuthResult, error) {
		return ports.AuthResult{Token: "T1", Customer: domainsession.Customer{ID: "1"}}, nil
	}
	svc := NewSessionService(SessionServiceOptions{
		API:   api,
		Creds: store,
	})

	err := svc.AuthenticateWithPassword(context.Background(), ports.LoginInput{Email: "a@b.com", Password: "pw"})
	require.Error(t, err)
	assert.True(t, svc.Snapshot().IsLoading, "failed persist must not change state")
}
