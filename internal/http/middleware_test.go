package httpx

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/onepos/storefront/internal/domain/session"
)

// stubSessions satisfies SessionReader with a fixed snapshot.
type stubSessions struct {
	snap domainsession.Snapshot
}

func (s *stubSessions) Snapshot() domainsession.Snapshot { return s.snap }

func TestRouteGuard(t *testing.T) {
	t.Parallel()

	customer := domainsession.ForCustomer(domainsession.Customer{ID: "c-1", FirstName: "Ann"})
	guest := domainsession.ForGuest(domainsession.Guest{GuestID: "g-1", TenantID: "t-1"})

	tests := []struct {
		name         string
		snap         domainsession.Snapshot
		path         string
		wantNext     bool
		wantLoading  bool
		wantRedirect string
	}{
		{
			name:        "loading session renders loading page",
			snap:        domainsession.Loading(),
			path:        "/",
			wantLoading: true,
		},
		{
			name:        "loading session blocks sign-in partition too",
			snap:        domainsession.Loading(),
			path:        "/login",
			wantLoading: true,
		},
		{
			name:     "loading session does not block health",
			snap:     domainsession.Loading(),
			path:     "/health",
			wantNext: true,
		},
		{
			name:         "anonymous outside partition redirects to login",
			snap:         domainsession.Anonymous(),
			path:         "/products",
			wantRedirect: "/login",
		},
		{
			name:         "anonymous on home redirects to login",
			snap:         domainsession.Anonymous(),
			path:         "/",
			wantRedirect: "/login",
		},
		{
			name:     "anonymous may reach login",
			snap:     domainsession.Anonymous(),
			path:     "/login",
			wantNext: true,
		},
		{
			name:     "anonymous may post the send code form",
			snap:     domainsession.Anonymous(),
			path:     "/verify-otp/send",
			wantNext: true,
		},
		{
			name:     "anonymous may reach oauth callback",
			snap:     domainsession.Anonymous(),
			path:     "/oauth/callback",
			wantNext: true,
		},
		{
			name:     "anonymous may reach auth status",
			snap:     domainsession.Anonymous(),
			path:     "/auth/status",
			wantNext: true,
		},
		{
			name:     "anonymous may reach static assets",
			snap:     domainsession.Anonymous(),
			path:     "/static/css/app.css",
			wantNext: true,
		},
		{
			name:         "customer inside partition redirects home",
			snap:         customer,
			path:         "/login",
			wantRedirect: "/",
		},
		{
			name:         "guest inside partition redirects home",
			snap:         guest,
			path:         "/guest",
			wantRedirect: "/",
		},
		{
			name:         "customer on oauth prefix redirects home",
			snap:         customer,
			path:         "/oauth/begin",
			wantRedirect: "/",
		},
		{
			name:     "customer passes through to storefront",
			snap:     customer,
			path:     "/products",
			wantNext: true,
		},
		{
			name:     "guest passes through to storefront",
			snap:     guest,
			path:     "/",
			wantNext: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				snap, ok := GetSessionFromContext(r.Context())
				assert.True(t, ok, "snapshot should be in context")
				assert.Equal(t, tt.snap.State(), snap.State())
			})
			loading := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("loading"))
			})

			guard := RouteGuard(&stubSessions{snap: tt.snap}, loading)(next)

			rec := httptest.NewRecorder()
			guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			switch {
			case tt.wantLoading:
				assert.False(t, nextCalled)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "loading", rec.Body.String())
			case tt.wantRedirect != "":
				assert.False(t, nextCalled)
				assert.Equal(t, http.StatusSeeOther, rec.Code)
				assert.Equal(t, tt.wantRedirect, rec.Header().Get("Location"))
			default:
				assert.True(t, nextCalled)
			}
		})
	}
}

func TestRequestID_MintsAndEchoes(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err, "minted request ID should be a UUID")
}

func TestRequestID_HonorsIncomingHeader(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", seen)
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-Id"))
}

func TestCompression_GzipsHTMLWhenAccepted(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("<p>storefront</p>", 200)
	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, body, string(decoded))
}

func TestCompression_SmallBodyStaysPlain(t *testing.T) {
	t.Parallel()

	h := Compression(CompressionConfig{MinSize: 1024})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>tiny</p>"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "<p>tiny</p>", rec.Body.String())
}

func TestCompression_SkipsWithoutAcceptEncoding(t *testing.T) {
	t.Parallel()

	h := Compression(CompressionConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<p>plain</p>"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "<p>plain</p>", rec.Body.String())
}

type recordingSink struct {
	counts  []string
	timings []string
}

func (s *recordingSink) Count(name string, _ int64, _ map[string]string) {
	s.counts = append(s.counts, name)
}

func (s *recordingSink) Timing(name string, _ time.Duration, _ map[string]string) {
	s.timings = append(s.timings, name)
}

func TestRequestMetrics_EmitsCountAndTiming(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	h := RequestMetrics(sink)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"http.request"}, sink.counts)
	assert.Equal(t, []string{"http.duration"}, sink.timings)
}

func TestRequestMetrics_NilSinkPassesThrough(t *testing.T) {
	t.Parallel()

	called := false
	h := RequestMetrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRecover_Converts500(t *testing.T) {
	t.Parallel()

	h := Recover(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
