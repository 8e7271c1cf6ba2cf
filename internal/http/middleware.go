package httpx

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainsession "github.com/onepos/storefront/internal/domain/session"
	"github.com/onepos/storefront/internal/observability/metrics"
	"github.com/onepos/storefront/internal/observability/statsd"
)

// SessionReader exposes the current session snapshot to middleware.
type SessionReader interface {
	Snapshot() domainsession.Snapshot
}

// RequestID returns a middleware that assigns a correlation ID to every
// request. An incoming X-Request-Id header is honored; otherwise a new
// UUID is minted. The ID is echoed in the response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-Id")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-Id", id)
			ctx := SetRequestIDInContext(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", GetRequestIDFromContext(r.Context())),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestMetrics returns a middleware that emits per-request count and
// timing metrics. A nil sink disables emission.
func RequestMetrics(sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sink == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			metrics.EmitHTTPRequest(sink, metrics.HTTPMetric{
				Method:   r.Method,
				Status:   ww.status,
				Duration: time.Since(start),
			})
		})
	}
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// unauthenticatedPaths is the partition of routes that an unauthenticated
// visitor may reach. Everything else requires a customer or guest session.
var unauthenticatedPaths = map[string]bool{
	"/login":           true,
	"/register":        true,
	"/verify-otp":      true,
	"/verify-otp/send": true,
	"/guest":           true,
}

// guardExemptPrefixes are infrastructure routes the guard never redirects.
var guardExemptPrefixes = []string{
	"/health",
	"/static/",
	"/auth/status",
}

// inUnauthenticatedPartition reports whether the path belongs to the
// sign-in flow partition.
func inUnauthenticatedPartition(path string) bool {
	if unauthenticatedPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/oauth/")
}

func guardExempt(path string) bool {
	for _, prefix := range guardExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RouteGuard evaluates the session snapshot on every request, in order:
// a still-loading session renders the neutral loading page; no session
// outside the sign-in partition redirects to /login; an established
// session inside the sign-in partition redirects to /. The snapshot is
// placed in the request context for handlers either way.
func RouteGuard(sessions SessionReader, renderLoading http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := sessions.Snapshot()
			r = r.WithContext(SetSessionInContext(r.Context(), snap))

			if guardExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case snap.IsLoading:
				renderLoading(w, r)
			case snap.State() == domainsession.StateAnonymous && !inUnauthenticatedPartition(r.URL.Path):
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case snap.State() != domainsession.StateAnonymous && inUnauthenticatedPartition(r.URL.Path):
				http.Redirect(w, r, "/", http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// CompressionConfig configures the gzip middleware.
type CompressionConfig struct {
	Level   int // gzip level, clamped by config.Sanitize
	MinSize int // responses smaller than this are sent uncompressed
	Logger  *slog.Logger
}

// compressibleTypes lists the content types the storefront serves that
// are worth compressing.
var compressibleTypes = map[string]bool{
	"text/html":              true,
	"text/css":               true,
	"text/plain":             true,
	"text/javascript":        true,
	"application/javascript": true,
	"application/json":       true,
	"image/svg+xml":          true,
}

// Compression returns a middleware that gzips page and asset responses
// when the client accepts it. The response body is held back until it
// crosses MinSize; shorter responses go out uncompressed.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	pool := &sync.Pool{
		New: func() any {
			zw, err := gzip.NewWriterLevel(io.Discard, cfg.Level)
			if err != nil {
				zw = gzip.NewWriter(io.Discard)
			}
			return zw
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Accept-Encoding")
			gzw := &gzipResponseWriter{
				ResponseWriter: w,
				pool:           pool,
				minSize:        cfg.MinSize,
			}
			next.ServeHTTP(gzw, r)

			if err := gzw.finish(); err != nil {
				cfg.Logger.ErrorContext(r.Context(), "finishing compressed response failed", "error", err)
			}
		})
	}
}

// acceptsGzip reports whether the Accept-Encoding header allows gzip,
// honoring an explicit q=0.
func acceptsGzip(acceptEncoding string) bool {
	for _, part := range strings.Split(acceptEncoding, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		encoding, params, _ := strings.Cut(part, ";")
		if strings.TrimSpace(encoding) != "gzip" {
			continue
		}
		params = strings.ReplaceAll(params, " ", "")
		if params == "q=0" || strings.HasPrefix(params, "q=0.0") || strings.HasPrefix(params, "q=0,") {
			return false
		}
		return true
	}
	return false
}

// gzipResponseWriter buffers the response until the compression decision
// can be made, then streams through a pooled gzip writer or writes the
// buffered bytes plain.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool    *sync.Pool
	minSize int

	status  int
	buf     []byte
	zw      *gzip.Writer
	decided bool
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.decided {
		if w.zw != nil {
			return w.zw.Write(b)
		}
		return w.ResponseWriter.Write(b)
	}

	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", http.DetectContentType(b))
	}
	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.minSize {
		return len(b), w.decide(true)
	}
	return len(b), nil
}

// decide flushes the response header and any buffered body, compressing
// only when the threshold was reached and the response qualifies.
func (w *gzipResponseWriter) decide(compress bool) error {
	w.decided = true
	if compress && w.qualifies() {
		w.zw = w.pool.Get().(*gzip.Writer)
		w.zw.Reset(w.ResponseWriter)
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.ResponseWriter.WriteHeader(w.status)
		_, err := w.zw.Write(w.buf)
		w.buf = nil
		return err
	}

	w.ResponseWriter.WriteHeader(w.status)
	var err error
	if len(w.buf) > 0 {
		_, err = w.ResponseWriter.Write(w.buf)
	}
	w.buf = nil
	return err
}

// qualifies reports whether the buffered response may be compressed.
func (w *gzipResponseWriter) qualifies() bool {
	if w.status < 200 || w.status == http.StatusNoContent || w.status == http.StatusNotModified {
		return false
	}
	if w.Header().Get("Content-Encoding") != "" {
		return false
	}
	contentType, _, _ := strings.Cut(w.Header().Get("Content-Type"), ";")
	return compressibleTypes[strings.TrimSpace(strings.ToLower(contentType))]
}

// finish completes the response after the handler returns, emitting any
// under-threshold body uncompressed and returning the gzip writer to
// the pool.
func (w *gzipResponseWriter) finish() error {
	if !w.decided {
		if w.status == 0 {
			w.status = http.StatusOK
		}
		return w.decide(false)
	}
	if w.zw == nil {
		return nil
	}
	err := w.zw.Close()
	w.zw.Reset(io.Discard)
	w.pool.Put(w.zw)
	w.zw = nil
	return err
}
