package httpx

import (
	"context"

	domainsession "github.com/onepos/storefront/internal/domain/session"
)

// snapshotKey is an unexported context key type to avoid collisions across packages.
// Centralized in this file so all handlers/middleware use the same key.
type snapshotKey struct{}

// requestIDKey carries the per-request correlation ID.
type requestIDKey struct{}

// SetSessionInContext returns a child context that carries the session snapshot.
func SetSessionInContext(ctx context.Context, snap domainsession.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snap)
}

// GetSessionFromContext returns the session snapshot placed by the route
// guard and a boolean indicating presence.
func GetSessionFromContext(ctx context.Context) (domainsession.Snapshot, bool) {
	if snap, ok := ctx.Value(snapshotKey{}).(domainsession.Snapshot); ok {
		return snap, true
	}
	return domainsession.Snapshot{}, false
}

// SetRequestIDInContext returns a child context carrying the request ID.
func SetRequestIDInContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestIDFromContext returns the request ID, or "" when absent.
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
