// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services and workers import it without pulling in
// transport code. The authenticated principal is always threaded explicitly
// through context — there is no ambient session state anywhere in this
// service.
//
// Usage in services:
//
//	p, ok := requestcontext.Principal(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithPrincipal(ctx, requestcontext.AuthPrincipal{UserID: 7, Role: "patient"})
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Role names carried in JWT claims and the guardians table.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// AuthPrincipal identifies the authenticated caller of an operation.
type AuthPrincipal struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the principal carries the admin role.
func (p AuthPrincipal) IsAdmin() bool { return p.Role == RoleAdmin }

type (
	principalKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	deviceLabelKey struct{}
)

// Principal retrieves the authenticated principal from the context.
func Principal(ctx context.Context) (AuthPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(AuthPrincipal)
	return p, ok
}

// WithPrincipal injects an authenticated principal into the context.
func WithPrincipal(ctx context.Context, p AuthPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// RequestID retrieves the correlation ID from the context, "" if unset.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// DeviceLabel retrieves the normalized client device description ("Chrome on
// Linux") set by the metadata middleware, "" if unset.
func DeviceLabel(ctx context.Context) string {
	if label, ok := ctx.Value(deviceLabelKey{}).(string); ok {
		return label
	}
	return ""
}

// WithDeviceLabel injects a device description into the context.
func WithDeviceLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, deviceLabelKey{}, label)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests that don't
// pin a clock).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request-scoped clock. Used by the request-time middleware
// and by tests that need deterministic timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
