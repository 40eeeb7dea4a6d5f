package common

import (
	"context"
)

// OwnerContext holds the authenticated owner identity for a request.
// Riskos receives an already-authenticated owner identifier from the
// middleware layer; it never issues or validates credentials beyond
// reading the token subject.
type OwnerContext struct {
	OwnerID string
	Email   string
}

type contextKey int

const ownerContextKey contextKey = iota

// WithOwnerContext stores an OwnerContext in the request context.
func WithOwnerContext(ctx context.Context, oc *OwnerContext) context.Context {
	return context.WithValue(ctx, ownerContextKey, oc)
}

// OwnerContextFromContext retrieves the OwnerContext from context, or nil if absent.
func OwnerContextFromContext(ctx context.Context) *OwnerContext {
	oc, _ := ctx.Value(ownerContextKey).(*OwnerContext)
	return oc
}

// ResolveOwnerID returns the OwnerID from context, or "default" when no
// owner context is present. Used by services and storage operations that
// need an owner scope in single-tenant deployments.
func ResolveOwnerID(ctx context.Context) string {
	if oc := OwnerContextFromContext(ctx); oc != nil && oc.OwnerID != "" {
		return oc.OwnerID
	}
	return "default"
}
