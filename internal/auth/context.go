// internal/auth/context.go
//
// Acting-user helpers.
//
// Usage
// -----
//     ctx = auth.WithUser(ctx, "u_123")
//     id, ok := auth.UserID(ctx)   // "u_123", true
//
// The Session middleware is the only writer in production; the router
// copies the id into core.Context so services receive it by parameter.

package auth

import "context"

type userKey struct{}

// WithUser returns a new context carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID extracts the user id from ctx.  ("", false) when anonymous.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}
