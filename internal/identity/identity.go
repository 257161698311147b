// Package identity carries the authenticated caller through a request's
// context. The identity is bound once when the request enters the system and
// is readable from any code running on that request's call chain, including
// goroutines that inherit the context. Contexts are immutable, so concurrent
// requests can never observe each other's identity.
package identity

import "context"

// Identity describes the authenticated caller for the lifetime of one
// request. The zero value means "no identity".
type Identity struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	ImgURL  string `json:"imgUrl,omitempty"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// IsZero reports whether no identity is set.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

type ctxKey struct{}

// With returns a child context carrying id.
func With(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the identity bound to ctx. The second return value is false
// when ctx lies outside any identity scope, so callers can tell
// "unauthenticated" apart from "not yet checked". It never panics.
func From(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}

// Run executes fn with id bound to its context. Code invoked transitively
// from fn reads exactly id from From, regardless of how many other Run
// scopes exist concurrently.
func Run(ctx context.Context, id Identity, fn func(ctx context.Context) error) error {
	return fn(With(ctx, id))
}
