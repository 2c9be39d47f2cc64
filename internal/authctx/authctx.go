// Package authctx authenticates web action requests against a namespace's
// auth key and carries the resolved caller identity on the request
// context, the way internal/auth and internal/plugins carry the
// Community/Pro auth slot and the authenticated user in the teacher repo.
package authctx

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// BasicAuthenticator verifies an HTTP Basic credential (uuid:secret)
// against a namespace's AuthKey. Comparison is constant-time on both
// halves to avoid leaking which half first mismatched.
type BasicAuthenticator struct{}

// Verify implements gateway.Authenticator.
func (BasicAuthenticator) Verify(r *http.Request, key domain.AuthKey) bool {
	username, password, ok := r.BasicAuth()
	if !ok {
		return false
	}
	uuidMatch := subtle.ConstantTimeCompare([]byte(username), []byte(key.UUID.String())) == 1
	secretMatch := subtle.ConstantTimeCompare([]byte(password), []byte(key.Secret)) == 1
	return uuidMatch && secretMatch
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated caller identity to ctx.
func ContextWithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the caller identity stored by
// ContextWithIdentity. ok is false if no identity was attached (the
// request was anonymous or not yet past the Identity Lookup stage).
func IdentityFromContext(ctx context.Context) (identity domain.Identity, ok bool) {
	identity, ok = ctx.Value(identityContextKey{}).(domain.Identity)
	return identity, ok
}
