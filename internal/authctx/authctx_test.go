package authctx_test

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/ratd/webaction-gateway/internal/authctx"
	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBasicAuthenticator_Verify(t *testing.T) {
	key := domain.AuthKey{UUID: uuid.New(), Secret: "s3cret"}

	r := httptest.NewRequest("GET", "/", nil)
	r.SetBasicAuth(key.UUID.String(), key.Secret)
	assert.True(t, authctx.BasicAuthenticator{}.Verify(r, key))

	wrong := httptest.NewRequest("GET", "/", nil)
	wrong.SetBasicAuth(key.UUID.String(), "wrong")
	assert.False(t, authctx.BasicAuthenticator{}.Verify(wrong, key))

	noAuth := httptest.NewRequest("GET", "/", nil)
	assert.False(t, authctx.BasicAuthenticator{}.Verify(noAuth, key))
}

func TestIdentityContext_RoundTrip(t *testing.T) {
	identity := domain.Identity{Namespace: "ns", Subject: "ns"}
	ctx := authctx.ContextWithIdentity(httptest.NewRequest("GET", "/", nil).Context(), identity)

	got, ok := authctx.IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, identity, got)
}
