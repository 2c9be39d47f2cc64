package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// IdentityStore implements internal/gateway.AuthStore backed by Postgres.
type IdentityStore struct {
	pool *pgxpool.Pool
}

// NewIdentityStore creates an IdentityStore backed by the given pool.
func NewIdentityStore(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{pool: pool}
}

// LookupIdentity resolves a namespace to its owner identity. A missing
// namespace returns (nil, nil), matching the contract AuthStore's callers
// already handle as "not found" rather than an error.
func (s *IdentityStore) LookupIdentity(ctx context.Context, namespace string) (*domain.Identity, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT namespace, subject, auth_uuid, auth_secret
		FROM namespaces
		WHERE namespace = $1
	`, namespace)

	var (
		id      domain.Identity
		authKey uuid.UUID
	)
	if err := row.Scan(&id.Namespace, &id.Subject, &authKey, &id.AuthKey.Secret); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup identity %q: %w", namespace, err)
	}
	id.AuthKey.UUID = authKey
	return &id, nil
}
