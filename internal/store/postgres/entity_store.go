package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// EntityStore implements internal/gateway.EntityStore backed by Postgres.
type EntityStore struct {
	pool *pgxpool.Pool
}

// NewEntityStore creates an EntityStore backed by the given pool.
func NewEntityStore(pool *pgxpool.Pool) *EntityStore {
	return &EntityStore{pool: pool}
}

// LookupPackage resolves a named package. Returns (nil, nil) when the
// package does not exist.
func (s *EntityStore) LookupPackage(ctx context.Context, namespace, pkgName string) (*domain.Package, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT namespace, name, parameters, is_binding, publish, annotations
		FROM packages
		WHERE namespace = $1 AND name = $2
	`, namespace, pkgName)

	var (
		pkg            domain.Package
		parametersRaw  []byte
		annotationsRaw []byte
	)
	if err := row.Scan(&pkg.Namespace, &pkg.Name, &parametersRaw, &pkg.IsBinding, &pkg.Publish, &annotationsRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup package %s/%s: %w", namespace, pkgName, err)
	}

	params, err := parametersFromColumn(parametersRaw)
	if err != nil {
		return nil, fmt.Errorf("decode package %s/%s parameters: %w", namespace, pkgName, err)
	}
	pkg.Parameters = params

	annotations, err := annotationsFromColumn(annotationsRaw)
	if err != nil {
		return nil, fmt.Errorf("decode package %s/%s annotations: %w", namespace, pkgName, err)
	}
	pkg.Annotations = annotations

	return &pkg, nil
}

// LookupAction resolves a single action within a package (or the default
// package). Returns (nil, nil) when the action does not exist.
func (s *EntityStore) LookupAction(ctx context.Context, namespace, pkgName, actionName string) (*domain.Action, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT namespace, package, name, parameters, immutable_parameters, annotations
		FROM actions
		WHERE namespace = $1 AND package = $2 AND name = $3
	`, namespace, pkgName, actionName)

	var (
		action         domain.Action
		parametersRaw  []byte
		immutableRaw   []byte
		annotationsRaw []byte
	)
	if err := row.Scan(&action.Namespace, &action.Package, &action.Name, &parametersRaw, &immutableRaw, &annotationsRaw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup action %s/%s/%s: %w", namespace, pkgName, actionName, err)
	}

	params, err := parametersFromColumn(parametersRaw)
	if err != nil {
		return nil, fmt.Errorf("decode action %s/%s/%s parameters: %w", namespace, pkgName, actionName, err)
	}
	action.Parameters = params

	immutable, err := immutableSetFromColumn(immutableRaw)
	if err != nil {
		return nil, fmt.Errorf("decode action %s/%s/%s immutable parameters: %w", namespace, pkgName, actionName, err)
	}
	action.ImmutableParameters = immutable

	annotations, err := annotationsFromColumn(annotationsRaw)
	if err != nil {
		return nil, fmt.Errorf("decode action %s/%s/%s annotations: %w", namespace, pkgName, actionName, err)
	}
	action.Annotations = annotations

	return &action, nil
}
