// Package memory provides in-process AuthStore and EntityStore
// implementations for local development and zero-config boot, the way
// throttle.NoopEnforcer provides a zero-config default for quota
// enforcement: no external dependency required, behavior fixed at
// construction time.
package memory

import (
	"context"
	"sync"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// Store is an in-memory, mutation-free AuthStore and EntityStore seeded
// once at construction. It never writes — there is no admin API for
// registering namespaces or deploying actions at runtime, matching the
// gateway's own read-only relationship with these entities.
type Store struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
	packages   map[string]domain.Package
	actions    map[string]domain.Action
}

// New creates an empty Store. Use the Seed* methods to populate it before
// serving traffic.
func New() *Store {
	return &Store{
		identities: make(map[string]domain.Identity),
		packages:   make(map[string]domain.Package),
		actions:    make(map[string]domain.Action),
	}
}

// SeedIdentity registers a namespace's owner identity.
func (s *Store) SeedIdentity(identity domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identity.Namespace] = identity
}

// SeedPackage registers a package.
func (s *Store) SeedPackage(pkg domain.Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.Namespace+"/"+pkg.Name] = pkg
}

// SeedAction registers an action.
func (s *Store) SeedAction(action domain.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[action.Namespace+"/"+action.Package+"/"+action.Name] = action
}

// LookupIdentity implements internal/gateway.AuthStore.
func (s *Store) LookupIdentity(_ context.Context, namespace string) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[namespace]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

// LookupPackage implements internal/gateway.EntityStore.
func (s *Store) LookupPackage(_ context.Context, namespace, pkgName string) (*domain.Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pkg, ok := s.packages[namespace+"/"+pkgName]
	if !ok {
		return nil, nil
	}
	return &pkg, nil
}

// LookupAction implements internal/gateway.EntityStore.
func (s *Store) LookupAction(_ context.Context, namespace, pkgName, actionName string) (*domain.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.actions[namespace+"/"+pkgName+"/"+actionName]
	if !ok {
		return nil, nil
	}
	return &action, nil
}
