package gateway

import (
	"context"

	"github.com/ratd/webaction-gateway/internal/cache"
	"github.com/ratd/webaction-gateway/internal/domain"
)

// Lookups wraps the Identity and Entity lookups with a
// bounded read-through cache, so repeat requests against the same
// namespace/package/action don't round-trip to the external stores every
// time.
type Lookups struct {
	Auth     AuthStore
	Entities EntityStore

	identities *cache.Cache[string, domain.Identity]
	packages   *cache.Cache[string, domain.Package]
	actions    *cache.Cache[string, domain.Action]
}

// NewLookups constructs a Lookups with default cache settings.
func NewLookups(auth AuthStore, entities EntityStore) *Lookups {
	return &Lookups{
		Auth:       auth,
		Entities:   entities,
		identities: cache.New[string, domain.Identity](cache.Options{}),
		packages:   cache.New[string, domain.Package](cache.Options{}),
		actions:    cache.New[string, domain.Action](cache.Options{}),
	}
}

// Identity resolves namespace to its owner Identity. Store errors and
// deserialization failures collapse to a single 404 to avoid leaking
// existence.
func (l *Lookups) Identity(ctx context.Context, namespace string) (domain.Identity, *Reject) {
	if v, ok := l.identities.Get(namespace); ok {
		return v, nil
	}
	id, err := l.Auth.LookupIdentity(ctx, namespace)
	if err != nil || id == nil {
		return domain.Identity{}, notFound("namespace does not exist")
	}
	l.identities.Set(namespace, *id)
	return *id, nil
}

// Action resolves the merged action: fetches
// the action, and — unless it lives in the default package — fetches and
// validates its package, merging the package's parameters under the
// action's own.
//
// The action lookup succeeds only when the action exists and its package
// is either the default package or a concrete (non-binding) package.
func (l *Lookups) Action(ctx context.Context, namespace, pkgName, actionName string) (domain.Action, *Reject) {
	actionKey := namespace + "/" + pkgName + "/" + actionName
	var action domain.Action
	if v, ok := l.actions.Get(actionKey); ok {
		action = v
	} else {
		a, err := l.Entities.LookupAction(ctx, namespace, pkgName, actionName)
		if err != nil || a == nil {
			return domain.Action{}, notFound("action does not exist")
		}
		action = *a
		l.actions.Set(actionKey, action)
	}

	if pkgName == domain.DefaultPackageName {
		return action, nil
	}

	pkg, rej := l.Package(ctx, namespace, pkgName)
	if rej != nil {
		return domain.Action{}, rej
	}
	return action.MergedWithPackage(pkg), nil
}

// Package resolves a named package, rejecting bindings.
func (l *Lookups) Package(ctx context.Context, namespace, pkgName string) (domain.Package, *Reject) {
	pkgKey := namespace + "/" + pkgName
	if v, ok := l.packages.Get(pkgKey); ok {
		return v, nil
	}
	pkg, err := l.Entities.LookupPackage(ctx, namespace, pkgName)
	if err != nil || pkg == nil {
		return domain.Package{}, notFound("package does not exist")
	}
	if pkg.IsBinding {
		return domain.Package{}, notFound("package is a binding")
	}
	l.packages.Set(pkgKey, *pkg)
	return *pkg, nil
}
