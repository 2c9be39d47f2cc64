package gateway

import (
	"context"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// AuthStore resolves a namespace to its owner Identity. Implementations are process-wide and must be safe
// for concurrent use.
type AuthStore interface {
	LookupIdentity(ctx context.Context, namespace string) (*domain.Identity, error)
}

// EntityStore retrieves package and action records. pkgName is domain.DefaultPackageName for the default package.
type EntityStore interface {
	LookupPackage(ctx context.Context, namespace, pkgName string) (*domain.Package, error)
	LookupAction(ctx context.Context, namespace, pkgName, actionName string) (*domain.Action, error)
}

// ThrottleChecker enforces the owner identity's activation quota. A nil error with allowed=false is a 429.
type ThrottleChecker interface {
	Allow(ctx context.Context, ownerIdentity domain.Identity) (allowed bool, reason string, err error)
}

// InvokeResult is the outcome of a blocking invocation.
type InvokeResult struct {
	ActivationID string
	Activation   *domain.Activation // nil if not completed within the wait
	TimedOut     bool
}

// Invoker calls the external invoker/load-balancer with a blocking
// request bounded by waitOverride. It is reached over HTTP/2,
// out of the gateway's own process (internal/invoker implements this).
type Invoker interface {
	Invoke(ctx context.Context, owner domain.Identity, action domain.Action, payload []byte, waitOverride int64) (InvokeResult, error)
}
