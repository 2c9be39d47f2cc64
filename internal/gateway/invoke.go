package gateway

import (
	"context"
	"time"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// InvokeBlocking calls the Invoker with a bounded wait and folds its
// outcome into the pipeline's own vocabulary: a completed
// activation is returned as-is, a request that outlives the wait becomes
// a 202 carrying the activation id so the caller can poll for it, and a
// transport/backend failure becomes a 500.
func InvokeBlocking(ctx context.Context, inv Invoker, owner domain.Identity, action domain.Action, payload []byte, maxWait time.Duration) (domain.Activation, *Reject) {
	result, err := inv.Invoke(ctx, owner, action, payload, maxWait.Milliseconds())
	if err != nil {
		return domain.Activation{}, internalErr("invocation failed: " + err.Error())
	}
	if result.TimedOut || result.Activation == nil {
		return domain.Activation{}, notReady("activation has not completed", result.ActivationID)
	}
	return *result.Activation, nil
}
