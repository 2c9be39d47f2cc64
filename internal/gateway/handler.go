package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/media"
)

// Authenticator verifies the caller's credentials against the namespace
// owner's auth key. Implementations compare constant-time.
type Authenticator interface {
	Verify(r *http.Request, key domain.AuthKey) bool
}

// Handler runs the full six-stage pipeline for one mount (main or
// experimental). It holds no per-request state, so one Handler safely
// serves concurrent requests.
type Handler struct {
	Lookups  *Lookups
	Throttle ThrottleChecker
	Invoker  Invoker
	Auth     Authenticator
	Variant  Variant

	MaxBlockingWait    time.Duration
	MaxEntitySizeBytes int64
	EnforceExtension   bool
}

// Handle drives one request through Request Decoder, Identity Lookup,
// Entity Lookup, Export/Auth Gate, Throttle Checker, Parameter Merge, and
// Invocation & Transcoder, in that order. pathSuffix is the URL path beneath the
// mount's prefix; transactionID is the caller-visible id that also
// appears in any error envelope.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, pathSuffix, transactionID string) {
	ctx := r.Context()

	decoded, rej := DecodeRequest(r, pathSuffix, h.EnforceExtension, h.MaxEntitySizeBytes)
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	identity, rej := h.Lookups.Identity(ctx, decoded.Namespace)
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	action, rej := h.Lookups.Action(ctx, decoded.Namespace, decoded.PackageName, decoded.ActionName)
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	authenticated, subject := h.authenticate(r, identity)

	if rej := ExportAuthGate(action, authenticated); rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	if h.Throttle != nil {
		allowed, reason, err := h.Throttle.Allow(ctx, identity)
		if err != nil {
			writeReject(w, internalErr("throttle check failed"), transactionID)
			return
		}
		if !allowed {
			writeReject(w, throttled(reason), transactionID)
			return
		}
	}

	payload, rej := BuildPayload(MergeInput{
		Namespace:   decoded.Namespace,
		Action:      action,
		Variant:     h.Variant,
		Ctx:         decoded.Context,
		UserSubject: subject,
	})
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	activation, rej := InvokeBlocking(ctx, h.Invoker, identity, action, payload, h.MaxBlockingWait)
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	rendered, rej := Transcode(activation, decoded.Extension, decoded.Context.Path)
	if rej != nil {
		writeReject(w, rej, transactionID)
		return
	}

	writeRendered(w, rendered)
}

func (h *Handler) authenticate(r *http.Request, identity domain.Identity) (authenticated bool, subject string) {
	if h.Auth == nil {
		return false, ""
	}
	if h.Auth.Verify(r, identity.AuthKey) {
		return true, identity.Subject
	}
	return false, ""
}

func writeRendered(w http.ResponseWriter, rendered media.Rendered) {
	header := w.Header()
	for k, v := range rendered.Headers {
		header.Set(k, v)
	}
	status := rendered.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(rendered.Body) > 0 {
		w.Write(rendered.Body)
	}
}

// writeReject writes the standard {"error","code"} envelope. A
// CodeNotReady rejection instead carries the activation id so the caller
// can poll for the eventual result.
func writeReject(w http.ResponseWriter, rej *Reject, transactionID string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(rej.Status())

	if rej.Code == CodeNotReady {
		json.NewEncoder(w).Encode(map[string]string{"activationId": rej.ActivationID})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{
		"error": rej.Message,
		"code":  transactionID,
	})
}
