package gateway

import (
	"encoding/json"
	"strings"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/media"
)

// Transcode implements the Invocation & Response Transcoder stage: it
// folds the activation's status into a result value, resolves the
// projection path, and hands the projected value to the extension's
// transcoder.
func Transcode(activation domain.Activation, ext media.Extension, projectionPath string) (media.Rendered, *Reject) {
	value, isAppError, rej := foldActivationResult(activation)
	if rej != nil {
		return media.Rendered{}, rej
	}

	// An application error already folded the result down to its standard
	// error field; the requested (or default) projection never applies to
	// it, since the substituted field is itself the projected value.
	projected := value
	if !isAppError {
		projected, rej = project(value, ext, projectionPath)
		if rej != nil {
			return media.Rendered{}, rej
		}
	}

	_, _, transcoder, ok := media.Lookup(ext)
	if !ok {
		return media.Rendered{}, mediaUnsupported("unrecognized media extension")
	}

	rendered, err := transcoder(projected)
	if err != nil {
		return media.Rendered{}, badInput(err.Error())
	}
	return rendered, nil
}

// foldActivationResult applies the activation status's result-folding rule.
// A developer or system error never produced a usable result envelope, so
// it short-circuits straight to a 400. An application error substitutes
// the action's own "error" field (when present) for the result, letting
// the action still drive .http-extension responses on failure; the
// returned isAppError flag tells Transcode to skip projection entirely,
// since the substituted field is already the value to render.
func foldActivationResult(activation domain.Activation) (value json.RawMessage, isAppError bool, rej *Reject) {
	switch activation.Status {
	case domain.ActivationDeveloperError, domain.ActivationSystemError:
		return nil, false, badInput("error processing request")
	case domain.ActivationApplicationError:
		fields, ok := objectFields(activation.Result)
		if ok {
			if errField, present := fields[domain.ErrorField]; present {
				return errField, true, nil
			}
		}
		return activation.Result, true, nil
	default:
		return activation.Result, false, nil
	}
}

// project resolves the dot-free "/"-separated projection path against
// value, falling back to the extension's default projection, and finally
// to the whole value when neither applies.
func project(value json.RawMessage, ext media.Extension, projectionPath string) (json.RawMessage, *Reject) {
	_, projectionAllowed, _, ok := media.Lookup(ext)
	if !ok {
		return nil, mediaUnsupported("unrecognized media extension")
	}

	var segments []string
	switch {
	case projectionAllowed && projectionPath != "":
		segments = strings.Split(projectionPath, "/")
	default:
		defaultProjection, _, _, _ := media.Lookup(ext)
		segments = defaultProjection
	}

	current := value
	for _, seg := range segments {
		fields, ok := objectFields(current)
		if !ok {
			return nil, notFound("property not found")
		}
		next, present := fields[seg]
		if !present {
			return nil, notFound("property not found")
		}
		current = next
	}
	return current, nil
}
