// Package gateway implements the web action gateway's six-stage pipeline:
// Identity Lookup, Entity Lookup, Export/Auth Gate, Throttle Checker,
// Request Decoder & Context Builder, and Invocation & Response
// Transcoder.
package gateway

import "net/http"

// Code is the gateway's error taxonomy, each variant mapped to an HTTP status.
type Code int

const (
	CodeLookupMissing Code = iota
	CodeUnauthorized
	CodeThrottled
	CodeBadInput
	CodeEntityTooLarge
	CodeMediaUnsupported
	CodeNotReady
	CodeInternal
)

// httpStatus maps a taxonomy Code to the HTTP status it is reported as.
func (c Code) httpStatus() int {
	switch c {
	case CodeLookupMissing:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeThrottled:
		return http.StatusTooManyRequests
	case CodeBadInput:
		return http.StatusBadRequest
	case CodeEntityTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeMediaUnsupported:
		return http.StatusNotAcceptable
	case CodeNotReady:
		return http.StatusAccepted
	default:
		return http.StatusInternalServerError
	}
}

// Reject is the single error type every gateway stage returns on failure.
// Deep layers never expose raw store or deserialization errors to the
// caller — they collapse into a Reject.
type Reject struct {
	Code    Code
	Message string
	// ActivationID is set only for CodeNotReady, so the 202 response can
	// report the activation id the caller can poll.
	ActivationID string
}

func (r *Reject) Error() string { return r.Message }

// Status returns the HTTP status this rejection maps to.
func (r *Reject) Status() int { return r.Code.httpStatus() }

func reject(code Code, message string) *Reject {
	return &Reject{Code: code, Message: message}
}

func notFound(message string) *Reject       { return reject(CodeLookupMissing, message) }
func unauthorized(message string) *Reject   { return reject(CodeUnauthorized, message) }
func throttled(message string) *Reject      { return reject(CodeThrottled, message) }
func badInput(message string) *Reject       { return reject(CodeBadInput, message) }
func entityTooLarge(message string) *Reject { return reject(CodeEntityTooLarge, message) }
func mediaUnsupported(message string) *Reject {
	return reject(CodeMediaUnsupported, message)
}
func internalErr(message string) *Reject { return reject(CodeInternal, message) }

func notReady(message, activationID string) *Reject {
	return &Reject{Code: CodeNotReady, Message: message, ActivationID: activationID}
}
