// Package domain defines the core business types shared across the web
// action gateway. These types represent the platform's data model — not
// HTTP or wire-protocol specifics.
//
// Domain types carry json tags because they are the shape the entity and
// auth stores persist and the shape activations are exchanged in. Having
// separate wire types for every domain model would add boilerplate without
// benefit at this size; where the wire shape diverges (error envelopes,
// the .http transcoder's response shape) a dedicated type lives in the
// package that needs it instead.
package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates a lookup found no matching record.
var ErrNotFound = errors.New("entity not found")

// ErrBinding indicates a package lookup resolved to a binding, which the
// gateway never accepts as a concrete package.
var ErrBinding = errors.New("package is a binding")

// AuthKey is a namespace's credential: a UUID paired with a secret. Callers
// present both halves (e.g. HTTP Basic auth) to authenticate as the
// namespace's owner identity.
type AuthKey struct {
	UUID   uuid.UUID `json:"uuid"`
	Secret string    `json:"secret"`
}

// Identity is the owner of a namespace. Immutable once resolved; the auth
// store is the source of truth and may cache it across lookups.
type Identity struct {
	Namespace string  `json:"namespace"`
	Subject   string  `json:"subject"`
	AuthKey   AuthKey `json:"auth_key"`
}

// Annotations is a named-to-JSON-value mapping attached to packages and
// actions. Helper accessors below implement the boolean/lookup semantics
// the gateway needs without making every caller juggle json.RawMessage.
type Annotations map[string]json.RawMessage

// Bool reports the boolean value of annotation key, defaulting to
// defaultVal when the key is absent or not a JSON boolean.
func (a Annotations) Bool(key string, defaultVal bool) bool {
	raw, ok := a[key]
	if !ok {
		return defaultVal
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return defaultVal
	}
	return b
}

// Parameters is an ordered-by-nothing name to JSON-value parameter map, as
// carried by both packages and actions.
type Parameters map[string]json.RawMessage

// Package is a named grouping of actions in a namespace, with shared
// default parameters. A binding (an alias to another package) is never
// accepted by the web action route.
type Package struct {
	Namespace   string      `json:"namespace"`
	Name        string      `json:"name"`
	Parameters  Parameters  `json:"parameters"`
	IsBinding   bool        `json:"is_binding"`
	Publish     bool        `json:"publish"`
	Annotations Annotations `json:"annotations"`
}

// DefaultPackageName is the literal package-name segment meaning "this
// action has no enclosing package" in the URL and in storage.
const DefaultPackageName = "default"

// Action is a named, invokable function unit inside a package (or the
// default package), with parameters, annotations, and — via the entity
// store, out of this gateway's scope — an executable reference.
type Action struct {
	Namespace           string          `json:"namespace"` // package's fully-qualified name, or "" for the default package
	Package             string          `json:"package"`
	Name                string          `json:"name"`
	Parameters          Parameters      `json:"parameters"`
	ImmutableParameters map[string]bool `json:"immutable_parameters"`
	Annotations         Annotations     `json:"annotations"`
}

// Annotation names consumed by the Export/Auth Gate and Parameter Merge
// stages.
const (
	AnnotationWebExport        = "web-export"
	AnnotationRawHTTP          = "raw-http"
	AnnotationRequireWhiskAuth = "require-whisk-auth"
	AnnotationFinal            = "final" // per-parameter, not per-action
)

// WebExport reports whether the action is exported for anonymous web
// invocation.
func (a Action) WebExport() bool {
	return a.Annotations.Bool(AnnotationWebExport, false)
}

// RawHTTP reports whether the action receives the unparsed request body.
func (a Action) RawHTTP() bool {
	return a.Annotations.Bool(AnnotationRawHTTP, false)
}

// RequireWhiskAuth reports whether the action is authenticated-only.
func (a Action) RequireWhiskAuth() bool {
	return a.Annotations.Bool(AnnotationRequireWhiskAuth, false)
}

// MergedWithPackage returns a copy of the action whose Parameters are the
// package's parameters overlaid by the action's own parameters (action
// wins on conflicting keys) — the first two steps of the parameter
// precedence chain.
func (a Action) MergedWithPackage(pkg Package) Action {
	merged := make(Parameters, len(pkg.Parameters)+len(a.Parameters))
	for k, v := range pkg.Parameters {
		merged[k] = v
	}
	for k, v := range a.Parameters {
		merged[k] = v
	}
	a.Parameters = merged
	return a
}

// ActivationStatus is the outcome classification of an invoked action.
type ActivationStatus string

const (
	ActivationSuccess          ActivationStatus = "success"
	ActivationApplicationError ActivationStatus = "applicationError"
	ActivationDeveloperError   ActivationStatus = "developerError"
	ActivationSystemError      ActivationStatus = "systemError"
)

// Activation is the outcome of invoking an action. Produced by the
// invoker; the gateway only ever reads it.
type Activation struct {
	ID     string           `json:"activation_id"`
	Result json.RawMessage  `json:"result"`
	Status ActivationStatus `json:"status"`
}

// ErrorField is the well-known result field the error fold
// projects into when an activation's status is applicationError.
const ErrorField = "error"

// HeaderPair is a single ordered (name, value) pair. Context.Headers
// preserves request header order as an ordered sequence of (name, value)
// pairs.
type HeaderPair struct {
	Name  string
	Value string
}

// Context is the per-request, ephemeral invocation context assembled by
// the Request Decoder and consumed by the Invocation stage. It is
// discarded once a response has been produced.
type Context struct {
	Method     string
	Headers    []HeaderPair
	Path       string // projection path: URL suffix after the action segment
	Query      map[string]string
	Body       json.RawMessage // optional: object, string, or other JSON value
	Extension  string
	OnBehalfOf *Identity
	RawQuery   string // undecoded query string, for raw-http passthrough
	RawBody    []byte // undecoded body bytes, for raw-http passthrough
	IsBinary   bool   // whether RawBody should be treated as binary (base64) for raw-http
}
