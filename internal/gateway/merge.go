package gateway

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// MergeInput bundles everything the parameter merge needs: the resolved
// action (already overlaid with its package's parameters by
// Lookups.Action), the route variant, the decoded request context, and the
// authenticated subject (empty if the caller is anonymous).
type MergeInput struct {
	Namespace   string
	Action      domain.Action
	Variant     Variant
	Ctx         domain.Context
	UserSubject string
}

// BuildPayload produces the final activation payload, implementing the
// precedence chain package.parameters -> action.parameters -> query ->
// body -> injected metadata (later wins), the immutability veto, and the
// raw-http envelope bypass.
func BuildPayload(in MergeInput) (json.RawMessage, *Reject) {
	if in.Action.RawHTTP() {
		return buildRawHTTPPayload(in)
	}
	return buildMergedPayload(in)
}

func buildMergedPayload(in MergeInput) (json.RawMessage, *Reject) {
	payload := make(map[string]json.RawMessage, len(in.Action.Parameters)+len(in.Ctx.Query)+4)
	for k, v := range in.Action.Parameters {
		payload[k] = v
	}

	queryKeys := make(map[string]bool, len(in.Ctx.Query))
	for k, v := range in.Ctx.Query {
		queryKeys[k] = true
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, internalErr("failed to encode query parameter")
		}
		payload[k] = encoded
	}

	bodyFields, isObject := objectFields(in.Ctx.Body)
	bodyKeys := make(map[string]bool, len(bodyFields))
	if isObject {
		for k, v := range bodyFields {
			bodyKeys[k] = true
			payload[k] = v
		}
	}

	reserved := in.Variant.reservedKeys()
	offenders := offendingKeys(queryKeys, bodyKeys, reserved, in.Action.ImmutableParameters)
	if len(offenders) > 0 {
		return nil, badInput("parameters not allowed")
	}

	injectReservedKeys(payload, in)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, internalErr("failed to encode activation payload")
	}
	return encoded, nil
}

func buildRawHTTPPayload(in MergeInput) (json.RawMessage, *Reject) {
	payload := map[string]json.RawMessage{}

	queryValue, err := json.Marshal(in.Ctx.RawQuery)
	if err != nil {
		return nil, internalErr("failed to encode raw query")
	}
	payload[keyQuery] = queryValue

	if len(in.Ctx.RawBody) > 0 {
		var bodyValue []byte
		var err error
		if in.Ctx.IsBinary {
			bodyValue, err = json.Marshal(base64.StdEncoding.EncodeToString(in.Ctx.RawBody))
		} else {
			bodyValue, err = json.Marshal(string(in.Ctx.RawBody))
		}
		if err != nil {
			return nil, internalErr("failed to encode raw body")
		}
		payload[keyBody] = bodyValue
	}

	injectReservedKeys(payload, in)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, internalErr("failed to encode activation payload")
	}
	return encoded, nil
}

// injectReservedKeys sets the __ow_-prefixed (or __ow_meta_-prefixed)
// metadata properties, always taking precedence over anything already in
// payload.
func injectReservedKeys(payload map[string]json.RawMessage, in MergeInput) {
	p := in.Variant.prefix()

	owner := in.UserSubject
	if in.Variant == VariantExperimental {
		owner = in.Namespace
	}

	payload[p+in.Variant.methodKeyName()] = mustMarshal(strings.ToLower(in.Ctx.Method))
	payload[p+keyHeaders] = mustMarshal(headerMap(in.Ctx.Headers))
	payload[p+keyPath] = mustMarshal(in.Ctx.Path)
	payload[p+in.Variant.ownerKeyName()] = mustMarshal(owner)

	if in.Variant == VariantMain && in.Action.RawHTTP() {
		payload[p+keyQuery] = mustMarshal(in.Ctx.RawQuery)
		if len(in.Ctx.RawBody) > 0 {
			if in.Ctx.IsBinary {
				payload[p+keyBody] = mustMarshal(base64.StdEncoding.EncodeToString(in.Ctx.RawBody))
			} else {
				payload[p+keyBody] = mustMarshal(string(in.Ctx.RawBody))
			}
		} else {
			payload[p+keyBody] = mustMarshal("")
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func headerMap(pairs []domain.HeaderPair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p.Value
	}
	return m
}

// objectFields unmarshals raw as a JSON object. ok is false when raw is
// empty/nil or does not decode to an object.
func objectFields(raw json.RawMessage) (fields map[string]json.RawMessage, ok bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// offendingKeys computes OFFENDERS = (keys(query) ∪ keys(body)) ∩
// (reservedProperties ∪ action.immutableParameters).
func offendingKeys(queryKeys, bodyKeys, reserved map[string]bool, immutable map[string]bool) []string {
	var offenders []string
	check := func(keys map[string]bool) {
		for k := range keys {
			if reserved[k] || immutable[k] {
				offenders = append(offenders, k)
			}
		}
	}
	check(queryKeys)
	check(bodyKeys)
	return offenders
}
