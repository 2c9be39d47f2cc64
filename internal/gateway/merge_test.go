package gateway_test

import (
	"encoding/json"
	"testing"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload_BodyWinsOverActionParameter(t *testing.T) {
	action := domain.Action{
		Parameters: domain.Parameters{"greeting": json.RawMessage(`"from action"`)},
	}
	ctx := domain.Context{
		Method: "POST",
		Body:   json.RawMessage(`{"greeting":"from body"}`),
	}

	raw, rej := gateway.BuildPayload(gateway.MergeInput{Action: action, Variant: gateway.VariantMain, Ctx: ctx})
	require.Nil(t, rej)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.JSONEq(t, `"from body"`, string(payload["greeting"]))
}

func TestBuildPayload_QueryOverlaysActionParameter(t *testing.T) {
	action := domain.Action{
		Parameters: domain.Parameters{"limit": json.RawMessage(`10`)},
	}
	ctx := domain.Context{
		Method: "GET",
		Query:  map[string]string{"limit": "25"},
	}

	raw, rej := gateway.BuildPayload(gateway.MergeInput{Action: action, Variant: gateway.VariantMain, Ctx: ctx})
	require.Nil(t, rej)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.JSONEq(t, `"25"`, string(payload["limit"]))
}

func TestBuildPayload_ImmutableParameterViolation(t *testing.T) {
	action := domain.Action{
		Parameters:          domain.Parameters{"apiKey": json.RawMessage(`"secret"`)},
		ImmutableParameters: map[string]bool{"apiKey": true},
	}
	ctx := domain.Context{
		Method: "GET",
		Query:  map[string]string{"apiKey": "stolen"},
	}

	_, rej := gateway.BuildPayload(gateway.MergeInput{Action: action, Variant: gateway.VariantMain, Ctx: ctx})
	if assert.NotNil(t, rej) {
		assert.Equal(t, gateway.CodeBadInput, rej.Code)
	}
}

func TestBuildPayload_ReservedKeyOverrideRejected(t *testing.T) {
	action := domain.Action{}
	ctx := domain.Context{
		Method: "GET",
		Query:  map[string]string{"__ow_method": "DELETE"},
	}

	_, rej := gateway.BuildPayload(gateway.MergeInput{Action: action, Variant: gateway.VariantMain, Ctx: ctx})
	if assert.NotNil(t, rej) {
		assert.Equal(t, gateway.CodeBadInput, rej.Code)
	}
}

func TestBuildPayload_InjectsOwMetadata(t *testing.T) {
	ctx := domain.Context{
		Method: "GET",
		Path:   "projection/path",
	}

	raw, rej := gateway.BuildPayload(gateway.MergeInput{
		Action:      domain.Action{},
		Variant:     gateway.VariantMain,
		Ctx:         ctx,
		UserSubject: "alice",
	})
	require.Nil(t, rej)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.JSONEq(t, `"get"`, string(payload["__ow_method"]))
	assert.JSONEq(t, `"projection/path"`, string(payload["__ow_path"]))
	assert.JSONEq(t, `"alice"`, string(payload["__ow_user"]))
}

func TestBuildPayload_ExperimentalVariantHasNoQueryOrBodyKeys(t *testing.T) {
	ctx := domain.Context{Method: "GET"}

	raw, rej := gateway.BuildPayload(gateway.MergeInput{
		Namespace: "ns",
		Action:    domain.Action{},
		Variant:   gateway.VariantExperimental,
		Ctx:       ctx,
	})
	require.Nil(t, rej)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	_, hasQuery := payload["__ow_meta_query"]
	_, hasBody := payload["__ow_meta_body"]
	assert.False(t, hasQuery)
	assert.False(t, hasBody)
	assert.JSONEq(t, `"get"`, string(payload["__ow_meta_verb"]))
	assert.JSONEq(t, `"ns"`, string(payload["__ow_meta_namespace"]))
}

func TestBuildPayload_RawHTTPBypassesMergeAndImmutability(t *testing.T) {
	action := domain.Action{
		ImmutableParameters: map[string]bool{"anything": true},
		Annotations:         domain.Annotations{"raw-http": json.RawMessage(`true`)},
	}
	ctx := domain.Context{
		Method:   "POST",
		RawQuery: "anything=ignored",
		RawBody:  []byte(`{"anything":"also ignored"}`),
	}

	raw, rej := gateway.BuildPayload(gateway.MergeInput{Action: action, Variant: gateway.VariantMain, Ctx: ctx})
	require.Nil(t, rej)

	var payload map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.JSONEq(t, `"anything=ignored"`, string(payload["query"]))
	assert.JSONEq(t, `"{\"anything\":\"also ignored\"}"`, string(payload["body"]))
}
