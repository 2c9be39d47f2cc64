package gateway_test

import (
	"encoding/json"
	"testing"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/gateway"
	"github.com/ratd/webaction-gateway/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscode_SuccessJSONRoot(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationSuccess,
		Result: json.RawMessage(`{"greeting":"hi"}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtJSON, "")
	require.Nil(t, rej)
	assert.Equal(t, 200, rendered.StatusCode)
	assert.JSONEq(t, `{"greeting":"hi"}`, string(rendered.Body))
}

func TestTranscode_TextDefaultProjection(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationSuccess,
		Result: json.RawMessage(`{"text":"X"}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtText, "")
	require.Nil(t, rej)
	assert.Equal(t, "X", string(rendered.Body))
}

func TestTranscode_ExplicitProjectionPath(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationSuccess,
		Result: json.RawMessage(`{"outer":{"inner":"deep"}}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtHTML, "outer/inner")
	require.Nil(t, rej)
	assert.Equal(t, "deep", string(rendered.Body))
}

func TestTranscode_ProjectionMissResultsInNotFound(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationSuccess,
		Result: json.RawMessage(`{"outer":{}}`),
	}
	_, rej := gateway.Transcode(activation, media.ExtHTML, "outer/missing")
	if assert.NotNil(t, rej) {
		assert.Equal(t, gateway.CodeLookupMissing, rej.Code)
	}
}

func TestTranscode_DeveloperErrorAlwaysBadInput(t *testing.T) {
	activation := domain.Activation{Status: domain.ActivationDeveloperError}
	_, rej := gateway.Transcode(activation, media.ExtJSON, "")
	if assert.NotNil(t, rej) {
		assert.Equal(t, gateway.CodeBadInput, rej.Code)
	}
}

func TestTranscode_ApplicationErrorProjectsErrorField(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationApplicationError,
		Result: json.RawMessage(`{"error":{"outer":"boom"}}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtJSON, "")
	require.Nil(t, rej)
	assert.JSONEq(t, `{"outer":"boom"}`, string(rendered.Body))
}

func TestTranscode_ApplicationErrorBypassesProjectionForHTML(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationApplicationError,
		Result: json.RawMessage(`{"error":"<b>boom</b>"}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtHTML, "")
	require.Nil(t, rej)
	assert.Equal(t, "<b>boom</b>", string(rendered.Body))
}

func TestTranscode_ApplicationErrorBypassesRequestedProjection(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationApplicationError,
		Result: json.RawMessage(`{"error":"boom"}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtText, "some/unrelated/path")
	require.Nil(t, rej)
	assert.Equal(t, "boom", string(rendered.Body))
}

func TestTranscode_HTTPRedirect(t *testing.T) {
	activation := domain.Activation{
		Status: domain.ActivationSuccess,
		Result: json.RawMessage(`{"code":302,"headers":{"location":"https://e.example"}}`),
	}
	rendered, rej := gateway.Transcode(activation, media.ExtHTTP, "")
	require.Nil(t, rej)
	assert.Equal(t, 302, rendered.StatusCode)
	assert.Equal(t, "https://e.example", rendered.Headers["location"])
}
