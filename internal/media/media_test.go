package media_test

import (
	"testing"

	"github.com/ratd/webaction-gateway/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ExactlyFiveExtensions(t *testing.T) {
	for _, ext := range []string{".http", ".json", ".html", ".svg", ".text"} {
		assert.True(t, media.Recognized(ext), "expected %s to be recognized", ext)
	}
	assert.False(t, media.Recognized(".xyz"))
}

func TestSplitActionSegment(t *testing.T) {
	cases := []struct {
		segment  string
		wantBase string
		wantExt  media.Extension
		wantOK   bool
	}{
		{"hello.json", "hello", media.ExtJSON, true},
		{"hello.JSON", "hello", media.ExtJSON, true},
		{"hello", "hello", "", false},
		{"hello.xyz", "hello.xyz", "", false},
		{"redir.http", "redir", media.ExtHTTP, true},
	}
	for _, tc := range cases {
		base, ext, ok := media.SplitActionSegment(tc.segment)
		assert.Equal(t, tc.wantOK, ok, tc.segment)
		if tc.wantOK {
			assert.Equal(t, tc.wantBase, base, tc.segment)
			assert.Equal(t, tc.wantExt, ext, tc.segment)
		}
	}
}

func TestTranscodeJSON(t *testing.T) {
	r, err := media.TranscodeJSON([]byte(`{"msg":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, 200, r.StatusCode)
	assert.Equal(t, "application/json", r.Headers["Content-Type"])
	assert.JSONEq(t, `{"msg":"hi"}`, string(r.Body))

	_, err = media.TranscodeJSON([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestTranscodeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"string", `"hi"`, "hi"},
		{"bool", `true`, "true"},
		{"number", `42`, "42"},
		{"null", `null`, ""},
	}
	for _, tc := range cases {
		r, err := media.TranscodeText([]byte(tc.in))
		require.NoError(t, err, tc.name)
		assert.Equal(t, 200, r.StatusCode, tc.name)
		assert.Equal(t, tc.want, string(r.Body), tc.name)
	}

	r, err := media.TranscodeText([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Contains(t, string(r.Body), "\"a\"")
}

func TestTranscodeHTML(t *testing.T) {
	r, err := media.TranscodeHTML([]byte(`"<b>hi</b>"`))
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", r.Headers["Content-Type"])
	assert.Equal(t, "<b>hi</b>", string(r.Body))

	_, err = media.TranscodeHTML([]byte(`42`))
	assert.Error(t, err)
}

func TestTranscodeSVG(t *testing.T) {
	r, err := media.TranscodeSVG([]byte(`"<svg></svg>"`))
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", r.Headers["Content-Type"])

	_, err = media.TranscodeSVG([]byte(`{}`))
	assert.Error(t, err)
}

func TestTranscodeHTTP_Redirect(t *testing.T) {
	r, err := media.TranscodeHTTP([]byte(`{"code":302,"headers":{"location":"https://e.example"}}`))
	require.NoError(t, err)
	assert.Equal(t, 302, r.StatusCode)
	assert.Equal(t, "https://e.example", r.Headers["location"])
	assert.Empty(t, r.Body)
}

func TestTranscodeHTTP_UnknownContentType(t *testing.T) {
	_, err := media.TranscodeHTTP([]byte(`{"headers":{"content-type":"xyz/bar"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown content type")
}

func TestTranscodeHTTP_BadStatusCode(t *testing.T) {
	_, err := media.TranscodeHTTP([]byte(`{"statusCode":-1}`))
	assert.Error(t, err)

	_, err = media.TranscodeHTTP([]byte(`{"statusCode":"nope"}`))
	assert.Error(t, err)
}

func TestTranscodeHTTP_BinaryBodyBase64(t *testing.T) {
	r, err := media.TranscodeHTTP([]byte(`{"headers":{"content-type":"image/png"},"body":"aGVsbG8="}`))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(r.Body))
}

func TestTranscodeHTTP_DefaultsToTextHTML(t *testing.T) {
	r, err := media.TranscodeHTTP([]byte(`{"body":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "text/html", r.Headers["content-type"])
	assert.Equal(t, "hi", string(r.Body))
}
