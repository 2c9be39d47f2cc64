package media

import (
	"encoding/json"
	"strings"
)

// TranscodeText renders the projected value as text/plain. This
// transcoder never fails: scalars render as their literal value,
// objects/arrays render as pretty-printed JSON.
//
// A JSON null renders as an empty string, matching how every other scalar
// renders its bare value rather than its JSON encoding (see DESIGN.md §4).
func TranscodeText(value json.RawMessage) (Rendered, error) {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		// Not valid JSON at all shouldn't happen for an internally
		// produced projection, but render the raw bytes rather than fail.
		return textRendered(string(value)), nil
	}

	switch t := v.(type) {
	case nil:
		return textRendered(""), nil
	case string:
		return textRendered(t), nil
	case bool:
		if t {
			return textRendered("true"), nil
		}
		return textRendered("false"), nil
	case float64:
		return textRendered(formatNumber(value)), nil
	case map[string]any, []any:
		pretty, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return textRendered(string(value)), nil
		}
		return textRendered(string(pretty)), nil
	default:
		return textRendered(string(value)), nil
	}
}

func textRendered(body string) Rendered {
	return Rendered{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "text/plain; charset=utf-8"},
		Body:       []byte(body),
	}
}

// formatNumber returns the original JSON number literal unchanged rather
// than Go's float formatting, so "1" doesn't render as "1.0" or similar.
func formatNumber(raw json.RawMessage) string {
	return strings.TrimSpace(string(raw))
}
