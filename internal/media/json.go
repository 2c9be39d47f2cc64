package media

import "encoding/json"

// TranscodeJSON renders the projected value as application/json. The
// value must be an object or array.
func TranscodeJSON(value json.RawMessage) (Rendered, error) {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return Rendered{}, badInput("json projection is not valid JSON")
	}
	switch v.(type) {
	case map[string]any, []any:
		return Rendered{
			StatusCode: 200,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(value),
		}, nil
	default:
		return Rendered{}, badInput("json response must be an object or array")
	}
}
