package media

import "encoding/json"

// TranscodeHTML renders the projected value as text/html. The value must
// be a string.
func TranscodeHTML(value json.RawMessage) (Rendered, error) {
	s, ok := asString(value)
	if !ok {
		return Rendered{}, badInput("html response must be a string")
	}
	return Rendered{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Body:       []byte(s),
	}, nil
}

func asString(value json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", false
	}
	return s, true
}
