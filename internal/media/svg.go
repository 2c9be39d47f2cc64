package media

import "encoding/json"

// TranscodeSVG renders the projected value as image/svg+xml. The value
// must be a string.
func TranscodeSVG(value json.RawMessage) (Rendered, error) {
	s, ok := asString(value)
	if !ok {
		return Rendered{}, badInput("svg response must be a string")
	}
	return Rendered{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "image/svg+xml"},
		Body:       []byte(s),
	}, nil
}
