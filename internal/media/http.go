package media

import (
	"encoding/base64"
	"encoding/json"
)

// httpEnvelope is the shape a .http result value may carry.
type httpEnvelope struct {
	Headers    map[string]json.RawMessage `json:"headers"`
	StatusCode json.RawMessage            `json:"statusCode"`
	Code       json.RawMessage            `json:"code"`
	Body       *string                    `json:"body"`
}

// TranscodeHTTP implements the five-step ".http rendering" procedure: parse
// status code, parse headers, resolve content type, decode the body, and
// assemble the response. The value must be a JSON object; any other shape
// is a 400.
func TranscodeHTTP(value json.RawMessage) (Rendered, error) {
	var v map[string]json.RawMessage
	if err := json.Unmarshal(value, &v); err != nil {
		return Rendered{}, badInput("http response must be an object")
	}
	var env httpEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return Rendered{}, badInput("http response must be an object")
	}

	status, err := parseStatusCode(env)
	if err != nil {
		return Rendered{}, err
	}

	headers, err := parseHeaders(env.Headers)
	if err != nil {
		return Rendered{}, err
	}

	contentType, ok := headers["content-type"]
	if !ok {
		contentType = "text/html"
		headers["content-type"] = contentType
	}
	normalized := Normalize(contentType)
	if !KnownContentType(normalized) {
		return Rendered{}, badInput("http unknown content type")
	}

	var body []byte
	if env.Body != nil {
		if IsBinary(normalized) {
			decoded, decErr := base64.StdEncoding.DecodeString(*env.Body)
			if decErr != nil {
				return Rendered{}, badInput("http body is not valid base64")
			}
			body = decoded
		} else {
			body = []byte(*env.Body)
		}
	}

	return Rendered{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}, nil
}

// parseStatusCode reads statusCode (main variant) or code (experimental
// variant), defaulting to 200 when neither is present. A present value
// that is not an integer, or one outside the valid HTTP status range, is a
// 400.
func parseStatusCode(env httpEnvelope) (int, error) {
	raw := env.StatusCode
	if raw == nil {
		raw = env.Code
	}
	if raw == nil {
		return 200, nil
	}
	var code int
	if err := json.Unmarshal(raw, &code); err != nil {
		return 0, badInput("http statusCode must be an integer")
	}
	if code < 100 || code > 599 {
		return 0, badInput("http statusCode out of range")
	}
	return code, nil
}

// parseHeaders validates that every header value is a JSON string, bool,
// or number, and stringifies it. Keys are lowercased so later lookups
// (content-type) are case-insensitive, matching HTTP header semantics.
func parseHeaders(raw map[string]json.RawMessage) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for name, rawVal := range raw {
		var v any
		if err := json.Unmarshal(rawVal, &v); err != nil {
			return nil, badInput("invalid header value for " + name)
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case bool:
			if t {
				s = "true"
			} else {
				s = "false"
			}
		case float64:
			s = formatNumber(rawVal)
		default:
			return nil, badInput("header values must be string, bool, or number: " + name)
		}
		headers[lowerASCII(name)] = s
	}
	return headers, nil
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
