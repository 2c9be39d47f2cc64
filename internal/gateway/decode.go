package gateway

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/media"
)

// entityNameRe is the fixed entity-name regex applied to the namespace,
// package (when not "default"), and action segments.
var entityNameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]{0,255}[a-zA-Z0-9])?$`)

func validEntityName(s string) bool {
	return entityNameRe.MatchString(s)
}

// DecodedRequest is the output of the Request Decoder: the
// resolved namespace/package/action coordinates plus the built Context.
type DecodedRequest struct {
	Namespace   string
	PackageName string
	ActionName  string
	Extension   media.Extension
	Context     domain.Context
}

// DecodeRequest parses the URL suffix (everything after the mount
// prefix, e.g. "ns/pkg/hello.json/extra") and the request body into a
// DecodedRequest.
func DecodeRequest(r *http.Request, pathSuffix string, enforceExtension bool, maxEntitySizeBytes int64) (*DecodedRequest, *Reject) {
	segments := splitNonEmpty(pathSuffix)
	if len(segments) < 3 {
		return nil, notFound("malformed web action path")
	}

	namespace, pkgName, actionSegment := segments[0], segments[1], segments[2]
	projectionPath := strings.Join(segments[3:], "/")

	if !validEntityName(namespace) {
		return nil, notFound("invalid namespace")
	}
	if pkgName != domain.DefaultPackageName && !validEntityName(pkgName) {
		return nil, notFound("invalid package name")
	}
	if !validEntityName(actionSegment) {
		return nil, notFound("invalid action segment")
	}

	actionName, ext, matched := media.SplitActionSegment(actionSegment)
	if !matched {
		if enforceExtension {
			return nil, mediaUnsupported("content type not supported")
		}
		actionName = actionSegment
		ext = media.ExtHTTP
	}

	body, rawBody, isBinary, rej := decodeBody(r, maxEntitySizeBytes)
	if rej != nil {
		return nil, rej
	}

	ctx := domain.Context{
		Method:    r.Method,
		Headers:   orderedHeaders(r.Header),
		Path:      projectionPath,
		Query:     flatQuery(r.URL.Query()),
		Body:      body,
		Extension: string(ext),
		RawQuery:  r.URL.RawQuery,
		RawBody:   rawBody,
		IsBinary:  isBinary,
	}

	return &DecodedRequest{
		Namespace:   namespace,
		PackageName: pkgName,
		ActionName:  actionName,
		Extension:   ext,
		Context:     ctx,
	}, nil
}

// decodeBody parses the request body by content type and enforces the
// entity size limit.
func decodeBody(r *http.Request, maxEntitySizeBytes int64) (body json.RawMessage, raw []byte, isBinary bool, rej *Reject) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil, false, nil
	}

	limited := io.LimitReader(r.Body, maxEntitySizeBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, nil, false, internalErr("failed to read request body")
	}
	if int64(len(data)) > maxEntitySizeBytes {
		return nil, nil, false, entityTooLarge("request entity too large")
	}
	if len(data) == 0 {
		return nil, nil, false, nil
	}

	contentType := media.Normalize(r.Header.Get("Content-Type"))
	switch {
	case contentType == "application/json":
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, data, false, badInput("malformed json body")
		}
		if _, ok := v.(map[string]any); !ok {
			return nil, data, false, badInput("json body must be an object")
		}
		return json.RawMessage(data), data, false, nil

	case contentType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, data, false, badInput("malformed form body")
		}
		flat := make(map[string]string, len(values))
		for k := range values {
			flat[k] = values.Get(k)
		}
		encoded, err := json.Marshal(flat)
		if err != nil {
			return nil, data, false, internalErr("failed to encode form body")
		}
		return encoded, data, false, nil

	default:
		binary := media.IsBinary(contentType)
		var encoded []byte
		var err error
		if binary {
			encoded, err = json.Marshal(base64.StdEncoding.EncodeToString(data))
		} else {
			encoded, err = json.Marshal(string(data))
		}
		if err != nil {
			return nil, data, binary, internalErr("failed to encode request body")
		}
		return encoded, data, binary, nil
	}
}

// splitNonEmpty splits a path on "/" and drops empty segments (leading,
// trailing, or repeated slashes).
func splitNonEmpty(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flatQuery takes the first value of each query parameter.
func flatQuery(values url.Values) map[string]string {
	flat := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			flat[k] = v[0]
		}
	}
	return flat
}

// orderedHeaders produces a deterministic (name, value) sequence from an
// http.Header map, sorted by canonical header name. Go's http.Header is a
// map and does not preserve wire order, so a stable sort is the closest
// approximation of the "ordered sequence" describes.
func orderedHeaders(h http.Header) []domain.HeaderPair {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]domain.HeaderPair, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			pairs = append(pairs, domain.HeaderPair{Name: strings.ToLower(name), Value: v})
		}
	}
	return pairs
}
