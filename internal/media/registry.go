package media

import "strings"

// registry classifies content-types as known/unknown and binary/text, for
// the Request Decoder's body-parsing step and the .http
// transcoder's content-type validation.
//
// No corpus example repo ships a third-party MIME classification library.
// This file uses no MIME library at all, not even the standard mime
// package: a small bespoke prefix table matched with strings does the
// classification (see DESIGN.md §3).

// textPrefixes lists the top-level/subtype prefixes treated as textual
// (never base64-encoded). Anything else recognized is binary.
var textPrefixes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/x-www-form-urlencoded",
	"application/javascript",
	"application/xhtml+xml",
	"image/svg+xml",
}

// knownContentTypes is the set of content-types the .http transcoder will
// accept in a response's Content-Type header. Unknown → 400 "http unknown
// content type".
var knownContentTypes = map[string]bool{
	"text/html":                          true,
	"text/plain":                         true,
	"text/css":                           true,
	"text/csv":                           true,
	"application/json":                   true,
	"application/xml":                    true,
	"application/javascript":             true,
	"application/xhtml+xml":              true,
	"application/octet-stream":           true,
	"application/pdf":                    true,
	"application/zip":                    true,
	"image/png":                          true,
	"image/jpeg":                         true,
	"image/gif":                          true,
	"image/svg+xml":                      true,
	"image/webp":                         true,
	"audio/mpeg":                         true,
	"video/mp4":                          true,
}

// Normalize strips parameters (e.g. "; charset=utf-8") and lowercases a
// Content-Type header value down to its bare type/subtype.
func Normalize(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

// KnownContentType reports whether ct (already Normalize'd) is in the
// media-type registry.
func KnownContentType(ct string) bool {
	return knownContentTypes[ct]
}

// IsBinary reports whether ct (already Normalize'd) should be treated as
// binary — i.e. base64-encoded when carried as a JSON string.
func IsBinary(ct string) bool {
	for _, prefix := range textPrefixes {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	return true
}
