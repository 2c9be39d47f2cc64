// Package media implements the MediaExtension table and the per-extension
// response transcoders used to render an activation result.
package media

import (
	"encoding/json"
	"strings"
)

// Extension names the five recognized media extensions. The table is
// process-wide read-only and keyed lowercase.
type Extension string

const (
	ExtHTTP Extension = ".http"
	ExtJSON Extension = ".json"
	ExtHTML Extension = ".html"
	ExtSVG  Extension = ".svg"
	ExtText Extension = ".text"
)

// Transcoder renders a projected JSON value into an HTTP-ready response.
// Implementations live in this package, one file per extension.
type Transcoder func(value json.RawMessage) (Rendered, error)

// Rendered is the fully-formed HTTP response produced by a transcoder for
// the happy path. Error paths instead return a *BadInputError (400) from
// the Transcoder func.
type Rendered struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// entry is one row of the MediaExtension table.
type entry struct {
	extension         Extension
	defaultProjection []string
	projectionAllowed bool
	transcoder        Transcoder
}

// table is the static, process-wide read-only MediaExtension table. The
// recognized extensions are exactly {.http, .json, .html, .svg, .text}.
var table = map[Extension]entry{
	ExtHTTP: {extension: ExtHTTP, projectionAllowed: false, transcoder: TranscodeHTTP},
	ExtJSON: {extension: ExtJSON, projectionAllowed: true, transcoder: TranscodeJSON},
	ExtHTML: {extension: ExtHTML, projectionAllowed: true, defaultProjection: []string{"html"}, transcoder: TranscodeHTML},
	ExtSVG:  {extension: ExtSVG, projectionAllowed: true, defaultProjection: []string{"svg"}, transcoder: TranscodeSVG},
	ExtText: {extension: ExtText, projectionAllowed: true, defaultProjection: []string{"text"}, transcoder: TranscodeText},
}

// orderedSuffixes lists every recognized extension's lowercase suffix,
// longest first, so the Request Decoder's longest-suffix match never picks
// a shorter extension that is itself a suffix of a longer one.
var orderedSuffixes = []Extension{ExtHTTP, ExtJSON, ExtHTML, ExtText, ExtSVG}

// SplitActionSegment performs a longest-suffix match of the recognized
// extensions against segment (compared case-insensitively — the returned
// base preserves the original casing of the input). Returns the action
// base name, the matched extension, and ok=true if a recognized extension
// suffix was found.
func SplitActionSegment(segment string) (base string, ext Extension, ok bool) {
	lower := strings.ToLower(segment)
	for _, e := range orderedSuffixes {
		if strings.HasSuffix(lower, string(e)) && len(lower) > len(e) {
			return segment[:len(segment)-len(e)], e, true
		}
	}
	return segment, "", false
}

// Lookup returns the table row for ext (already normalized lowercase) and
// whether it is recognized.
func Lookup(ext Extension) (defaultProjection []string, projectionAllowed bool, transcoder Transcoder, ok bool) {
	e, ok := table[Extension(strings.ToLower(string(ext)))]
	if !ok {
		return nil, false, nil, false
	}
	return e.defaultProjection, e.projectionAllowed, e.transcoder, true
}

// Recognized reports whether ext (normalized) is one of the five
// recognized extensions.
func Recognized(ext string) bool {
	_, _, _, ok := Lookup(Extension(ext))
	return ok
}
