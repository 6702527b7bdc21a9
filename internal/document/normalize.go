package document

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Normalize extracts canonical document HTML from an agent response payload.
//
// The payload shape varies between agent versions, so extraction is an
// ordered fallback search over the raw JSON:
//
//  1. response.result as a string (primary structured result)
//  2. response.result.html_content (nested HTML-specific field)
//  3. response.message (free-text message)
//  4. raw_response (raw model output)
//  5. the raw JSON of response.result when it is an object (last resort)
//
// The first non-empty candidate wins. Enclosing code fences (``` with an
// optional language tag) are stripped from the extracted text. Missing or
// absent fields are never an error; if no candidate matches, Normalize
// returns the empty string and the caller decides how to surface that.
func Normalize(payload []byte) string {
	var content string

	result := gjson.GetBytes(payload, "response.result")
	switch {
	case result.Type == gjson.String:
		content = result.String()
	case result.Get("html_content").Type == gjson.String:
		content = result.Get("html_content").String()
	case gjson.GetBytes(payload, "response.message").Type == gjson.String:
		content = gjson.GetBytes(payload, "response.message").String()
	case gjson.GetBytes(payload, "raw_response").Type == gjson.String:
		content = gjson.GetBytes(payload, "raw_response").String()
	case result.IsObject():
		content = result.Raw
	}

	return stripFences(content)
}

// stripFences removes one enclosing code fence pair from s, tolerating a
// language tag after the opening fence (```html, ```HTML, ...).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	rest := s[len("```"):]
	// Drop the language tag: everything up to the first newline, if the
	// remainder of that line is a bare word.
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		tag := strings.TrimSpace(rest[:idx])
		if !strings.ContainsAny(tag, " \t<>") {
			rest = rest[idx+1:]
		}
	}
	rest = strings.TrimSuffix(strings.TrimSpace(rest), "```")
	return strings.TrimSpace(rest)
}
