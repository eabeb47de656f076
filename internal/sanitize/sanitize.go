// Package sanitize prepares caller-supplied free text before validation.
// Board content is stored and served as plain text, so markup is stripped
// rather than escaped.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// Length caps applied after stripping.
const (
	MaxNameLen = 100
	MaxTextLen = 4096
)

// strict drops every HTML element and attribute.
var strict = bluemonday.StrictPolicy()

// Name prepares a participant name: markup and control characters removed,
// surrounding whitespace trimmed, length capped at MaxNameLen.
func Name(s string) string {
	s = plain(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if len(s) > MaxNameLen {
		s = s[:MaxNameLen]
	}
	return s
}

// Text prepares a message body. Newlines and tabs survive; other control
// characters do not.
func Text(s string) string {
	s = plain(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if len(s) > MaxTextLen {
		s = s[:MaxTextLen]
	}
	return s
}

// plain strips markup and resolves entities back to plain text. Sanitize
// alone HTML-escapes its output, which would mangle ordinary text like
// "a < b".
func plain(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}
