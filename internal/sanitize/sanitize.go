// Package sanitize strips unsafe characters and prompt-injection phrases from
// free-text chat input before it reaches any other component.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxLength is the maximum number of characters kept from a message.
const MaxLength = 1000

var stripChars = strings.NewReplacer(
	"<", "",
	">", "",
	`"`, "",
	"'", "",
	"&", "",
	"\x00", "",
	"\r", "",
	"\n", "",
)

// ws matches Unicode whitespace. RE2's \s alone is ASCII-only, which would let
// a no-break or ideographic space split a phrase past the filter.
const ws = `[\s\p{Z}\x{85}]+`

var injectionPatterns = []*regexp.Regexp{
	phrase("ignore", "previous", "instructions"),
	phrase("system", "prompt"),
	phrase("you", "are", "now"),
	phrase("forget", "everything"),
	phrase("new", "instructions"),
	phrase("override", "system"),
}

// phrase compiles a case-insensitive pattern for words separated by any run
// of whitespace.
func phrase(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + strings.Join(words, ws))
}

// Text applies, in order: character strip, injection-pattern strip, truncation
// to MaxLength characters, whitespace trim.
//
// Pattern removal is repeated until nothing matches, so a phrase nested inside
// another ("ignore previous ignore previous instructions instructions") cannot
// reassemble after the inner one is cut. That also makes Text idempotent.
func Text(s string) string {
	s = stripChars.Replace(s)
	s = stripPatterns(s)
	s = truncate(s, MaxLength)
	return strings.TrimSpace(s)
}

func stripPatterns(s string) string {
	for {
		before := s
		for _, re := range injectionPatterns {
			s = re.ReplaceAllString(s, "")
		}
		if s == before {
			return s
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
