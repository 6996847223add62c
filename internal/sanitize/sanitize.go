// Package sanitize strips markup noise from text before speech synthesis.
//
// The cleanup is heuristic and pattern-based, not a markup parser. The
// handled subset is: markdown links, bold emphasis, ATX headers, bullet and
// numbered list markers, and a fixed class of special characters that
// synthesis engines tend to read aloud. Anything that cannot be confidently
// identified as formatting passes through as literal text, and sentence
// punctuation is preserved for natural prosody.
package sanitize

import (
	"regexp"
	"strings"
)

// Regex patterns for markup cleanup.
const (
	linkRegexPattern        = `\[([^\]]*)\]\([^)]*\)`
	boldRegexPattern        = `\*\*(.*?)\*\*`
	headerRegexPattern      = `(?m)^#{1,6}\s*`
	bulletRegexPattern      = `(?m)^\s*[-*+]\s+`
	numberedListPattern     = `(?m)^\s*\d+\.\s+`
	specialCharRegexPattern = "[#$%&*+=\\[\\]\\\\^_`|~]"
	whitespaceRegexPattern  = `\s+`
	repeatedAndPattern      = `\b(?:and\s+)+and\b`
)

// Sanitizer removes formatting markup from arbitrary text. It holds
// precompiled patterns and is safe for concurrent use.
type Sanitizer struct {
	linkPattern        *regexp.Regexp
	boldPattern        *regexp.Regexp
	headerPattern      *regexp.Regexp
	bulletPattern      *regexp.Regexp
	numberedPattern    *regexp.Regexp
	specialCharPattern *regexp.Regexp
	whitespacePattern  *regexp.Regexp
	repeatedAnd        *regexp.Regexp
}

// New creates a sanitizer with all patterns compiled upfront.
func New() *Sanitizer {
	return &Sanitizer{
		linkPattern:        regexp.MustCompile(linkRegexPattern),
		boldPattern:        regexp.MustCompile(boldRegexPattern),
		headerPattern:      regexp.MustCompile(headerRegexPattern),
		bulletPattern:      regexp.MustCompile(bulletRegexPattern),
		numberedPattern:    regexp.MustCompile(numberedListPattern),
		specialCharPattern: regexp.MustCompile(specialCharRegexPattern),
		whitespacePattern:  regexp.MustCompile(whitespaceRegexPattern),
		repeatedAnd:        regexp.MustCompile(repeatedAndPattern),
	}
}

// Sanitize strips markup from the text and collapses redundant whitespace.
// The transformation is idempotent and never fails, so it can be applied to
// arbitrary input without a prior validation pass.
func (s *Sanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	// Stripping one marker can expose another at the start of a line
	// ("*- item" loses the "*" and uncovers a bullet), so the marker
	// passes repeat until the text is stable. Every matching pass
	// shortens the text, so the loop terminates.
	cleaned := text
	for {
		stripped := s.stripMarkers(cleaned)
		if stripped == cleaned {
			break
		}

		cleaned = stripped
	}

	cleaned = s.whitespacePattern.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}

// stripMarkers applies one round of marker removal: structural markers
// first, while line boundaries still exist, then the decoration characters.
func (s *Sanitizer) stripMarkers(text string) string {
	cleaned := s.linkPattern.ReplaceAllString(text, "$1")
	cleaned = s.boldPattern.ReplaceAllString(cleaned, "$1")
	cleaned = s.headerPattern.ReplaceAllString(cleaned, "")
	cleaned = s.bulletPattern.ReplaceAllString(cleaned, "")
	cleaned = s.numberedPattern.ReplaceAllString(cleaned, "")

	return s.specialCharPattern.ReplaceAllString(cleaned, "")
}

// SanitizeNarrative prepares a rendered analysis narrative for synthesis.
// List items are joined with "and" so the spoken result flows as prose
// instead of a staccato enumeration.
func (s *Sanitizer) SanitizeNarrative(text string) string {
	if text == "" {
		return text
	}

	cleaned := s.linkPattern.ReplaceAllString(text, "$1")
	cleaned = s.boldPattern.ReplaceAllString(cleaned, "$1")
	cleaned = s.headerPattern.ReplaceAllString(cleaned, "")
	cleaned = s.bulletPattern.ReplaceAllString(cleaned, "and ")
	cleaned = s.specialCharPattern.ReplaceAllString(cleaned, "")
	cleaned = s.whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = s.repeatedAnd.ReplaceAllString(cleaned, "and")

	return strings.TrimSpace(cleaned)
}
