package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxChunkLen caps normalized text at what the embedding model accepts.
	MaxChunkLen = 2048

	// MinChunkLen is the trimmed length below which a chunk carries too
	// little signal to embed. Chunks of exactly this length are dropped.
	MinChunkLen = 10
)

// disallowedRe matches everything outside the embedding-safe allow-list:
// word characters, whitespace, common punctuation and the characters needed
// to keep URLs intact (:/?&=%+#@).
var disallowedRe = regexp.MustCompile(`[^\w\s.,?!;:()\[\]{}'"/@&=?%+#-]`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize cleans raw extracted text for embedding: disallowed characters
// become spaces, whitespace runs collapse to one space, ends are trimmed and
// the result is capped at MaxChunkLen. URLs pass through verbatim, which
// citation rendering downstream depends on. Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = disallowedRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > MaxChunkLen {
		// Truncation may expose a trailing space; trim again so a second
		// Normalize pass is a no-op.
		s = strings.TrimSpace(string(runes[:MaxChunkLen]))
	}
	return s
}

// Viable reports whether a normalized chunk has enough content to forward
// to embedding. Length is counted in runes, matching the MaxChunkLen cap.
func Viable(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > MinChunkLen
}
