// Package moderation implements keyword-based content moderation: text
// normalization, the blocked-keyword policy, the allow/block gate used before
// projects and comments are written, and the append-only admin audit log.
package moderation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxFoldPasses bounds the fixed-point loop in Normalize.
const maxFoldPasses = 4

// Normalize folds text into a lowercase letters-and-digits fingerprint.
// "S p A m!!!", "spam" and "s_p_a_m" all normalize to "spam".
func Normalize(text string) string {
	out := fold(text)
	// Dropping separators can leave neighbours that compose under NFKC
	// (Hangul jamo split by punctuation), so fold until the result is stable.
	for i := 0; i < maxFoldPasses && out != "" && !norm.NFKC.IsNormalString(out); i++ {
		out = fold(out)
	}
	return out
}

func fold(text string) string {
	if text == "" {
		return ""
	}

	lowered := strings.ToLower(norm.NFKC.String(text))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
