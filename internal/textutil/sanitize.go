package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks folds accented letters to their base form (é -> e).
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeToken converts a sign token or letter to a lowercase
// filesystem-safe name. Accents are folded, ASCII letters and digits plus
// hyphens and underscores are kept, and everything else becomes an
// underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	if folded, _, err := transform.String(stripMarks, value); err == nil {
		value = folded
	}
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}

// GlossFileName names an exported GIF for a gloss sequence, e.g.
// ["HELLO", "WORLD"] -> "gloss_hello_world.gif". Long sequences are capped
// at maxParts tokens.
func GlossFileName(tokens []string, maxParts int) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if s := SanitizeToken(tok); s != "unknown" {
			parts = append(parts, s)
		}
		if maxParts > 0 && len(parts) == maxParts {
			break
		}
	}
	if len(parts) == 0 {
		return "gloss.gif"
	}
	return "gloss_" + strings.Join(parts, "_") + ".gif"
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
