// Package matching resolves free-text target phrases to Home Assistant entities
// by fuzzy comparison against their friendly names.
package matching

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Score returns a similarity ratio in [0,1] between two names, ignoring case and
// surrounding whitespace. Identical non-empty names score 1; every extra edit lowers
// the score.
func Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 0
	}
	if a == b {
		return 1
	}

	dist := matchr.Levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
