package scoring

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// fuzzy is the shared similarity primitive: the better of normalized
// Levenshtein similarity and Jaro-Winkler, on a 0-100 scale.
// Jaro-Winkler rewards shared prefixes, which suits given names;
// Levenshtein keeps plain typo distance in play for rearranged middles.
func fuzzy(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	best := levenshteinSimilarity(a, b)
	if jw, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler); err == nil {
		if s := float64(jw) * 100; s > best {
			best = s
		}
	}
	return best
}

// levenshteinSimilarity maps edit distance to 0-100, scaled by the
// longer string's rune count.
func levenshteinSimilarity(a, b string) float64 {
	if a == b {
		return 100
	}
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 100
	}
	dist := edlib.LevenshteinDistance(a, b)
	return 100 * (1 - float64(dist)/float64(maxLen))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
