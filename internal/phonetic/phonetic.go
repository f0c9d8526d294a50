// Package phonetic reduces name tokens to coarse, transliteration-stable
// forms. The rules target romanization variance in Indian names
// (geetha/gita, pooja/puja); reduced forms are bucketing and comparison
// aids, not fingerprints, so collisions between unlike names are fine.
package phonetic

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Digraph substitutions, applied in order before repeated consonants are
// collapsed.
var rules = [...]struct {
	pattern     string
	replacement string
}{
	{"ee", "i"},
	{"aa", "a"},
	{"oo", "u"},
	{"th", "t"},
	{"ph", "f"},
	{"sh", "s"},
}

// Rewrite applies the reduction rules to a single token: digraph
// substitutions in rule order, then any run of repeated consonants
// collapses to one ("geetha" -> "gita", "hassan" -> "hasan").
// Tokens of one character or less pass through untouched.
func Rewrite(token string) string {
	if utf8.RuneCountInString(token) <= 1 {
		return token
	}
	s := strings.ToLower(token)
	for _, r := range rules {
		s = strings.ReplaceAll(s, r.pattern, r.replacement)
	}
	return collapseRepeats(s)
}

// Key returns the fixed-width bucket key for a token: the rewrite
// truncated to length runes, right-padded with '_' when shorter. An
// empty token yields the all-padding key.
func Key(token string, length int) string {
	return Pad(Rewrite(token), length)
}

// Pad truncates s to length runes or right-pads it with '_'.
func Pad(s string, length int) string {
	if length <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) >= length {
		return string(runes[:length])
	}
	return s + strings.Repeat("_", length-len(runes))
}

// CoreString joins the rewrites of all core tokens into one string for
// whole-name sound comparison.
func CoreString(cores []string) string {
	if len(cores) == 0 {
		return ""
	}
	parts := make([]string, len(cores))
	for i, c := range cores {
		parts[i] = Rewrite(c)
	}
	return strings.Join(parts, " ")
}

// FirstLetter returns the lower-cased first rune of token, or "_" for an
// empty token.
func FirstLetter(token string) string {
	if token == "" {
		return "_"
	}
	r, _ := utf8.DecodeRuneInString(token)
	return string(unicode.ToLower(r))
}

func collapseRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prev := rune(-1)
	for _, r := range s {
		if r == prev && isConsonant(r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// isConsonant is ASCII-only on purpose: the substitution rules above are
// ASCII, and non-Latin runes should never be collapsed.
func isConsonant(r rune) bool {
	if r < 'a' || r > 'z' {
		return false
	}
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return true
}
