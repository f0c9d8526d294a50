// Package normalize turns raw name strings into canonical token
// sequences. Punctuation becomes a token separator rather than being
// deleted, so "Vignesh.G.S" tokenizes as {vignesh, g, s} and the
// initials survive.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/standardbeagle/namematch/internal/phonetic"
)

// TokenKind classifies one normalized token.
type TokenKind uint8

const (
	// Core is a substantive name part ("vignesh", "kumar").
	Core TokenKind = iota
	// Initial is a single-letter abbreviation of a name part.
	Initial
	// MergedInitials is a two-letter token read as two concatenated
	// initials ("gs" in "Vignesh GS"). The token itself stays in Tokens;
	// the expanded letters land in Initials.
	MergedInitials
)

func (k TokenKind) String() string {
	switch k {
	case Initial:
		return "initial"
	case MergedInitials:
		return "merged_initials"
	default:
		return "core"
	}
}

// NameRecord is the canonical form of one raw name. Queries and dataset
// rows go through the same derivation, and a record is never mutated
// after Normalize returns.
type NameRecord struct {
	Raw    string      // input as supplied
	Norm   string      // lower-cased tokens joined by single spaces
	Tokens []string    // normalized tokens in input order
	Kinds  []TokenKind // parallel to Tokens

	Cores    []string // Core tokens in order
	Initials []string // Initial tokens plus expanded MergedInitials

	// PhoneticKey is the phonetic rewrite of the first Core token, or of
	// the first token when the name has no Core. The index truncates it
	// to the configured bucket key width.
	PhoneticKey string
}

// Empty reports whether normalization produced no tokens, which makes
// the name unmatchable.
func (r NameRecord) Empty() bool { return len(r.Tokens) == 0 }

// FirstCore returns the first Core token, or "" when the name has none.
func (r NameRecord) FirstCore() string {
	if len(r.Cores) == 0 {
		return ""
	}
	return r.Cores[0]
}

// RemainingCores returns the Core tokens after the first.
func (r NameRecord) RemainingCores() []string {
	if len(r.Cores) < 2 {
		return nil
	}
	return r.Cores[1:]
}

// KeyToken returns the token the phonetic key derives from: the first
// Core when one exists, otherwise the first token.
func (r NameRecord) KeyToken() string {
	if first := r.FirstCore(); first != "" {
		return first
	}
	if len(r.Tokens) > 0 {
		return r.Tokens[0]
	}
	return ""
}

// Normalize derives the NameRecord for a raw name. It is total: any
// string, including empty or non-text input, produces a record; inputs
// with no letters or digits come back with zero tokens.
func Normalize(raw string) NameRecord {
	rec := NameRecord{Raw: raw}

	folded := strings.Map(foldRune, norm.NFKC.String(raw))
	tokens := strings.Fields(folded)
	if len(tokens) == 0 {
		return rec
	}

	rec.Tokens = tokens
	rec.Norm = strings.Join(tokens, " ")
	rec.Kinds = make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		kind := classify(tok)
		rec.Kinds[i] = kind
		switch kind {
		case Core:
			rec.Cores = append(rec.Cores, tok)
		case Initial:
			rec.Initials = append(rec.Initials, tok)
		case MergedInitials:
			runes := []rune(tok)
			rec.Initials = append(rec.Initials, string(runes[0]), string(runes[1]))
		}
	}
	rec.PhoneticKey = phonetic.Rewrite(rec.KeyToken())
	return rec
}

// foldRune lower-cases letters, keeps digits, and turns everything else
// into a token separator. Punctuation must become a space, never vanish,
// or "g.s" would weld into a fake core token.
func foldRune(r rune) rune {
	switch {
	case unicode.IsLetter(r):
		return unicode.ToLower(r)
	case unicode.IsDigit(r):
		return r
	default:
		return ' '
	}
}

// classify maps token shape to kind: a single letter is an initial, two
// letters are merged initials, and everything else (including numeric
// tokens, which stay opaque) is a core part. Lengths count runes.
func classify(tok string) TokenKind {
	switch utf8.RuneCountInString(tok) {
	case 1:
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.IsLetter(r) {
			return Initial
		}
		return Core
	case 2:
		first, size := utf8.DecodeRuneInString(tok)
		second, _ := utf8.DecodeRuneInString(tok[size:])
		if unicode.IsLetter(first) && unicode.IsLetter(second) {
			return MergedInitials
		}
		return Core
	default:
		return Core
	}
}
