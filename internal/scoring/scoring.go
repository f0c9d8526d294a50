// Package scoring computes 0-100 match scores between a query name and
// one candidate: six weighted components minus five penalties, with a
// softening pass that keeps near-exact first names from losing to
// initials bookkeeping.
package scoring

import (
	"unicode/utf8"

	"github.com/standardbeagle/namematch/internal/config"
	"github.com/standardbeagle/namematch/internal/normalize"
	"github.com/standardbeagle/namematch/internal/phonetic"
)

// First-name blend shares: raw similarity dominates, with a phonetic
// share so transliteration variants stay strong.
const (
	firstNameRawShare      = 0.7
	firstNamePhoneticShare = 0.3
)

// Neutral component values when the query side carries no signal.
const (
	neutralOtherCore = 50.0
	neutralInitials  = 70.0
)

// abbrevPartialCredit is the fraction of a full initials match granted
// when a query initial only abbreviates a candidate core token.
const abbrevPartialCredit = 0.7

// Engine scores query/candidate pairs under one fixed configuration.
// It is stateless beyond the config and safe for concurrent use.
type Engine struct {
	weights   config.Weights
	penalties config.Penalties
	softening config.Softening
	abbrevCap float64
}

// NewEngine builds an Engine from the scoring section of the config.
func NewEngine(cfg config.Scoring) *Engine {
	return &Engine{
		weights:   cfg.Weights,
		penalties: cfg.Penalties,
		softening: cfg.Softening,
		abbrevCap: cfg.AbbrevMatchCap,
	}
}

// Breakdown records every component, penalty, and adjustment behind a
// final score. Field names match the text renderer and JSON output.
type Breakdown struct {
	FirstName    float64 `json:"first_name_score"`
	EditDistance float64 `json:"edit_distance_score"`
	OtherCore    float64 `json:"other_core_score"`
	Initials     float64 `json:"initials_score"`
	PhoneticCore float64 `json:"phonetic_core_score"`
	FullString   float64 `json:"full_string_score"`

	MissingInitialPenalty float64 `json:"missing_initial_penalty"`
	ExtraInitialPenalty   float64 `json:"extra_initial_penalty"`
	MissingCorePenalty    float64 `json:"missing_core_penalty"`
	OverlongPenalty       float64 `json:"overlong_penalty"`
	LengthDiffPenalty     float64 `json:"length_diff_penalty"`

	Softened bool    `json:"softened"`
	Final    float64 `json:"final_score"`

	QueryCores        []string `json:"query_cores,omitempty"`
	CandidateCores    []string `json:"candidate_cores,omitempty"`
	QueryInitials     []string `json:"query_initials,omitempty"`
	CandidateInitials []string `json:"candidate_initials,omitempty"`
	MissingInitials   []string `json:"missing_initials,omitempty"`
	ExtraInitials     []string `json:"extra_initials,omitempty"`
}

// Score computes the full breakdown for one query/candidate pair. Both
// records must come from normalize.Normalize. The function is total:
// empty records score low, they never fail.
func (e *Engine) Score(query, cand normalize.NameRecord) Breakdown {
	qFirst, cFirst := query.FirstCore(), cand.FirstCore()

	bd := Breakdown{
		QueryCores:        query.Cores,
		CandidateCores:    cand.Cores,
		QueryInitials:     query.Initials,
		CandidateInitials: cand.Initials,
	}

	bd.FirstName = e.firstNameScore(qFirst, cFirst)
	bd.EditDistance = editDistanceScore(query.Norm, cand.Norm)
	bd.OtherCore = e.otherCoreScore(query.RemainingCores(), cand.RemainingCores(), cand.Initials)
	bd.Initials, bd.MissingInitials, bd.ExtraInitials =
		initialsScore(query.Initials, cand.Initials, cand.RemainingCores())
	bd.PhoneticCore = phoneticCoreScore(query.Cores, cand.Cores)
	bd.FullString = fullStringScore(query.Norm, cand.Norm)

	soft := e.softening
	bd.Softened = bd.FirstName >= soft.StrongFirstName && bd.FirstName < soft.ExactCutoff

	bd.MissingInitialPenalty = e.penalties.MissingInitial * float64(len(bd.MissingInitials))
	if bd.Softened {
		// A strong but inexact first name reads as a typo or spelling
		// variant of the same person. Treat the initials as satisfied so
		// the close first name can outrank an initials-only match.
		if bd.MissingInitialPenalty > soft.MissingInitialCap {
			bd.MissingInitialPenalty = soft.MissingInitialCap
		}
		if len(bd.MissingInitials) > 0 {
			if bd.Initials < 100 {
				bd.Initials = 100
			}
			bd.MissingInitialPenalty = 0
		}
	}

	// Surplus candidate initials only count against queries that carry
	// initials of their own; "Gita" should still find "Gita B S".
	if len(query.Initials) > 0 {
		bd.ExtraInitialPenalty = e.penalties.ExtraInitial * float64(len(bd.ExtraInitials))
	}
	if bd.Softened && bd.ExtraInitialPenalty > soft.ExtraInitialCap {
		bd.ExtraInitialPenalty = soft.ExtraInitialCap
	}

	if missing := len(query.Cores) - len(cand.Cores); missing > 0 {
		bd.MissingCorePenalty = e.penalties.MissingCore * float64(missing)
	}
	if extra := len(cand.Cores) - len(query.Cores) - 1; extra > 0 {
		bd.OverlongPenalty = e.penalties.OverlongCandidate * float64(extra)
	}

	// First-core length difference in characters, not token counts: for
	// a short query like "amal", same-length candidates (aman, amar)
	// must outrank longer ones that merely contain similar letters.
	diff := utf8.RuneCountInString(qFirst) - utf8.RuneCountInString(cFirst)
	if diff < 0 {
		diff = -diff
	}
	bd.LengthDiffPenalty = e.penalties.LengthDiff * float64(diff)
	if bd.Softened && bd.LengthDiffPenalty > soft.LengthDiffCap {
		bd.LengthDiffPenalty = soft.LengthDiffCap
	}

	w := e.weights
	weighted := w.FirstName*bd.FirstName +
		w.EditDistance*bd.EditDistance +
		w.OtherCore*bd.OtherCore +
		w.Initials*bd.Initials +
		w.PhoneticCore*bd.PhoneticCore +
		w.FullString*bd.FullString

	total := weighted -
		bd.MissingInitialPenalty -
		bd.ExtraInitialPenalty -
		bd.MissingCorePenalty -
		bd.OverlongPenalty -
		bd.LengthDiffPenalty
	bd.Final = clamp(total, 0, 100)
	return bd
}

// firstNameScore blends raw and phonetic similarity of the first core
// tokens. Either side missing a core means no first-name signal at all.
func (e *Engine) firstNameScore(qFirst, cFirst string) float64 {
	if qFirst == "" || cFirst == "" {
		return 0
	}
	raw := fuzzy(qFirst, cFirst)
	phon := fuzzy(phonetic.Rewrite(qFirst), phonetic.Rewrite(cFirst))
	return firstNameRawShare*raw + firstNamePhoneticShare*phon
}

// otherCoreScore averages, per remaining query core, the best similarity
// against the candidate's remaining cores. A candidate initial can stand
// in for a whole core ("k" for "kumar") at abbrevCap credit.
func (e *Engine) otherCoreScore(qRemaining, cRemaining, cInitials []string) float64 {
	if len(qRemaining) == 0 {
		return neutralOtherCore
	}
	if len(cRemaining) == 0 {
		matches := 0
		for _, qc := range qRemaining {
			if containsString(cInitials, phonetic.FirstLetter(qc)) {
				matches++
			}
		}
		if matches == 0 {
			return 0
		}
		return e.abbrevCap * float64(matches) / float64(len(qRemaining))
	}

	total := 0.0
	for _, qc := range qRemaining {
		best := 0.0
		for _, cc := range cRemaining {
			if s := fuzzy(qc, cc); s > best {
				best = s
			}
			if s := fuzzy(phonetic.Rewrite(qc), phonetic.Rewrite(cc)); s > best {
				best = s
			}
		}
		if best < e.abbrevCap && containsString(cInitials, phonetic.FirstLetter(qc)) {
			best = e.abbrevCap
		}
		total += best
	}
	return total / float64(len(qRemaining))
}

// initialsScore returns the match fraction over the query's distinct
// initials, plus which initials are truly missing from or extra in the
// candidate. A missing initial earns partial credit when it abbreviates
// one of the candidate's remaining cores.
func initialsScore(qInitials, cInitials, cRemainingCores []string) (float64, []string, []string) {
	if len(qInitials) == 0 {
		return neutralInitials, nil, nil
	}

	cSet := make(map[string]bool, len(cInitials))
	for _, ini := range cInitials {
		cSet[ini] = true
	}
	coreFirsts := make(map[string]bool, len(cRemainingCores))
	for _, core := range cRemainingCores {
		coreFirsts[phonetic.FirstLetter(core)] = true
	}

	qSeen := make(map[string]bool, len(qInitials))
	exact, partial := 0, 0
	var missing []string
	for _, ini := range qInitials {
		if qSeen[ini] {
			continue
		}
		qSeen[ini] = true
		switch {
		case cSet[ini]:
			exact++
		case coreFirsts[ini]:
			partial++
		default:
			missing = append(missing, ini)
		}
	}

	var extra []string
	cSeen := make(map[string]bool, len(cInitials))
	for _, ini := range cInitials {
		if cSeen[ini] {
			continue
		}
		cSeen[ini] = true
		if !qSeen[ini] {
			extra = append(extra, ini)
		}
	}

	score := 100 * (float64(exact) + abbrevPartialCredit*float64(partial)) / float64(len(qSeen))
	return score, missing, extra
}

// phoneticCoreScore compares the whole phonetic rendition of both core
// sequences, catching sound-alike names the token components miss.
func phoneticCoreScore(qCores, cCores []string) float64 {
	q, c := phonetic.CoreString(qCores), phonetic.CoreString(cCores)
	if q == "" || c == "" {
		return 0
	}
	return fuzzy(q, c)
}

func fullStringScore(qNorm, cNorm string) float64 {
	if qNorm == "" || cNorm == "" {
		return 0
	}
	return fuzzy(qNorm, cNorm)
}

// editDistanceScore is pure normalized Levenshtein over the full
// normalized strings, without the Jaro-Winkler prefix boost.
func editDistanceScore(qNorm, cNorm string) float64 {
	if qNorm == "" || cNorm == "" {
		return 0
	}
	return levenshteinSimilarity(qNorm, cNorm)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
