// Package index buckets normalized candidates by phonetic key and first
// letter so a query scores a bounded shortlist instead of the whole
// dataset.
package index

import (
	"sort"

	"go.uber.org/zap"

	"github.com/standardbeagle/namematch/internal/config"
	"github.com/standardbeagle/namematch/internal/normalize"
	"github.com/standardbeagle/namematch/internal/phonetic"
)

// Candidate is one usable dataset entry. Row is the original dataset row
// and stays stable across reloads of identical content.
type Candidate struct {
	Row    int
	Record normalize.NameRecord
}

// Options control bucketing and shortlist bounds.
type Options struct {
	MinShortlist      int
	MaxShortlist      int
	PhoneticKeyLength int
	Logger            *zap.Logger
}

// Index is immutable once Build returns, so concurrent Shortlist calls
// need no locking. Replacing a dataset means building a fresh Index.
type Index struct {
	opts Options

	all           []Candidate
	byPhoneticKey map[string][]int // positions into all, ascending
	byFirstLetter map[string][]int
	skipped       int
}

// Build normalizes every raw name and buckets the usable ones. Rows that
// normalize to nothing are skipped but keep their row numbers reserved,
// so surviving candidates still report their original position.
func Build(names []string, opts Options) *Index {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PhoneticKeyLength < 1 {
		opts.PhoneticKeyLength = config.DefaultPhoneticKeyLength
	}
	if opts.MinShortlist < 1 {
		opts.MinShortlist = config.DefaultMinShortlist
	}
	if opts.MaxShortlist < opts.MinShortlist {
		opts.MaxShortlist = config.DefaultMaxShortlist
	}

	ix := &Index{
		opts:          opts,
		byPhoneticKey: make(map[string][]int),
		byFirstLetter: make(map[string][]int),
	}

	for row, raw := range names {
		rec := normalize.Normalize(raw)
		if rec.Empty() {
			ix.skipped++
			continue
		}
		pos := len(ix.all)
		ix.all = append(ix.all, Candidate{Row: row, Record: rec})

		key := phonetic.Pad(rec.PhoneticKey, opts.PhoneticKeyLength)
		letter := phonetic.FirstLetter(rec.Tokens[0])
		ix.byPhoneticKey[key] = append(ix.byPhoneticKey[key], pos)
		ix.byFirstLetter[letter] = append(ix.byFirstLetter[letter], pos)
	}

	opts.Logger.Debug("index built",
		zap.Int("candidates", len(ix.all)),
		zap.Int("skipped", ix.skipped),
		zap.Int("phonetic_buckets", len(ix.byPhoneticKey)),
		zap.Int("first_letter_buckets", len(ix.byFirstLetter)))
	return ix
}

// Size returns the number of usable candidates.
func (ix *Index) Size() int { return len(ix.all) }

// Shortlist selects the candidates worth scoring for one query, in
// dataset order. Tiering: the query's phonetic bucket alone when it is
// big enough, unioned with the first-letter bucket when it is not, and
// the whole dataset only when both buckets come up empty. The result is
// capped at MaxShortlist.
func (ix *Index) Shortlist(q normalize.NameRecord) []Candidate {
	if len(ix.all) == 0 || q.Empty() {
		return nil
	}

	key := phonetic.Pad(q.PhoneticKey, ix.opts.PhoneticKeyLength)
	picked := ix.byPhoneticKey[key]
	if len(picked) < ix.opts.MinShortlist {
		letter := phonetic.FirstLetter(q.Tokens[0])
		picked = mergePositions(picked, ix.byFirstLetter[letter])
	}
	if len(picked) == 0 {
		n := len(ix.all)
		if n > ix.opts.MaxShortlist {
			n = ix.opts.MaxShortlist
		}
		out := make([]Candidate, n)
		copy(out, ix.all[:n])
		return out
	}
	if len(picked) > ix.opts.MaxShortlist {
		picked = picked[:ix.opts.MaxShortlist]
	}

	out := make([]Candidate, len(picked))
	for i, pos := range picked {
		out[i] = ix.all[pos]
	}
	return out
}

// mergePositions merges two ascending position lists without duplicates.
func mergePositions(a, b []int) []int {
	if len(b) == 0 {
		return a
	}
	if len(a) == 0 {
		return b
	}
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Stats summarizes the index for the stats command.
type Stats struct {
	Candidates         int          `json:"candidates"`
	Skipped            int          `json:"skipped"`
	PhoneticBuckets    int          `json:"phonetic_buckets"`
	FirstLetterBuckets int          `json:"first_letter_buckets"`
	LargestBuckets     []BucketSize `json:"largest_buckets,omitempty"`
}

// BucketSize names one phonetic bucket and its population.
type BucketSize struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// statsTopBuckets bounds how many buckets Stats reports.
const statsTopBuckets = 5

// Stats reports candidate counts, bucket counts, and the most crowded
// phonetic buckets.
func (ix *Index) Stats() Stats {
	st := Stats{
		Candidates:         len(ix.all),
		Skipped:            ix.skipped,
		PhoneticBuckets:    len(ix.byPhoneticKey),
		FirstLetterBuckets: len(ix.byFirstLetter),
	}

	buckets := make([]BucketSize, 0, len(ix.byPhoneticKey))
	for key, positions := range ix.byPhoneticKey {
		buckets = append(buckets, BucketSize{Key: key, Size: len(positions)})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Size != buckets[j].Size {
			return buckets[i].Size > buckets[j].Size
		}
		return buckets[i].Key < buckets[j].Key
	})
	if len(buckets) > statsTopBuckets {
		buckets = buckets[:statsTopBuckets]
	}
	st.LargestBuckets = buckets
	return st
}
