// Package config holds the tunables for matching: scoring weights and
// penalties, softening caps, shortlist bounds, dataset column candidates,
// and runtime knobs. Values load from a TOML file layered over built-in
// defaults, so a missing file means defaults and a partial file
// overrides only what it names.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is where Load looks when no config flag is given.
const DefaultPath = "namematch.toml"

// Defaults shared with packages that accept the values as options.
const (
	DefaultMinShortlist      = 30
	DefaultMaxShortlist      = 2000
	DefaultPhoneticKeyLength = 3
	DefaultParallelThreshold = 64
	DefaultWatchDebounceMs   = 300
	DefaultTopK              = 5
)

// Config is the root document.
type Config struct {
	Scoring Scoring `toml:"scoring"`
	Index   Index   `toml:"index"`
	Dataset Dataset `toml:"dataset"`
	Runtime Runtime `toml:"runtime"`
}

// Weights blend the six score components. They must sum to 1.0 so the
// weighted sum stays on the 0-100 scale.
type Weights struct {
	FirstName    float64 `toml:"first_name"`
	EditDistance float64 `toml:"edit_distance"`
	OtherCore    float64 `toml:"other_core"`
	Initials     float64 `toml:"initials"`
	PhoneticCore float64 `toml:"phonetic_core"`
	FullString   float64 `toml:"full_string"`
}

// Penalties are subtracted from the weighted sum, per unit of mismatch.
type Penalties struct {
	MissingInitial    float64 `toml:"missing_initial"`    // per query initial absent from the candidate
	ExtraInitial      float64 `toml:"extra_initial"`      // per surplus candidate initial
	MissingCore       float64 `toml:"missing_core"`       // per core token the candidate lacks
	OverlongCandidate float64 `toml:"overlong_candidate"` // per core token beyond query count plus one
	LengthDiff        float64 `toml:"length_diff"`        // per character of first-core length difference
}

// Softening relaxes initial and length penalties when the first-name
// component is strong but not an exact hit, so a close first name can
// outrank an initials-only match.
type Softening struct {
	StrongFirstName   float64 `toml:"strong_first_name"` // softening engages at this first-name score
	ExactCutoff       float64 `toml:"exact_cutoff"`      // and disengages again at this one
	MissingInitialCap float64 `toml:"missing_initial_cap"`
	ExtraInitialCap   float64 `toml:"extra_initial_cap"`
	LengthDiffCap     float64 `toml:"length_diff_cap"`
}

// Scoring groups everything the score engine consumes.
type Scoring struct {
	Weights   Weights   `toml:"weights"`
	Penalties Penalties `toml:"penalties"`
	Softening Softening `toml:"softening"`

	// AbbrevMatchCap is the score credited when an initial stands in for
	// a whole core token ("k" for "kumar").
	AbbrevMatchCap float64 `toml:"abbrev_match_cap"`
}

// Index bounds the candidate shortlist.
type Index struct {
	MinShortlist      int `toml:"min_shortlist"`       // below this, widen to the first-letter bucket
	MaxShortlist      int `toml:"max_shortlist"`       // hard cap on candidates scored per query
	PhoneticKeyLength int `toml:"phonetic_key_length"` // bucket key width in runes
}

// Dataset describes where names come from.
type Dataset struct {
	Path            string   `toml:"path"`              // file path or doublestar glob
	NameColumns     []string `toml:"name_columns"`      // header candidates, matched case-insensitively
	WatchDebounceMs int      `toml:"watch_debounce_ms"` // quiet window before a reload
}

// Runtime controls query-time parallelism.
type Runtime struct {
	Workers           int `toml:"workers"`            // 0 means GOMAXPROCS-style NumCPU
	ParallelThreshold int `toml:"parallel_threshold"` // shortlist size where fan-out starts paying
}

// Default returns the tuned baseline configuration.
func Default() *Config {
	return &Config{
		Scoring: Scoring{
			Weights: Weights{
				FirstName:    0.30,
				EditDistance: 0.15,
				OtherCore:    0.20,
				Initials:     0.15,
				PhoneticCore: 0.10,
				FullString:   0.10,
			},
			Penalties: Penalties{
				MissingInitial:    12,
				ExtraInitial:      4,
				MissingCore:       6,
				OverlongCandidate: 3,
				LengthDiff:        8,
			},
			Softening: Softening{
				StrongFirstName:   70,
				ExactCutoff:       99,
				MissingInitialCap: 6,
				ExtraInitialCap:   0,
				LengthDiffCap:     8,
			},
			AbbrevMatchCap: 70,
		},
		Index: Index{
			MinShortlist:      DefaultMinShortlist,
			MaxShortlist:      DefaultMaxShortlist,
			PhoneticKeyLength: DefaultPhoneticKeyLength,
		},
		Dataset: Dataset{
			Path:            "data/names.csv",
			NameColumns:     []string{"name", "full_name", "student_name", "candidate_name"},
			WatchDebounceMs: DefaultWatchDebounceMs,
		},
		Runtime: Runtime{
			Workers:           0,
			ParallelThreshold: DefaultParallelThreshold,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is
// not an error; the defaults apply unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks bounds and cross-field consistency.
func (c *Config) Validate() error {
	w := c.Scoring.Weights
	sum := w.FirstName + w.EditDistance + w.OtherCore + w.Initials + w.PhoneticCore + w.FullString
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}

	p := c.Scoring.Penalties
	if p.MissingInitial < 0 || p.ExtraInitial < 0 || p.MissingCore < 0 ||
		p.OverlongCandidate < 0 || p.LengthDiff < 0 {
		return errors.New("scoring penalties must be non-negative")
	}

	s := c.Scoring.Softening
	if s.StrongFirstName < 0 || s.StrongFirstName > 100 {
		return fmt.Errorf("softening strong_first_name must be in [0,100], got %v", s.StrongFirstName)
	}
	if s.ExactCutoff < s.StrongFirstName || s.ExactCutoff > 100 {
		return fmt.Errorf("softening exact_cutoff must be in [strong_first_name,100], got %v", s.ExactCutoff)
	}
	if s.MissingInitialCap < 0 || s.ExtraInitialCap < 0 || s.LengthDiffCap < 0 {
		return errors.New("softening caps must be non-negative")
	}

	if c.Scoring.AbbrevMatchCap < 0 || c.Scoring.AbbrevMatchCap > 100 {
		return fmt.Errorf("abbrev_match_cap must be in [0,100], got %v", c.Scoring.AbbrevMatchCap)
	}

	if c.Index.MinShortlist < 1 {
		return fmt.Errorf("min_shortlist must be at least 1, got %d", c.Index.MinShortlist)
	}
	if c.Index.MaxShortlist < c.Index.MinShortlist {
		return fmt.Errorf("max_shortlist (%d) must not be below min_shortlist (%d)",
			c.Index.MaxShortlist, c.Index.MinShortlist)
	}
	if c.Index.PhoneticKeyLength < 1 {
		return fmt.Errorf("phonetic_key_length must be at least 1, got %d", c.Index.PhoneticKeyLength)
	}

	if len(c.Dataset.NameColumns) == 0 {
		return errors.New("dataset name_columns must list at least one header candidate")
	}
	if c.Dataset.WatchDebounceMs < 0 {
		return fmt.Errorf("watch_debounce_ms must be non-negative, got %d", c.Dataset.WatchDebounceMs)
	}

	if c.Runtime.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Runtime.Workers)
	}
	if c.Runtime.ParallelThreshold < 1 {
		return fmt.Errorf("parallel_threshold must be at least 1, got %d", c.Runtime.ParallelThreshold)
	}
	return nil
}

// WorkerCount resolves the configured worker count; 0 selects NumCPU.
func (c *Config) WorkerCount() int {
	if c.Runtime.Workers > 0 {
		return c.Runtime.Workers
	}
	return runtime.NumCPU()
}
