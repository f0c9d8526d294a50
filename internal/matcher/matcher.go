// Package matcher runs the full query path: normalize, shortlist,
// score, rank, truncate.
package matcher

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/namematch/internal/config"
	"github.com/standardbeagle/namematch/internal/index"
	"github.com/standardbeagle/namematch/internal/normalize"
	"github.com/standardbeagle/namematch/internal/scoring"
)

// Result is one ranked candidate.
type Result struct {
	Row       int               `json:"row"`
	Name      string            `json:"name"`
	Score     float64           `json:"score"`
	Breakdown scoring.Breakdown `json:"breakdown"`
}

// InvalidTopKError rejects non-positive result counts before any work
// happens.
type InvalidTopKError struct {
	TopK int
}

func (e *InvalidTopKError) Error() string {
	return fmt.Sprintf("invalid top-k %d: must be positive", e.TopK)
}

// Matcher binds an index to a scoring engine. It is safe for concurrent
// use; the index never mutates and the engine is stateless.
type Matcher struct {
	idx               *index.Index
	engine            *scoring.Engine
	workers           int
	parallelThreshold int
	logger            *zap.Logger
}

// New builds a Matcher over idx with cfg's scoring and runtime settings.
func New(idx *index.Index, cfg *config.Config, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.Runtime.ParallelThreshold
	if threshold < 1 {
		threshold = config.DefaultParallelThreshold
	}
	return &Matcher{
		idx:               idx,
		engine:            scoring.NewEngine(cfg.Scoring),
		workers:           cfg.WorkerCount(),
		parallelThreshold: threshold,
		logger:            logger,
	}
}

// Match returns up to topK candidates ranked by score, ties broken by
// dataset order. A query that normalizes to nothing yields no results
// and no error. topK must be positive.
func (m *Matcher) Match(query string, topK int) ([]Result, error) {
	if topK <= 0 {
		return nil, &InvalidTopKError{TopK: topK}
	}
	q := normalize.Normalize(query)
	if q.Empty() {
		m.logger.Debug("query has no usable tokens", zap.String("query", query))
		return nil, nil
	}

	start := time.Now()
	shortlist := m.idx.Shortlist(q)
	if len(shortlist) == 0 {
		return nil, nil
	}

	results := make([]Result, len(shortlist))
	if m.workers > 1 && len(shortlist) >= m.parallelThreshold {
		m.scoreParallel(q, shortlist, results)
	} else {
		for i, cand := range shortlist {
			results[i] = m.scoreOne(q, cand)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	m.logger.Debug("query matched",
		zap.String("query", query),
		zap.Int("shortlist", len(shortlist)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

func (m *Matcher) scoreOne(q normalize.NameRecord, cand index.Candidate) Result {
	bd := m.engine.Score(q, cand.Record)
	return Result{
		Row:       cand.Row,
		Name:      cand.Record.Raw,
		Score:     bd.Final,
		Breakdown: bd,
	}
}

// scoreParallel fans scoring out over contiguous chunks. Each worker
// writes a disjoint slice of results, so the slice ends up in exactly
// the sequential order and the stable sort keeps tie-breaks identical
// to a single-threaded run.
func (m *Matcher) scoreParallel(q normalize.NameRecord, shortlist []index.Candidate, results []Result) {
	g := new(errgroup.Group)
	g.SetLimit(m.workers)

	chunk := (len(shortlist) + m.workers - 1) / m.workers
	for start := 0; start < len(shortlist); start += chunk {
		end := start + chunk
		if end > len(shortlist) {
			end = len(shortlist)
		}
		from, to := start, end
		g.Go(func() error {
			for i := from; i < to; i++ {
				results[i] = m.scoreOne(q, shortlist[i])
			}
			return nil
		})
	}
	// Workers only compute; there is no error to propagate.
	_ = g.Wait()
}
