// Package rank turns a student profile into an ordered, deduplicated
// shortlist of catalog entries.
package rank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/level"
	"github.com/kamusis/orient-cli/internal/logging"
	"github.com/kamusis/orient-cli/internal/search/index"
)

// ErrRetrievalUnavailable is returned when the index could not be queried
// (timeout, cancelled context, provider failure). It is distinct from an
// empty result, which is not an error.
var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

const (
	// DefaultTopK is the shortlist size when the caller passes k <= 0.
	DefaultTopK = 5

	// DefaultOverFetchFactor multiplies k to size the retrieval pool.
	// Options clamp it to [MinOverFetchFactor, MaxOverFetchFactor].
	DefaultOverFetchFactor = 12
	MinOverFetchFactor     = 10
	MaxOverFetchFactor     = 16

	// DefaultMetroRegion is the region whose programs get the metro bonus
	// in BestAdvanced.
	DefaultMetroRegion = "Ile-de-France"
)

// Searcher is the similarity-search capability the ranker consumes.
// Results are ordered by ascending distance.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.Candidate, error)
}

// Options tunes a Ranker. Zero values select the defaults.
type Options struct {
	// OverFetchFactor multiplies the page size to size the candidate pool.
	// Clamped to [MinOverFetchFactor, MaxOverFetchFactor].
	OverFetchFactor int
	// MetroRegion earns a score bonus in BestAdvanced.
	MetroRegion string
	// Timeout bounds each search call. Zero means no per-call bound.
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	switch {
	case o.OverFetchFactor == 0:
		o.OverFetchFactor = DefaultOverFetchFactor
	case o.OverFetchFactor < MinOverFetchFactor:
		o.OverFetchFactor = MinOverFetchFactor
	case o.OverFetchFactor > MaxOverFetchFactor:
		o.OverFetchFactor = MaxOverFetchFactor
	}
	if o.MetroRegion == "" {
		o.MetroRegion = DefaultMetroRegion
	}
	return o
}

// Result is one ranked entry.
type Result struct {
	Entry        catalog.Entry `json:"entry"`
	Distance     float64       `json:"distance"`
	CategoryRank int           `json:"category_rank"`
	DomainRank   int           `json:"domain_rank"`
	// Score and Tier are set by BestAdvanced only.
	Score int  `json:"score,omitempty"`
	Tier  Tier `json:"-"`
}

// Ranker holds the immutable collaborators of a ranking run. It is safe for
// concurrent use when its Searcher is.
type Ranker struct {
	searcher   Searcher
	resolver   *geo.Resolver
	classifier *level.Classifier
	log        *zap.Logger
	opts       Options
}

// New returns a Ranker. A nil logger discards output.
func New(s Searcher, r *geo.Resolver, c *level.Classifier, log *zap.Logger, opts Options) *Ranker {
	return &Ranker{
		searcher:   guardedSearcher{s: s, timeout: opts.Timeout},
		resolver:   r,
		classifier: c,
		log:        logging.OrNop(log),
		opts:       opts.withDefaults(),
	}
}

// Options returns the effective options.
func (r *Ranker) Options() Options { return r.opts }

// guardedSearcher applies the per-call timeout and tags every failure as
// ErrRetrievalUnavailable.
type guardedSearcher struct {
	s       Searcher
	timeout time.Duration
}

func (g guardedSearcher) Search(ctx context.Context, query string, k int) ([]index.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	c, err := g.s.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}
	return c, nil
}

// dedupe keeps the first occurrence of every entry key.
func dedupe(in []Result) []Result {
	seen := make(map[catalog.Key]bool, len(in))
	out := in[:0:0]
	for _, r := range in {
		k := r.Entry.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

func truncate(in []Result, n int) []Result {
	if n > 0 && len(in) > n {
		return in[:n]
	}
	return in
}

func categorySet(cats []catalog.Category) map[catalog.Category]int {
	m := make(map[catalog.Category]int, len(cats))
	for i, c := range cats {
		if _, ok := m[c]; !ok {
			m[c] = i
		}
	}
	return m
}
