package rank

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/profile"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Recommend returns up to topK entries for the profile's level, preferred
// domains and geographic constraint, together with the geographic tier
// used. Zero matches is an empty slice and a nil error.
func (r *Ranker) Recommend(ctx context.Context, p profile.StudentProfile, topK int) ([]Result, geo.Info, error) {
	cats := r.classifier.LevelToAcceptedCategories(p.Level)
	return r.RankForCategories(ctx, p, cats, topK)
}

// RankForCategories runs the Recommend pipeline with an explicit ordered
// category list. Entries outside cats are never returned.
func (r *Ranker) RankForCategories(ctx context.Context, p profile.StudentProfile, cats []catalog.Category, topK int) ([]Result, geo.Info, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	accepted := categorySet(cats)
	labels := r.classifier.DomainsToEntryLabels(p.PreferredDomains)
	cities := r.resolver.ExtractCities(p.GeoConstraint)

	pool, info, err := r.resolver.SearchWithGeoPreference(ctx, r.searcher, geo.Query{
		Text:      BuildQuery(p, cities),
		Cities:    cities,
		OverFetch: topK * r.opts.OverFetchFactor,
		Keep: func(e catalog.Entry) bool {
			_, ok := accepted[e.Category]
			return ok
		},
	})
	if err != nil {
		r.log.Warn("search failed", zap.Error(err))
		return nil, geo.Info{}, err
	}

	results := make([]Result, 0, len(pool))
	for _, c := range pool {
		res := Result{Entry: c.Entry, Distance: c.Distance, CategoryRank: len(cats), DomainRank: 1}
		if i, ok := accepted[c.Entry.Category]; ok {
			res.CategoryRank = i
		}
		if _, ok := labels[textnorm.Fold(c.Entry.Domain)]; ok {
			res.DomainRank = 0
		}
		results = append(results, res)
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.CategoryRank != b.CategoryRank {
			return a.CategoryRank < b.CategoryRank
		}
		return a.DomainRank < b.DomainRank
	})
	results = truncate(dedupe(results), topK)

	r.log.Debug("ranked",
		zap.Int("pool", len(pool)),
		zap.Int("results", len(results)),
		zap.String("geo", string(info.Kind)),
		zap.Strings("nearby", info.Nearby),
	)
	return results, info, nil
}
