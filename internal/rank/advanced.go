package rank

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/profile"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Tier grades how well an entry's outcomes answer the career objective.
// Lower is better.
type Tier int

const (
	TierExactPhrase Tier = iota
	TierMultiToken
	TierSingleToken
	TierName
	TierText
	TierNone
)

func (t Tier) String() string {
	switch t {
	case TierExactPhrase:
		return "exact-phrase"
	case TierMultiToken:
		return "multi-token"
	case TierSingleToken:
		return "single-token"
	case TierName:
		return "name"
	case TierText:
		return "text"
	default:
		return "none"
	}
}

// Score weights.
const (
	tierWeight       = 10
	metroBonus       = -3
	selectiveSmall   = 2
	selectiveLarge   = 5
	privatePenalty   = 100
	skillBonus       = -1
	maxSkillMatches  = 3
	strongGradeFloor = 14.0
	fairGradeFloor   = 11.0
)

// Words that carry no meaning in an objective such as "Devenir Data Scientist".
var objectiveStopwords = map[string]bool{
	"devenir": true, "etre": true, "travailler": true, "comme": true, "metier": true,
	"en": true, "de": true, "du": true, "des": true, "la": true, "le": true, "les": true,
	"un": true, "une": true, "dans": true, "d": true, "l": true, "a": true, "au": true,
	"aux": true, "et": true, "ou": true, "pour": true,
	"become": true, "work": true, "as": true, "in": true, "the": true, "an": true,
	"to": true, "of": true, "and": true, "or": true,
}

// objective is the folded phrase and distinct content tokens of a career
// objective.
type objective struct {
	phrase string
	tokens []string
}

func parseObjective(s string) objective {
	var toks []string
	seen := map[string]bool{}
	var phrase []string
	for _, t := range textnorm.Tokens(s) {
		if objectiveStopwords[t] {
			continue
		}
		phrase = append(phrase, t)
		if !seen[t] {
			seen[t] = true
			toks = append(toks, t)
		}
	}
	return objective{phrase: strings.Join(phrase, " "), tokens: toks}
}

func tokenSet(fields ...string) map[string]bool {
	m := map[string]bool{}
	for _, f := range fields {
		for _, t := range textnorm.Tokens(f) {
			m[t] = true
		}
	}
	return m
}

// outcomeTier places e in one of the six tiers for obj.
func outcomeTier(e catalog.Entry, obj objective) Tier {
	if len(obj.tokens) == 0 {
		return TierNone
	}
	padded := " " + obj.phrase + " "
	for _, o := range e.Outcomes {
		if strings.Contains(" "+strings.Join(textnorm.Tokens(o), " ")+" ", padded) {
			return TierExactPhrase
		}
	}
	outcomes := tokenSet(e.Outcomes...)
	n := 0
	for _, t := range obj.tokens {
		if outcomes[t] {
			n++
		}
	}
	switch {
	case n >= 2:
		return TierMultiToken
	case n == 1:
		return TierSingleToken
	}
	if anyToken(tokenSet(e.Name), obj.tokens) {
		return TierName
	}
	if anyToken(tokenSet(e.Text), obj.tokens) {
		return TierText
	}
	return TierNone
}

func anyToken(set map[string]bool, toks []string) bool {
	for _, t := range toks {
		if set[t] {
			return true
		}
	}
	return false
}

// selectivityPenalty is 0 for open programs; for selective ones strong
// grades remove the penalty and weak grades raise it. No grades counts as
// fair.
func selectivityPenalty(e catalog.Entry, p profile.StudentProfile) int {
	if !e.IsSelective() {
		return 0
	}
	avg, ok := p.GradeAverage()
	switch {
	case !ok:
		return selectiveSmall
	case avg >= strongGradeFloor:
		return 0
	case avg >= fairGradeFloor:
		return selectiveSmall
	default:
		return selectiveLarge
	}
}

// skillMatches counts declared skills whose every token appears in the
// entry's name, description or acquired skills, capped.
func skillMatches(e catalog.Entry, skills []string) int {
	fields := append([]string{e.Name, e.Text}, e.Skills...)
	set := tokenSet(fields...)
	n := 0
	for _, s := range skills {
		toks := textnorm.Tokens(s)
		if len(toks) == 0 {
			continue
		}
		all := true
		for _, t := range toks {
			if !set[t] {
				all = false
				break
			}
		}
		if all {
			n++
			if n == maxSkillMatches {
				break
			}
		}
	}
	return n
}

func (r *Ranker) inMetro(e catalog.Entry) bool {
	if e.Region != "" && textnorm.Fold(e.Region) == textnorm.Fold(r.opts.MetroRegion) {
		return true
	}
	return r.resolver.InRegion(e.City, r.opts.MetroRegion)
}

// score returns the composite score of e; lower is better.
func (r *Ranker) score(e catalog.Entry, p profile.StudentProfile, obj objective) (int, Tier) {
	tier := outcomeTier(e, obj)
	s := int(tier) * tierWeight
	if r.inMetro(e) {
		s += metroBonus
	}
	s += selectivityPenalty(e, p)
	if p.PublicOnly() && e.Operator == catalog.OperatorPrivate {
		s += privatePenalty
	}
	s += skillBonus * skillMatches(e, p.Skills)
	return s, tier
}

// BestAdvanced returns up to k entries of cats scored against the career
// objective, grades, budget and skills, lowest score first. Under a
// public-only budget, private programs are dropped as soon as one public
// program matches the objective in its outcomes.
func (r *Ranker) BestAdvanced(ctx context.Context, p profile.StudentProfile, cats []catalog.Category, k int) ([]Result, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	accepted := categorySet(cats)
	cities := r.resolver.ExtractCities(p.GeoConstraint)
	pool, info, err := r.resolver.SearchWithGeoPreference(ctx, r.searcher, geo.Query{
		Text:      BuildQuery(p, cities),
		Cities:    cities,
		OverFetch: k * r.opts.OverFetchFactor,
		Keep: func(e catalog.Entry) bool {
			_, ok := accepted[e.Category]
			return ok
		},
	})
	if err != nil {
		r.log.Warn("advanced search failed", zap.Error(err))
		return nil, err
	}

	obj := parseObjective(p.Objective)
	results := make([]Result, 0, len(pool))
	publicMatch := false
	for _, c := range pool {
		s, tier := r.score(c.Entry, p, obj)
		results = append(results, Result{
			Entry:        c.Entry,
			Distance:     c.Distance,
			CategoryRank: accepted[c.Entry.Category],
			Score:        s,
			Tier:         tier,
		})
		if c.Entry.Operator == catalog.OperatorPublic && tier <= TierSingleToken {
			publicMatch = true
		}
	}
	if p.PublicOnly() && publicMatch {
		kept := results[:0]
		for _, res := range results {
			if res.Entry.Operator != catalog.OperatorPrivate {
				kept = append(kept, res)
			}
		}
		results = kept
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score < results[j].Score })
	results = truncate(dedupe(results), k)

	r.log.Debug("advanced ranked",
		zap.Int("pool", len(pool)),
		zap.Int("results", len(results)),
		zap.String("geo", string(info.Kind)),
		zap.Bool("public_match", publicMatch),
	)
	return results, nil
}
