package geo

import (
	"context"
	"regexp"
	"strings"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/search/index"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Kind names the fallback tier a geographic search ended on.
type Kind string

const (
	// KindAny means no usable city was requested; results are unfiltered.
	KindAny Kind = "any"
	// KindExact means results are located in a requested city.
	KindExact Kind = "exact"
	// KindNearby means no requested city matched but a neighbouring one did.
	KindNearby Kind = "nearby"
	// KindNone means neither tier matched; results are unfiltered.
	KindNone Kind = "none"
)

// Info describes which fallback tier produced a result list.
type Info struct {
	Kind      Kind     `json:"kind"`
	Requested []string `json:"requested_cities,omitempty"`
	// Nearby lists the neighbouring cities that actually matched, in table
	// order. Set only for KindNearby.
	Nearby []string `json:"nearby_cities,omitempty"`
}

// Searcher retrieves the k candidates closest to query, ascending by distance.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.Candidate, error)
}

// Query is one geographic search request.
type Query struct {
	Text string
	// Cities are folded city names, usually from ExtractCities.
	Cities []string
	// OverFetch is the pool size requested from the searcher.
	OverFetch int
	// Limit truncates the returned list. Zero keeps the whole tier.
	Limit int
	// Pad tops up exact matches with other pool entries up to Limit.
	Pad bool
	// Keep is a hard filter applied to every pool before partitioning.
	Keep func(catalog.Entry) bool
}

var wildcards = map[string]bool{
	"partout":         true,
	"france":          true,
	"toute la france": true,
	"peu importe":     true,
	"indifferent":     true,
	"anywhere":        true,
}

var separators = regexp.MustCompile(`\s+(?:ou|or|et|and)\s+|[,;/&]`)

// Resolver maps free-text constraints onto the region table.
type Resolver struct {
	table *RegionTable
}

// NewResolver returns a resolver over t. A nil table resolves no neighbours.
func NewResolver(t *RegionTable) *Resolver {
	if t == nil {
		t = &RegionTable{}
	}
	return &Resolver{table: t}
}

// ExtractCities splits a free-text constraint into folded city names.
// Wildcards such as "partout" are dropped and region names expand to their
// member cities. Order of first appearance is kept.
//
//	"Paris ou Lyon" → ["paris", "lyon"]
//	"partout"       → []
func (r *Resolver) ExtractCities(constraint string) []string {
	folded := textnorm.Fold(constraint)
	if folded == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, part := range separators.Split(folded, -1) {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" || wildcards[part] {
			continue
		}
		if i := r.table.regionByName(part); i >= 0 {
			for _, c := range r.table.folded[i] {
				add(c)
			}
			continue
		}
		add(part)
	}
	return out
}

// NearbyCities returns the other members of every region containing city,
// in table order, using the table's spelling. Unknown cities have none.
func (r *Resolver) NearbyCities(city string) []string {
	fc := textnorm.Fold(city)
	seen := map[string]bool{fc: true}
	var out []string
	for _, i := range r.table.regionIndexes(fc) {
		for j, m := range r.table.folded[i] {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, r.table.regions[i].Cities[j])
		}
	}
	return out
}

// InRegion reports whether the entry city belongs to the named region.
func (r *Resolver) InRegion(city, region string) bool {
	i := r.table.regionByName(textnorm.Fold(region))
	if i < 0 {
		return false
	}
	fc := textnorm.Fold(city)
	for _, m := range r.table.folded[i] {
		if cityMatches(fc, m) {
			return true
		}
	}
	return false
}

// SearchWithGeoPreference retrieves an over-fetched pool and keeps the
// entries located in the requested cities. When none are, it falls back to
// neighbouring cities of the same regions, issuing a second query hinted
// with their names if the first pool has none. When that fails too the
// unfiltered pool is returned with KindNone.
func (r *Resolver) SearchWithGeoPreference(ctx context.Context, s Searcher, q Query) ([]index.Candidate, Info, error) {
	pool, err := s.Search(ctx, q.Text, q.OverFetch)
	if err != nil {
		return nil, Info{}, err
	}
	pool = keep(pool, q.Keep)

	if len(q.Cities) == 0 {
		return limit(pool, q.Limit), Info{Kind: KindAny}, nil
	}
	requested := append([]string(nil), q.Cities...)

	exact, rest := partition(pool, q.Cities)
	if len(exact) > 0 {
		if q.Pad && q.Limit > 0 {
			for _, c := range rest {
				if len(exact) >= q.Limit {
					break
				}
				exact = append(exact, c)
			}
		}
		return limit(exact, q.Limit), Info{Kind: KindExact, Requested: requested}, nil
	}

	neighbours := r.neighbours(q.Cities)
	if len(neighbours) > 0 {
		foldedN := make([]string, len(neighbours))
		for i, n := range neighbours {
			foldedN[i] = textnorm.Fold(n)
		}
		near, _ := partition(pool, foldedN)
		if len(near) == 0 {
			hinted := strings.TrimSpace(q.Text + " " + strings.Join(neighbours, " "))
			pool2, err := s.Search(ctx, hinted, q.OverFetch)
			if err != nil {
				return nil, Info{}, err
			}
			near, _ = partition(keep(pool2, q.Keep), foldedN)
		}
		if len(near) > 0 {
			return limit(near, q.Limit), Info{
				Kind:      KindNearby,
				Requested: requested,
				Nearby:    matched(neighbours, foldedN, near),
			}, nil
		}
	}

	return limit(pool, q.Limit), Info{Kind: KindNone, Requested: requested}, nil
}

// neighbours unions NearbyCities over cities, minus the cities themselves.
func (r *Resolver) neighbours(cities []string) []string {
	excluded := map[string]bool{}
	for _, c := range cities {
		excluded[c] = true
	}
	var out []string
	for _, c := range cities {
		for _, n := range r.NearbyCities(c) {
			fn := textnorm.Fold(n)
			if excluded[fn] {
				continue
			}
			excluded[fn] = true
			out = append(out, n)
		}
	}
	return out
}

// cityMatches reports whether a folded entry city is the folded target or
// one of its districts ("paris 5e", "paris (75)").
func cityMatches(entryCity, target string) bool {
	if target == "" {
		return false
	}
	return entryCity == target || strings.HasPrefix(entryCity, target+" ")
}

func matchesAny(entryCity string, targets []string) bool {
	fc := textnorm.Fold(entryCity)
	for _, t := range targets {
		if cityMatches(fc, t) {
			return true
		}
	}
	return false
}

func partition(pool []index.Candidate, targets []string) (in, out []index.Candidate) {
	for _, c := range pool {
		if matchesAny(c.Entry.City, targets) {
			in = append(in, c)
		} else {
			out = append(out, c)
		}
	}
	return in, out
}

func matched(display, folded []string, near []index.Candidate) []string {
	var out []string
	for i, f := range folded {
		for _, c := range near {
			if cityMatches(textnorm.Fold(c.Entry.City), f) {
				out = append(out, display[i])
				break
			}
		}
	}
	return out
}

func keep(pool []index.Candidate, fn func(catalog.Entry) bool) []index.Candidate {
	if fn == nil {
		return pool
	}
	out := make([]index.Candidate, 0, len(pool))
	for _, c := range pool {
		if fn(c.Entry) {
			out = append(out, c)
		}
	}
	return out
}

func limit(c []index.Candidate, n int) []index.Candidate {
	if n > 0 && len(c) > n {
		return c[:n]
	}
	return c
}
