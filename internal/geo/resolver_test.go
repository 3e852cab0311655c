package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/search/index"
)

// scriptedSearcher answers call i with pools[i] (the last pool repeats)
// and records every query.
type scriptedSearcher struct {
	pools   [][]index.Candidate
	err     error
	queries []string
	ks      []int
}

func (s *scriptedSearcher) Search(_ context.Context, q string, k int) ([]index.Candidate, error) {
	s.queries = append(s.queries, q)
	s.ks = append(s.ks, k)
	if s.err != nil {
		return nil, s.err
	}
	i := len(s.queries) - 1
	if i >= len(s.pools) {
		i = len(s.pools) - 1
	}
	return s.pools[i], nil
}

func cand(name, city string, cat catalog.Category) index.Candidate {
	return index.Candidate{Entry: catalog.Entry{Name: name, Institution: "U", City: city, Category: cat}}
}

func names(c []index.Candidate) []string {
	out := make([]string, len(c))
	for i, x := range c {
		out[i] = x.Entry.Name
	}
	return out
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	tbl, err := LoadRegionTable("")
	require.NoError(t, err)
	return NewResolver(tbl)
}

func TestExtractCities(t *testing.T) {
	r := newTestResolver(t)

	cases := []struct {
		in   string
		want []string
	}{
		{"Paris ou Lyon", []string{"paris", "lyon"}},
		{"Lyon, Grenoble / Lyon", []string{"lyon", "grenoble"}},
		{"Créteil et Évry", []string{"creteil", "evry"}},
		{"partout", nil},
		{"France", nil},
		{"  ", nil},
		{"Toulouse or anywhere", []string{"toulouse"}},
		{"Corse", []string{"ajaccio", "corte", "bastia"}},
		{"PACA", []string{"marseille", "aix-en-provence", "avignon", "nice", "toulon", "gap"}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, r.ExtractCities(tc.in))
		})
	}
}

func TestNearbyCities(t *testing.T) {
	r := newTestResolver(t)

	n := r.NearbyCities("Avignon")
	assert.Contains(t, n, "Marseille")
	assert.Contains(t, n, "Aix-en-Provence")
	assert.NotContains(t, n, "Avignon")

	assert.Empty(t, r.NearbyCities("Tombouctou"))
	assert.Equal(t, r.NearbyCities("avignon"), n, "lookup folds case")
}

func TestInRegion(t *testing.T) {
	r := newTestResolver(t)
	assert.True(t, r.InRegion("Cergy", "Ile-de-France"))
	assert.True(t, r.InRegion("Paris 13e", "Île-de-France"))
	assert.False(t, r.InRegion("Lyon", "Ile-de-France"))
	assert.False(t, r.InRegion("Lyon", "Atlantis"))
}

func TestSearchWithGeoPreference_Exact(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("a", "Lyon", catalog.CategoryMaster),
		cand("b", "Paris 5e", catalog.CategoryMaster),
		cand("c", "Marseille", catalog.CategoryMaster),
		cand("d", "Paris", catalog.CategoryMaster),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "droit", Cities: r.ExtractCities("Paris"), OverFetch: 40, Limit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, KindExact, info.Kind)
	assert.Equal(t, []string{"b", "d"}, names(got))
	assert.Equal(t, []int{40}, s.ks)
	for _, c := range got {
		assert.True(t, matchesAny(c.Entry.City, []string{"paris"}))
	}
}

func TestSearchWithGeoPreference_ExactPadding(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("a", "Lyon", ""),
		cand("b", "Paris", ""),
		cand("c", "Nice", ""),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "x", Cities: []string{"paris"}, OverFetch: 10, Limit: 2, Pad: true,
	})
	require.NoError(t, err)
	assert.Equal(t, KindExact, info.Kind)
	assert.Equal(t, []string{"b", "a"}, names(got))
}

func TestSearchWithGeoPreference_NearbyFromPool(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("lyon", "Lyon", ""),
		cand("aix", "Aix-en-Provence", ""),
		cand("mrs", "Marseille", ""),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "informatique", Cities: r.ExtractCities("Avignon"), OverFetch: 10, Limit: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, KindNearby, info.Kind)
	assert.Equal(t, []string{"avignon"}, info.Requested)
	assert.Equal(t, []string{"Marseille", "Aix-en-Provence"}, info.Nearby)
	assert.Equal(t, []string{"aix", "mrs"}, names(got))
	assert.Len(t, s.queries, 1, "neighbours found in the first pool need no second query")
}

func TestSearchWithGeoPreference_NearbyHintedQuery(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{
		{cand("lyon", "Lyon", "")},
		{cand("lyon", "Lyon", ""), cand("mrs", "Marseille", "")},
	}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "informatique", Cities: []string{"avignon"}, OverFetch: 10,
	})
	require.NoError(t, err)
	require.Len(t, s.queries, 2)
	assert.Contains(t, s.queries[1], "Marseille")
	assert.Equal(t, KindNearby, info.Kind)
	assert.Equal(t, []string{"Marseille"}, info.Nearby)
	assert.Equal(t, []string{"mrs"}, names(got))
}

func TestSearchWithGeoPreference_None(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("a", "Lyon", ""), cand("b", "Lille", ""),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "x", Cities: []string{"avignon"}, OverFetch: 10, Limit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, KindNone, info.Kind)
	assert.Equal(t, []string{"a"}, names(got))

	// Unknown city: no neighbours, no second query.
	s2 := &scriptedSearcher{pools: s.pools}
	_, info, err = r.SearchWithGeoPreference(context.Background(), s2, Query{
		Text: "x", Cities: []string{"tombouctou"}, OverFetch: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, KindNone, info.Kind)
	assert.Len(t, s2.queries, 1)
}

func TestSearchWithGeoPreference_NoCities(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("a", "Lyon", ""), cand("b", "Lille", ""), cand("c", "Nice", ""),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "x", Cities: r.ExtractCities("partout"), OverFetch: 10, Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, KindAny, info.Kind)
	assert.Equal(t, []string{"a", "b"}, names(got))
}

func TestSearchWithGeoPreference_KeepAppliesBeforeGeo(t *testing.T) {
	r := newTestResolver(t)
	s := &scriptedSearcher{pools: [][]index.Candidate{{
		cand("bts-paris", "Paris", catalog.CategoryBTS),
		cand("master-lyon", "Lyon", catalog.CategoryMaster),
		cand("master-paris", "Paris", catalog.CategoryMaster),
	}}}

	got, info, err := r.SearchWithGeoPreference(context.Background(), s, Query{
		Text: "x", Cities: []string{"paris"}, OverFetch: 10,
		Keep: func(e catalog.Entry) bool { return e.Category == catalog.CategoryMaster },
	})
	require.NoError(t, err)
	assert.Equal(t, KindExact, info.Kind)
	assert.Equal(t, []string{"master-paris"}, names(got))
}

func TestSearchWithGeoPreference_Error(t *testing.T) {
	r := newTestResolver(t)
	boom := errors.New("boom")
	_, _, err := r.SearchWithGeoPreference(context.Background(), &scriptedSearcher{err: boom}, Query{Text: "x", Cities: []string{"paris"}})
	assert.ErrorIs(t, err, boom)
}

func TestParseRegionTable(t *testing.T) {
	_, err := ParseRegionTable([]byte("regions:\n  - cities: [A]\n"))
	assert.Error(t, err)

	_, err = ParseRegionTable([]byte("regions: ["))
	assert.Error(t, err)

	tbl, err := ParseRegionTable([]byte("regions:\n  - name: R\n    cities: [A, ' ', B]\n"))
	require.NoError(t, err)
	regs := tbl.Regions()
	require.Len(t, regs, 1)
	assert.Equal(t, []string{"A", "B"}, regs[0].Cities)

	regs[0].Cities[0] = "Z"
	assert.Equal(t, "A", tbl.Regions()[0].Cities[0], "Regions returns a copy")
}
