package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/kamusis/orient-cli/internal/embeddings"
)

// VectorSearcher answers similarity queries against a loaded semantic index.
type VectorSearcher struct {
	idx  *Index
	prov embeddings.Provider
}

// NewVectorSearcher pairs idx with the provider used to embed queries.
// The provider model must be the one the index was built with.
func NewVectorSearcher(idx *Index, prov embeddings.Provider) (*VectorSearcher, error) {
	if idx == nil {
		return nil, fmt.Errorf("index is nil")
	}
	if prov.ModelID() != idx.Manifest.ModelID {
		return nil, fmt.Errorf("%w: index=%s provider=%s", ErrModelMismatch, idx.Manifest.ModelID, prov.ModelID())
	}
	return &VectorSearcher{idx: idx, prov: prov}, nil
}

// Search returns the k entries closest to query (distance = 1 - cosine),
// ascending. Equal distances keep index order.
func (s *VectorSearcher) Search(ctx context.Context, query string, k int) ([]Candidate, error) {
	qv, err := s.prov.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	dim := s.idx.Manifest.Dim
	if len(qv) != dim {
		return nil, fmt.Errorf("query embedding dim mismatch: got %d want %d", len(qv), dim)
	}
	if s.idx.Manifest.Normalize {
		qv = unitLength(qv)
	}

	out := make([]Candidate, 0, len(s.idx.Rows))
	for i, r := range s.idx.Rows {
		sv := s.idx.Vectors[i*dim : (i+1)*dim]
		d, err := distance(qv, sv)
		if err != nil {
			return nil, err
		}
		out = append(out, Candidate{Entry: r.Entry, Distance: d})
	}
	return topK(out, k), nil
}

func topK(c []Candidate, k int) []Candidate {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Distance < c[j].Distance })
	if k > 0 && len(c) > k {
		c = c[:k]
	}
	return c
}
