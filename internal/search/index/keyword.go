package index

import (
	"context"
	"strings"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

// KeywordSearcher is the offline fallback used when no semantic index or
// embeddings provider is available. Distance is 1 minus the share of query
// tokens found in the entry's canonical text.
type KeywordSearcher struct {
	entries []catalog.Entry
	blobs   []string
}

// NewKeywordSearcher indexes entries for keyword matching.
func NewKeywordSearcher(entries []catalog.Entry) *KeywordSearcher {
	blobs := make([]string, len(entries))
	for i, e := range entries {
		blobs[i] = " " + strings.Join(textnorm.Tokens(catalog.CanonicalText(e)), " ") + " "
	}
	return &KeywordSearcher{entries: entries, blobs: blobs}
}

// Search scores every entry and returns the k closest, ascending.
func (s *KeywordSearcher) Search(ctx context.Context, query string, k int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := tokenize(query)

	out := make([]Candidate, 0, len(s.entries))
	for i, e := range s.entries {
		dist := 1.0
		if len(tokens) > 0 {
			matched := 0
			for _, tok := range tokens {
				if strings.Contains(s.blobs[i], " "+tok) {
					matched++
				}
			}
			dist = 1 - float64(matched)/float64(len(tokens))
		}
		out = append(out, Candidate{Entry: e, Distance: dist})
	}
	return topK(out, k), nil
}

// tokenize keeps distinct folded tokens of three runes or more.
func tokenize(q string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, tok := range textnorm.Tokens(q) {
		if len([]rune(tok)) < 3 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
