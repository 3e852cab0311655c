package level

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

//go:embed domains.yaml
var defaultDomains []byte

type domainFile struct {
	Version int                 `yaml:"version"`
	Domains map[string][]string `yaml:"domains"`
}

type synonym struct {
	key    string // folded
	labels []string
}

// Classifier translates level text and preferred domains into category and
// label filters. It is immutable once built.
type Classifier struct {
	// synonyms is sorted by key so that substring matching is deterministic.
	synonyms []synonym
}

// ParseDomainTable decodes a domains YAML document into a Classifier.
func ParseDomainTable(b []byte) (*Classifier, error) {
	var f domainFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("invalid domains YAML: %w", err)
	}
	merged := map[string][]string{}
	for k, labels := range f.Domains {
		fk := textnorm.Fold(k)
		if fk == "" {
			continue
		}
		for _, l := range labels {
			if fl := textnorm.Fold(l); fl != "" {
				merged[fk] = append(merged[fk], fl)
			}
		}
	}
	c := &Classifier{}
	for k, labels := range merged {
		c.synonyms = append(c.synonyms, synonym{key: k, labels: labels})
	}
	sort.Slice(c.synonyms, func(i, j int) bool { return c.synonyms[i].key < c.synonyms[j].key })
	return c, nil
}

// LoadClassifier reads the domain table at path, or the embedded default
// when path is empty.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return ParseDomainTable(defaultDomains)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read domains file %s: %w", path, err)
	}
	return ParseDomainTable(b)
}

// DefaultDomainsYAML returns the embedded table, for 'orient init'.
func DefaultDomainsYAML() []byte {
	out := make([]byte, len(defaultDomains))
	copy(out, defaultDomains)
	return out
}

// LevelToAcceptedCategories is AcceptedCategories(ParseStage(text)).
func (c *Classifier) LevelToAcceptedCategories(text string) []catalog.Category {
	return AcceptedCategories(ParseStage(text))
}

// DomainsToEntryLabels returns the folded catalog domain labels matching
// the preferred domains. Each domain is looked up exactly first; on a miss
// every table key that contains it, or is contained in it, contributes.
// Unmatched domains contribute nothing.
func (c *Classifier) DomainsToEntryLabels(domains []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, d := range domains {
		fd := textnorm.Fold(d)
		if fd == "" {
			continue
		}
		if s, ok := c.lookup(fd); ok {
			for _, l := range s.labels {
				out[l] = struct{}{}
			}
			continue
		}
		for _, s := range c.synonyms {
			if strings.Contains(s.key, fd) || strings.Contains(fd, s.key) {
				for _, l := range s.labels {
					out[l] = struct{}{}
				}
			}
		}
	}
	return out
}

func (c *Classifier) lookup(foldedKey string) (synonym, bool) {
	i := sort.Search(len(c.synonyms), func(i int) bool { return c.synonyms[i].key >= foldedKey })
	if i < len(c.synonyms) && c.synonyms[i].key == foldedKey {
		return c.synonyms[i], true
	}
	return synonym{}, false
}
