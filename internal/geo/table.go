// Package geo resolves free-text geographic constraints to catalog cities
// and applies the exact → nearby → unfiltered search fallback.
package geo

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/orient-cli/internal/textnorm"
)

//go:embed regions.yaml
var defaultRegions []byte

// Region is one administrative region and its member cities.
type Region struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases,omitempty"`
	Cities  []string `yaml:"cities"`
}

type regionFile struct {
	Version int      `yaml:"version"`
	Regions []Region `yaml:"regions"`
}

// RegionTable is the immutable region → cities table. The zero value is an
// empty table.
type RegionTable struct {
	regions []Region
	// folded[i][j] is the folded form of regions[i].Cities[j].
	folded [][]string
	// names[i] holds the folded name and aliases of regions[i].
	names [][]string
}

// ParseRegionTable decodes a regions YAML document.
func ParseRegionTable(b []byte) (*RegionTable, error) {
	var f regionFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("invalid regions YAML: %w", err)
	}
	t := &RegionTable{}
	for _, r := range f.Regions {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("region without name")
		}
		var cities, folded []string
		for _, c := range r.Cities {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			cities = append(cities, c)
			folded = append(folded, textnorm.Fold(c))
		}
		names := []string{textnorm.Fold(name)}
		for _, a := range r.Aliases {
			if a = textnorm.Fold(a); a != "" {
				names = append(names, a)
			}
		}
		t.regions = append(t.regions, Region{Name: name, Aliases: r.Aliases, Cities: cities})
		t.folded = append(t.folded, folded)
		t.names = append(t.names, names)
	}
	return t, nil
}

// LoadRegionTable reads the table at path, or the embedded default when
// path is empty.
func LoadRegionTable(path string) (*RegionTable, error) {
	if path == "" {
		return ParseRegionTable(defaultRegions)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read regions file %s: %w", path, err)
	}
	return ParseRegionTable(b)
}

// DefaultRegionsYAML returns the embedded table, for 'orient init'.
func DefaultRegionsYAML() []byte {
	out := make([]byte, len(defaultRegions))
	copy(out, defaultRegions)
	return out
}

// Regions returns a copy of the table.
func (t *RegionTable) Regions() []Region {
	out := make([]Region, len(t.regions))
	for i, r := range t.regions {
		out[i] = Region{
			Name:    r.Name,
			Aliases: append([]string(nil), r.Aliases...),
			Cities:  append([]string(nil), r.Cities...),
		}
	}
	return out
}

// regionIndexes returns the indexes of every region whose members include
// the folded city.
func (t *RegionTable) regionIndexes(foldedCity string) []int {
	var out []int
	for i, members := range t.folded {
		for _, m := range members {
			if m == foldedCity {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// regionByName returns the index of the region whose folded name or alias
// is foldedName, or -1.
func (t *RegionTable) regionByName(foldedName string) int {
	for i, names := range t.names {
		for _, n := range names {
			if n == foldedName {
				return i
			}
		}
	}
	return -1
}
