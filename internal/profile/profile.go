// Package profile holds the student profile consumed by the ranker.
package profile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Budget is the student's preference on program operators.
type Budget string

const (
	BudgetIndifferent     Budget = "indifferent"
	BudgetPublicOnly      Budget = "public-only"
	BudgetPublicOrPrivate Budget = "public-or-private"
)

// ParseBudget accepts the canonical values and the French form labels
// ("Public uniquement", "Public ou privé", "Peu importe"). Anything else is
// BudgetIndifferent.
func ParseBudget(s string) Budget {
	f := strings.Join(strings.FieldsFunc(textnorm.Fold(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), " ")
	switch f {
	case "public only", "public uniquement", "publique uniquement", "public":
		return BudgetPublicOnly
	case "public or private", "public ou prive", "public ou privee", "public/prive":
		return BudgetPublicOrPrivate
	}
	return BudgetIndifferent
}

// UnmarshalYAML parses the budget leniently.
func (b *Budget) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		*b = BudgetIndifferent
		return nil
	}
	*b = ParseBudget(s)
	return nil
}

// Grades maps subjects to marks out of 20. Values that are not numbers are
// dropped at decode time.
type Grades map[string]float64

// UnmarshalYAML decodes a subject → mark mapping, accepting "14,5" and
// skipping unparseable marks.
func (g *Grades) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		*g = nil
		return nil
	}
	out := Grades{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			continue
		}
		f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(v.Value), ",", ".", 1), 64)
		if err != nil {
			continue
		}
		out[k.Value] = f
	}
	*g = out
	return nil
}

// StudentProfile is the read-only input to a recommendation run.
type StudentProfile struct {
	Level            string   `yaml:"level" json:"level"`
	Objective        string   `yaml:"objective" json:"objective"`
	PreferredDomains []string `yaml:"preferred_domains" json:"preferred_domains"`
	Interests        []string `yaml:"interests" json:"interests"`
	Grades           Grades   `yaml:"grades" json:"grades"`
	GeoConstraint    string   `yaml:"geo_constraint" json:"geo_constraint"`
	Budget           Budget   `yaml:"budget" json:"budget"`
	Skills           []string `yaml:"skills" json:"skills"`
	Modality         string   `yaml:"modality" json:"modality"`
}

// GradeAverage returns the mean of the grades in 1..20 and whether any
// grade counted. Zero means "not taken"; out-of-range marks are ignored.
// Marks are summed in ascending order so the result does not depend on map
// iteration.
func (p StudentProfile) GradeAverage() (float64, bool) {
	marks := make([]float64, 0, len(p.Grades))
	for _, g := range p.Grades {
		if g >= 1 && g <= 20 {
			marks = append(marks, g)
		}
	}
	if len(marks) == 0 {
		return 0, false
	}
	sort.Float64s(marks)
	var sum float64
	for _, g := range marks {
		sum += g
	}
	return sum / float64(len(marks)), true
}

// PublicOnly reports whether private programs should be penalized.
func (p StudentProfile) PublicOnly() bool {
	return p.Budget == BudgetPublicOnly
}

// Parse decodes a YAML (or JSON) profile document. A missing budget is
// BudgetIndifferent.
func Parse(b []byte) (StudentProfile, error) {
	var p StudentProfile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return StudentProfile{}, fmt.Errorf("invalid profile: %w", err)
	}
	if p.Budget == "" {
		p.Budget = BudgetIndifferent
	}
	return p, nil
}

// Load reads and parses the profile at path.
func Load(path string) (StudentProfile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return StudentProfile{}, fmt.Errorf("cannot read profile %s: %w", path, err)
	}
	return Parse(b)
}
