// Package catalog holds the static program corpus the recommender searches.
// Entries are loaded once and never mutated afterwards.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Category is the program-type tag of an entry.
type Category string

const (
	CategoryLicence    Category = "Licence"
	CategoryLicencePro Category = "Licence professionnelle"
	CategoryBUT        Category = "BUT"
	CategoryBTS        Category = "BTS"
	CategoryMaster     Category = "Master"
)

// Operator tells who runs the hosting institution.
type Operator string

const (
	OperatorPublic  Operator = "public"
	OperatorPrivate Operator = "private"
	OperatorUnknown Operator = "unknown"
)

// Selectivity is the admission selectivity of a program.
type Selectivity string

const (
	SelectivityAccessible      Selectivity = "accessible"
	SelectivitySelective       Selectivity = "selective"
	SelectivityHighlySelective Selectivity = "highly-selective"
	SelectivityUnknown         Selectivity = "unknown"
)

// Entry is one academic program offering.
type Entry struct {
	Name        string
	Institution string
	City        string
	Region      string

	Category Category
	Domain   string

	Text     string
	Outcomes []string
	Skills   []string

	Operator    Operator
	Selectivity Selectivity
	Modality    string
	Duration    string
	URL         string
}

// Key is the case- and accent-insensitive identity of an entry.
type Key struct {
	Name        string
	Institution string
	City        string
}

// Key returns the deduplication key of e.
func (e Entry) Key() Key {
	return Key{
		Name:        textnorm.Fold(e.Name),
		Institution: textnorm.Fold(e.Institution),
		City:        textnorm.Fold(e.City),
	}
}

// ID returns a stable identifier derived from the entry key.
func (e Entry) ID() string {
	k := e.Key()
	h := sha256.Sum256([]byte(k.Name + "\x00" + k.Institution + "\x00" + k.City))
	return hex.EncodeToString(h[:8])
}

// IsSelective reports whether admission is selective or highly selective.
func (e Entry) IsSelective() bool {
	return e.Selectivity == SelectivitySelective || e.Selectivity == SelectivityHighlySelective
}

// ParseCategory maps a raw diploma label to a Category. Unknown labels are
// returned trimmed, as-is.
func ParseCategory(raw string) Category {
	s := textnorm.Fold(raw)
	switch {
	case s == "":
		return ""
	case strings.HasPrefix(s, "licence pro"), s == "lp":
		return CategoryLicencePro
	case strings.HasPrefix(s, "licence"):
		return CategoryLicence
	case s == "but", s == "dut", strings.HasPrefix(s, "but "), strings.HasPrefix(s, "bachelor universitaire"):
		return CategoryBUT
	case s == "bts", strings.HasPrefix(s, "bts "):
		return CategoryBTS
	case strings.HasPrefix(s, "master"), s == "msc":
		return CategoryMaster
	}
	return Category(strings.TrimSpace(raw))
}

// ParseOperator maps "Public / Prive / Consulaire" labels to an Operator.
// Consular schools count as private.
func ParseOperator(raw string) Operator {
	s := textnorm.Fold(raw)
	switch {
	case s == "public", strings.HasPrefix(s, "public "):
		return OperatorPublic
	case strings.HasPrefix(s, "prive"), strings.HasPrefix(s, "private"), strings.HasPrefix(s, "consulaire"):
		return OperatorPrivate
	}
	return OperatorUnknown
}

// ParseSelectivity maps "Accessible / Selectif / Tres selectif" labels.
func ParseSelectivity(raw string) Selectivity {
	s := textnorm.Fold(raw)
	switch {
	case s == "accessible":
		return SelectivityAccessible
	case strings.HasPrefix(s, "tres selectif"), strings.HasPrefix(s, "highly"):
		return SelectivityHighlySelective
	case strings.HasPrefix(s, "selectif"), strings.HasPrefix(s, "selective"):
		return SelectivitySelective
	}
	return SelectivityUnknown
}
