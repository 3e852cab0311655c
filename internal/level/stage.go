// Package level classifies free-text academic levels and preferred domains
// into the filters used by the ranker.
package level

import (
	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/textnorm"
)

// Stage is the closed set of academic positions a level text maps to.
type Stage int

const (
	StageUnknown Stage = iota
	StageSecondaryFinal
	StageBase1
	StageBase2
	StageBase3
	StageShortCycle
	StageAdvanced1
	StageAdvanced2
)

var stageNames = map[Stage]string{
	StageUnknown:        "unknown",
	StageSecondaryFinal: "secondary-final",
	StageBase1:          "base-1",
	StageBase2:          "base-2",
	StageBase3:          "base-3",
	StageShortCycle:     "short-cycle",
	StageAdvanced1:      "advanced-1",
	StageAdvanced2:      "advanced-2",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return "unknown"
}

var baseCategories = []catalog.Category{
	catalog.CategoryLicence,
	catalog.CategoryBUT,
	catalog.CategoryBTS,
}

// BaseCategories returns the base-cycle categories in preference order.
func BaseCategories() []catalog.Category {
	return append([]catalog.Category(nil), baseCategories...)
}

// AcceptedCategories returns the categories a student at stage may be
// shown, most preferred first. Only the final base year and advanced stages
// see advanced programs; a short-cycle diploma leads to a licence first. StageUnknown falls back to the most permissive base
// list.
func AcceptedCategories(s Stage) []catalog.Category {
	switch s {
	case StageSecondaryFinal, StageBase1, StageBase2:
		return BaseCategories()
	case StageBase3:
		return []catalog.Category{catalog.CategoryMaster, catalog.CategoryLicencePro, catalog.CategoryLicence}
	case StageShortCycle:
		return []catalog.Category{catalog.CategoryLicencePro, catalog.CategoryLicence}
	case StageAdvanced1, StageAdvanced2:
		return []catalog.Category{catalog.CategoryMaster}
	default:
		return []catalog.Category{catalog.CategoryLicence, catalog.CategoryLicencePro, catalog.CategoryBUT, catalog.CategoryBTS}
	}
}

// ParseStage maps a free-text level ("Terminale Generale", "L3",
// "first year of advanced cycle", "BUT / DUT") to a Stage. Text that
// matches no rule is StageUnknown.
func ParseStage(text string) Stage {
	toks := textnorm.Tokens(text)
	if len(toks) == 0 {
		return StageUnknown
	}
	has := func(words ...string) bool {
		for _, t := range toks {
			for _, w := range words {
				if t == w {
					return true
				}
			}
		}
		return false
	}

	// Short codes win over any surrounding wording.
	for _, t := range toks {
		switch t {
		case "l1":
			return StageBase1
		case "l2":
			return StageBase2
		case "l3":
			return StageBase3
		case "m1":
			return StageAdvanced1
		case "m2":
			return StageAdvanced2
		}
	}

	// The number after "bac" counts post-secondary years; a diploma word
	// with its own year ("Master 1 (Bac+4)") takes precedence over it.
	bac := bacYears(toks)
	year := yearOf(toks, bac.at)
	switch {
	case has("terminale", "tle", "lycee", "lyceen", "lyceenne", "secondary"):
		return StageSecondaryFinal
	case has("master", "mastere", "advanced", "graduate"):
		if year == 2 || (year == 0 && bac.n >= 5) {
			return StageAdvanced2
		}
		return StageAdvanced1
	case has("licence", "bachelor", "base", "undergraduate"):
		if has("pro", "professionnelle") {
			return StageBase3
		}
		if year == 0 && bac.n > 0 {
			year = bac.n
		}
		return baseYear(year)
	case has("prepa", "cpge", "preparatoire"):
		if year == 2 || (year == 0 && bac.n == 2) {
			return StageBase2
		}
		return StageBase1
	case has("bts", "but", "dut"):
		return StageShortCycle
	case bac.n > 0:
		return bacPlus(bac.n)
	case has("bac", "baccalaureat"):
		return StageSecondaryFinal
	}
	return StageUnknown
}

// IsBase reports whether s is a position before or inside the base cycle.
func (s Stage) IsBase() bool {
	switch s {
	case StageSecondaryFinal, StageBase1, StageBase2, StageBase3, StageShortCycle:
		return true
	}
	return false
}

func baseYear(year int) Stage {
	switch year {
	case 2:
		return StageBase2
	case 3:
		return StageBase3
	default:
		return StageBase1
	}
}

// bacPlus maps "bac+N" to the stage reached after N post-secondary years.
func bacPlus(n int) Stage {
	switch {
	case n <= 1:
		return StageBase1
	case n == 2:
		return StageShortCycle
	case n == 3:
		return StageBase3
	case n == 4:
		return StageAdvanced1
	default:
		return StageAdvanced2
	}
}

var ordinals = map[string]int{
	"1": 1, "1er": 1, "1ere": 1, "first": 1, "premiere": 1, "premier": 1, "one": 1, "1st": 1,
	"2": 2, "2e": 2, "2eme": 2, "second": 2, "deuxieme": 2, "two": 2, "2nd": 2,
	"3": 3, "3e": 3, "3eme": 3, "third": 3, "troisieme": 3, "three": 3, "3rd": 3,
	"4": 4, "5": 5,
}

type bacLevel struct {
	n  int // years after the bac, 0 when absent
	at int // token index of the number, -1 when absent
}

// bacYears reads the ordinal right after "bac" or "baccalaureat".
func bacYears(toks []string) bacLevel {
	for i := 0; i+1 < len(toks); i++ {
		if toks[i] != "bac" && toks[i] != "baccalaureat" {
			continue
		}
		if n, ok := ordinals[toks[i+1]]; ok {
			return bacLevel{n: n, at: i + 1}
		}
	}
	return bacLevel{at: -1}
}

// yearOf returns the first ordinal in toks other than the one at index
// skip, or 0.
func yearOf(toks []string, skip int) int {
	for i, t := range toks {
		if i == skip {
			continue
		}
		if n, ok := ordinals[t]; ok {
			return n
		}
	}
	return 0
}
