// Package plan lays out the remaining study stages for a student and
// attaches one shortlist per phase.
package plan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/level"
	"github.com/kamusis/orient-cli/internal/logging"
	"github.com/kamusis/orient-cli/internal/profile"
	"github.com/kamusis/orient-cli/internal/rank"
)

// Cycle is the degree cycle a stage belongs to.
type Cycle string

const (
	CycleBase     Cycle = "base"
	CycleAdvanced Cycle = "advanced"
)

// Stage is one year of the plan.
type Stage struct {
	Label     string        `json:"label"`
	Cycle     Cycle         `json:"cycle"`
	Year      int           `json:"year"`
	Shortlist []rank.Result `json:"shortlist"`
}

// Phase is a maximal run of consecutive stages of the same cycle,
// stages[Start:End].
type Phase struct {
	Cycle Cycle
	Start int
	End   int
}

var (
	l1 = Stage{Label: "L1", Cycle: CycleBase, Year: 1}
	l2 = Stage{Label: "L2", Cycle: CycleBase, Year: 2}
	l3 = Stage{Label: "L3", Cycle: CycleBase, Year: 3}
	m1 = Stage{Label: "M1", Cycle: CycleAdvanced, Year: 1}
	m2 = Stage{Label: "M2", Cycle: CycleAdvanced, Year: 2}
)

// StagesFor returns the stages still ahead of a student at s.
func StagesFor(s level.Stage) []Stage {
	switch s {
	case level.StageSecondaryFinal:
		return []Stage{l1, l2, l3, m1, m2}
	case level.StageBase1:
		return []Stage{l2, l3, m1, m2}
	case level.StageBase2, level.StageShortCycle:
		return []Stage{l3, m1, m2}
	case level.StageAdvanced1:
		return []Stage{m2}
	case level.StageAdvanced2:
		return nil
	default:
		// Base 3 and unknown levels continue with a master.
		return []Stage{m1, m2}
	}
}

// Phases groups stages into maximal same-cycle runs, in order.
func Phases(stages []Stage) []Phase {
	var out []Phase
	for i, s := range stages {
		if n := len(out); n > 0 && out[n-1].Cycle == s.Cycle {
			out[n-1].End = i + 1
			continue
		}
		out = append(out, Phase{Cycle: s.Cycle, Start: i, End: i + 1})
	}
	return out
}

// Ranker is the part of rank.Ranker the assembler needs.
type Ranker interface {
	RankForCategories(ctx context.Context, p profile.StudentProfile, cats []catalog.Category, topK int) ([]rank.Result, geo.Info, error)
	BestAdvanced(ctx context.Context, p profile.StudentProfile, cats []catalog.Category, k int) ([]rank.Result, error)
}

// Assembler attaches shortlists to plan stages.
type Assembler struct {
	ranker Ranker
	log    *zap.Logger
}

// NewAssembler returns an Assembler. A nil logger discards output.
func NewAssembler(r Ranker, log *zap.Logger) *Assembler {
	return &Assembler{ranker: r, log: logging.OrNop(log)}
}

// BuildPlanShortlists issues exactly one ranked query per phase and gives
// every stage of the phase its own copy of that shortlist. Base phases
// rank base-cycle categories; advanced phases use the scored master
// search. The input slice is not modified. The first failure aborts.
func (a *Assembler) BuildPlanShortlists(ctx context.Context, stages []Stage, p profile.StudentProfile, topK int) ([]Stage, error) {
	out := make([]Stage, len(stages))
	copy(out, stages)

	for _, ph := range Phases(out) {
		var (
			list []rank.Result
			err  error
		)
		switch ph.Cycle {
		case CycleAdvanced:
			list, err = a.ranker.BestAdvanced(ctx, p, []catalog.Category{catalog.CategoryMaster}, topK)
		default:
			list, _, err = a.ranker.RankForCategories(ctx, p, level.BaseCategories(), topK)
		}
		if err != nil {
			return nil, fmt.Errorf("%s phase (%s): %w", ph.Cycle, out[ph.Start].Label, err)
		}
		a.log.Debug("phase shortlist",
			zap.String("cycle", string(ph.Cycle)),
			zap.Int("stages", ph.End-ph.Start),
			zap.Int("results", len(list)),
		)
		for i := ph.Start; i < ph.End; i++ {
			out[i].Shortlist = append([]rank.Result(nil), list...)
		}
	}
	return out, nil
}
