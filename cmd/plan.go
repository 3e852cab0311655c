package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kamusis/orient-cli/internal/level"
	"github.com/kamusis/orient-cli/internal/plan"
	"github.com/kamusis/orient-cli/internal/profile"
)

var planCmd = &cobra.Command{
	Use:   "plan --profile FILE",
	Short: "Lay out the remaining study stages with a shortlist per phase",
	Long: `Derive the remaining stages (L1..M2) from the profile's level and attach
one shortlist to each phase: the base-cycle years share one list, the
master years share another.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	addProfileFlags(planCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := profile.Load(flagProfile)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, flagKeyword)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return buildPlan(ctx, os.Stdout, eng, p, effectiveK(cfg, flagK), flagJSON)
}

type stageView struct {
	Label     string       `json:"label"`
	Cycle     plan.Cycle   `json:"cycle"`
	Year      int          `json:"year"`
	Shortlist []resultView `json:"shortlist"`
}

func buildPlan(ctx context.Context, w io.Writer, eng *engine, p profile.StudentProfile, k int, asJSON bool) error {
	current := level.ParseStage(p.Level)
	stages := plan.StagesFor(current)
	out, err := plan.NewAssembler(eng.ranker, logger).BuildPlanShortlists(ctx, stages, p, k)
	if err != nil {
		return userError(err)
	}

	if asJSON {
		views := make([]stageView, 0, len(out))
		for _, s := range out {
			v := stageView{Label: s.Label, Cycle: s.Cycle, Year: s.Year, Shortlist: toViews(s.Shortlist)}
			if s.Cycle == plan.CycleAdvanced {
				v.Shortlist = toScoredViews(s.Shortlist)
			}
			views = append(views, v)
		}
		return writeJSON(w, struct {
			Mode   string      `json:"mode"`
			Stage  string      `json:"stage"`
			Stages []stageView `json:"stages"`
		}{eng.mode, current.String(), views})
	}

	fmt.Fprintf(w, "\norient plan (%s search)\n", eng.mode)
	fmt.Fprintf(w, "Level:      %s (%s)\n", orDash(p.Level), current)
	if len(out) == 0 {
		fmt.Fprintln(w, "\nNo remaining stages: the profile is already in the final master year.")
		return nil
	}
	for _, ph := range plan.Phases(out) {
		first, last := out[ph.Start], out[ph.End-1]
		title := first.Label
		if ph.End-ph.Start > 1 {
			title += " - " + last.Label
		}
		fmt.Fprintf(w, "\n=== %s (%s) ===\n", title, ph.Cycle)
		writeResults(w, first.Shortlist, ph.Cycle == plan.CycleAdvanced)
	}
	return nil
}
