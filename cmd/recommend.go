package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/level"
	"github.com/kamusis/orient-cli/internal/profile"
	"github.com/kamusis/orient-cli/internal/rank"
)

var (
	flagProfile string
	flagK       int
	flagKeyword bool
	flagJSON    bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend --profile FILE",
	Short: "Recommend programs for a student profile",
	Long: `Rank catalog programs for the profile's level, domains and geography.

Programs outside the level's accepted categories are never shown. When no
program is located in the requested cities, programs from neighbouring
cities of the same region are shown instead, and failing that the
unfiltered ranking.`,
	Args: cobra.NoArgs,
	RunE: runRecommend,
}

func init() {
	addProfileFlags(recommendCmd)
	rootCmd.AddCommand(recommendCmd)
}

// addProfileFlags registers the flags shared by recommend and plan.
func addProfileFlags(c *cobra.Command) {
	c.Flags().StringVar(&flagProfile, "profile", "", "Student profile (YAML or JSON)")
	c.Flags().IntVar(&flagK, "k", 0, "Number of programs per shortlist (default: top_k from orient.yaml)")
	c.Flags().BoolVar(&flagKeyword, "keyword", false, "Force keyword search only")
	c.Flags().BoolVar(&flagJSON, "json", false, "Print JSON instead of a table")
	_ = c.MarkFlagRequired("profile")
}

func runRecommend(cmd *cobra.Command, _ []string) error {
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
	return recommend(ctx, os.Stdout, eng, p, effectiveK(cfg, flagK), flagJSON)
}

func recommend(ctx context.Context, w io.Writer, eng *engine, p profile.StudentProfile, k int, asJSON bool) error {
	results, info, err := eng.ranker.Recommend(ctx, p, k)
	if err != nil {
		return userError(err)
	}
	cats := eng.classifier.LevelToAcceptedCategories(p.Level)
	if asJSON {
		return writeJSON(w, recommendView{
			Mode:       eng.mode,
			Stage:      level.ParseStage(p.Level).String(),
			Categories: cats,
			Geo:        info,
			Results:    toViews(results),
		})
	}

	fmt.Fprintf(w, "\norient recommend (%s search)\n", eng.mode)
	fmt.Fprintf(w, "Level:      %s → %s\n", orDash(p.Level), joinCategories(cats))
	fmt.Fprintf(w, "Geography:  %s\n", describeGeo(info))
	writeResults(w, results, false)
	return nil
}

// resultView is the JSON shape of one ranked program.
type resultView struct {
	Name        string   `json:"name"`
	Institution string   `json:"institution"`
	City        string   `json:"city"`
	Category    string   `json:"category"`
	Domain      string   `json:"domain,omitempty"`
	Operator    string   `json:"operator,omitempty"`
	URL         string   `json:"url,omitempty"`
	Outcomes    []string `json:"outcomes,omitempty"`
	Distance    float64  `json:"distance"`
	Score       *int     `json:"score,omitempty"`
	Tier        string   `json:"tier,omitempty"`
}

type recommendView struct {
	Mode       string             `json:"mode"`
	Stage      string             `json:"stage"`
	Categories []catalog.Category `json:"categories"`
	Geo        geo.Info           `json:"geo"`
	Results    []resultView       `json:"results"`
}

func toViews(rs []rank.Result) []resultView {
	out := make([]resultView, 0, len(rs))
	for _, r := range rs {
		out = append(out, resultView{
			Name:        r.Entry.Name,
			Institution: r.Entry.Institution,
			City:        r.Entry.City,
			Category:    string(r.Entry.Category),
			Domain:      r.Entry.Domain,
			Operator:    string(r.Entry.Operator),
			URL:         r.Entry.URL,
			Outcomes:    r.Entry.Outcomes,
			Distance:    r.Distance,
		})
	}
	return out
}

// toScoredViews also carries the advanced-search score and tier.
func toScoredViews(rs []rank.Result) []resultView {
	out := toViews(rs)
	for i := range out {
		s := rs[i].Score
		out[i].Score = &s
		out[i].Tier = rs[i].Tier.String()
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeResults(w io.Writer, results []rank.Result, scored bool) {
	fmt.Fprintf(w, "\nResults (%d found):\n", len(results))
	if len(results) == 0 {
		fmt.Fprintln(w, "  no matching programs")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range results {
		e := r.Entry
		tag := "[" + string(e.Category) + "]"
		if scored {
			tag = fmt.Sprintf("[%d %s]", r.Score, r.Tier)
		}
		fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s, %s\n", i+1, tag, e.Name, e.Institution, e.City)
		if details := entryDetails(e); details != "" {
			fmt.Fprintf(tw, "  \t\t%s\n", details)
		}
	}
	_ = tw.Flush()
}

func entryDetails(e catalog.Entry) string {
	var parts []string
	if e.Domain != "" {
		parts = append(parts, e.Domain)
	}
	if e.Operator == catalog.OperatorPrivate {
		parts = append(parts, "private")
	}
	if len(e.Outcomes) > 0 {
		n := len(e.Outcomes)
		if n > 3 {
			n = 3
		}
		parts = append(parts, strings.Join(e.Outcomes[:n], ", "))
	}
	if e.URL != "" {
		parts = append(parts, e.URL)
	}
	return strings.Join(parts, " · ")
}

func describeGeo(info geo.Info) string {
	switch info.Kind {
	case geo.KindExact:
		return "in " + strings.Join(info.Requested, ", ")
	case geo.KindNearby:
		return fmt.Sprintf("nothing in %s; nearby: %s", strings.Join(info.Requested, ", "), strings.Join(info.Nearby, ", "))
	case geo.KindNone:
		return fmt.Sprintf("nothing in or near %s; showing all locations", strings.Join(info.Requested, ", "))
	default:
		return "any location"
	}
}

func joinCategories(cats []catalog.Category) string {
	s := make([]string, len(cats))
	for i, c := range cats {
		s[i] = string(c)
	}
	return strings.Join(s, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
