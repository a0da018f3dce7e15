package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/catalog"
)

var (
	catalogJSON     bool
	catalogCategory string
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the regulatory catalog",
	Long: `Inspect the catalog medfactors resolves against: build statistics,
rules per category, and individual rules.

The catalog is the built-in dataset unless --catalog points at a JSON,
YAML or HTML table source.`,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show build statistics and rules per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		counts := a.loaded.Catalog.Counts()
		out := cmd.OutOrStdout()
		if catalogJSON {
			return writeJSON(out, struct {
				Source     string                   `json:"source"`
				Format     catalog.Format           `json:"format"`
				FromCache  bool                     `json:"from_cache"`
				Stats      catalog.BuildStats       `json:"stats"`
				Categories map[catalog.Category]int `json:"categories"`
			}{a.loaded.Source, a.loaded.Format, a.loaded.FromCache, a.loaded.Stats, counts})
		}

		s := a.loaded.Stats
		fmt.Fprintf(out, "source:    %s (%s)\n", a.loaded.Source, a.loaded.Format)
		fmt.Fprintf(out, "cached:    %t\n", a.loaded.FromCache)
		fmt.Fprintf(out, "rows:      %d\n", s.Rows)
		fmt.Fprintf(out, "retained:  %d\n", s.Retained)
		fmt.Fprintf(out, "dropped:   %d\n", s.DroppedTotal())

		reasons := make([]string, 0, len(s.Dropped))
		for r := range s.Dropped {
			reasons = append(reasons, string(r))
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(out, "  %-16s %d\n", r, s.Dropped[catalog.DropReason(r)])
		}

		fmt.Fprintln(out, "categories:")
		for _, c := range []catalog.Category{
			catalog.CategoryChemical,
			catalog.CategoryPhysical,
			catalog.CategoryBiological,
			catalog.CategoryProfession,
			catalog.CategoryOther,
		} {
			if counts[c] > 0 {
				fmt.Fprintf(out, "  %-16s %d\n", c, counts[c])
			}
		}
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in catalog order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}

		var filter catalog.Category
		if catalogCategory != "" {
			filter = catalog.ParseCategory(catalogCategory)
		}

		rules := []catalog.Rule{}
		for _, r := range a.loaded.Catalog.Rules() {
			if filter == "" || r.Category == filter {
				rules = append(rules, r)
			}
		}

		out := cmd.OutOrStdout()
		if catalogJSON {
			return writeJSON(out, rules)
		}
		for _, r := range rules {
			fmt.Fprintf(out, "%4d  %-10s  %s\n", r.ID, r.Category, r.Title)
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every rule with the given clause id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid clause id %q", args[0])
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		rules := a.loaded.Catalog.ByID(id)
		if len(rules) == 0 {
			return fmt.Errorf("no rule with id %d", id)
		}

		out := cmd.OutOrStdout()
		if catalogJSON {
			return writeJSON(out, rules)
		}
		for i, r := range rules {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "п. %d %s\n", r.ID, r.Title)
			fmt.Fprintf(out, "  key:         %s\n", r.UniqueKey)
			fmt.Fprintf(out, "  category:    %s\n", r.Category)
			fmt.Fprintf(out, "  keywords:    %s\n", orDash(r.Keywords))
			fmt.Fprintf(out, "  specialists: %s\n", orDash(r.Specialties))
			if r.Research != "" {
				fmt.Fprintf(out, "  research:    %s\n", r.Research)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	catalogCmd.PersistentFlags().BoolVar(&catalogJSON, "json", false, "print JSON")
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "only list one category (chemical, physical, biological, profession, other)")
}
