package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/render"
)

var (
	resolveExplain bool
	resolveJSON    bool
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <harmful factor text>",
	Short: "Resolve a harmful factor description to catalog rules",
	Long: `Resolve finds the regulatory rules an employee's harmful factor text
refers to. Explicit clause references ("п. 4", "пункт 12") win; when
there are none, the single best keyword match is used.

Example:
  medfactors resolve "п. 4 работы на высоте"
  medfactors resolve "контакт с бензолом" --explain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&resolveExplain, "explain", false, "show how each reference and candidate was decided")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print JSON")
}

func runResolve(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	exp := a.engine.ExplainFactors(joinArgs(args))

	switch {
	case resolveJSON && resolveExplain:
		return writeJSON(out, exp)
	case resolveJSON:
		return writeJSON(out, exp.Rules)
	case resolveExplain:
		return render.WriteExplanation(out, exp)
	}

	if len(exp.Rules) == 0 {
		fmt.Fprintln(out, "No matching rules.")
		return nil
	}
	for _, r := range exp.Rules {
		fmt.Fprintf(out, "п. %d %s [%s]\n", r.ID, r.Title, r.Category)
		fmt.Fprintf(out, "  specialists: %s\n", orDash(r.Specialties))
		if r.Research != "" {
			fmt.Fprintf(out, "  research: %s\n", r.Research)
		}
	}
	return nil
}
