package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/render"
)

var (
	personalizeFlags   employeeFlags
	personalizeRule    int
	personalizeDiff    bool
	personalizeColor   bool
	personalizeExplain bool
	personalizeJSON    bool
)

// personalizeCmd represents the personalize command
var personalizeCmd = &cobra.Command{
	Use:   "personalize [research text]",
	Short: "Resolve the conditional clauses of a research prescription for one employee",
	Long: `Personalize rewrites a research prescription for a specific employee:
clauses conditioned on work experience or exam type are kept when the
condition holds and dropped when it does not. Conditions that need data
medfactors does not have ("при наличии показаний") are dropped.

The text comes from the arguments or, with --rule, from a catalog rule.

Example:
  medfactors personalize "Флюорография; при стаже более 10 лет, спирометрия" --experience "5 лет"
  medfactors personalize --rule 4 --last-exam 2025-03-01 --diff`,
	RunE: runPersonalize,
}

func init() {
	rootCmd.AddCommand(personalizeCmd)

	personalizeFlags.register(personalizeCmd, false)
	personalizeCmd.Flags().IntVar(&personalizeRule, "rule", 0, "personalize the research of every catalog rule with this clause id")
	personalizeCmd.Flags().BoolVar(&personalizeDiff, "diff", false, "show what was removed")
	personalizeCmd.Flags().BoolVar(&personalizeColor, "color", false, "colorize --diff output")
	personalizeCmd.Flags().BoolVar(&personalizeExplain, "explain", false, "list every evaluated condition")
	personalizeCmd.Flags().BoolVar(&personalizeJSON, "json", false, "print JSON traces")
}

func runPersonalize(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	texts := []string{}
	if text := joinArgs(args); text != "" {
		texts = append(texts, text)
	}
	if personalizeRule > 0 {
		rules := a.engine.Catalog().ByID(personalizeRule)
		if len(rules) == 0 {
			return fmt.Errorf("no rule with id %d", personalizeRule)
		}
		for _, r := range rules {
			if r.Research != "" {
				texts = append(texts, r.Research)
			}
		}
	}
	if len(texts) == 0 {
		return fmt.Errorf("nothing to personalize: pass research text or --rule")
	}

	out := cmd.OutOrStdout()
	emp := personalizeFlags.employee()

	for i, text := range texts {
		tr := a.engine.ExplainResearch(text, emp)
		if personalizeJSON {
			if err := writeJSON(out, tr); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		switch {
		case personalizeExplain:
			if err := render.WriteTrace(out, tr); err != nil {
				return err
			}
		case personalizeDiff:
			fmt.Fprintln(out, render.ResearchDiff(tr.Input, tr.Output, personalizeColor))
		default:
			fmt.Fprintln(out, tr.Output)
		}
	}
	return nil
}
