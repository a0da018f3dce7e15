package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/model"
)

var (
	evaluateFlags employeeFlags
	evaluateJSON  bool
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Work out specialists and research for one employee",
	Long: `Evaluate resolves the employee's harmful factors, merges the required
specialists and personalizes every research prescription.

Example:
  medfactors evaluate --name "Иванов И.И." --factor "п. 4 работы на высоте" --experience "12 лет" --last-exam 2025-02-01`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateFlags.register(evaluateCmd, true)
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "print JSON")
	_ = evaluateCmd.MarkFlagRequired("factor")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	res := a.engine.Evaluate(evaluateFlags.employee())
	if evaluateJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	writeResult(cmd.OutOrStdout(), res)
	return nil
}

func writeResult(w io.Writer, res model.ResolutionResult) {
	if res.Employee.Name != "" {
		fmt.Fprintf(w, "%s\n", res.Employee.Name)
	}
	fmt.Fprintf(w, "exam: %s, experience: %.1f years, method: %s\n", res.Profile.ExamType, res.Profile.ExperienceYears, res.Method)
	if !res.Resolved() {
		fmt.Fprintln(w, "No regulatory factor matched.")
		return
	}
	for _, f := range res.Factors {
		fmt.Fprintf(w, "  п. %d %s [%s]\n", f.ID, f.Title, f.Category)
	}
	fmt.Fprintf(w, "specialists: %s\n", orDash(res.Specialties))
	for _, r := range res.Research {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}
