package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	classifyFlags employeeFlags
	classifyJSON  bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Derive experience and exam type from employee fields",
	Long: `Classify parses free-text work experience and the last exam date the
way the personalizer sees them. An exam older than two years, or a
missing or unreadable date, makes the next exam preliminary.

Example:
  medfactors classify --experience "3 года 6 мес." --last-exam 12.03.2023`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyFlags.register(classifyCmd, false)
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	p := a.engine.Profile(classifyFlags.employee())
	out := cmd.OutOrStdout()
	if classifyJSON {
		return writeJSON(out, p)
	}

	fmt.Fprintf(out, "total experience:    %.2f years\n", p.TotalYears)
	fmt.Fprintf(out, "position experience: %.2f years\n", p.PositionYears)
	fmt.Fprintf(out, "evaluated as:        %.2f years\n", p.ExperienceYears)
	fmt.Fprintf(out, "exam type:           %s\n", p.ExamType)
	return nil
}
