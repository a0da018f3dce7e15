package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/medfactors/internal/model"
)

// employeeFlags are the employee attributes shared by several commands
type employeeFlags struct {
	name     string
	factor   string
	total    string
	position string
	lastExam string
}

func (f *employeeFlags) register(cmd *cobra.Command, withFactor bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "employee name")
	if withFactor {
		cmd.Flags().StringVar(&f.factor, "factor", "", "harmful factor description, e.g. \"п. 4 работы на высоте\"")
	}
	cmd.Flags().StringVar(&f.total, "experience", "", "total work experience, e.g. \"12 лет\"")
	cmd.Flags().StringVar(&f.position, "position-experience", "", "experience in the current position")
	cmd.Flags().StringVar(&f.lastExam, "last-exam", "", "date of the last medical exam (YYYY-MM-DD or DD.MM.YYYY)")
}

func (f *employeeFlags) employee() model.Employee {
	return model.Employee{
		Name:               f.name,
		HarmfulFactor:      f.factor,
		TotalExperience:    f.total,
		PositionExperience: f.position,
		LastMedDate:        f.lastExam,
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// joinArgs turns positional arguments back into one free-text value
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func orDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
