// Package model holds the records shared between the engine, the batch
// processor, the HTTP API and the renderers.
package model

// Employee is the input record of one person to be examined. All fields
// are free text as they come from HR systems.
type Employee struct {
	Name               string `json:"name" yaml:"name"`
	HarmfulFactor      string `json:"harmful_factor" yaml:"harmful_factor"`
	TotalExperience    string `json:"total_experience,omitempty" yaml:"total_experience,omitempty"`
	PositionExperience string `json:"position_experience,omitempty" yaml:"position_experience,omitempty"`
	LastMedDate        string `json:"last_med_date,omitempty" yaml:"last_med_date,omitempty"`
}

// ExamType of the upcoming medical examination
type ExamType string

const (
	ExamPreliminary ExamType = "preliminary"
	ExamPeriodic    ExamType = "periodic"
)

// HazardProfile is what the classifier derives from an employee
type HazardProfile struct {
	TotalYears      float64  `json:"total_years"`
	PositionYears   float64  `json:"position_years"`
	ExperienceYears float64  `json:"experience_years"` // position tenure when known, else total
	ExamType        ExamType `json:"exam_type"`
}

// Preliminary reports whether the upcoming exam is a first-time one
func (p HazardProfile) Preliminary() bool {
	return p.ExamType == ExamPreliminary
}

// FactorResult is one resolved catalog rule personalized for an employee
type FactorResult struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Specialties []string `json:"specialties"`
	RawResearch string   `json:"raw_research,omitempty"`
	Research    string   `json:"research,omitempty"`
}

// ResolutionResult is the full evaluation of one employee
type ResolutionResult struct {
	Employee    Employee       `json:"employee"`
	Method      string         `json:"method"`
	Profile     HazardProfile  `json:"profile"`
	Factors     []FactorResult `json:"factors"`
	Specialties []string       `json:"specialties"`
	Research    []string       `json:"research"`
}

// Resolved reports whether at least one rule matched
func (r ResolutionResult) Resolved() bool {
	return len(r.Factors) > 0
}
