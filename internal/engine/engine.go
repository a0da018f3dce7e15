// Package engine is the facade over the catalog, the resolver, the
// classifier and the personalizer. An Engine is immutable after New and
// safe for concurrent use.
package engine

import (
	"time"

	"github.com/ppiankov/medfactors/internal/catalog"
	"github.com/ppiankov/medfactors/internal/classify"
	"github.com/ppiankov/medfactors/internal/logging"
	"github.com/ppiankov/medfactors/internal/model"
	"github.com/ppiankov/medfactors/internal/personalize"
	"github.com/ppiankov/medfactors/internal/resolve"
)

// Engine evaluates employees against one catalog
type Engine struct {
	catalog  *catalog.Catalog
	resolver *resolve.Resolver
	now      func() time.Time
	window   int
	base     []string
	logger   logging.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now, used to decide the exam type
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithContextWindow sets the rune window kept around clause references
func WithContextWindow(runes int) Option {
	return func(e *Engine) { e.window = runes }
}

// WithBaseSpecialties adds specialists included in every non-empty result.
// Unknown names are dropped.
func WithBaseSpecialties(names []string) Option {
	return func(e *Engine) { e.base = catalog.NormalizeSpecialties(names) }
}

// WithLogger sets the logger for catalog warnings and per-evaluation
// debug records. Nil is ignored.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over cat. An empty catalog is allowed: every
// resolution then comes back empty.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		now:     time.Now,
		window:  resolve.DefaultContextWindow,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = resolve.New(cat, resolve.WithContextWindow(e.window))

	if cat.Len() == 0 {
		e.logger.Warn("catalog is empty, all resolutions will be empty")
	}
	return e
}

// Catalog returns the catalog the engine resolves against
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// ResolveFactors maps hazard text to rules
func (e *Engine) ResolveFactors(text string) []catalog.Rule {
	return e.resolver.Resolve(text)
}

// ExplainFactors resolves text and keeps the rationale
func (e *Engine) ExplainFactors(text string) resolve.Explanation {
	return e.resolver.Explain(text)
}

// ParseExperience converts a tenure string to years
func (e *Engine) ParseExperience(text string) float64 {
	return classify.ParseExperience(text)
}

// IsPreliminaryExam decides the exam type from the last-exam date
func (e *Engine) IsPreliminaryExam(lastExam string) bool {
	return classify.IsPreliminaryExam(lastExam, e.now())
}

// Profile classifies the employee's free-text attributes
func (e *Engine) Profile(emp model.Employee) model.HazardProfile {
	total := classify.ParseExperience(emp.TotalExperience)
	position := classify.ParseExperience(emp.PositionExperience)
	subject := personalize.NewSubject(total, position, false)

	examType := model.ExamPeriodic
	if e.IsPreliminaryExam(emp.LastMedDate) {
		examType = model.ExamPreliminary
	}

	return model.HazardProfile{
		TotalYears:      total,
		PositionYears:   position,
		ExperienceYears: subject.ExperienceYears,
		ExamType:        examType,
	}
}

func subjectOf(p model.HazardProfile) personalize.Subject {
	return personalize.Subject{ExperienceYears: p.ExperienceYears, Preliminary: p.Preliminary()}
}

// PersonalizeResearch rewrites research for the employee
func (e *Engine) PersonalizeResearch(research string, emp model.Employee) string {
	return personalize.Personalize(research, subjectOf(e.Profile(emp)))
}

// ExplainResearch personalizes research and keeps every step
func (e *Engine) ExplainResearch(research string, emp model.Employee) personalize.Trace {
	return personalize.Explain(research, subjectOf(e.Profile(emp)))
}

// Evaluate resolves the employee's hazards and personalizes each rule's
// research. Specialists are merged across rules in canonical order;
// research strings are kept in rule order with empty and repeated ones
// dropped.
func (e *Engine) Evaluate(emp model.Employee) model.ResolutionResult {
	exp := e.resolver.Explain(emp.HarmfulFactor)
	profile := e.Profile(emp)
	subject := subjectOf(profile)

	result := model.ResolutionResult{
		Employee:    emp,
		Method:      string(exp.Method),
		Profile:     profile,
		Factors:     make([]model.FactorResult, 0, len(exp.Rules)),
		Specialties: []string{},
		Research:    []string{},
	}

	seenSpec := make(map[string]bool)
	seenResearch := make(map[string]bool)
	addSpec := func(names []string) {
		for _, n := range names {
			if !seenSpec[n] {
				seenSpec[n] = true
				result.Specialties = append(result.Specialties, n)
			}
		}
	}

	for _, rule := range exp.Rules {
		research := personalize.Personalize(rule.Research, subject)
		result.Factors = append(result.Factors, model.FactorResult{
			ID:          rule.ID,
			Title:       rule.Title,
			Category:    string(rule.Category),
			Specialties: append([]string(nil), rule.Specialties...),
			RawResearch: rule.Research,
			Research:    research,
		})
		addSpec(rule.Specialties)
		if research != "" && !seenResearch[research] {
			seenResearch[research] = true
			result.Research = append(result.Research, research)
		}
	}

	if len(result.Factors) > 0 {
		addSpec(e.base)
	}
	catalog.SortSpecialties(result.Specialties)

	e.logger.Debug("employee evaluated",
		logging.String("method", result.Method),
		logging.Int("rules", len(result.Factors)),
		logging.Int("specialties", len(result.Specialties)),
		logging.String("exam_type", string(profile.ExamType)),
	)
	return result
}
