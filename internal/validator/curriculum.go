package validator

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
)

// CurriculumValidator checks consistency across units, objectives and
// sections. Like CodeValidator it is stateless.
type CurriculumValidator struct {
	rules Rules
}

// NewCurriculumValidator creates a validator using the given rules as
// they are
func NewCurriculumValidator(rules Rules) *CurriculumValidator {
	return &CurriculumValidator{rules: rules}
}

// ValidateProgression checks prerequisites against earlier units'
// objectives and that difficulty never decreases. The input order does
// not matter and the slice is not modified.
func (v *CurriculumValidator) ValidateProgression(units []content.UnitValidation) []string {
	return v.progression(units).Messages()
}

// ValidateObjectives checks each objective for a measurable verb, a sane
// length and curriculum terminology
func (v *CurriculumValidator) ValidateObjectives(objectives []content.LearningObjective) []string {
	return v.objectives(objectives).Messages()
}

// ValidateConsistency checks section terminology and length
func (v *CurriculumValidator) ValidateConsistency(sections []content.ContentSection) []string {
	return v.consistency(sections).Messages()
}

// CheckProgression is ValidateProgression with structured diagnostics. A
// unit without a numeric id, a title or a known difficulty is a
// *content.ContentValidationError.
func (v *CurriculumValidator) CheckProgression(units []content.UnitValidation) (content.Diagnostics, error) {
	for _, u := range units {
		if err := u.Validate(); err != nil {
			return nil, err
		}
	}
	return v.progression(units), nil
}

// CheckObjectives is ValidateObjectives with structured diagnostics
func (v *CurriculumValidator) CheckObjectives(objectives []content.LearningObjective) (content.Diagnostics, error) {
	for _, o := range objectives {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}
	return v.objectives(objectives), nil
}

// CheckConsistency is ValidateConsistency with structured diagnostics
func (v *CurriculumValidator) CheckConsistency(sections []content.ContentSection) (content.Diagnostics, error) {
	for _, s := range sections {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return v.consistency(sections), nil
}

func (v *CurriculumValidator) progression(units []content.UnitValidation) content.Diagnostics {
	var ds content.Diagnostics
	sorted := sortUnits(units)

	for i := 1; i < len(sorted); i++ {
		current := sorted[i]
		for _, prerequisite := range current.Prerequisites {
			if !coveredBefore(sorted[:i], prerequisite) {
				d := content.NewDiagnostic(content.KindPrerequisite,
					"Unit %s: Prerequisite '%s' not covered in previous units", current.UnitID, prerequisite)
				d.UnitID = current.UnitID
				ds = append(ds, d)
			}
		}
	}

	for i := 1; i < len(sorted); i++ {
		current, previous := sorted[i].Difficulty.Rank(), sorted[i-1].Difficulty.Rank()
		if current == 0 || previous == 0 {
			continue
		}
		if current < previous {
			d := content.NewDiagnostic(content.KindDifficultyRegression,
				"Unit %s: Difficulty regression from previous unit", sorted[i].UnitID)
			d.UnitID = sorted[i].UnitID
			ds = append(ds, d)
		}
	}

	return ds
}

func (v *CurriculumValidator) objectives(objectives []content.LearningObjective) content.Diagnostics {
	var ds content.Diagnostics

	for _, o := range objectives {
		description := strings.ToLower(o.Description)
		length := utf8.RuneCountInString(o.Description)
		add := func(kind content.Kind, problem string) {
			d := content.NewDiagnostic(kind, "Objective %s in Unit %s: %s", o.ID, o.UnitID, problem)
			d.UnitID = o.UnitID
			d.ObjectiveID = o.ID
			ds = append(ds, d)
		}

		if !containsAnyFold(description, v.rules.MeasurableVerbs) {
			add(content.KindObjectiveVerb, "Should use measurable action verbs")
		}
		if length < v.rules.ObjectiveMinLength {
			add(content.KindObjectiveBrief, "Description too brief")
		}
		if length > v.rules.ObjectiveMaxLength {
			add(content.KindObjectiveVerbose, "Description too verbose")
		}
		if !containsAnyFold(description, v.rules.DomainTerms) {
			add(content.KindObjectiveTerminology, "Should include LEGO robotics terminology")
		}
	}

	return ds
}

func (v *CurriculumValidator) consistency(sections []content.ContentSection) content.Diagnostics {
	var ds content.Diagnostics

	for _, s := range sections {
		text := strings.ToLower(s.Content)
		length := utf8.RuneCountInString(s.Content)
		add := func(kind content.Kind, format string, args ...interface{}) {
			d := content.NewDiagnostic(kind, format, args...)
			d.UnitID = s.UnitID
			d.SectionTitle = s.Title
			ds = append(ds, d)
		}

		for _, pair := range v.rules.TerminologyPairs {
			if strings.Contains(text, strings.ToLower(pair.Preferred)) && strings.Contains(text, strings.ToLower(pair.Avoid)) {
				add(content.KindTerminology, "Section '%s': Inconsistent %s/%s terminology", s.Title, pair.Preferred, pair.Avoid)
			}
		}

		if length < v.rules.SectionMinLength {
			add(content.KindSectionBrief, "Section '%s': Content too brief for educational value", s.Title)
		}
		if length > v.rules.SectionMaxLength {
			add(content.KindSectionLengthy, "Section '%s': Content may be too lengthy for engagement", s.Title)
		}
	}

	return ds
}

// sortUnits orders a copy by numeric unit id; ids that do not parse go
// last in their original order
func sortUnits(units []content.UnitValidation) []content.UnitValidation {
	sorted := make([]content.UnitValidation, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, aok := content.UnitNumber(sorted[i].UnitID)
		b, bok := content.UnitNumber(sorted[j].UnitID)
		if aok != bok {
			return aok
		}
		return a < b
	})
	return sorted
}

func coveredBefore(previous []content.UnitValidation, prerequisite string) bool {
	label := strings.ToLower(prerequisite)
	for _, u := range previous {
		for _, o := range u.Objectives {
			if strings.Contains(strings.ToLower(o.Description), label) {
				return true
			}
		}
	}
	return false
}

// containsAnyFold reports whether lowered text contains any term, ignoring
// the case of the terms
func containsAnyFold(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
