// Package content defines the records the validators inspect and the
// diagnostics they produce.
package content

import (
	"strconv"
	"strings"
)

// CodeExample is one teaching snippet attached to a section
type CodeExample struct {
	Code           string `json:"code" yaml:"code"`
	Language       string `json:"language" yaml:"language"`
	UnitID         string `json:"unitId" yaml:"unitId"`
	SectionTitle   string `json:"sectionTitle" yaml:"sectionTitle"`
	ExpectedOutput string `json:"expectedOutput,omitempty" yaml:"expectedOutput,omitempty"`
	ShouldCompile  bool   `json:"shouldCompile" yaml:"shouldCompile"`
}

// LearningObjective is one bullet of a unit's objectives list
type LearningObjective struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	UnitID      string `json:"unitId" yaml:"unitId"`
	Measurable  bool   `json:"measurable" yaml:"measurable"`
	Achievable  bool   `json:"achievable" yaml:"achievable"`
}

// ContentSection is one prose block within a unit
type ContentSection struct {
	Title        string        `json:"title" yaml:"title"`
	Content      string        `json:"content" yaml:"content"`
	UnitID       string        `json:"unitId" yaml:"unitId"`
	CodeExamples []CodeExample `json:"codeExamples" yaml:"codeExamples"`
	Objectives   []string      `json:"objectives" yaml:"objectives"`
}

// UnitValidation aggregates one full unit for curriculum-level checks
type UnitValidation struct {
	UnitID        string              `json:"unitId" yaml:"unitId"`
	Title         string              `json:"title" yaml:"title"`
	Sections      []ContentSection    `json:"sections" yaml:"sections"`
	Objectives    []LearningObjective `json:"objectives" yaml:"objectives"`
	Prerequisites []string            `json:"prerequisites" yaml:"prerequisites"`
	Difficulty    Difficulty          `json:"difficulty" yaml:"difficulty"`
}

// Validate checks the fields a code example cannot be validated without
func (e CodeExample) Validate() error {
	if _, ok := UnitNumber(e.UnitID); !ok {
		return &ContentValidationError{
			Message:      "code example has no numeric unit id",
			UnitID:       e.UnitID,
			SectionTitle: e.SectionTitle,
			CodeExample:  e.Code,
		}
	}
	return nil
}

// Validate checks the fields an objective cannot be validated without
func (o LearningObjective) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return &ContentValidationError{Message: "objective id is required", UnitID: o.UnitID}
	}
	if _, ok := UnitNumber(o.UnitID); !ok {
		return &ContentValidationError{Message: "objective " + o.ID + " has no numeric unit id", UnitID: o.UnitID}
	}
	return nil
}

// Validate checks the fields a section cannot be validated without
func (s ContentSection) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return &ContentValidationError{Message: "section title is required", UnitID: s.UnitID}
	}
	for _, ex := range s.CodeExamples {
		if err := ex.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the unit id, title and difficulty of a unit
func (u UnitValidation) Validate() error {
	if _, ok := UnitNumber(u.UnitID); !ok {
		return &ContentValidationError{Message: "unit id must be numeric", UnitID: u.UnitID}
	}
	if strings.TrimSpace(u.Title) == "" {
		return &ContentValidationError{Message: "unit title is required", UnitID: u.UnitID}
	}
	if u.Difficulty.Rank() == 0 {
		return &ContentValidationError{
			Message: "unknown difficulty " + strconv.Quote(string(u.Difficulty)),
			UnitID:  u.UnitID,
		}
	}
	return nil
}

// UnitNumber parses the leading digits of a unit id. It reports false when
// the id does not start with a digit.
func UnitNumber(unitID string) (int, bool) {
	s := strings.TrimSpace(unitID)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
