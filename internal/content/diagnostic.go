package content

import (
	"fmt"
	"sort"
	"strings"
)

// Kind names the rule that produced a diagnostic
type Kind string

// Code example kinds
const (
	KindIndentation      Kind = "indentation"
	KindInvalidVariable  Kind = "invalid_variable_name"
	KindMissingColon     Kind = "missing_colon"
	KindInvalidAPICall   Kind = "invalid_api_call"
	KindUnbalancedParens Kind = "unbalanced_parentheses"

	KindMotorSpeed    Kind = "motor_speed"
	KindSensorGuard   Kind = "sensor_condition"
	KindMotorWait     Kind = "motor_wait"
	KindMagicNumber   Kind = "magic_number"
	KindErrorHandling Kind = "error_handling"

	KindMissingComments Kind = "missing_comments"
	KindAdvancedConcept Kind = "advanced_concept"
	KindMissingFunction Kind = "missing_functions"
	KindComplexity      Kind = "complexity"
)

// Curriculum kinds
const (
	KindPrerequisite         Kind = "prerequisite_not_covered"
	KindDifficultyRegression Kind = "difficulty_regression"
	KindObjectiveVerb        Kind = "objective_verb"
	KindObjectiveBrief       Kind = "objective_too_brief"
	KindObjectiveVerbose     Kind = "objective_too_verbose"
	KindObjectiveTerminology Kind = "objective_terminology"
	KindTerminology          Kind = "inconsistent_terminology"
	KindSectionBrief         Kind = "section_too_brief"
	KindSectionLengthy       Kind = "section_too_lengthy"
	KindMissingTopic         Kind = "missing_topic"
)

var knownKinds = map[Kind]bool{
	KindIndentation:          true,
	KindInvalidVariable:      true,
	KindMissingColon:         true,
	KindInvalidAPICall:       true,
	KindUnbalancedParens:     true,
	KindMotorSpeed:           true,
	KindSensorGuard:          true,
	KindMotorWait:            true,
	KindMagicNumber:          true,
	KindErrorHandling:        true,
	KindMissingComments:      true,
	KindAdvancedConcept:      true,
	KindMissingFunction:      true,
	KindComplexity:           true,
	KindPrerequisite:         true,
	KindDifficultyRegression: true,
	KindObjectiveVerb:        true,
	KindObjectiveBrief:       true,
	KindObjectiveVerbose:     true,
	KindObjectiveTerminology: true,
	KindTerminology:          true,
	KindSectionBrief:         true,
	KindSectionLengthy:       true,
	KindMissingTopic:         true,
}

// ParseKind returns the kind named s, or an error for names no rule emits
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !knownKinds[k] {
		return "", fmt.Errorf("unknown diagnostic kind %q", s)
	}
	return k, nil
}

// Severity decides whether a diagnostic fails a run
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity converts "error" or "warning", ignoring case
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "critical":
		return SeverityError, nil
	case "warning", "warn", "advisory":
		return SeverityWarning, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// criticalKinds fail a run unless a plan overrides them
var criticalKinds = map[Kind]bool{
	KindInvalidVariable:      true,
	KindMissingColon:         true,
	KindUnbalancedParens:     true,
	KindPrerequisite:         true,
	KindDifficultyRegression: true,
	KindTerminology:          true,
	KindMissingTopic:         true,
}

// DefaultSeverity returns the severity a kind carries when nothing
// overrides it. Practices and educational value stay advisory.
func DefaultSeverity(k Kind) Severity {
	if criticalKinds[k] {
		return SeverityError
	}
	return SeverityWarning
}

// Diagnostic is one finding. Message keeps the exact wording callers
// match on.
type Diagnostic struct {
	Kind         Kind     `json:"kind" yaml:"kind"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Message      string   `json:"message" yaml:"message"`
	UnitID       string   `json:"unitId,omitempty" yaml:"unitId,omitempty"`
	SectionTitle string   `json:"sectionTitle,omitempty" yaml:"sectionTitle,omitempty"`
	ObjectiveID  string   `json:"objectiveId,omitempty" yaml:"objectiveId,omitempty"`
	Line         int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// NewDiagnostic builds a diagnostic with the default severity of its kind
func NewDiagnostic(kind Kind, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: DefaultSeverity(kind),
		Message:  fmt.Sprintf(format, args...),
	}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
}

// Diagnostics is an ordered list of findings
type Diagnostics []Diagnostic

// Messages returns the plain message strings in order
func (ds Diagnostics) Messages() []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Message)
	}
	return out
}

// Errors returns the error-severity diagnostics
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(SeverityError)
}

// Warnings returns the warning-severity diagnostics
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(SeverityWarning)
}

// HasErrors reports whether any diagnostic is an error
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountByKind tallies diagnostics per kind
func (ds Diagnostics) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range ds {
		counts[d.Kind]++
	}
	return counts
}

// Kinds returns the distinct kinds present, sorted
func (ds Diagnostics) Kinds() []Kind {
	counts := ds.CountByKind()
	kinds := make([]Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func (ds Diagnostics) filter(sev Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
