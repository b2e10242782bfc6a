// Package validator implements the heuristic content checks for lesson
// code examples and curriculum structure. It is a shallow linter over
// snippet text, not a Python parser.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// augmentedOperators are stripped from the left side of "x += 1" style
// assignments when AllowAugmentedAssignment is set, longest first
var augmentedOperators = []string{"**", "//", ">>", "<<", "+", "-", "*", "/", "%", "&", "|", "^", "@", ":"}

// comparisonOperators mark a line whose "=" is not an assignment
var comparisonOperators = []string{"==", "!="}

// orderingOperators are also skipped when AllowAugmentedAssignment is set
var orderingOperators = []string{"<=", ">="}

// CodeValidator inspects one code example at a time. It holds no mutable
// state and is safe for concurrent use.
type CodeValidator struct {
	rules       Rules
	magicNumber *regexp.Regexp
}

// NewCodeValidator creates a validator using the given rules as they are.
// Start from DefaultRules to change a single threshold.
func NewCodeValidator(rules Rules) *CodeValidator {
	if rules.IndentWidth <= 0 {
		rules.IndentWidth = DefaultRules().IndentWidth
	}
	if rules.MagicNumberDigits <= 0 {
		rules.MagicNumberDigits = DefaultRules().MagicNumberDigits
	}
	return &CodeValidator{
		rules:       rules,
		magicNumber: regexp.MustCompile(fmt.Sprintf(`\b\d{%d,}\b`, rules.MagicNumberDigits)),
	}
}

// ValidateSyntax returns syntax-shape diagnostics for the example
func (v *CodeValidator) ValidateSyntax(ex content.CodeExample) []string {
	return v.syntax(ex).Messages()
}

// ValidatePractices returns LEGO API best-practice diagnostics
func (v *CodeValidator) ValidatePractices(ex content.CodeExample) []string {
	return v.practices(ex).Messages()
}

// ValidateEducationalValue returns diagnostics about comments and
// complexity relative to the example's unit
func (v *CodeValidator) ValidateEducationalValue(ex content.CodeExample) []string {
	return v.educationalValue(ex).Messages()
}

// CheckSyntax is ValidateSyntax with structured diagnostics. It returns a
// *content.ContentValidationError when the example has no usable unit id.
func (v *CodeValidator) CheckSyntax(ex content.CodeExample) (content.Diagnostics, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	return v.syntax(ex), nil
}

// CheckPractices is ValidatePractices with structured diagnostics
func (v *CodeValidator) CheckPractices(ex content.CodeExample) (content.Diagnostics, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	return v.practices(ex), nil
}

// CheckEducationalValue is ValidateEducationalValue with structured
// diagnostics
func (v *CodeValidator) CheckEducationalValue(ex content.CodeExample) (content.Diagnostics, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	return v.educationalValue(ex), nil
}

// syntax walks the snippet line by line. Parenthesis balance is checked
// per line, so calls spanning several lines are reported as unbalanced.
func (v *CodeValidator) syntax(ex content.CodeExample) content.Diagnostics {
	var ds content.Diagnostics

	for i, raw := range strings.Split(ex.Code, "\n") {
		line := strings.TrimSpace(raw)
		n := i + 1

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		if indent%v.rules.IndentWidth != 0 {
			ds = append(ds, at(ex, n, content.KindIndentation,
				"Line %d: Inconsistent indentation (should be multiples of %d spaces)", n, v.rules.IndentWidth))
		}

		if lhs, ok := v.assignmentTarget(line); ok {
			name := lhs
			if v.rules.AllowAugmentedAssignment {
				name = trimAugmented(lhs)
			}
			if !identifierPattern.MatchString(name) && !strings.Contains(name, ".") {
				ds = append(ds, at(ex, n, content.KindInvalidVariable, "Line %d: Invalid variable name '%s'", n, lhs))
			}
		}

		if strings.HasPrefix(line, "def ") && !strings.HasSuffix(line, ":") {
			ds = append(ds, at(ex, n, content.KindMissingColon, "Line %d: Function definition missing colon", n))
		}
		if strings.HasPrefix(line, "class ") && !strings.HasSuffix(line, ":") {
			ds = append(ds, at(ex, n, content.KindMissingColon, "Line %d: Class definition missing colon", n))
		}

		if containsAny(line, v.rules.APIPrefixes) && !strings.Contains(line, "=") && !containsAny(line, v.rules.APIMethods) {
			ds = append(ds, at(ex, n, content.KindInvalidAPICall, "Line %d: Potentially invalid LEGO API call", n))
		}

		if strings.Count(line, "(") != strings.Count(line, ")") {
			ds = append(ds, at(ex, n, content.KindUnbalancedParens, "Line %d: Unbalanced parentheses", n))
		}
	}

	return ds
}

func (v *CodeValidator) practices(ex content.CodeExample) content.Diagnostics {
	var ds content.Diagnostics
	code := ex.Code

	if strings.Contains(code, "motor.run_angle") && !strings.Contains(code, "speed") {
		ds = append(ds, at(ex, 0, content.KindMotorSpeed, "Motor commands should specify speed parameter"))
	}

	if strings.Contains(code, "sensor.distance()") && !strings.Contains(code, "if") && !strings.Contains(code, "while") {
		ds = append(ds, at(ex, 0, content.KindSensorGuard, "Sensor readings should include conditional logic or validation"))
	}

	if strings.Contains(code, "motor.run_") && !strings.Contains(code, "wait(") {
		ds = append(ds, at(ex, 0, content.KindMotorWait, "Motor operations should include appropriate wait statements"))
	}

	if v.magicNumber.MatchString(code) {
		ds = append(ds, at(ex, 0, content.KindMagicNumber, "Consider using named constants instead of magic numbers"))
	}

	if utf8.RuneCountInString(code) > v.rules.ErrorHandlingMinLength &&
		!strings.Contains(code, "try") && !strings.Contains(code, "except") {
		ds = append(ds, at(ex, 0, content.KindErrorHandling, "Complex code examples should include error handling"))
	}

	return ds
}

func (v *CodeValidator) educationalValue(ex content.CodeExample) content.Diagnostics {
	var ds content.Diagnostics
	code := ex.Code

	commentLines, totalLines := 0, 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			totalLines++
		}
		if strings.Contains(line, "#") {
			commentLines++
		}
	}
	if totalLines > v.rules.CommentMinLines && commentLines == 0 {
		ds = append(ds, at(ex, 0, content.KindMissingComments, "Code examples should include explanatory comments"))
	}

	unit, ok := content.UnitNumber(ex.UnitID)
	if !ok {
		return ds
	}

	if unit <= v.rules.ClassMaxUnit && strings.Contains(code, "class ") {
		ds = append(ds, at(ex, 0, content.KindAdvancedConcept, "Early units should focus on basic concepts before introducing classes"))
	}

	if unit >= v.rules.FunctionMinUnit && !strings.Contains(code, "def ") && utf8.RuneCountInString(code) > v.rules.FunctionMinLength {
		ds = append(ds, at(ex, 0, content.KindMissingFunction, "Advanced units should demonstrate function usage"))
	}

	complexity := 0
	for _, indicator := range v.rules.ComplexityIndicators {
		if strings.Contains(code, indicator) {
			complexity++
		}
	}
	if unit <= v.rules.ComplexityMaxUnit && complexity > v.rules.MaxComplexity {
		ds = append(ds, at(ex, 0, content.KindComplexity, "Code complexity may be too high for this unit level"))
	}

	return ds
}

// assignmentTarget returns the text left of the first "=" when the line
// looks like an assignment rather than a comparison
func (v *CodeValidator) assignmentTarget(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx < 0 || containsAny(line, comparisonOperators) {
		return "", false
	}
	if v.rules.AllowAugmentedAssignment && containsAny(line, orderingOperators) {
		return "", false
	}
	return strings.TrimSpace(line[:idx]), true
}

func trimAugmented(lhs string) string {
	for _, op := range augmentedOperators {
		if strings.HasSuffix(lhs, op) {
			return strings.TrimSpace(strings.TrimSuffix(lhs, op))
		}
	}
	return lhs
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func at(ex content.CodeExample, line int, kind content.Kind, format string, args ...interface{}) content.Diagnostic {
	d := content.NewDiagnostic(kind, format, args...)
	d.UnitID = ex.UnitID
	d.SectionTitle = ex.SectionTitle
	d.Line = line
	return d
}
