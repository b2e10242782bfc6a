package validator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TerminologyPair names two words that should not be mixed in one section
type TerminologyPair struct {
	Preferred string `yaml:"preferred"`
	Avoid     string `yaml:"avoid"`
}

// Rules holds the allow-lists and thresholds of both validators
type Rules struct {
	APIMethods           []string          `yaml:"apiMethods"`
	APIPrefixes          []string          `yaml:"apiPrefixes"`
	MeasurableVerbs      []string          `yaml:"measurableVerbs"`
	DomainTerms          []string          `yaml:"domainTerms"`
	ComplexityIndicators []string          `yaml:"complexityIndicators"`
	TerminologyPairs     []TerminologyPair `yaml:"terminologyPairs"`

	IndentWidth            int `yaml:"indentWidth"`
	MagicNumberDigits      int `yaml:"magicNumberDigits"`
	ErrorHandlingMinLength int `yaml:"errorHandlingMinLength"`
	CommentMinLines        int `yaml:"commentMinLines"`
	FunctionMinLength      int `yaml:"functionMinLength"`
	ObjectiveMinLength     int `yaml:"objectiveMinLength"`
	ObjectiveMaxLength     int `yaml:"objectiveMaxLength"`
	SectionMinLength       int `yaml:"sectionMinLength"`
	SectionMaxLength       int `yaml:"sectionMaxLength"`

	// Unit-level gates for educational value
	ClassMaxUnit      int `yaml:"classMaxUnit"`
	FunctionMinUnit   int `yaml:"functionMinUnit"`
	ComplexityMaxUnit int `yaml:"complexityMaxUnit"`
	MaxComplexity     int `yaml:"maxComplexity"`

	// AllowAugmentedAssignment accepts "x += 1" and skips "<=" and ">="
	// lines in the variable name check. Off, only "==" and "!=" lines are
	// skipped and everything left of the first "=" must be a name.
	AllowAugmentedAssignment bool `yaml:"allowAugmentedAssignment"`
}

// rulesFile is the on-disk shape. Absent fields keep the defaults, so
// numbers are pointers to tell an explicit 0 from a missing key. extra*
// lists append to the defaults.
type rulesFile struct {
	APIMethods           []string          `yaml:"apiMethods"`
	APIPrefixes          []string          `yaml:"apiPrefixes"`
	MeasurableVerbs      []string          `yaml:"measurableVerbs"`
	DomainTerms          []string          `yaml:"domainTerms"`
	ComplexityIndicators []string          `yaml:"complexityIndicators"`
	TerminologyPairs     []TerminologyPair `yaml:"terminologyPairs"`

	IndentWidth            *int `yaml:"indentWidth"`
	MagicNumberDigits      *int `yaml:"magicNumberDigits"`
	ErrorHandlingMinLength *int `yaml:"errorHandlingMinLength"`
	CommentMinLines        *int `yaml:"commentMinLines"`
	FunctionMinLength      *int `yaml:"functionMinLength"`
	ObjectiveMinLength     *int `yaml:"objectiveMinLength"`
	ObjectiveMaxLength     *int `yaml:"objectiveMaxLength"`
	SectionMinLength       *int `yaml:"sectionMinLength"`
	SectionMaxLength       *int `yaml:"sectionMaxLength"`
	ClassMaxUnit           *int `yaml:"classMaxUnit"`
	FunctionMinUnit        *int `yaml:"functionMinUnit"`
	ComplexityMaxUnit      *int `yaml:"complexityMaxUnit"`
	MaxComplexity          *int `yaml:"maxComplexity"`

	AllowAugmentedAssignment *bool `yaml:"allowAugmentedAssignment"`

	ExtraAPIMethods      []string `yaml:"extraApiMethods"`
	ExtraMeasurableVerbs []string `yaml:"extraMeasurableVerbs"`
	ExtraDomainTerms     []string `yaml:"extraDomainTerms"`
}

// DefaultRules returns the rules for the bundled LEGO curriculum
func DefaultRules() Rules {
	return Rules{
		APIMethods: []string{
			"motor.run_angle", "motor.run_time", "motor.run_to_position", "motor.stop",
			"sensor.distance", "sensor.color", "sensor.force", "sensor.reflection",
			"hub.light.on", "hub.light.off", "hub.speaker.beep", "wait",
		},
		APIPrefixes: []string{"motor.", "sensor.", "hub."},
		MeasurableVerbs: []string{
			"identify", "explain", "demonstrate", "create", "implement", "analyze",
			"design", "build", "program", "debug", "test", "modify", "compare",
		},
		DomainTerms:          []string{"motor", "sensor", "hub", "robot", "programming", "python"},
		ComplexityIndicators: []string{"for ", "while ", "if ", "def ", "class "},
		TerminologyPairs: []TerminologyPair{
			{Preferred: "motor", Avoid: "engine"},
			{Preferred: "sensor", Avoid: "detector"},
		},

		IndentWidth:            4,
		MagicNumberDigits:      3,
		ErrorHandlingMinLength: 200,
		CommentMinLines:        5,
		FunctionMinLength:      100,
		ObjectiveMinLength:     20,
		ObjectiveMaxLength:     150,
		SectionMinLength:       100,
		SectionMaxLength:       2000,

		ClassMaxUnit:      2,
		FunctionMinUnit:   5,
		ComplexityMaxUnit: 3,
		MaxComplexity:     2,
	}
}

// LoadRules reads a YAML rules file and overlays it on DefaultRules.
// Lists given in the file replace the defaults, as does every number or
// flag that is present, zero included.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules overlays YAML rules on DefaultRules
func ParseRules(data []byte) (Rules, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	rules := file.apply(DefaultRules())
	rules.APIMethods = append(rules.APIMethods, file.ExtraAPIMethods...)
	rules.MeasurableVerbs = append(rules.MeasurableVerbs, file.ExtraMeasurableVerbs...)
	rules.DomainTerms = append(rules.DomainTerms, file.ExtraDomainTerms...)

	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate rejects thresholds the checks cannot work with
func (r Rules) Validate() error {
	if r.IndentWidth <= 0 {
		return fmt.Errorf("indentWidth must be positive, got %d", r.IndentWidth)
	}
	if r.MagicNumberDigits <= 0 {
		return fmt.Errorf("magicNumberDigits must be positive, got %d", r.MagicNumberDigits)
	}
	if r.ObjectiveMinLength > r.ObjectiveMaxLength {
		return fmt.Errorf("objectiveMinLength %d exceeds objectiveMaxLength %d", r.ObjectiveMinLength, r.ObjectiveMaxLength)
	}
	if r.SectionMinLength > r.SectionMaxLength {
		return fmt.Errorf("sectionMinLength %d exceeds sectionMaxLength %d", r.SectionMinLength, r.SectionMaxLength)
	}
	for i, p := range r.TerminologyPairs {
		if p.Preferred == "" || p.Avoid == "" {
			return fmt.Errorf("terminology pair %d needs both preferred and avoid", i+1)
		}
	}
	return nil
}

func (f rulesFile) apply(r Rules) Rules {
	lists := []struct {
		dst *[]string
		src []string
	}{
		{&r.APIMethods, f.APIMethods},
		{&r.APIPrefixes, f.APIPrefixes},
		{&r.MeasurableVerbs, f.MeasurableVerbs},
		{&r.DomainTerms, f.DomainTerms},
		{&r.ComplexityIndicators, f.ComplexityIndicators},
	}
	for _, l := range lists {
		if l.src != nil {
			*l.dst = l.src
		}
	}
	if f.TerminologyPairs != nil {
		r.TerminologyPairs = f.TerminologyPairs
	}

	ints := []struct {
		dst *int
		src *int
	}{
		{&r.IndentWidth, f.IndentWidth},
		{&r.MagicNumberDigits, f.MagicNumberDigits},
		{&r.ErrorHandlingMinLength, f.ErrorHandlingMinLength},
		{&r.CommentMinLines, f.CommentMinLines},
		{&r.FunctionMinLength, f.FunctionMinLength},
		{&r.ObjectiveMinLength, f.ObjectiveMinLength},
		{&r.ObjectiveMaxLength, f.ObjectiveMaxLength},
		{&r.SectionMinLength, f.SectionMinLength},
		{&r.SectionMaxLength, f.SectionMaxLength},
		{&r.ClassMaxUnit, f.ClassMaxUnit},
		{&r.FunctionMinUnit, f.FunctionMinUnit},
		{&r.ComplexityMaxUnit, f.ComplexityMaxUnit},
		{&r.MaxComplexity, f.MaxComplexity},
	}
	for _, n := range ints {
		if n.src != nil {
			*n.dst = *n.src
		}
	}

	if f.AllowAugmentedAssignment != nil {
		r.AllowAugmentedAssignment = *f.AllowAugmentedAssignment
	}
	return r
}
