// Package lessons holds the curriculum data and turns it into the records
// the validators consume.
package lessons

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/validator"
)

// MaxUnits is the number of units in the curriculum
const MaxUnits = 6

// DefaultLanguage is the language tag given to every bundled code example
const DefaultLanguage = "python"

//go:embed data/units.yaml
var defaultUnits []byte

//go:embed data/rules.yaml
var defaultRules []byte

// Section is one prose block of a unit
type Section struct {
	Title       string `yaml:"title"`
	Content     string `yaml:"content"`
	CodeExample string `yaml:"codeExample,omitempty"`
}

// Unit is the lesson content of one unit
type Unit struct {
	ID            int                `yaml:"id"`
	Title         string             `yaml:"title"`
	Description   string             `yaml:"description"`
	Icon          string             `yaml:"icon"`
	Duration      string             `yaml:"duration"`
	Difficulty    content.Difficulty `yaml:"difficulty"`
	Prerequisites []string           `yaml:"prerequisites"`
	Introduction  string             `yaml:"introduction"`
	Objectives    []string           `yaml:"objectives"`
	Sections      []Section          `yaml:"sections"`

	// Topics are keyword alternatives ("loop|for|while") the unit text
	// must mention
	Topics []string `yaml:"topics,omitempty"`
}

// Key is the unit id as used in validation records
func (u Unit) Key() string {
	return strconv.Itoa(u.ID)
}

// Text joins the introduction, section content and objectives, lowercased
func (u Unit) Text() string {
	parts := []string{u.Introduction}
	for _, s := range u.Sections {
		parts = append(parts, s.Content)
	}
	parts = append(parts, u.Objectives...)
	return strings.ToLower(strings.Join(parts, " "))
}

type document struct {
	Units []Unit `yaml:"units"`
}

// Store is an immutable, in-memory set of units keyed by id
type Store struct {
	source string
	units  map[int]Unit
}

// Default returns the bundled curriculum
func Default() (*Store, error) {
	return parse(defaultUnits, "embedded")
}

// DefaultRules returns the validator rules the bundled curriculum is
// written against
func DefaultRules() (validator.Rules, error) {
	return validator.ParseRules(defaultRules)
}

// LoadFile reads a lessons YAML file
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lessons file: %w", err)
	}
	return parse(data, path)
}

// Load parses lessons YAML from r
func Load(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lessons: %w", err)
	}
	return parse(data, "reader")
}

// New builds a store from units already in memory
func New(units []Unit) (*Store, error) {
	return newStore(units, "memory")
}

func parse(data []byte, source string) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse lessons YAML: %w", err)
	}
	return newStore(doc.Units, source)
}

func newStore(units []Unit, source string) (*Store, error) {
	if len(units) == 0 {
		return nil, &content.ContentValidationError{Message: "no units defined in " + source}
	}

	s := &Store{source: source, units: make(map[int]Unit, len(units))}
	for _, u := range units {
		if err := validateUnit(u); err != nil {
			return nil, err
		}
		if _, exists := s.units[u.ID]; exists {
			return nil, &content.ContentValidationError{Message: "duplicate unit id", UnitID: u.Key()}
		}
		s.units[u.ID] = u
	}
	return s, nil
}

func validateUnit(u Unit) error {
	if u.ID < 1 || u.ID > MaxUnits {
		return &content.ContentValidationError{
			Message: fmt.Sprintf("unit id must be between 1 and %d", MaxUnits),
			UnitID:  u.Key(),
		}
	}
	if strings.TrimSpace(u.Title) == "" {
		return &content.ContentValidationError{Message: "unit title is required", UnitID: u.Key()}
	}
	if u.Difficulty.Rank() == 0 {
		return &content.ContentValidationError{
			Message: "unknown difficulty " + strconv.Quote(string(u.Difficulty)),
			UnitID:  u.Key(),
		}
	}
	for i, sec := range u.Sections {
		if strings.TrimSpace(sec.Title) == "" {
			return &content.ContentValidationError{
				Message: fmt.Sprintf("section %d has no title", i+1),
				UnitID:  u.Key(),
			}
		}
	}
	return nil
}

// Source names where the store was loaded from
func (s *Store) Source() string {
	return s.source
}

// Len returns the number of units
func (s *Store) Len() int {
	return len(s.units)
}

// Unit returns the unit with the given id
func (s *Store) Unit(id int) (Unit, bool) {
	u, ok := s.units[id]
	return u, ok
}

// Units returns all units ordered by id
func (s *Store) Units() []Unit {
	units := make([]Unit, 0, len(s.units))
	for _, u := range s.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

// Filter returns a store holding only the given unit ids. An empty list
// returns the store itself.
func (s *Store) Filter(ids []int) (*Store, error) {
	if len(ids) == 0 {
		return s, nil
	}
	filtered := &Store{source: s.source, units: make(map[int]Unit, len(ids))}
	for _, id := range ids {
		u, ok := s.units[id]
		if !ok {
			return nil, fmt.Errorf("unit %d not found in %s", id, s.source)
		}
		filtered.units[id] = u
	}
	return filtered, nil
}

// CodeExamples returns one record per section that carries a code example
func (s *Store) CodeExamples() []content.CodeExample {
	var examples []content.CodeExample
	for _, u := range s.Units() {
		for _, sec := range u.Sections {
			if ex, ok := codeExample(u, sec); ok {
				examples = append(examples, ex)
			}
		}
	}
	return examples
}

// Sections returns every section of every unit
func (s *Store) Sections() []content.ContentSection {
	var sections []content.ContentSection
	for _, u := range s.Units() {
		sections = append(sections, unitSections(u)...)
	}
	return sections
}

// Objectives returns every objective of every unit
func (s *Store) Objectives() []content.LearningObjective {
	var objectives []content.LearningObjective
	for _, u := range s.Units() {
		objectives = append(objectives, unitObjectives(u)...)
	}
	return objectives
}

// UnitValidations returns the aggregate record of every unit
func (s *Store) UnitValidations() []content.UnitValidation {
	units := s.Units()
	validations := make([]content.UnitValidation, 0, len(units))
	for _, u := range units {
		validations = append(validations, content.UnitValidation{
			UnitID:        u.Key(),
			Title:         u.Title,
			Sections:      unitSections(u),
			Objectives:    unitObjectives(u),
			Prerequisites: u.Prerequisites,
			Difficulty:    u.Difficulty,
		})
	}
	return validations
}

func codeExample(u Unit, sec Section) (content.CodeExample, bool) {
	if strings.TrimSpace(sec.CodeExample) == "" {
		return content.CodeExample{}, false
	}
	return content.CodeExample{
		Code:          sec.CodeExample,
		Language:      DefaultLanguage,
		UnitID:        u.Key(),
		SectionTitle:  sec.Title,
		ShouldCompile: true,
	}, true
}

func unitSections(u Unit) []content.ContentSection {
	sections := make([]content.ContentSection, 0, len(u.Sections))
	for _, sec := range u.Sections {
		cs := content.ContentSection{
			Title:      sec.Title,
			Content:    sec.Content,
			UnitID:     u.Key(),
			Objectives: u.Objectives,
		}
		if ex, ok := codeExample(u, sec); ok {
			cs.CodeExamples = []content.CodeExample{ex}
		}
		sections = append(sections, cs)
	}
	return sections
}

func unitObjectives(u Unit) []content.LearningObjective {
	objectives := make([]content.LearningObjective, 0, len(u.Objectives))
	for i, desc := range u.Objectives {
		objectives = append(objectives, content.LearningObjective{
			ID:          fmt.Sprintf("%d-obj-%d", u.ID, i),
			Description: desc,
			UnitID:      u.Key(),
			Measurable:  true,
			Achievable:  true,
		})
	}
	return objectives
}
