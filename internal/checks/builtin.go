package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/lessons"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/internal/validator"
)

// Built-in check names
const (
	Syntax      = "syntax"
	Practices   = "practices"
	Educational = "educational"
	Progression = "progression"
	Objectives  = "objectives"
	Consistency = "consistency"
	Coverage    = "coverage"
)

type runFunc func(ctx context.Context, store *lessons.Store) (content.Diagnostics, error)

// builtin adapts one validator operation to the Check interface
type builtin struct {
	name        string
	description string
	run         runFunc

	// crossUnit checks need every unit to judge one, so the units filter
	// applies to their findings instead of their input
	crossUnit bool
}

func (b *builtin) Name() string        { return b.name }
func (b *builtin) Description() string { return b.description }

func (b *builtin) Run(ctx context.Context, in Input) (content.Diagnostics, error) {
	if in.Lessons == nil {
		return nil, fmt.Errorf("check %s: no lessons loaded", b.name)
	}

	store := in.Lessons
	if !b.crossUnit {
		filtered, err := store.Filter(in.Params.Units)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", b.name, err)
		}
		store = filtered
	}

	ds, err := b.run(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", b.name, err)
	}
	if b.crossUnit {
		ds = onlyUnits(ds, in.Params.Units)
	}

	utils.LogDebug("Check %s produced %d diagnostics", b.name, len(ds))
	return in.Params.Apply(ds), nil
}

// NewDefaultRegistry registers every built-in check, configured with rules
func NewDefaultRegistry(rules validator.Rules) *Registry {
	code := validator.NewCodeValidator(rules)
	curriculum := validator.NewCurriculumValidator(rules)

	r := NewRegistry()
	for _, c := range []*builtin{
		{
			name:        Syntax,
			description: "Syntax shape of every code example",
			run:         perExample(code.CheckSyntax),
		},
		{
			name:        Practices,
			description: "LEGO API best practices in code examples",
			run:         perExample(code.CheckPractices),
		},
		{
			name:        Educational,
			description: "Comments and complexity of code examples for their unit",
			run:         perExample(code.CheckEducationalValue),
		},
		{
			name:        Progression,
			description: "Prerequisites and difficulty across units",
			crossUnit:   true,
			run: func(ctx context.Context, store *lessons.Store) (content.Diagnostics, error) {
				return curriculum.CheckProgression(store.UnitValidations())
			},
		},
		{
			name:        Objectives,
			description: "Wording and length of learning objectives",
			run: func(ctx context.Context, store *lessons.Store) (content.Diagnostics, error) {
				return curriculum.CheckObjectives(store.Objectives())
			},
		},
		{
			name:        Consistency,
			description: "Terminology and length of content sections",
			run: func(ctx context.Context, store *lessons.Store) (content.Diagnostics, error) {
				return curriculum.CheckConsistency(store.Sections())
			},
		},
		{
			name:        Coverage,
			description: "Required topics mentioned in each unit",
			run:         coverage,
		},
	} {
		r.checks[c.name] = c
	}
	return r
}

func perExample(fn func(content.CodeExample) (content.Diagnostics, error)) runFunc {
	return func(ctx context.Context, store *lessons.Store) (content.Diagnostics, error) {
		var all content.Diagnostics
		for _, ex := range store.CodeExamples() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			ds, err := fn(ex)
			if err != nil {
				return nil, err
			}
			all = append(all, ds...)
		}
		return all, nil
	}
}

// coverage checks that each unit mentions its declared topics. A topic
// lists alternatives separated by "|".
func coverage(ctx context.Context, store *lessons.Store) (content.Diagnostics, error) {
	var ds content.Diagnostics
	for _, u := range store.Units() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := u.Text()
		for _, topic := range u.Topics {
			if !mentionsAny(text, strings.Split(topic, "|")) {
				d := content.NewDiagnostic(content.KindMissingTopic, "Unit %s: Topic '%s' not mentioned in unit content", u.Key(), topic)
				d.UnitID = u.Key()
				ds = append(ds, d)
			}
		}
	}
	return ds, nil
}

func mentionsAny(text string, alternatives []string) bool {
	for _, alt := range alternatives {
		alt = strings.ToLower(strings.TrimSpace(alt))
		if alt != "" && strings.Contains(text, alt) {
			return true
		}
	}
	return false
}

func onlyUnits(ds content.Diagnostics, units []int) content.Diagnostics {
	if len(units) == 0 {
		return ds
	}
	keep := make(map[int]bool, len(units))
	for _, id := range units {
		keep[id] = true
	}

	var out content.Diagnostics
	for _, d := range ds {
		if n, ok := content.UnitNumber(d.UnitID); ok && keep[n] {
			out = append(out, d)
		}
	}
	return out
}
