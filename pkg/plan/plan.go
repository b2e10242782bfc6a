// Package plan loads validation plans and runs their checks against a set
// of lessons.
package plan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rajesh-ms/learn-lego-programming/internal/checks"
	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/lessons"
	"github.com/rajesh-ms/learn-lego-programming/internal/report"
	"github.com/rajesh-ms/learn-lego-programming/internal/telemetry"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/internal/validator"
)

// DefaultName is the name of the built-in plan
const DefaultName = "lego-curriculum"

// DefaultConcurrency is how many steps run at once when Options leaves it unset
const DefaultConcurrency = 4

// Step represents a single check in a plan
type Step struct {
	Name       string                 `yaml:"name"`
	Check      string                 `yaml:"check"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// Plan represents a complete validation run definition
type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Lessons     string `yaml:"lessons,omitempty"`
	Rules       string `yaml:"rules,omitempty"`
	Output      string `yaml:"output,omitempty"`
	Format      string `yaml:"format,omitempty"`
	Steps       []Step `yaml:"steps"`

	// dir anchors relative paths; empty for plans not read from a file
	dir string
}

// Options control a single Execute call
type Options struct {
	// Lessons overrides the plan's lessons source
	Lessons *lessons.Store
	// Registry overrides the registry built from the plan's rules
	Registry *checks.Registry
	// Tracker receives run telemetry; nil sends nothing
	Tracker *telemetry.Tracker
	// Strict makes warnings fail the run
	Strict bool
	// Units replaces the units parameter of every step
	Units []int
	// Concurrency caps the number of steps running at once
	Concurrency int
}

// Default returns the plan running every built-in check over the bundled
// curriculum
func Default() *Plan {
	return &Plan{
		Name:        DefaultName,
		Description: "All built-in checks over the bundled LEGO curriculum",
		Steps: []Step{
			{Name: "Code syntax", Check: checks.Syntax},
			{Name: "LEGO API practices", Check: checks.Practices},
			{Name: "Educational value", Check: checks.Educational},
			{Name: "Unit progression", Check: checks.Progression},
			{Name: "Learning objectives", Check: checks.Objectives},
			{Name: "Content consistency", Check: checks.Consistency},
			{Name: "Topic coverage", Check: checks.Coverage},
		},
	}
}

// LoadFromFile loads a plan definition from a YAML file. Relative paths in
// the plan resolve against the file's directory.
func LoadFromFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.dir = filepath.Dir(path)
	return p, nil
}

// Parse decodes a plan and checks its structure
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}

	if err := p.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("invalid plan configuration: %w", err)
	}
	return &p, nil
}

// ValidateStructure checks the plan without looking at checks or files
func (p *Plan) ValidateStructure() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan name is required")
	}

	if len(p.Steps) == 0 {
		return fmt.Errorf("at least one check step is required")
	}

	for i, step := range p.Steps {
		if step.Check == "" {
			return fmt.Errorf("check name is required for step %d", i+1)
		}
	}

	if _, err := report.ParseFormat(p.Format); err != nil {
		return err
	}
	return nil
}

// ValidateBeforeRun performs a complete validation including files, checks
// and step parameters
func (p *Plan) ValidateBeforeRun(registry *checks.Registry) error {
	if err := p.ValidateStructure(); err != nil {
		return err
	}

	if p.Lessons != "" {
		if err := utils.ValidateInputFile("lessons", p.LessonsPath()); err != nil {
			return err
		}
	}
	if p.Rules != "" {
		if err := utils.ValidateInputFile("rules", p.RulesPath()); err != nil {
			return err
		}
	}
	if p.Output != "" {
		if err := utils.ValidateOutputPath(p.OutputPath()); err != nil {
			return err
		}
	}

	_, err := p.resolveSteps(registry, nil)
	return err
}

// LessonsPath is the lessons file with relative paths resolved, or empty
// for the bundled curriculum
func (p *Plan) LessonsPath() string { return p.resolve(p.Lessons) }

// RulesPath is the rules file with relative paths resolved, or empty for
// the default rules
func (p *Plan) RulesPath() string { return p.resolve(p.Rules) }

// OutputPath is the report directory with relative paths resolved
func (p *Plan) OutputPath() string { return p.resolve(p.Output) }

func (p *Plan) resolve(path string) string {
	if path == "" {
		return ""
	}
	if expanded, err := utils.ExpandHomeDir(path); err == nil {
		path = expanded
	}
	if !filepath.IsAbs(path) && p.dir != "" {
		path = filepath.Join(p.dir, path)
	}
	return path
}

// LoadLessons reads the plan's lessons, or the bundled curriculum
func (p *Plan) LoadLessons() (*lessons.Store, error) {
	if p.Lessons == "" {
		return lessons.Default()
	}
	return lessons.LoadFile(p.LessonsPath())
}

// LoadRules reads the plan's rules file over the defaults. Without one the
// bundled curriculum gets the rules it ships with and any other lessons
// file gets validator.DefaultRules.
func (p *Plan) LoadRules() (validator.Rules, error) {
	switch {
	case p.Rules != "":
		return validator.LoadRules(p.RulesPath())
	case p.Lessons == "":
		return lessons.DefaultRules()
	default:
		return validator.DefaultRules(), nil
	}
}

type resolvedStep struct {
	index  int
	name   string
	check  checks.Check
	params checks.Params
}

func (p *Plan) resolveSteps(registry *checks.Registry, units []int) ([]resolvedStep, error) {
	if registry == nil {
		return nil, fmt.Errorf("no check registry")
	}

	steps := make([]resolvedStep, 0, len(p.Steps))
	for i, step := range p.Steps {
		check, err := registry.Get(step.Check)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		params, err := checks.DecodeParams(step.Parameters)
		if err != nil {
			return nil, fmt.Errorf("invalid parameters for step %d (%s): %w", i+1, step.Check, err)
		}
		if len(units) > 0 {
			params.Units = units
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("Step %d", i+1)
		}
		steps = append(steps, resolvedStep{index: i, name: name, check: check, params: params})
	}
	return steps, nil
}

// Execute runs every step of the plan and returns the finished report. The
// error is non-nil only when the plan cannot start or ctx ends; failing
// checks are recorded in the report.
func (p *Plan) Execute(ctx context.Context, opts Options) (*report.Report, error) {
	if err := p.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}

	store := opts.Lessons
	if store == nil {
		loaded, err := p.LoadLessons()
		if err != nil {
			return nil, fmt.Errorf("failed to load lessons: %w", err)
		}
		store = loaded
	}

	registry := opts.Registry
	if registry == nil {
		rules, err := p.LoadRules()
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		registry = checks.NewDefaultRegistry(rules)
	}

	tracker := opts.Tracker
	if tracker == nil {
		tracker = telemetry.NewTracker(nil)
	}

	steps, err := p.resolveSteps(registry, opts.Units)
	if err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}

	utils.LogInfo("Starting plan: %s", p.Name)
	utils.LogDebug("Lessons loaded from %s (%d units)", store.Source(), store.Len())

	r := report.New(p.Name, store.Source(), len(steps))
	r.Start()

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, s := range steps {
		g.Go(func() error {
			return runStep(ctx, r, store, s, tracker)
		})
	}
	runErr := g.Wait()

	trackFindings(tracker, store, r, opts.Units)

	status := r.Finish(opts.Strict)
	tracker.TrackValidationRun(r)

	if runErr != nil {
		utils.LogError("Plan interrupted: %s", p.Name)
		return r, fmt.Errorf("plan %s interrupted: %w", p.Name, runErr)
	}

	summary := r.Summary()
	if status == report.StatusPassed {
		utils.LogSuccess("Plan passed: %s (%d warnings)", p.Name, summary.Warnings)
	} else {
		utils.LogWarning("Plan failed: %s (%d errors, %d warnings)", p.Name, summary.Errors, summary.Warnings)
	}
	return r, nil
}

// runStep records the outcome of one step. It returns an error only when
// ctx ended, so one failing check does not stop the others.
func runStep(ctx context.Context, r *report.Report, store *lessons.Store, s resolvedStep, tracker *telemetry.Tracker) error {
	r.AddEvent(report.Event{
		Step:    s.name,
		Type:    report.EventStepStarted,
		Message: fmt.Sprintf("running check %s", s.check.Name()),
	})
	utils.LogVerbose("Executing %s (check: %s)", s.name, s.check.Name())

	start := time.Now()
	ds, err := s.check.Run(ctx, checks.Input{Lessons: store, Params: s.params})
	r.SetStep(s.index, report.StepResult{
		Name:        s.name,
		Check:       s.check.Name(),
		Diagnostics: ds,
		Duration:    time.Since(start),
		Err:         err,
	})

	if err != nil {
		utils.LogError("Failed to execute step %s: %v", s.name, err)
		r.AddEvent(report.Event{Step: s.name, Type: report.EventStepFailed, Message: err.Error()})
		tracker.TrackStepFailed(s.name, s.check.Name(), err)
		return ctx.Err()
	}

	nErrors, nWarnings := len(ds.Errors()), len(ds.Warnings())
	r.AddEvent(report.Event{
		Step:    s.name,
		Type:    report.EventStepCompleted,
		Message: fmt.Sprintf("%d errors, %d warnings", nErrors, nWarnings),
		Data:    map[string]interface{}{"errors": nErrors, "warnings": nWarnings},
	})
	utils.LogSuccess("Completed %s", s.name)
	return nil
}

var codeChecks = map[string]bool{
	checks.Syntax:      true,
	checks.Practices:   true,
	checks.Educational: true,
}

// trackFindings sends one event per validated unit and, when a code check
// ran, one per code example
func trackFindings(tracker *telemetry.Tracker, store *lessons.Store, r *report.Report, units []int) {
	scope, err := store.Filter(units)
	if err != nil {
		scope = store
	}

	r.RLock()
	var all, code content.Diagnostics
	codeChecked := false
	for _, step := range r.Steps {
		all = append(all, step.Diagnostics...)
		if codeChecks[step.Check] {
			codeChecked = true
			code = append(code, step.Diagnostics...)
		}
	}
	r.RUnlock()

	for _, u := range scope.Units() {
		var nErrors, nWarnings int
		for _, d := range all {
			if d.UnitID != u.Key() {
				continue
			}
			if d.Severity == content.SeverityError {
				nErrors++
			} else {
				nWarnings++
			}
		}
		tracker.TrackUnitValidated(u.Key(), u.Title, nErrors, nWarnings)
	}

	if !codeChecked {
		return
	}
	for _, ex := range scope.CodeExamples() {
		n := 0
		for _, d := range code {
			if d.UnitID == ex.UnitID && d.SectionTitle == ex.SectionTitle {
				n++
			}
		}
		tracker.TrackCodeExampleChecked(ex.Code, ex.UnitID, n)
	}
}
