// Package config turns command-line flags and environment variables into
// a validated run configuration
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rajesh-ms/learn-lego-programming/internal/lessons"
	"github.com/rajesh-ms/learn-lego-programming/internal/report"
	"github.com/rajesh-ms/learn-lego-programming/internal/telemetry"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/pkg/plan"
)

// Environment variables read by the CLI
const (
	EnvTelemetry   = "LESSONLINT_TELEMETRY"
	EnvAppInsights = "APPLICATIONINSIGHTS_CONNECTION_STRING"
	EnvEnvironment = "LESSONLINT_ENV"
)

// Flags are the raw values given on the command line
type Flags struct {
	PlanPath    string
	LessonsPath string
	RulesPath   string
	OutputPath  string
	Format      string
	Units       string
	Strict      bool
	Watch       bool
}

// CheckConfig holds the validated configuration for a check run
type CheckConfig struct {
	PlanPath    string
	LessonsPath string
	RulesPath   string
	OutputPath  string
	Format      string
	Units       []int
	Strict      bool
	Watch       bool
}

// NewCheckConfig validates flags and creates a check configuration
func NewCheckConfig(f Flags) (*CheckConfig, error) {
	c := &CheckConfig{
		PlanPath:    f.PlanPath,
		LessonsPath: f.LessonsPath,
		RulesPath:   f.RulesPath,
		OutputPath:  f.OutputPath,
		Format:      f.Format,
		Strict:      f.Strict,
		Watch:       f.Watch,
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	units, err := ParseUnits(f.Units)
	if err != nil {
		return nil, err
	}
	c.Units = units

	return c, nil
}

// validate checks every path that was given and the report format
func (c *CheckConfig) validate() error {
	for _, file := range []struct {
		field string
		path  *string
	}{
		{"plan", &c.PlanPath},
		{"lessons", &c.LessonsPath},
		{"rules", &c.RulesPath},
	} {
		if *file.path == "" {
			continue
		}
		expanded, err := utils.ExpandHomeDir(*file.path)
		if err != nil {
			return err
		}
		*file.path = expanded
		if err := utils.ValidateInputFile(file.field, expanded); err != nil {
			return err
		}
		if err := utils.ValidateFileExtension(expanded, utils.YAMLExtensions); err != nil {
			return &utils.ValidationError{Field: file.field, Message: "must be a YAML file", Err: err}
		}
	}

	if c.OutputPath != "" {
		expanded, err := utils.ExpandHomeDir(c.OutputPath)
		if err != nil {
			return err
		}
		c.OutputPath = expanded
		if err := utils.ValidateOutputPath(c.OutputPath); err != nil {
			return err
		}
	}

	if c.Watch && c.PlanPath == "" && c.LessonsPath == "" && c.RulesPath == "" {
		return fmt.Errorf("--watch needs a plan, lessons or rules file to watch")
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return &utils.ValidationError{Field: "format", Message: "unsupported report format", Err: err}
	}
	return nil
}

// LoadPlan loads the configured plan, or the default plan, and applies the
// flag overrides to it
func (c *CheckConfig) LoadPlan() (*plan.Plan, error) {
	p := plan.Default()
	if c.PlanPath != "" {
		loaded, err := plan.LoadFromFile(c.PlanPath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}

	if c.LessonsPath != "" {
		p.Lessons = c.LessonsPath
	}
	if c.RulesPath != "" {
		p.Rules = c.RulesPath
	}
	if c.OutputPath != "" {
		p.Output = c.OutputPath
	}
	if c.Format != "" {
		p.Format = c.Format
	}
	return p, nil
}

// WatchPaths lists the files whose changes should re-run the plan
func (c *CheckConfig) WatchPaths(p *plan.Plan) []string {
	var paths []string
	if c.PlanPath != "" {
		paths = append(paths, c.PlanPath)
	}
	if path := p.LessonsPath(); path != "" {
		paths = append(paths, path)
	}
	if path := p.RulesPath(); path != "" {
		paths = append(paths, path)
	}
	return paths
}

// ParseUnits parses a comma separated list of unit ids. The result is
// sorted and free of duplicates; an empty list means every unit.
func ParseUnits(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var units []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, &utils.ValidationError{Field: "units", Message: fmt.Sprintf("%q is not a unit number", part), Err: err}
		}
		if id < 1 || id > lessons.MaxUnits {
			return nil, &utils.ValidationError{Field: "units", Message: fmt.Sprintf("unit %d is outside 1..%d", id, lessons.MaxUnits)}
		}
		if !seen[id] {
			seen[id] = true
			units = append(units, id)
		}
	}
	sort.Ints(units)
	return units, nil
}

// Telemetry reads the telemetry configuration from the environment.
// LESSONLINT_TELEMETRY wins over APPLICATIONINSIGHTS_CONNECTION_STRING.
func Telemetry(version string) telemetry.Config {
	cs := strings.TrimSpace(os.Getenv(EnvTelemetry))
	if cs == "" {
		cs = strings.TrimSpace(os.Getenv(EnvAppInsights))
	}

	env := strings.TrimSpace(os.Getenv(EnvEnvironment))
	if env == "" {
		env = "development"
	}

	return telemetry.Config{
		ConnectionString: cs,
		ServiceName:      "lessonlint",
		Version:          version,
		Environment:      env,
	}
}
