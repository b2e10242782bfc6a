// Package checks provides the named validation steps a plan can run
package checks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/lessons"
)

// Check defines the interface that all checks must implement
type Check interface {
	// Name returns the check's unique identifier
	Name() string

	// Description is a one-line summary for listings
	Description() string

	// Run validates the lessons in the input
	Run(ctx context.Context, in Input) (content.Diagnostics, error)
}

// Input is what a check runs against
type Input struct {
	Lessons *lessons.Store
	Params  Params
}

// Params are the step parameters every check understands
type Params struct {
	// Units restricts the check to these unit ids
	Units []int `json:"units"`
	// Severity overrides the default severity per diagnostic kind
	Severity map[string]string `json:"severity"`
	// Advisory demotes every finding to a warning
	Advisory bool `json:"advisory"`
}

// Validate rejects unknown units and severities
func (p Params) Validate() error {
	for _, id := range p.Units {
		if id < 1 || id > lessons.MaxUnits {
			return fmt.Errorf("unit %d is outside 1..%d", id, lessons.MaxUnits)
		}
	}
	for kind, sev := range p.Severity {
		if kind == "" {
			return fmt.Errorf("severity override has an empty kind")
		}
		if _, err := content.ParseKind(kind); err != nil {
			return fmt.Errorf("severity override: %w", err)
		}
		if _, err := content.ParseSeverity(sev); err != nil {
			return fmt.Errorf("severity override for %s: %w", kind, err)
		}
	}
	return nil
}

// Apply sets severities on ds according to the overrides. ds is not
// modified.
func (p Params) Apply(ds content.Diagnostics) content.Diagnostics {
	if len(ds) == 0 || (!p.Advisory && len(p.Severity) == 0) {
		return ds
	}

	out := make(content.Diagnostics, len(ds))
	for i, d := range ds {
		if raw, ok := p.Severity[string(d.Kind)]; ok {
			if sev, err := content.ParseSeverity(raw); err == nil {
				d.Severity = sev
			}
		}
		if p.Advisory {
			d.Severity = content.SeverityWarning
		}
		out[i] = d
	}
	return out
}

// DecodeParams turns plan step parameters into Params and validates them
func DecodeParams(raw map[string]interface{}) (Params, error) {
	var p Params
	if len(raw) == 0 {
		return p, nil
	}
	if err := ParseParams(raw, &p); err != nil {
		return Params{}, err
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ParseParams converts generic parameter map to a specific struct
func ParseParams(params map[string]interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("params cannot be nil")
	}
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}

	// Validate that target is a pointer to a struct
	if v := reflect.ValueOf(target); v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("error marshaling params: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("error unmarshaling params: %w", err)
	}

	return nil
}

// Registry stores all available checks
type Registry struct {
	checks       map[string]Check
	sync.RWMutex // Protects checks
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		checks: make(map[string]Check),
	}
}

// Register adds a check to the registry
func (r *Registry) Register(c Check) error {
	if c == nil {
		return fmt.Errorf("cannot register nil check")
	}

	name := c.Name()
	if name == "" {
		return fmt.Errorf("check name cannot be empty")
	}

	r.Lock()
	defer r.Unlock()

	if _, exists := r.checks[name]; exists {
		return fmt.Errorf("check %s is already registered", name)
	}

	r.checks[name] = c
	return nil
}

// Get retrieves a check by name
func (r *Registry) Get(name string) (Check, error) {
	if name == "" {
		return nil, fmt.Errorf("check name cannot be empty")
	}

	r.RLock()
	defer r.RUnlock()

	c, exists := r.checks[name]
	if !exists {
		return nil, fmt.Errorf("check %s not found", name)
	}
	return c, nil
}

// List returns all registered checks sorted by name
func (r *Registry) List() []Check {
	r.RLock()
	defer r.RUnlock()

	list := make([]Check, 0, len(r.checks))
	for _, c := range r.checks {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
