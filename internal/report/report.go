// Package report records the outcome of one validation run
package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
)

// Status represents the state of a run or of one step
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// Event types recorded in the history
const (
	EventRunStarted    = "run_started"
	EventStepStarted   = "step_started"
	EventStepCompleted = "step_completed"
	EventStepFailed    = "step_failed"
	EventRunCompleted  = "run_completed"
)

// StepResult is the outcome of one plan step
type StepResult struct {
	Name        string              `json:"name" yaml:"name"`
	Check       string              `json:"check" yaml:"check"`
	Status      Status              `json:"status" yaml:"status"`
	Diagnostics content.Diagnostics `json:"diagnostics" yaml:"diagnostics"`
	Duration    time.Duration       `json:"duration" yaml:"duration"`
	Err         error               `json:"-" yaml:"-"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Event represents something that happened during a run
type Event struct {
	ID        string                 `json:"id" yaml:"id"`
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	Step      string                 `json:"step,omitempty" yaml:"step,omitempty"`
	Type      string                 `json:"type" yaml:"type"`
	Message   string                 `json:"message" yaml:"message"`
	Data      map[string]interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// Summary counts the findings of a run
type Summary struct {
	Steps       int                  `json:"steps" yaml:"steps"`
	FailedSteps int                  `json:"failedSteps" yaml:"failedSteps"`
	Errors      int                  `json:"errors" yaml:"errors"`
	Warnings    int                  `json:"warnings" yaml:"warnings"`
	ByKind      map[content.Kind]int `json:"byKind,omitempty" yaml:"byKind,omitempty"`
}

// Report is the result of running a plan. Steps keep plan order no matter
// in which order they finish.
type Report struct {
	sync.RWMutex // Protects all fields below

	ID        string
	Name      string
	Source    string
	StartTime time.Time
	EndTime   time.Time
	Status    Status
	Strict    bool
	Steps     []StepResult
	History   []Event
}

// New creates a pending report with one slot per step
func New(name, source string, steps int) *Report {
	return &Report{
		ID:     uuid.NewString(),
		Name:   name,
		Source: source,
		Status: StatusPending,
		Steps:  make([]StepResult, steps),
	}
}

// Start marks the run as running
func (r *Report) Start() {
	r.Lock()
	r.StartTime = time.Now()
	r.Status = StatusRunning
	r.Unlock()

	r.AddEvent(Event{Type: EventRunStarted, Message: "validation run started"})
}

// AddEvent adds an event to the history in a thread-safe manner
func (r *Report) AddEvent(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	r.Lock()
	defer r.Unlock()
	r.History = append(r.History, event)
}

// SetStep stores the result of step i
func (r *Report) SetStep(i int, result StepResult) {
	if result.Err != nil && result.Error == "" {
		result.Error = result.Err.Error()
	}
	if result.Status == "" {
		result.Status = StatusPassed
		if result.Err != nil || result.Diagnostics.HasErrors() {
			result.Status = StatusFailed
		}
	}

	r.Lock()
	defer r.Unlock()
	if i >= 0 && i < len(r.Steps) {
		r.Steps[i] = result
	}
}

// Finish sets the end time and the final status. With strict, warnings
// fail the run too.
func (r *Report) Finish(strict bool) Status {
	summary := r.Summary()

	r.Lock()
	r.EndTime = time.Now()
	r.Strict = strict
	r.Status = StatusPassed
	if summary.FailedSteps > 0 || summary.Errors > 0 || (strict && summary.Warnings > 0) {
		r.Status = StatusFailed
	}
	status := r.Status
	r.Unlock()

	r.AddEvent(Event{
		Type:    EventRunCompleted,
		Message: "validation run " + string(status),
		Data: map[string]interface{}{
			"errors":   summary.Errors,
			"warnings": summary.Warnings,
		},
	})
	return status
}

// Passed reports whether the run finished without failures
func (r *Report) Passed() bool {
	r.RLock()
	defer r.RUnlock()
	return r.Status == StatusPassed
}

// Duration is the wall time of the run
func (r *Report) Duration() time.Duration {
	r.RLock()
	defer r.RUnlock()
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// Summary counts steps, errors and warnings
func (r *Report) Summary() Summary {
	r.RLock()
	defer r.RUnlock()

	s := Summary{Steps: len(r.Steps), ByKind: make(map[content.Kind]int)}
	for _, step := range r.Steps {
		if step.Status == StatusFailed || step.Err != nil {
			s.FailedSteps++
		}
		for _, d := range step.Diagnostics {
			if d.Severity == content.SeverityError {
				s.Errors++
			} else {
				s.Warnings++
			}
			s.ByKind[d.Kind]++
		}
	}
	return s
}

// Diagnostics returns the findings of every step in plan order
func (r *Report) Diagnostics() content.Diagnostics {
	r.RLock()
	defer r.RUnlock()

	var all content.Diagnostics
	for _, step := range r.Steps {
		all = append(all, step.Diagnostics...)
	}
	return all
}
