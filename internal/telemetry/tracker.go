package telemetry

import (
	"strconv"
	"time"

	"github.com/rajesh-ms/learn-lego-programming/internal/report"
)

// Event names sent by Tracker
const (
	EventValidationRun       = "ValidationRun"
	EventUnitValidated       = "UnitValidated"
	EventCodeExampleChecked  = "CodeExampleChecked"
	MetricValidationErrors   = "ValidationErrors"
	MetricValidationWarnings = "ValidationWarnings"
)

// maxCodeLength caps the snippet text sent with CodeExampleChecked
const maxCodeLength = 100

// Tracker adds curriculum-specific events on top of a Client
type Tracker struct {
	client Client
}

// NewTracker wraps client; nil means Noop
func NewTracker(client Client) *Tracker {
	if client == nil {
		client = Noop{}
	}
	return &Tracker{client: client}
}

// Client returns the wrapped client
func (t *Tracker) Client() Client {
	return t.client
}

// TrackValidationRun sends the outcome of a finished run
func (t *Tracker) TrackValidationRun(r *report.Report) {
	summary := r.Summary()

	r.RLock()
	props := map[string]string{
		"runId":     r.ID,
		"name":      r.Name,
		"source":    r.Source,
		"status":    string(r.Status),
		"strict":    strconv.FormatBool(r.Strict),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	r.RUnlock()

	t.client.TrackEvent(EventValidationRun, props, map[string]float64{
		"steps":       float64(summary.Steps),
		"failedSteps": float64(summary.FailedSteps),
		"errors":      float64(summary.Errors),
		"warnings":    float64(summary.Warnings),
		"durationMs":  float64(r.Duration().Milliseconds()),
	})
	t.client.TrackMetric(MetricValidationErrors, float64(summary.Errors), map[string]string{"runId": props["runId"]})
	t.client.TrackMetric(MetricValidationWarnings, float64(summary.Warnings), map[string]string{"runId": props["runId"]})
}

// TrackUnitValidated sends per-unit finding counts
func (t *Tracker) TrackUnitValidated(unitID, title string, errors, warnings int) {
	t.client.TrackEvent(EventUnitValidated, map[string]string{
		"unitId":    unitID,
		"unitTitle": title,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, map[string]float64{
		"errors":   float64(errors),
		"warnings": float64(warnings),
	})
}

// TrackCodeExampleChecked sends the start of a snippet and how many
// diagnostics it produced
func (t *Tracker) TrackCodeExampleChecked(code, unitID string, diagnostics int) {
	t.client.TrackEvent(EventCodeExampleChecked, map[string]string{
		"codeExample": truncate(code, maxCodeLength),
		"unitId":      unitID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}, map[string]float64{
		"diagnostics": float64(diagnostics),
	})
}

// TrackStepFailed reports a step that could not run
func (t *Tracker) TrackStepFailed(step, check string, err error) {
	t.client.TrackException(err, map[string]string{"step": step, "check": check})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
