package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
)

func diag(kind content.Kind, msg, unit, section string) content.Diagnostic {
	d := content.NewDiagnostic(kind, "%s", msg)
	d.UnitID = unit
	d.SectionTitle = section
	return d
}

func sampleReport() *Report {
	r := New("Default Curriculum", "embedded", 2)
	r.Start()
	r.SetStep(0, StepResult{
		Name:  "Syntax",
		Check: "syntax",
		Diagnostics: content.Diagnostics{
			diag(content.KindMissingColon, "Line 1: Function definition missing colon", "3", "Functions"),
			diag(content.KindInvalidAPICall, "Line 2: Potentially invalid LEGO API call", "5", "Lights"),
		},
	})
	r.SetStep(1, StepResult{
		Name:        "Consistency",
		Check:       "consistency",
		Diagnostics: content.Diagnostics{diag(content.KindSectionBrief, "Section 'Setup': Content too brief for educational value", "2", "Setup")},
	})
	return r
}

func TestReport_Lifecycle(t *testing.T) {
	r := sampleReport()

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StatusRunning, r.Status)
	assert.Equal(t, StatusFailed, r.Steps[0].Status)
	assert.Equal(t, StatusPassed, r.Steps[1].Status)

	summary := r.Summary()
	assert.Equal(t, 2, summary.Steps)
	assert.Equal(t, 1, summary.FailedSteps)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 2, summary.Warnings)
	assert.Equal(t, 1, summary.ByKind[content.KindMissingColon])

	assert.Equal(t, StatusFailed, r.Finish(false))
	assert.False(t, r.Passed())
	assert.GreaterOrEqual(t, r.Duration(), time.Duration(0))

	require.Len(t, r.History, 2)
	assert.Equal(t, EventRunStarted, r.History[0].Type)
	assert.Equal(t, EventRunCompleted, r.History[1].Type)
	assert.Equal(t, 1, r.History[1].Data["errors"])
	assert.Len(t, r.Diagnostics(), 3)
}

func TestReport_FinishStrict(t *testing.T) {
	warningsOnly := func() *Report {
		r := New("plan", "embedded", 1)
		r.Start()
		r.SetStep(0, StepResult{Name: "s", Check: "practices", Diagnostics: content.Diagnostics{
			diag(content.KindMagicNumber, "Consider using named constants instead of magic numbers", "4", "Basic Motor Control"),
		}})
		return r
	}

	relaxed := warningsOnly()
	assert.Equal(t, StatusPassed, relaxed.Finish(false))
	assert.True(t, relaxed.Passed())

	strict := warningsOnly()
	assert.Equal(t, StatusFailed, strict.Finish(true))
	assert.True(t, strict.Strict)
}

func TestReport_StepError(t *testing.T) {
	r := New("plan", "embedded", 1)
	r.SetStep(0, StepResult{Name: "broken", Check: "syntax", Err: errors.New("unit 9 not found")})

	assert.Equal(t, "unit 9 not found", r.Steps[0].Error)
	assert.Equal(t, StatusFailed, r.Steps[0].Status)
	assert.Equal(t, StatusFailed, r.Finish(false))

	r.SetStep(5, StepResult{Name: "ignored"})
	assert.Len(t, r.Steps, 1)
}

func TestReport_ConcurrentUpdates(t *testing.T) {
	r := New("plan", "embedded", 8)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.AddEvent(Event{Type: EventStepStarted})
			r.SetStep(i, StepResult{Name: "step", Check: "syntax"})
			_ = r.Summary()
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.History, 8)
	for _, step := range r.Steps {
		assert.Equal(t, StatusPassed, step.Status)
	}
}

func TestRender_Text(t *testing.T) {
	r := sampleReport()
	r.Finish(false)

	var buf bytes.Buffer
	require.NoError(t, r.render(&buf, FormatText, false))
	out := buf.String()

	assert.Contains(t, out, "Report: Default Curriculum")
	assert.Contains(t, out, "[1/2] Syntax (syntax): 1 errors, 1 warnings")
	assert.Contains(t, out, `  error   Line 1: Function definition missing colon  [unit 3, section "Functions"]`)
	assert.Contains(t, out, "  warning Section 'Setup': Content too brief for educational value  [unit 2]")
	assert.Contains(t, out, "Summary: 2 steps, 1 errors, 2 warnings")
	assert.Contains(t, out, "Status: FAILED")
	assert.NotContains(t, out, "\033[")
}

func TestRender_TextColored(t *testing.T) {
	r := sampleReport()
	r.Finish(false)

	var buf bytes.Buffer
	require.NoError(t, r.render(&buf, FormatText, true))
	assert.Contains(t, buf.String(), "\033[31m")
}

func TestRender_JSON(t *testing.T) {
	r := sampleReport()
	r.Finish(false)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatJSON))

	var doc struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Summary struct {
			Errors   int `json:"errors"`
			Warnings int `json:"warnings"`
		} `json:"summary"`
		Steps []struct {
			Check       string `json:"check"`
			Diagnostics []struct {
				Kind     string `json:"kind"`
				Severity string `json:"severity"`
				UnitID   string `json:"unitId"`
			} `json:"diagnostics"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, r.ID, doc.ID)
	assert.Equal(t, "failed", doc.Status)
	assert.Equal(t, 1, doc.Summary.Errors)
	require.Len(t, doc.Steps, 2)
	assert.Equal(t, "missing_colon", doc.Steps[0].Diagnostics[0].Kind)
	assert.Equal(t, "error", doc.Steps[0].Diagnostics[0].Severity)
	assert.Equal(t, "3", doc.Steps[0].Diagnostics[0].UnitID)
}

func TestRender_YAML(t *testing.T) {
	r := sampleReport()
	r.Finish(false)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, FormatYAML))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Default Curriculum", doc["name"])
	assert.Equal(t, "failed", doc["status"])
	assert.Len(t, doc["steps"], 2)
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, New("x", "y", 0).Render(&bytes.Buffer{}, Format("xml")))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()
	r.Finish(false)

	path, err := r.WriteFile(dir, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "default-curriculum-"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	name, ts, ok := ParseFileName(path)
	require.True(t, ok)
	assert.Equal(t, "default-curriculum", name)
	assert.Equal(t, r.StartTime.Truncate(time.Second).Unix(), ts.Unix())

	textPath, err := r.WriteFile(dir, FormatText)
	require.NoError(t, err)
	data, err := os.ReadFile(textPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\033[")
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("html")
	assert.Error(t, err)

	assert.Equal(t, "txt", FormatText.Extension())
	assert.Equal(t, "yaml", FormatYAML.Extension())
}

func TestParseFileName(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
		ok   bool
	}{
		{name: "json report", file: "nightly-20250102-030405.json", want: "nightly", ok: true},
		{name: "dashed plan name", file: "/tmp/lego-units-20250102-030405.txt", want: "lego-units", ok: true},
		{name: "other file", file: "notes.txt", ok: false},
		{name: "wrong extension", file: "nightly-20250102-030405.md", ok: false},
		{name: "bad timestamp", file: "nightly-20251302-030405.yaml", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := ParseFileName(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName_Slug(t *testing.T) {
	r := New("  Unit 3 / Python!  ", "embedded", 0)
	r.StartTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local)
	assert.Equal(t, "unit-3-python-20250102-030405.yaml", r.FileName(FormatYAML))

	r.Name = "???"
	assert.Equal(t, "report-20250102-030405.txt", r.FileName(FormatText))
}
