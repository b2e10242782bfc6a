package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
)

// Format selects a report renderer
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// TimestampLayout is the time format embedded in report file names
const TimestampLayout = "20060102-150405"

var (
	unsafeNameChars   = regexp.MustCompile(`[^a-z0-9_-]+`)
	reportFilePattern = regexp.MustCompile(`^(.+)-(\d{8}-\d{6})\.(txt|json|yaml)$`)
)

// ParseFormat converts a format name; empty means text
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected text, json or yaml)", s)
	}
}

// Extension returns the file extension for the format, without the dot
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}

// ParseFileName extracts the plan name and timestamp from a report file
// name. It reports false for files this package did not write.
func ParseFileName(name string) (string, time.Time, bool) {
	m := reportFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", time.Time{}, false
	}
	ts, err := time.ParseInLocation(TimestampLayout, m[2], time.Local)
	if err != nil {
		return "", time.Time{}, false
	}
	return m[1], ts, true
}

// FileName returns the name WriteFile uses for the report
func (r *Report) FileName(f Format) string {
	r.RLock()
	name, start := r.Name, r.StartTime
	r.RUnlock()

	slug := strings.Trim(unsafeNameChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "report"
	}
	if start.IsZero() {
		start = time.Now()
	}
	return fmt.Sprintf("%s-%s.%s", slug, start.Format(TimestampLayout), f.Extension())
}

// document is the serialized form of a report
type document struct {
	ID        string       `json:"id" yaml:"id"`
	Name      string       `json:"name" yaml:"name"`
	Source    string       `json:"source" yaml:"source"`
	StartTime time.Time    `json:"startTime" yaml:"startTime"`
	EndTime   time.Time    `json:"endTime" yaml:"endTime"`
	Status    Status       `json:"status" yaml:"status"`
	Strict    bool         `json:"strict" yaml:"strict"`
	Summary   Summary      `json:"summary" yaml:"summary"`
	Steps     []StepResult `json:"steps" yaml:"steps"`
	History   []Event      `json:"history,omitempty" yaml:"history,omitempty"`
}

func (r *Report) document() document {
	summary := r.Summary()

	r.RLock()
	defer r.RUnlock()

	steps := make([]StepResult, len(r.Steps))
	copy(steps, r.Steps)
	history := make([]Event, len(r.History))
	copy(history, r.History)

	return document{
		ID:        r.ID,
		Name:      r.Name,
		Source:    r.Source,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Strict:    r.Strict,
		Summary:   summary,
		Steps:     steps,
		History:   history,
	}
}

// Render writes the report to w. Text output is colored unless
// utils.ColorsEnabled is off.
func (r *Report) Render(w io.Writer, f Format) error {
	return r.render(w, f, utils.ColorsEnabled)
}

// WriteFile renders the report into dir and returns the file path. Text
// files are written without colors.
func (r *Report) WriteFile(dir string, f Format) (string, error) {
	var buf bytes.Buffer
	if err := r.render(&buf, f, false); err != nil {
		return "", err
	}

	path := filepath.Join(dir, r.FileName(f))
	if err := utils.WriteTextFile(path, buf.String()); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func (r *Report) render(w io.Writer, f Format, colored bool) error {
	doc := r.document()

	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode report JSON: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode report YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode report YAML: %w", err)
		}
	case FormatText, "":
		return renderText(w, doc, colored)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
	return nil
}

func renderText(w io.Writer, doc document, colored bool) error {
	paint := func(text, color string) string {
		if !colored {
			return text
		}
		return color + text + utils.ResetColor
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", paint("Report:", utils.MagentaColor), doc.Name)
	fmt.Fprintf(&b, "Run ID: %s\n", doc.ID)
	fmt.Fprintf(&b, "Lessons: %s\n", doc.Source)

	for i, step := range doc.Steps {
		nErrors, nWarnings := len(step.Diagnostics.Errors()), len(step.Diagnostics.Warnings())
		header := fmt.Sprintf("[%d/%d] %s (%s): %d errors, %d warnings", i+1, len(doc.Steps), step.Name, step.Check, nErrors, nWarnings)
		switch {
		case step.Error != "":
			fmt.Fprintf(&b, "\n%s\n  %s\n", paint(header, utils.RedColor), paint(step.Error, utils.RedColor))
			continue
		case nErrors > 0:
			header = paint(header, utils.RedColor)
		case nWarnings > 0:
			header = paint(header, utils.YellowColor)
		default:
			header = paint(header, utils.GreenColor)
		}
		fmt.Fprintf(&b, "\n%s\n", header)

		for _, d := range step.Diagnostics {
			label, color := "warning", utils.YellowColor
			if d.Severity == content.SeverityError {
				label, color = "error  ", utils.RedColor
			}
			fmt.Fprintf(&b, "  %s %s%s\n", paint(label, color), d.Message, location(d))
		}
	}

	s := doc.Summary
	fmt.Fprintf(&b, "\nSummary: %d steps, %d errors, %d warnings\n", s.Steps, s.Errors, s.Warnings)
	if len(s.ByKind) > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for k := range s.ByKind {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "  %-26s %d\n", k, s.ByKind[content.Kind(k)])
		}
	}

	status := strings.ToUpper(string(doc.Status))
	switch doc.Status {
	case StatusPassed:
		status = paint(status, utils.GreenColor)
	case StatusFailed:
		status = paint(status, utils.RedColor)
	}
	fmt.Fprintf(&b, "Status: %s\n", status)

	_, err := io.WriteString(w, b.String())
	return err
}

// location describes where a diagnostic points, for text output
func location(d content.Diagnostic) string {
	var parts []string
	if d.UnitID != "" && !strings.Contains(d.Message, "Unit "+d.UnitID) {
		parts = append(parts, "unit "+d.UnitID)
	}
	if d.SectionTitle != "" && !strings.Contains(d.Message, "'"+d.SectionTitle+"'") {
		parts = append(parts, fmt.Sprintf("section %q", d.SectionTitle))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  [" + strings.Join(parts, ", ") + "]"
}
