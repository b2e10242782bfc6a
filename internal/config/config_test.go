package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh-ms/learn-lego-programming/internal/utils"
	"github.com/rajesh-ms/learn-lego-programming/pkg/plan"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewCheckConfig(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", "name: nightly\nlessons: units.yaml\nsteps:\n  - check: syntax\n")
	rulesPath := writeFile(t, dir, "rules.yml", "indentWidth: 2\n")
	notes := writeFile(t, dir, "notes.txt", "hello")

	tests := []struct {
		name      string
		flags     Flags
		wantField string
		wantErr   bool
	}{
		{name: "no flags", flags: Flags{}},
		{name: "all files", flags: Flags{PlanPath: planPath, RulesPath: rulesPath, OutputPath: filepath.Join(dir, "reports"), Format: "json", Units: "3,1"}},
		{name: "missing plan", flags: Flags{PlanPath: filepath.Join(dir, "none.yaml")}, wantField: "plan"},
		{name: "not yaml", flags: Flags{LessonsPath: notes}, wantField: "lessons"},
		{name: "output is a file", flags: Flags{OutputPath: notes}, wantField: "output"},
		{name: "bad format", flags: Flags{Format: "pdf"}, wantField: "format"},
		{name: "bad units", flags: Flags{Units: "1,seven"}, wantField: "units"},
		{name: "watch without files", flags: Flags{Watch: true}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCheckConfig(tt.flags)
			if tt.wantField != "" {
				var verr *utils.ValidationError
				require.True(t, errors.As(err, &verr), "got %v", err)
				assert.Equal(t, tt.wantField, verr.Field)
				return
			}
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestCheckConfig_LoadPlan(t *testing.T) {
	dir := t.TempDir()
	planPath := writeFile(t, dir, "plan.yaml", "name: nightly\nlessons: units.yaml\nformat: yaml\nsteps:\n  - check: syntax\n")
	rulesPath := writeFile(t, dir, "rules.yaml", "indentWidth: 2\n")

	c, err := NewCheckConfig(Flags{PlanPath: planPath, RulesPath: rulesPath, Format: "json", Watch: true})
	require.NoError(t, err)

	p, err := c.LoadPlan()
	require.NoError(t, err)
	assert.Equal(t, "nightly", p.Name)
	assert.Equal(t, "json", p.Format)
	assert.Equal(t, rulesPath, p.RulesPath())
	assert.Equal(t, filepath.Join(dir, "units.yaml"), p.LessonsPath())

	assert.Equal(t, []string{planPath, filepath.Join(dir, "units.yaml"), rulesPath}, c.WatchPaths(p))
}

func TestCheckConfig_LoadPlan_Default(t *testing.T) {
	c, err := NewCheckConfig(Flags{})
	require.NoError(t, err)

	p, err := c.LoadPlan()
	require.NoError(t, err)
	assert.Equal(t, plan.DefaultName, p.Name)
	assert.Empty(t, c.WatchPaths(p))
}

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "", want: nil},
		{in: " 4, 2,4 ,", want: []int{2, 4}},
		{in: "6", want: []int{6}},
		{in: "0", wantErr: true},
		{in: "7", wantErr: true},
		{in: "two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTelemetry(t *testing.T) {
	t.Setenv(EnvTelemetry, "")
	t.Setenv(EnvAppInsights, "")
	t.Setenv(EnvEnvironment, "")

	cfg := Telemetry("1.2.0")
	assert.Empty(t, cfg.ConnectionString)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "1.2.0", cfg.Version)

	t.Setenv(EnvAppInsights, "InstrumentationKey=k;IngestionEndpoint=https://example.com")
	assert.Equal(t, "InstrumentationKey=k;IngestionEndpoint=https://example.com", Telemetry("").ConnectionString)

	t.Setenv(EnvTelemetry, "stdout")
	t.Setenv(EnvEnvironment, "ci")
	cfg = Telemetry("")
	assert.Equal(t, "stdout", cfg.ConnectionString)
	assert.Equal(t, "ci", cfg.Environment)
}
