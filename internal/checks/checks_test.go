package checks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
	"github.com/rajesh-ms/learn-lego-programming/internal/lessons"
	"github.com/rajesh-ms/learn-lego-programming/internal/validator"
)

type fakeCheck struct {
	name string
}

func (f fakeCheck) Name() string        { return f.name }
func (f fakeCheck) Description() string { return "fake" }
func (f fakeCheck) Run(ctx context.Context, in Input) (content.Diagnostics, error) {
	return nil, nil
}

func testStore(t *testing.T) *lessons.Store {
	t.Helper()
	store, err := lessons.New([]lessons.Unit{
		{
			ID:         1,
			Title:      "Robot Basics",
			Difficulty: content.Beginner,
			Objectives: []string{"Identify the parts of a LEGO robot and what each motor does"},
			Topics:     []string{"robot", "sensor|touch"},
			Sections: []lessons.Section{
				{Title: "Parts", Content: "A LEGO robot has a hub, motors and a battery pack."},
			},
		},
		{
			ID:            2,
			Title:         "First Program",
			Difficulty:    content.Intermediate,
			Prerequisites: []string{"parts of a lego robot", "wireless pairing"},
			Objectives:    []string{"Write a program that drives the LEGO robot forward"},
			Sections: []lessons.Section{
				{Title: "Driving", Content: "Functions group motor commands.", CodeExample: "def drive()\n    pass"},
			},
		},
		{
			ID:         3,
			Title:      "Review",
			Difficulty: content.Beginner,
			Objectives: []string{"Explain how the LEGO hub runs a program"},
			Sections: []lessons.Section{
				{Title: "Recap", Content: "Let us look back at the hub."},
			},
		},
	})
	require.NoError(t, err)
	return store
}

func run(t *testing.T, name string, in Input) content.Diagnostics {
	t.Helper()
	c, err := NewDefaultRegistry(validator.DefaultRules()).Get(name)
	require.NoError(t, err)
	ds, err := c.Run(context.Background(), in)
	require.NoError(t, err)
	return ds
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry(validator.DefaultRules())

	var names []string
	for _, c := range r.List() {
		names = append(names, c.Name())
		assert.NotEmpty(t, c.Description())
	}
	assert.Equal(t, []string{Consistency, Coverage, Educational, Objectives, Practices, Progression, Syntax}, names)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(fakeCheck{name: "fake"}))
	assert.Error(t, r.Register(fakeCheck{name: "fake"}))
	assert.Error(t, r.Register(fakeCheck{}))
	assert.Error(t, r.Register(nil))

	c, err := r.Get("fake")
	require.NoError(t, err)
	assert.Equal(t, "fake", c.Name())

	_, err = r.Get("missing")
	assert.EqualError(t, err, "check missing not found")
	_, err = r.Get("")
	assert.Error(t, err)
}

func TestDecodeParams(t *testing.T) {
	tests := []struct {
		name    string
		raw     map[string]interface{}
		want    Params
		wantErr bool
	}{
		{name: "empty", raw: nil, want: Params{}},
		{
			name: "all fields",
			raw: map[string]interface{}{
				"units":    []interface{}{1, 3},
				"severity": map[string]interface{}{"magic_number": "error"},
				"advisory": true,
			},
			want: Params{Units: []int{1, 3}, Severity: map[string]string{"magic_number": "error"}, Advisory: true},
		},
		{name: "unknown field", raw: map[string]interface{}{"input": "x"}, wantErr: true},
		{name: "unit out of range", raw: map[string]interface{}{"units": []interface{}{7}}, wantErr: true},
		{name: "bad severity", raw: map[string]interface{}{"severity": map[string]interface{}{"complexity": "fatal"}}, wantErr: true},
		{name: "misspelled kind", raw: map[string]interface{}{"severity": map[string]interface{}{"section_to_brief": "error"}}, wantErr: true},
		{name: "wrong type", raw: map[string]interface{}{"units": "all"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeParams(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParams_Target(t *testing.T) {
	var p Params
	assert.Error(t, ParseParams(nil, &p))
	assert.Error(t, ParseParams(map[string]interface{}{}, nil))
	assert.Error(t, ParseParams(map[string]interface{}{}, p))
}

func TestParams_Apply(t *testing.T) {
	ds := content.Diagnostics{
		content.NewDiagnostic(content.KindMissingColon, "a"),
		content.NewDiagnostic(content.KindMagicNumber, "b"),
	}

	same := Params{}.Apply(ds)
	assert.Equal(t, ds, same)

	got := Params{Severity: map[string]string{"magic_number": "error", "missing_colon": "warning"}}.Apply(ds)
	assert.Equal(t, content.SeverityWarning, got[0].Severity)
	assert.Equal(t, content.SeverityError, got[1].Severity)
	assert.Equal(t, content.SeverityError, ds[0].Severity, "input must not change")

	advisory := Params{Advisory: true}.Apply(ds)
	assert.Empty(t, advisory.Errors())
}

func TestSyntaxCheck(t *testing.T) {
	store := testStore(t)

	ds := run(t, Syntax, Input{Lessons: store})
	require.Len(t, ds, 1)
	assert.Equal(t, content.KindMissingColon, ds[0].Kind)
	assert.Equal(t, "2", ds[0].UnitID)
	assert.Equal(t, "Driving", ds[0].SectionTitle)

	assert.Empty(t, run(t, Syntax, Input{Lessons: store, Params: Params{Units: []int{1, 3}}}))

	advisory := run(t, Syntax, Input{Lessons: store, Params: Params{Advisory: true}})
	require.Len(t, advisory, 1)
	assert.Equal(t, content.SeverityWarning, advisory[0].Severity)
}

func TestProgressionCheck(t *testing.T) {
	store := testStore(t)

	ds := run(t, Progression, Input{Lessons: store})
	assert.Equal(t, []string{
		"Unit 2: Prerequisite 'wireless pairing' not covered in previous units",
		"Unit 3: Difficulty regression from previous unit",
	}, ds.Messages())

	only3 := run(t, Progression, Input{Lessons: store, Params: Params{Units: []int{3}}})
	assert.Equal(t, []string{"Unit 3: Difficulty regression from previous unit"}, only3.Messages())
}

func TestCoverageCheck(t *testing.T) {
	ds := run(t, Coverage, Input{Lessons: testStore(t)})
	require.Len(t, ds, 1)
	assert.Equal(t, "Unit 1: Topic 'sensor|touch' not mentioned in unit content", ds[0].Message)
	assert.Equal(t, content.KindMissingTopic, ds[0].Kind)
	assert.Equal(t, content.SeverityError, ds[0].Severity)
}

func TestCoverageCheck_BundledLessons(t *testing.T) {
	store, err := lessons.Default()
	require.NoError(t, err)
	assert.Empty(t, run(t, Coverage, Input{Lessons: store}))
}

func TestBuiltin_Errors(t *testing.T) {
	r := NewDefaultRegistry(validator.DefaultRules())
	syntax, err := r.Get(Syntax)
	require.NoError(t, err)

	_, err = syntax.Run(context.Background(), Input{})
	assert.EqualError(t, err, "check syntax: no lessons loaded")

	_, err = syntax.Run(context.Background(), Input{Lessons: testStore(t), Params: Params{Units: []int{5}}})
	assert.ErrorContains(t, err, "unit 5 not found")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = syntax.Run(ctx, Input{Lessons: testStore(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMentionsAny(t *testing.T) {
	assert.True(t, mentionsAny("the motor turns", []string{"movement", " Motor "}))
	assert.False(t, mentionsAny("the motor turns", []string{"", "sensor"}))
}
