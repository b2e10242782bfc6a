package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajesh-ms/learn-lego-programming/internal/content"
)

func unit(id string, difficulty content.Difficulty, prerequisites []string, objectives ...string) content.UnitValidation {
	u := content.UnitValidation{
		UnitID:        id,
		Title:         "Unit " + id,
		Prerequisites: prerequisites,
		Difficulty:    difficulty,
	}
	for i, desc := range objectives {
		u.Objectives = append(u.Objectives, content.LearningObjective{
			ID:          id + "-obj-" + string(rune('0'+i)),
			Description: desc,
			UnitID:      id,
			Measurable:  true,
			Achievable:  true,
		})
	}
	return u
}

func TestCurriculumValidator_ValidateProgression(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())

	t.Run("prerequisite not covered", func(t *testing.T) {
		units := []content.UnitValidation{
			unit("1", content.Beginner, nil, "Understand what robotics is and how it applies to LEGO"),
			unit("2", content.Beginner, []string{"basic robotics concepts"}, "Connect and configure your LEGO hub"),
			unit("3", content.Beginner, nil),
			unit("4", content.Intermediate, nil),
			unit("5", content.Intermediate, nil),
			unit("6", content.Advanced, nil),
		}

		got := v.ValidateProgression(units)
		require.Len(t, got, 1)
		assert.Equal(t, "Unit 2: Prerequisite 'basic robotics concepts' not covered in previous units", got[0])
		assert.Contains(t, got[0], "not covered")
	})

	t.Run("sorts defensively and leaves input untouched", func(t *testing.T) {
		units := []content.UnitValidation{
			unit("3", content.Beginner, []string{"MOTOR CONTROL"}),
			unit("1", content.Beginner, nil, "Identify the parts of a robot"),
			unit("2", content.Beginner, []string{"parts of a robot"}, "Program motor control loops"),
		}

		assert.Empty(t, v.ValidateProgression(units))
		assert.Equal(t, "3", units[0].UnitID)
		assert.Equal(t, "1", units[1].UnitID)
	})

	t.Run("difficulty regression", func(t *testing.T) {
		units := []content.UnitValidation{
			unit("1", content.Beginner, nil),
			unit("2", content.Advanced, nil),
			unit("3", content.Beginner, nil),
		}

		got := v.ValidateProgression(units)
		assert.Equal(t, []string{"Unit 3: Difficulty regression from previous unit"}, got)
		assert.Contains(t, got[0], "regression")
	})

	t.Run("unknown difficulty is not compared", func(t *testing.T) {
		units := []content.UnitValidation{
			unit("1", content.Advanced, nil),
			unit("2", content.Difficulty("Expert"), nil),
			unit("3", content.Intermediate, nil),
		}

		assert.Empty(t, v.ValidateProgression(units))
	})

	t.Run("prerequisite diagnostics come before regressions", func(t *testing.T) {
		units := []content.UnitValidation{
			unit("2", content.Beginner, []string{"gears"}),
			unit("1", content.Intermediate, nil),
		}

		assert.Equal(t, []string{
			"Unit 2: Prerequisite 'gears' not covered in previous units",
			"Unit 2: Difficulty regression from previous unit",
		}, v.ValidateProgression(units))
	})

	t.Run("first unit prerequisites are not checked", func(t *testing.T) {
		assert.Empty(t, v.ValidateProgression([]content.UnitValidation{
			unit("1", content.Beginner, []string{"anything"}),
		}))
		assert.Empty(t, v.ValidateProgression(nil))
	})
}

func TestCurriculumValidator_CheckProgression(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())

	ds, err := v.CheckProgression([]content.UnitValidation{
		unit("1", content.Intermediate, nil),
		unit("2", content.Beginner, nil),
	})
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, content.KindDifficultyRegression, ds[0].Kind)
	assert.Equal(t, content.SeverityError, ds[0].Severity)
	assert.Equal(t, "2", ds[0].UnitID)

	_, err = v.CheckProgression([]content.UnitValidation{unit("one", content.Beginner, nil)})
	var cve *content.ContentValidationError
	require.True(t, errors.As(err, &cve))
	assert.Equal(t, "one", cve.UnitID)
}

func TestCurriculumValidator_ValidateObjectives(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())

	objective := func(id, unitID, desc string) content.LearningObjective {
		return content.LearningObjective{ID: id, UnitID: unitID, Description: desc, Measurable: true, Achievable: true}
	}

	tests := []struct {
		name string
		obj  content.LearningObjective
		want []string
	}{
		{
			name: "missing measurable verb",
			obj:  objective("1-obj-0", "1", "Understand what robotics is and how it applies to LEGO"),
			want: []string{"Objective 1-obj-0 in Unit 1: Should use measurable action verbs"},
		},
		{
			name: "clean objective",
			obj:  objective("4-obj-1", "4", "Identify the motor ports on the hub"),
			want: []string{},
		},
		{
			name: "every rule fails in order",
			obj:  objective("x", "2", "Go"),
			want: []string{
				"Objective x in Unit 2: Should use measurable action verbs",
				"Objective x in Unit 2: Description too brief",
				"Objective x in Unit 2: Should include LEGO robotics terminology",
			},
		},
		{
			name: "twenty characters is long enough",
			obj:  objective("3-obj-0", "3", "Program a robot now!"),
			want: []string{},
		},
		{
			name: "too verbose",
			obj:  objective("6-obj-2", "6", "Build a robot "+strings.Repeat("x", 137)),
			want: []string{"Objective 6-obj-2 in Unit 6: Description too verbose"},
		},
		{
			name: "verb match ignores case",
			obj:  objective("5-obj-0", "5", "DEBUG Python programs for sensors"),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ValidateObjectives([]content.LearningObjective{tt.obj})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateObjectives() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCurriculumValidator_CheckObjectives(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())

	ds, err := v.CheckObjectives([]content.LearningObjective{{ID: "2-obj-0", UnitID: "2", Description: "Go"}})
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, "2-obj-0", ds[1].ObjectiveID)
	assert.Equal(t, content.KindObjectiveBrief, ds[1].Kind)
	assert.Equal(t, content.SeverityWarning, ds[1].Severity)

	_, err = v.CheckObjectives([]content.LearningObjective{{UnitID: "2", Description: "Go"}})
	assert.Error(t, err)
}

func TestCurriculumValidator_ValidateConsistency(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())
	padding := strings.Repeat("Keep building. ", 5)

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "motor and engine",
			content: "The motor is the engine of the robot. " + padding,
			want:    []string{"Section 'Drive': Inconsistent motor/engine terminology"},
		},
		{
			name:    "sensor and detector",
			content: "A sensor is a kind of detector for the robot. " + padding,
			want:    []string{"Section 'Drive': Inconsistent sensor/detector terminology"},
		},
		{
			name:    "fifty characters is too brief",
			content: strings.Repeat("a", 50),
			want:    []string{"Section 'Drive': Content too brief for educational value"},
		},
		{
			name:    "too lengthy",
			content: strings.Repeat("a", 2500),
			want:    []string{"Section 'Drive': Content may be too lengthy for engagement"},
		},
		{
			name:    "terminology match ignores case",
			content: "MOTORS and ENGINES. " + padding + padding,
			want:    []string{"Section 'Drive': Inconsistent motor/engine terminology"},
		},
		{
			name:    "clean section",
			content: strings.Repeat("Motors turn wheels. ", 6),
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ValidateConsistency([]content.ContentSection{{Title: "Drive", Content: tt.content, UnitID: "4"}})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateConsistency() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCurriculumValidator_CheckConsistency(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())

	ds, err := v.CheckConsistency([]content.ContentSection{{Title: "Drive", UnitID: "4", Content: "motor engine"}})
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, content.KindTerminology, ds[0].Kind)
	assert.Equal(t, content.SeverityError, ds[0].Severity)
	assert.Equal(t, "Drive", ds[0].SectionTitle)
	assert.Equal(t, content.KindSectionBrief, ds[1].Kind)

	_, err = v.CheckConsistency([]content.ContentSection{{UnitID: "4"}})
	assert.Error(t, err)
}

func TestCurriculumValidator_Idempotent(t *testing.T) {
	v := NewCurriculumValidator(DefaultRules())
	units := []content.UnitValidation{
		unit("2", content.Advanced, []string{"wheels"}),
		unit("1", content.Beginner, nil, "Go"),
		unit("3", content.Beginner, nil),
	}

	first := v.ValidateProgression(units)
	second := v.ValidateProgression(units)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second call differs (-first +second):\n%s", diff)
	}
}
