package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonPlan_Validate(t *testing.T) {
	var nilPlan *LessonPlan
	require.ErrorIs(t, nilPlan.Validate(), ErrInvalidInput)

	plan := &LessonPlan{Introduction: "a", Explanation: "b", Practice: "c", Conclusion: "d"}
	require.NoError(t, plan.Validate())

	plan.Practice = "   "
	err := plan.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "practice")
}

func TestNewLessonPlanUpdate(t *testing.T) {
	plan := &LessonPlan{Introduction: "a", Explanation: "b", Practice: "c", Conclusion: "d"}

	_, err := NewLessonPlanUpdate("", plan, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewLessonPlanUpdate("l1", nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewLessonPlanUpdate("l1", &LessonPlan{Introduction: "only"}, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	u, err := NewLessonPlanUpdate("l1", plan, nil)
	require.NoError(t, err)
	plan.Introduction = "changed later"
	assert.Equal(t, "a", u.Plan.Introduction, "update must not alias the caller's plan")
}

func TestLessonPlanUpdate_Apply(t *testing.T) {
	script := "script"
	orig := Lesson{ID: "l1", VideoScript: "old", Plan: &LessonPlan{Introduction: "x"}}

	u := LessonPlanUpdate{ID: "l1", VideoScript: &script}
	got := u.Apply(orig)
	assert.Equal(t, "script", got.VideoScript)
	assert.Same(t, orig.Plan, got.Plan)
	assert.Equal(t, "old", orig.VideoScript)
}

func TestLessonRequest_Validate(t *testing.T) {
	valid := LessonRequest{Subject: SubjectHistory, Topic: "Rome", Level: "5th grade", Duration: 40, Style: StyleEasy}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *LessonRequest)
	}{
		{"empty topic", func(r *LessonRequest) { r.Topic = "" }},
		{"empty level", func(r *LessonRequest) { r.Level = " " }},
		{"too short", func(r *LessonRequest) { r.Duration = MinLessonDuration - 1 }},
		{"too long", func(r *LessonRequest) { r.Duration = MaxLessonDuration + 1 }},
		{"unknown subject", func(r *LessonRequest) { r.Subject = "alchemy" }},
		{"unknown style", func(r *LessonRequest) { r.Style = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
		})
	}
}

func TestOptions(t *testing.T) {
	assert.Len(t, Subjects(), 8)
	assert.Equal(t, "Physics", SubjectPhysics.Label())
	assert.Equal(t, "alchemy", Subject("alchemy").Label())
	assert.True(t, StyleCreative.Valid())
	assert.False(t, LessonStyle("").Valid())
}
