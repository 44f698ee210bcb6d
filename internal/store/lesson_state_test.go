package store

import (
	"testing"

	"neuroteach/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(lessons []models.Lesson) []string {
	out := make([]string, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, l.ID)
	}
	return out
}

func reduce(state LessonState, actions ...LessonAction) LessonState {
	for _, a := range actions {
		state = LessonReducer(state, a)
	}
	return state
}

func TestLessonReducer_AddLesson(t *testing.T) {
	t.Run("newest first and current", func(t *testing.T) {
		st := reduce(InitialLessonState(),
			AddLesson{Lesson: lesson("a")},
			AddLesson{Lesson: lesson("b")},
			AddLesson{Lesson: lesson("c")},
		)
		assert.Equal(t, []string{"c", "b", "a"}, ids(st.Lessons))
		require.NotNil(t, st.CurrentLesson)
		assert.Equal(t, "c", st.CurrentLesson.ID)
	})

	t.Run("re-adding an id keeps it unique", func(t *testing.T) {
		st := reduce(InitialLessonState(),
			AddLesson{Lesson: lesson("a")},
			AddLesson{Lesson: lesson("b")},
			AddLesson{Lesson: lesson("a")},
		)
		assert.Equal(t, []string{"a", "b"}, ids(st.Lessons))
	})

	t.Run("previous state is not modified", func(t *testing.T) {
		before := reduce(InitialLessonState(), AddLesson{Lesson: lesson("a")}, AddLesson{Lesson: lesson("b")})
		snapshot := append([]models.Lesson(nil), before.Lessons...)
		_ = LessonReducer(before, AddLesson{Lesson: lesson("c")})
		_ = LessonReducer(before, DeleteLesson{ID: "a"})
		assert.Equal(t, snapshot, before.Lessons)
	})
}

func TestLessonReducer_DeleteLesson(t *testing.T) {
	base := reduce(InitialLessonState(),
		AddLesson{Lesson: lesson("a")},
		AddLesson{Lesson: lesson("b")},
		AddLesson{Lesson: lesson("c")},
		SetCurrentLesson{Lesson: &models.Lesson{ID: "c"}},
	)

	t.Run("removes exactly the matching entry", func(t *testing.T) {
		st := LessonReducer(base, DeleteLesson{ID: "b"})
		assert.Equal(t, []string{"c", "a"}, ids(st.Lessons))
		require.NotNil(t, st.CurrentLesson)
		assert.Equal(t, "c", st.CurrentLesson.ID, "current must be untouched when ids differ")
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		st := LessonReducer(base, DeleteLesson{ID: "zzz"})
		assert.Equal(t, base, st)
	})

	t.Run("deleting the current lesson clears it", func(t *testing.T) {
		st := LessonReducer(base, DeleteLesson{ID: "c"})
		assert.Equal(t, []string{"b", "a"}, ids(st.Lessons))
		assert.Nil(t, st.CurrentLesson)
	})
}

func TestLessonReducer_AddThenDelete(t *testing.T) {
	l1 := models.Lesson{ID: "L1", Subject: models.SubjectPhysics, Duration: 30}
	st := reduce(InitialLessonState(), AddLesson{Lesson: l1}, DeleteLesson{ID: "L1"})
	assert.Empty(t, st.Lessons)
	assert.Nil(t, st.CurrentLesson)
}

func TestLessonReducer_UpdateLessonPlan(t *testing.T) {
	script := "Scene 1: hello"
	update, err := models.NewLessonPlanUpdate("a", samplePlan(), &script)
	require.NoError(t, err)

	t.Run("updates list entry and matching current", func(t *testing.T) {
		st := reduce(InitialLessonState(), AddLesson{Lesson: lesson("b")}, AddLesson{Lesson: lesson("a")})
		st = LessonReducer(st, UpdateLessonPlan{Update: update})

		assert.Equal(t, samplePlan(), st.Lessons[0].Plan)
		assert.Equal(t, script, st.Lessons[0].VideoScript)
		assert.Nil(t, st.Lessons[1].Plan)
		require.NotNil(t, st.CurrentLesson)
		assert.Equal(t, samplePlan(), st.CurrentLesson.Plan)
		assert.Equal(t, script, st.CurrentLesson.VideoScript)
	})

	t.Run("leaves a different current untouched", func(t *testing.T) {
		st := reduce(InitialLessonState(), AddLesson{Lesson: lesson("a")}, AddLesson{Lesson: lesson("b")})
		st = LessonReducer(st, UpdateLessonPlan{Update: update})

		require.NotNil(t, st.CurrentLesson)
		assert.Equal(t, "b", st.CurrentLesson.ID)
		assert.Nil(t, st.CurrentLesson.Plan)
		assert.Empty(t, st.CurrentLesson.VideoScript)
		assert.Equal(t, script, st.Lessons[1].VideoScript)
	})

	t.Run("video script only keeps the plan", func(t *testing.T) {
		withPlan := lesson("a")
		withPlan.Plan = samplePlan()
		other := "new script"
		scriptOnly, err := models.NewLessonPlanUpdate("a", nil, &other)
		require.NoError(t, err)

		st := reduce(InitialLessonState(), AddLesson{Lesson: withPlan}, UpdateLessonPlan{Update: scriptOnly})
		assert.Equal(t, samplePlan(), st.Lessons[0].Plan)
		assert.Equal(t, other, st.Lessons[0].VideoScript)
	})
}

func TestLessonReducer_ToggleThemeIsInvolution(t *testing.T) {
	for _, start := range []Theme{ThemeLight, ThemeDark} {
		st := LessonState{Theme: start}
		once := LessonReducer(st, ToggleTheme{})
		assert.NotEqual(t, start, once.Theme)
		assert.Equal(t, start, LessonReducer(once, ToggleTheme{}).Theme)
	}
}

func TestLessonReducer_FetchLifecycle(t *testing.T) {
	st := LessonReducer(InitialLessonState(), FetchStarted{})
	assert.True(t, st.IsLoading)

	st = LessonReducer(st, FetchFailed{Err: "boom"})
	assert.False(t, st.IsLoading)
	assert.Equal(t, "boom", st.FetchError)

	st = reduce(st, FetchStarted{}, SetLessons{Lessons: []models.Lesson{lesson("x"), lesson("y")}})
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.FetchError)
	assert.Equal(t, []string{"x", "y"}, ids(st.Lessons))
}

func TestLessonReducer_Misc(t *testing.T) {
	st := LessonReducer(InitialLessonState(), SetGenerating{Generating: true})
	assert.True(t, st.IsGenerating)
	st = LessonReducer(st, SetGenerating{Generating: false})
	assert.False(t, st.IsGenerating)

	l := lesson("a")
	st = LessonReducer(st, SetCurrentLesson{Lesson: &l})
	require.NotNil(t, st.CurrentLesson)
	st = LessonReducer(st, SetCurrentLesson{Lesson: nil})
	assert.Nil(t, st.CurrentLesson)
}

func TestLessonReducer_SetLessonsReconcilesCurrent(t *testing.T) {
	t.Run("current missing from the list is dropped", func(t *testing.T) {
		st := reduce(InitialLessonState(),
			AddLesson{Lesson: lesson("gone")},
			SetLessons{Lessons: []models.Lesson{lesson("x"), lesson("y")}},
		)
		assert.Nil(t, st.CurrentLesson)
	})

	t.Run("current present in the list takes the fetched copy", func(t *testing.T) {
		fetched := lesson("x")
		fetched.Topic = "fetched topic"
		st := reduce(InitialLessonState(),
			AddLesson{Lesson: lesson("x")},
			SetLessons{Lessons: []models.Lesson{fetched, lesson("y")}},
		)
		require.NotNil(t, st.CurrentLesson)
		assert.Equal(t, "fetched topic", st.CurrentLesson.Topic)

		st.Lessons[0].Topic = "mutated"
		assert.Equal(t, "fetched topic", st.CurrentLesson.Topic)
	})

	t.Run("empty list clears current", func(t *testing.T) {
		st := reduce(InitialLessonState(), AddLesson{Lesson: lesson("a")}, SetLessons{})
		assert.Empty(t, st.Lessons)
		assert.Nil(t, st.CurrentLesson)
	})
}

func TestLessonReducer_ResetLessons(t *testing.T) {
	st := reduce(InitialLessonState(),
		ToggleTheme{},
		AddLesson{Lesson: lesson("a")},
		AddLesson{Lesson: lesson("b")},
		SetGenerating{Generating: true},
		FetchFailed{Err: "boom"},
	)
	require.NotEmpty(t, st.Lessons)

	st = LessonReducer(st, ResetLessons{})
	assert.Empty(t, st.Lessons)
	assert.Nil(t, st.CurrentLesson)
	assert.False(t, st.IsGenerating)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.FetchError)
	assert.Equal(t, ThemeDark, st.Theme)
}
