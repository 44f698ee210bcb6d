package dto

import (
	"encoding/json"
	"testing"
	"time"

	"neuroteach/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lessonJSON = `{
	"id": "L1",
	"predmet": "physics",
	"durationM": 45,
	"tema": "Newton's laws",
	"AOld": "9th grade",
	"style": "examples",
	"createdAt": "2024-03-01T10:00:00.000Z",
	"updatedAt": "2024-03-02T11:30:00Z",
	"structure": {
		"introduction": "intro",
		"introductionUrl": "https://cdn.example/intro.png",
		"explanation": "explain",
		"practice": "practice",
		"practiceUrl": "https://cdn.example/practice.png",
		"conclusion": "wrap up",
		"imageUrl": "https://cdn.example/cover.png",
		"audioUrl": "https://cdn.example/voice.mp3"
	}
}`

func TestMapLessonDTOToLesson(t *testing.T) {
	var d LessonDTO
	require.NoError(t, json.Unmarshal([]byte(lessonJSON), &d))

	lesson := MapLessonDTOToLesson(d)

	assert.Equal(t, "L1", lesson.ID)
	assert.Equal(t, models.SubjectPhysics, lesson.Subject)
	assert.Equal(t, "Newton's laws", lesson.Topic)
	assert.Equal(t, "Newton's laws", lesson.Title)
	assert.Equal(t, "9th grade", lesson.Level)
	assert.Equal(t, 45, lesson.Duration)
	assert.Equal(t, models.StyleExamples, lesson.Style)
	assert.True(t, lesson.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))
	assert.True(t, lesson.UpdatedAt.Equal(time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC)))

	require.NotNil(t, lesson.Plan)
	assert.Equal(t, models.LessonPlan{
		Introduction:    "intro",
		IntroductionURL: "https://cdn.example/intro.png",
		Explanation:     "explain",
		Practice:        "practice",
		PracticeURL:     "https://cdn.example/practice.png",
		Conclusion:      "wrap up",
	}, *lesson.Plan)
	assert.Equal(t, "https://cdn.example/cover.png", lesson.ImageURL)
	assert.Equal(t, "https://cdn.example/voice.mp3", lesson.AudioURL)
}

func TestMapLessonDTOToLesson_NoStructure(t *testing.T) {
	t.Run("absent structure", func(t *testing.T) {
		lesson := MapLessonDTOToLesson(LessonDTO{ID: "L2", Predmet: "history"})
		assert.Nil(t, lesson.Plan)
		assert.Empty(t, lesson.ImageURL)
		assert.Empty(t, lesson.AudioURL)
	})

	t.Run("null structure", func(t *testing.T) {
		var d LessonDTO
		require.NoError(t, json.Unmarshal([]byte(`{"id":"L3","structure":null}`), &d))
		assert.Nil(t, MapLessonDTOToLesson(d).Plan)
	})
}

func TestMapLessonDTOToLesson_LooseFields(t *testing.T) {
	lesson := MapLessonDTOToLesson(LessonDTO{
		ID:        "L4",
		Predmet:   "astrology",
		Style:     "chaotic",
		CreatedAt: "not a date",
	})

	// enum значения на границе не проверяются
	assert.Equal(t, models.Subject("astrology"), lesson.Subject)
	assert.False(t, lesson.Subject.Valid())
	assert.Equal(t, models.LessonStyle("chaotic"), lesson.Style)
	assert.True(t, lesson.CreatedAt.IsZero())
	assert.True(t, lesson.UpdatedAt.IsZero())
}

func TestMapLessonDTOs_PreservesOrder(t *testing.T) {
	lessons := MapLessonDTOs([]LessonDTO{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	require.Len(t, lessons, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{lessons[0].ID, lessons[1].ID, lessons[2].ID})

	assert.Empty(t, MapLessonDTOs(nil))
}

func TestFromLessonRequest(t *testing.T) {
	d := FromLessonRequest(models.LessonRequest{
		Subject:  models.SubjectBiology,
		Topic:    "Cells",
		Level:    "adults",
		Duration: 30,
		Style:    models.StyleEasy,
	})
	assert.Equal(t, LessonRequestDTO{Predmet: "biology", Tema: "Cells", AOld: "adults", DurationM: 30, Style: "easy"}, d)
}
