package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"neuroteach/internal/domain/dto"
	"neuroteach/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLessonClient(t *testing.T, handler http.HandlerFunc) LessonServiceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewLessonServiceClient(srv.URL, 2*time.Second, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestLessonClient_ListLessons(t *testing.T) {
	c := newTestLessonClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/lessons", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"id":"L1","predmet":"physics","durationM":30,"tema":"Optics","AOld":"9","style":"examples",
			 "createdAt":"2024-01-01T10:00:00Z","updatedAt":"2024-01-02T10:00:00.123Z",
			 "structure":{"introduction":"i","explanation":"e","practice":"p","conclusion":"c","imageUrl":"img"}},
			{"id":"L2","predmet":"history","durationM":45,"tema":"Rome","AOld":"5","style":"easy","createdAt":"bad"}
		]`))
	})

	lessons, err := c.ListLessons(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, lessons, 2)

	assert.Equal(t, "L1", lessons[0].ID)
	assert.Equal(t, "Optics", lessons[0].Topic)
	assert.Equal(t, "Optics", lessons[0].Title)
	assert.Equal(t, models.SubjectPhysics, lessons[0].Subject)
	require.NotNil(t, lessons[0].Plan)
	assert.Equal(t, "p", lessons[0].Plan.Practice)
	assert.Equal(t, "img", lessons[0].ImageURL)

	assert.Equal(t, "L2", lessons[1].ID)
	assert.Nil(t, lessons[1].Plan)
	assert.True(t, lessons[1].CreatedAt.IsZero())
}

func TestLessonClient_ListLessonsErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ``, models.ErrUnauthorized},
		{"not json", http.StatusOK, `oops`, models.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestLessonClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ListLessons(context.Background(), "tok")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLessonClient_DeleteLesson(t *testing.T) {
	var gotPath string
	c := newTestLessonClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		if r.URL.Path == "/api/lessons/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteLesson(context.Background(), "tok", "L1"))
	assert.Equal(t, "/api/lessons/L1", gotPath)

	require.ErrorIs(t, c.DeleteLesson(context.Background(), "tok", "missing"), models.ErrLessonNotFound)
}

func TestLessonClient_Generate(t *testing.T) {
	c := newTestLessonClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lessons/generate":
			var req dto.LessonRequestDTO
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			_ = json.NewEncoder(w).Encode(dto.LessonDTO{
				ID:        "new",
				Predmet:   req.Predmet,
				Tema:      req.Tema,
				DurationM: req.DurationM,
				Structure: &dto.StructureDTO{Introduction: "i", Explanation: "e", Practice: "p", Conclusion: "c"},
			})
		case "/api/lessons/new/video-script":
			_, _ = w.Write([]byte(`{"videoScript":"Scene 1"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	req := dto.FromLessonRequest(models.LessonRequest{Subject: models.SubjectBiology, Topic: "Cells", Level: "7", Duration: 40, Style: models.StyleEasy})
	lesson, err := c.GenerateLesson(context.Background(), "tok", req)
	require.NoError(t, err)
	assert.Equal(t, "new", lesson.ID)
	assert.Equal(t, "Cells", lesson.Topic)
	require.NoError(t, lesson.Plan.Validate())

	script, err := c.GenerateVideoScript(context.Background(), "tok", "new")
	require.NoError(t, err)
	assert.Equal(t, "Scene 1", script)
}
