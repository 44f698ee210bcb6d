package store

import (
	"context"
	"errors"
	"sync"

	"neuroteach/internal/storage"
	"neuroteach/shared/models"
)

type fakeAuthBackend struct {
	session *models.Session
	err     error
	calls   int
}

func (f *fakeAuthBackend) Login(_ context.Context, email, _ string) (*models.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeAuthBackend) Register(_ context.Context, email, _ string, name string) (*models.Session, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

// recordingStorage wraps MemoryStorage, counts writes and can fail on demand.
type recordingStorage struct {
	*storage.MemoryStorage
	mu      sync.Mutex
	writes  []string
	failSet map[string]bool
}

func newRecordingStorage() *recordingStorage {
	return &recordingStorage{MemoryStorage: storage.NewMemoryStorage(), failSet: map[string]bool{}}
}

func (r *recordingStorage) Set(ctx context.Context, key, value string) error {
	r.mu.Lock()
	fail := r.failSet[key]
	r.writes = append(r.writes, key)
	r.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return r.MemoryStorage.Set(ctx, key, value)
}

type fakeSource struct {
	lessons   []models.Lesson
	err       error
	gotToken  string
	deleted   []string
	deleteErr error
	block     bool
}

func (f *fakeSource) ListLessons(ctx context.Context, token string) ([]models.Lesson, error) {
	f.gotToken = token
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.lessons, nil
}

func (f *fakeSource) DeleteLesson(_ context.Context, _ string, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeGenerator struct {
	lesson   *models.Lesson
	script   string
	err      error
	onCall   func()
	requests []models.LessonRequest
}

func (f *fakeGenerator) GenerateLesson(_ context.Context, req models.LessonRequest) (*models.Lesson, error) {
	f.requests = append(f.requests, req)
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.lesson, nil
}

func (f *fakeGenerator) GenerateVideoScript(_ context.Context, _ models.Lesson) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.script, nil
}

func samplePlan() *models.LessonPlan {
	return &models.LessonPlan{
		Introduction: "intro",
		Explanation:  "explanation",
		Practice:     "practice",
		Conclusion:   "conclusion",
	}
}

func lesson(id string) models.Lesson {
	return models.Lesson{ID: id, Subject: models.SubjectPhysics, Topic: "topic " + id, Duration: 30, Style: models.StyleExamples}
}
