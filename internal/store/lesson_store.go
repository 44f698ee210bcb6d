package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neuroteach/internal/storage"
	"neuroteach/shared/models"

	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a remote lesson list request.
const DefaultFetchTimeout = 10 * time.Second

// LessonSource lists the lessons of the signed-in user from a remote collection.
type LessonSource interface {
	ListLessons(ctx context.Context, token string) ([]models.Lesson, error)
}

// LessonRemover is implemented by sources that can delete lessons remotely.
type LessonRemover interface {
	DeleteLesson(ctx context.Context, token, id string) error
}

// Generator produces lesson content.
type Generator interface {
	GenerateLesson(ctx context.Context, req models.LessonRequest) (*models.Lesson, error)
	GenerateVideoScript(ctx context.Context, lesson models.Lesson) (string, error)
}

// LessonStore owns the lesson collection of one browser session.
type LessonStore struct {
	*Store[LessonState, LessonAction]
	source       LessonSource // nil in the local variant
	generator    Generator
	storage      storage.Storage
	fetchTimeout time.Duration
	logger       *zap.Logger
}

// NewLessonStore creates an empty store. source may be nil when lessons live only in memory.
func NewLessonStore(source LessonSource, generator Generator, st storage.Storage, fetchTimeout time.Duration, logger *zap.Logger) *LessonStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &LessonStore{
		Store:        NewStore(LessonReducer, InitialLessonState()),
		source:       source,
		generator:    generator,
		storage:      st,
		fetchTimeout: fetchTimeout,
		logger:       logger.Named("LessonStore"),
	}
}

// Remote reports whether the lesson list comes from a remote collection.
func (s *LessonStore) Remote() bool {
	return s.source != nil
}

// FetchLessons replaces the lesson list with the remote collection. Failures are
// recorded in FetchError and returned; the previous list is kept.
func (s *LessonStore) FetchLessons(ctx context.Context) error {
	if s.source == nil {
		return nil
	}
	s.Dispatch(FetchStarted{})

	lessons, err := s.fetch(ctx)
	lessonFetchTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		s.logger.Warn("Failed to fetch lessons", zap.Error(err))
		s.Dispatch(FetchFailed{Err: fetchErrorMessage(err)})
		return err
	}
	s.Dispatch(SetLessons{Lessons: lessons})
	s.logger.Debug("Lessons fetched", zap.Int("count", len(lessons)))
	return nil
}

func (s *LessonStore) fetch(ctx context.Context) ([]models.Lesson, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return s.source.ListLessons(ctx, token)
}

func fetchErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The lesson service did not respond in time"
	case errors.Is(err, models.ErrUnauthorized):
		return "Your session has expired, please sign in again"
	default:
		return "Could not load lessons: " + err.Error()
	}
}

// GenerateLesson asks the generator for a new lesson and adds it as the current one.
// The generating flag is raised for the duration of the call.
func (s *LessonStore) GenerateLesson(ctx context.Context, req models.LessonRequest) (*models.Lesson, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", models.ErrGenerationFailed)
	}

	s.Dispatch(SetGenerating{Generating: true})
	defer s.Dispatch(SetGenerating{Generating: false})

	start := time.Now()
	lesson, err := s.generator.GenerateLesson(ctx, req)
	if err == nil {
		if lesson == nil {
			err = fmt.Errorf("%w: generator returned no lesson", models.ErrGenerationFailed)
		} else {
			err = lesson.Plan.Validate()
		}
	}
	lessonGenerationDuration.WithLabelValues("plan").Observe(time.Since(start).Seconds())
	lessonGenerationsTotal.WithLabelValues("plan", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("Lesson generation failed", zap.String("topic", req.Topic), zap.Error(err))
		return nil, err
	}

	s.Dispatch(AddLesson{Lesson: *lesson})
	s.logger.Info("Lesson generated", zap.String("lessonID", lesson.ID), zap.String("topic", lesson.Topic))
	return lesson, nil
}

// GenerateVideoScript generates a video script for the lesson with the given id and
// stores it on both the list entry and the current lesson.
func (s *LessonStore) GenerateVideoScript(ctx context.Context, id string) (string, error) {
	lesson, ok := s.find(id)
	if !ok {
		return "", models.ErrLessonNotFound
	}
	if s.generator == nil {
		return "", fmt.Errorf("%w: no generator configured", models.ErrGenerationFailed)
	}

	s.Dispatch(SetGenerating{Generating: true})
	defer s.Dispatch(SetGenerating{Generating: false})

	start := time.Now()
	script, err := s.generator.GenerateVideoScript(ctx, lesson)
	var update models.LessonPlanUpdate
	if err == nil {
		update, err = models.NewLessonPlanUpdate(id, nil, &script)
	}
	lessonGenerationDuration.WithLabelValues("video_script").Observe(time.Since(start).Seconds())
	lessonGenerationsTotal.WithLabelValues("video_script", resultLabel(err)).Inc()
	if err != nil {
		s.logger.Error("Video script generation failed", zap.String("lessonID", id), zap.Error(err))
		return "", err
	}

	s.Dispatch(UpdateLessonPlan{Update: update})
	return script, nil
}

// DeleteLesson removes a lesson, remotely first when the source supports it.
func (s *LessonStore) DeleteLesson(ctx context.Context, id string) error {
	if remover, ok := s.source.(LessonRemover); ok {
		token, err := s.token(ctx)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
		if err := remover.DeleteLesson(ctx, token, id); err != nil && !errors.Is(err, models.ErrLessonNotFound) {
			s.logger.Error("Failed to delete lesson remotely", zap.String("lessonID", id), zap.Error(err))
			return err
		}
	}
	s.Dispatch(DeleteLesson{ID: id})
	return nil
}

// SelectLesson makes the lesson with the given id current.
func (s *LessonStore) SelectLesson(id string) (*models.Lesson, bool) {
	lesson, ok := s.find(id)
	if !ok {
		return nil, false
	}
	s.Dispatch(SetCurrentLesson{Lesson: &lesson})
	return &lesson, true
}

// ToggleTheme flips the display theme.
func (s *LessonStore) ToggleTheme() Theme {
	return s.Dispatch(ToggleTheme{}).Theme
}

// Reset drops the lessons of the signed-out account. The theme is kept.
func (s *LessonStore) Reset() {
	s.Dispatch(ResetLessons{})
}

func (s *LessonStore) find(id string) (models.Lesson, bool) {
	st := s.State()
	if i := indexOf(st.Lessons, id); i >= 0 {
		return st.Lessons[i], true
	}
	// a freshly created lesson may be current without being in the list yet
	if st.CurrentLesson != nil && st.CurrentLesson.ID == id {
		return *st.CurrentLesson, true
	}
	return models.Lesson{}, false
}

func (s *LessonStore) token(ctx context.Context) (string, error) {
	token, found, err := s.storage.Get(ctx, storage.TokenKey)
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if !found || token == "" {
		return "", models.ErrUnauthorized
	}
	return token, nil
}
