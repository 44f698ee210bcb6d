package store

import (
	"neuroteach/shared/models"
)

// Theme is the display theme of a session.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// LessonState is the lesson collection state of one browser session.
type LessonState struct {
	Lessons       []models.Lesson // newest first, ids unique
	CurrentLesson *models.Lesson
	IsGenerating  bool
	IsLoading     bool   // remote fetch in flight
	FetchError    string // last remote fetch failure, cleared by the next fetch
	Theme         Theme
}

// InitialLessonState is the state of a fresh session.
func InitialLessonState() LessonState {
	return LessonState{Theme: ThemeLight}
}

// LessonAction is the closed set of lesson transitions.
type LessonAction interface {
	lessonAction()
}

type (
	SetLessons       struct{ Lessons []models.Lesson }
	AddLesson        struct{ Lesson models.Lesson }
	SetCurrentLesson struct{ Lesson *models.Lesson }
	DeleteLesson     struct{ ID string }
	SetGenerating    struct{ Generating bool }
	ToggleTheme      struct{}
	UpdateLessonPlan struct{ Update models.LessonPlanUpdate }
	FetchStarted     struct{}
	FetchFailed      struct{ Err string }
	ResetLessons     struct{}
)

func (SetLessons) lessonAction()       {}
func (AddLesson) lessonAction()        {}
func (SetCurrentLesson) lessonAction() {}
func (DeleteLesson) lessonAction()     {}
func (SetGenerating) lessonAction()    {}
func (ToggleTheme) lessonAction()      {}
func (UpdateLessonPlan) lessonAction() {}
func (FetchStarted) lessonAction()     {}
func (FetchFailed) lessonAction()      {}
func (ResetLessons) lessonAction()     {}

// LessonReducer is the pure lesson transition function. Slices of the previous
// state are never modified.
func LessonReducer(state LessonState, action LessonAction) LessonState {
	switch a := action.(type) {
	case SetLessons:
		state.Lessons = append([]models.Lesson(nil), a.Lessons...)
		state.IsLoading = false
		state.FetchError = ""
		// a current lesson missing from the fetched list is dropped
		if state.CurrentLesson != nil {
			if i := indexOf(state.Lessons, state.CurrentLesson.ID); i >= 0 {
				current := state.Lessons[i]
				state.CurrentLesson = &current
			} else {
				state.CurrentLesson = nil
			}
		}
	case AddLesson:
		lessons := make([]models.Lesson, 0, len(state.Lessons)+1)
		lessons = append(lessons, a.Lesson)
		for _, l := range state.Lessons {
			if l.ID != a.Lesson.ID {
				lessons = append(lessons, l)
			}
		}
		state.Lessons = lessons
		current := a.Lesson
		state.CurrentLesson = &current
	case SetCurrentLesson:
		if a.Lesson == nil {
			state.CurrentLesson = nil
		} else {
			current := *a.Lesson
			state.CurrentLesson = &current
		}
	case DeleteLesson:
		idx := indexOf(state.Lessons, a.ID)
		if idx < 0 {
			return state
		}
		lessons := make([]models.Lesson, 0, len(state.Lessons)-1)
		lessons = append(lessons, state.Lessons[:idx]...)
		lessons = append(lessons, state.Lessons[idx+1:]...)
		state.Lessons = lessons
		if state.CurrentLesson != nil && state.CurrentLesson.ID == a.ID {
			state.CurrentLesson = nil
		}
	case SetGenerating:
		state.IsGenerating = a.Generating
	case ToggleTheme:
		if state.Theme == ThemeDark {
			state.Theme = ThemeLight
		} else {
			state.Theme = ThemeDark
		}
	case UpdateLessonPlan:
		idx := indexOf(state.Lessons, a.Update.ID)
		if idx >= 0 {
			lessons := append([]models.Lesson(nil), state.Lessons...)
			lessons[idx] = a.Update.Apply(lessons[idx])
			state.Lessons = lessons
		}
		if state.CurrentLesson != nil && state.CurrentLesson.ID == a.Update.ID {
			current := a.Update.Apply(*state.CurrentLesson)
			state.CurrentLesson = &current
		}
	case FetchStarted:
		state.IsLoading = true
		state.FetchError = ""
	case FetchFailed:
		state.IsLoading = false
		state.FetchError = a.Err
	case ResetLessons:
		// theme survives a reset
		theme := state.Theme
		state = InitialLessonState()
		state.Theme = theme
	}
	return state
}

func indexOf(lessons []models.Lesson, id string) int {
	for i := range lessons {
		if lessons[i].ID == id {
			return i
		}
	}
	return -1
}
