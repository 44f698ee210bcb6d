package models

import (
	"fmt"
	"strings"
	"time"
)

// Subject is the enumerated lesson category.
type Subject string

const (
	SubjectMathematics Subject = "mathematics"
	SubjectHistory     Subject = "history"
	SubjectBiology     Subject = "biology"
	SubjectPhysics     Subject = "physics"
	SubjectChemistry   Subject = "chemistry"
	SubjectLiterature  Subject = "literature"
	SubjectGeography   Subject = "geography"
	SubjectOther       Subject = "other"
)

// LessonStyle is the enumerated presentation style of a lesson.
type LessonStyle string

const (
	StyleStrict   LessonStyle = "strict"
	StyleEasy     LessonStyle = "easy"
	StyleExamples LessonStyle = "examples"
	StyleCreative LessonStyle = "creative"
)

// Option is a value/label pair used to render select boxes.
type Option struct {
	Value string
	Label string
}

var subjectOptions = []Option{
	{Value: string(SubjectMathematics), Label: "Mathematics"},
	{Value: string(SubjectHistory), Label: "History"},
	{Value: string(SubjectBiology), Label: "Biology"},
	{Value: string(SubjectPhysics), Label: "Physics"},
	{Value: string(SubjectChemistry), Label: "Chemistry"},
	{Value: string(SubjectLiterature), Label: "Literature"},
	{Value: string(SubjectGeography), Label: "Geography"},
	{Value: string(SubjectOther), Label: "Other"},
}

var styleOptions = []Option{
	{Value: string(StyleStrict), Label: "Strict and academic"},
	{Value: string(StyleEasy), Label: "Easy and accessible"},
	{Value: string(StyleExamples), Label: "With examples"},
	{Value: string(StyleCreative), Label: "Creative"},
}

// Subjects returns the subjects in display order.
func Subjects() []Option { return append([]Option(nil), subjectOptions...) }

// Styles returns the lesson styles in display order.
func Styles() []Option { return append([]Option(nil), styleOptions...) }

// Valid reports whether s is one of the known subjects.
func (s Subject) Valid() bool { return hasOption(subjectOptions, string(s)) }

// Label returns the human readable subject name; unknown values are returned as is.
func (s Subject) Label() string { return optionLabel(subjectOptions, string(s)) }

// Valid reports whether s is one of the known styles.
func (s LessonStyle) Valid() bool { return hasOption(styleOptions, string(s)) }

// Label returns the human readable style name; unknown values are returned as is.
func (s LessonStyle) Label() string { return optionLabel(styleOptions, string(s)) }

func hasOption(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func optionLabel(opts []Option, v string) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// Lesson is a single generated teaching unit.
type Lesson struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Subject     Subject     `json:"subject"`
	Topic       string      `json:"topic"`
	Level       string      `json:"level"`
	Duration    int         `json:"duration"` // minutes
	Style       LessonStyle `json:"style"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"` // zero when never updated
	Plan        *LessonPlan `json:"plan,omitempty"`
	VideoScript string      `json:"videoScript,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	AudioURL    string      `json:"audioUrl,omitempty"`
}

// LessonPlan is the structured content of a lesson.
type LessonPlan struct {
	Introduction    string `json:"introduction"`
	IntroductionURL string `json:"introductionUrl,omitempty"`
	Explanation     string `json:"explanation"`
	ExplanationURL  string `json:"explanationUrl,omitempty"`
	Practice        string `json:"practice"`
	PracticeURL     string `json:"practiceUrl,omitempty"`
	Conclusion      string `json:"conclusion"`
	ConclusionURL   string `json:"conclusionUrl,omitempty"`
}

// Validate checks that all four text sections are present.
func (p *LessonPlan) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: lesson plan is nil", ErrInvalidInput)
	}
	var missing []string
	if strings.TrimSpace(p.Introduction) == "" {
		missing = append(missing, "introduction")
	}
	if strings.TrimSpace(p.Explanation) == "" {
		missing = append(missing, "explanation")
	}
	if strings.TrimSpace(p.Practice) == "" {
		missing = append(missing, "practice")
	}
	if strings.TrimSpace(p.Conclusion) == "" {
		missing = append(missing, "conclusion")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: lesson plan is missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// LessonPlanUpdate carries a replacement plan and/or video script for one lesson.
// Nil fields are left untouched when the update is applied.
type LessonPlanUpdate struct {
	ID          string
	Plan        *LessonPlan
	VideoScript *string
}

// NewLessonPlanUpdate builds a validated update. At least one of plan or videoScript must be set.
func NewLessonPlanUpdate(id string, plan *LessonPlan, videoScript *string) (LessonPlanUpdate, error) {
	if strings.TrimSpace(id) == "" {
		return LessonPlanUpdate{}, fmt.Errorf("%w: lesson id is empty", ErrInvalidInput)
	}
	if plan == nil && videoScript == nil {
		return LessonPlanUpdate{}, fmt.Errorf("%w: update carries neither plan nor video script", ErrInvalidInput)
	}
	if plan != nil {
		if err := plan.Validate(); err != nil {
			return LessonPlanUpdate{}, err
		}
		cp := *plan
		plan = &cp
	}
	return LessonPlanUpdate{ID: id, Plan: plan, VideoScript: videoScript}, nil
}

// Apply returns a copy of l with the update's present fields replaced.
func (u LessonPlanUpdate) Apply(l Lesson) Lesson {
	if u.Plan != nil {
		cp := *u.Plan
		l.Plan = &cp
	}
	if u.VideoScript != nil {
		l.VideoScript = *u.VideoScript
	}
	return l
}

// LessonRequest is the create-lesson form.
type LessonRequest struct {
	Subject  Subject
	Topic    string
	Level    string
	Duration int // minutes
	Style    LessonStyle
}

const (
	MinLessonDuration = 5
	MaxLessonDuration = 120
)

// Validate checks the required fields of a generation request.
func (r LessonRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Topic) == "":
		return fmt.Errorf("%w: topic is required", ErrInvalidInput)
	case strings.TrimSpace(r.Level) == "":
		return fmt.Errorf("%w: level is required", ErrInvalidInput)
	case r.Duration < MinLessonDuration || r.Duration > MaxLessonDuration:
		return fmt.Errorf("%w: duration must be between %d and %d minutes", ErrInvalidInput, MinLessonDuration, MaxLessonDuration)
	case !r.Subject.Valid():
		return fmt.Errorf("%w: unknown subject %q", ErrInvalidInput, r.Subject)
	case !r.Style.Valid():
		return fmt.Errorf("%w: unknown style %q", ErrInvalidInput, r.Style)
	}
	return nil
}
