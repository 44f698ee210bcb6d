package dto

import (
	"strings"
	"time"

	"neuroteach/shared/models"
)

// LessonDTO - урок в том виде, в котором его отдает бекенд.
type LessonDTO struct {
	ID        string        `json:"id"`
	Predmet   string        `json:"predmet"`
	DurationM int           `json:"durationM"`
	Tema      string        `json:"tema"`
	AOld      string        `json:"AOld"`
	Style     string        `json:"style"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	Structure *StructureDTO `json:"structure,omitempty"`
}

// StructureDTO - вложенный блок плана урока.
type StructureDTO struct {
	Introduction    string `json:"introduction"`
	IntroductionURL string `json:"introductionUrl,omitempty"`
	Explanation     string `json:"explanation"`
	ExplanationURL  string `json:"explanationUrl,omitempty"`
	Practice        string `json:"practice"`
	PracticeURL     string `json:"practiceUrl,omitempty"`
	Conclusion      string `json:"conclusion"`
	ConclusionURL   string `json:"conclusionUrl,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	AudioURL        string `json:"audioUrl,omitempty"`
}

// LessonRequestDTO - тело запроса генерации урока на бекенде.
type LessonRequestDTO struct {
	Predmet   string `json:"predmet"`
	Tema      string `json:"tema"`
	AOld      string `json:"AOld"`
	DurationM int    `json:"durationM"`
	Style     string `json:"style"`
}

// MapLessonDTOToLesson переводит DTO бекенда в модель фронтенда.
// Функция тотальная: нераспознанная дата превращается в нулевое время,
// subject и style передаются без проверки enum.
func MapLessonDTOToLesson(d LessonDTO) models.Lesson {
	lesson := models.Lesson{
		ID:        d.ID,
		Title:     d.Tema,
		Subject:   models.Subject(d.Predmet),
		Topic:     d.Tema,
		Level:     d.AOld,
		Duration:  d.DurationM,
		Style:     models.LessonStyle(d.Style),
		CreatedAt: parseTimestamp(d.CreatedAt),
		UpdatedAt: parseTimestamp(d.UpdatedAt),
	}
	if d.Structure != nil {
		s := d.Structure
		lesson.Plan = &models.LessonPlan{
			Introduction:    s.Introduction,
			IntroductionURL: s.IntroductionURL,
			Explanation:     s.Explanation,
			ExplanationURL:  s.ExplanationURL,
			Practice:        s.Practice,
			PracticeURL:     s.PracticeURL,
			Conclusion:      s.Conclusion,
			ConclusionURL:   s.ConclusionURL,
		}
		lesson.ImageURL = s.ImageURL
		lesson.AudioURL = s.AudioURL
	}
	return lesson
}

// MapLessonDTOs маппит список, сохраняя порядок.
func MapLessonDTOs(dtos []LessonDTO) []models.Lesson {
	lessons := make([]models.Lesson, 0, len(dtos))
	for _, d := range dtos {
		lessons = append(lessons, MapLessonDTOToLesson(d))
	}
	return lessons
}

// FromLessonRequest - обратный маппинг формы создания урока в тело запроса.
func FromLessonRequest(r models.LessonRequest) LessonRequestDTO {
	return LessonRequestDTO{
		Predmet:   string(r.Subject),
		Tema:      r.Topic,
		AOld:      r.Level,
		DurationM: r.Duration,
		Style:     string(r.Style),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999", // без зоны, как иногда отдает бекенд
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
