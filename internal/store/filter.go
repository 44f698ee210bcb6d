package store

import (
	"strings"

	"neuroteach/shared/models"
)

// SubjectAll matches every subject in FilterLessons.
const SubjectAll = "all"

// FilterLessons returns the lessons whose topic or subject contains query
// (case-insensitive) and whose subject equals subject. An empty or "all"
// subject matches everything. Order is preserved.
func FilterLessons(lessons []models.Lesson, query, subject string) []models.Lesson {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if subject != "" && subject != SubjectAll && string(l.Subject) != subject {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(l.Topic), query) &&
			!strings.Contains(strings.ToLower(string(l.Subject)), query) {
			continue
		}
		out = append(out, l)
	}
	return out
}
