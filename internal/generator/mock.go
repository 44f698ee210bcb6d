package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"neuroteach/shared/models"

	"github.com/google/uuid"
)

// MockGenerator produces templated lessons without any external service.
type MockGenerator struct {
	latency time.Duration
	now     func() time.Time
	newID   func() string
}

// NewMockGenerator creates a mock generator that sleeps latency before every answer.
func NewMockGenerator(latency time.Duration) *MockGenerator {
	return &MockGenerator{latency: latency, now: time.Now, newID: uuid.NewString}
}

func (g *MockGenerator) GenerateLesson(ctx context.Context, req models.LessonRequest) (*models.Lesson, error) {
	if err := sleep(ctx, g.latency); err != nil {
		return nil, err
	}
	return &models.Lesson{
		ID:        g.newID(),
		Title:     req.Topic,
		Subject:   req.Subject,
		Topic:     req.Topic,
		Level:     req.Level,
		Duration:  req.Duration,
		Style:     req.Style,
		CreatedAt: g.now().UTC(),
		Plan:      mockPlan(req),
	}, nil
}

func (g *MockGenerator) GenerateVideoScript(ctx context.Context, lesson models.Lesson) (string, error) {
	if err := lesson.Plan.Validate(); err != nil {
		return "", fmt.Errorf("%w: lesson has no plan", models.ErrGenerationFailed)
	}
	if err := sleep(ctx, g.latency); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "VIDEO SCRIPT: %s\n\n", lesson.Topic)
	scenes := []struct{ title, text string }{
		{"Opening", lesson.Plan.Introduction},
		{"Main part", lesson.Plan.Explanation},
		{"Exercise", lesson.Plan.Practice},
		{"Wrap-up", lesson.Plan.Conclusion},
	}
	for i, s := range scenes {
		fmt.Fprintf(&b, "Scene %d. %s\n[On screen: %s]\nNarrator: %s\n\n", i+1, s.title, lesson.Topic, firstSentence(s.text))
	}
	return strings.TrimSpace(b.String()), nil
}

func mockPlan(req models.LessonRequest) *models.LessonPlan {
	intro := req.Duration * 15 / 100
	practice := req.Duration * 30 / 100
	conclusion := req.Duration * 10 / 100
	explanation := req.Duration - intro - practice - conclusion

	tone := map[models.LessonStyle]string{
		models.StyleStrict:   "Define the key terms precisely and state the formal rules",
		models.StyleEasy:     "Explain the idea in plain words, one small step at a time",
		models.StyleExamples: "Walk through three worked examples from everyday life",
		models.StyleCreative: "Turn the topic into a short story or a role-play for the class",
	}[req.Style]
	if tone == "" {
		tone = "Explain the main ideas"
	}

	return &models.LessonPlan{
		Introduction: fmt.Sprintf("**%d min.** Greet the class (%s) and introduce the topic \"%s\". Ask what students already know about it.",
			intro, req.Level, req.Topic),
		Explanation: fmt.Sprintf("**%d min.** %s. Cover the core of \"%s\" in %s.",
			explanation, tone, req.Topic, strings.ToLower(req.Subject.Label())),
		Practice: fmt.Sprintf("**%d min.** Students solve tasks on \"%s\" in pairs, then discuss the answers together.",
			practice, req.Topic),
		Conclusion: fmt.Sprintf("**%d min.** Summarise the lesson, answer questions and set homework on \"%s\".",
			conclusion, req.Topic),
	}
}

// firstSentence drops the bold duration prefix and returns the first sentence.
func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "**"); ok {
		if _, after, found := strings.Cut(rest, "**"); found {
			text = strings.TrimSpace(after)
		}
	}
	text = strings.ReplaceAll(text, "**", "")
	if i := strings.IndexAny(text, ".!?"); i >= 0 && i+1 < len(text) {
		return text[:i+1]
	}
	return text
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
