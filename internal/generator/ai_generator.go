package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"neuroteach/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const lessonPlanSystemPrompt = `You are an experienced teacher who writes lesson plans.
Answer with a single JSON object and nothing else. The object has exactly four string fields:
"introduction", "explanation", "practice", "conclusion".
Each field is the Markdown text of that part of the lesson, including its duration in minutes.
The durations must add up to the total lesson duration.`

const videoScriptSystemPrompt = `You are a scriptwriter for short educational videos.
Write a video script for the lesson plan below as plain text: numbered scenes, each with
what is shown on screen and what the narrator says. Do not use JSON.`

var stylePrompts = map[models.LessonStyle]string{
	models.StyleStrict:   "strict and academic, with precise definitions",
	models.StyleEasy:     "easy and accessible, in plain language",
	models.StyleExamples: "built around practical examples",
	models.StyleCreative: "creative, with games, stories or role-play",
}

// AIGenerator builds lessons with an LLM.
type AIGenerator struct {
	client AIClient
	logger *zap.Logger
	now    func() time.Time
}

func NewAIGenerator(client AIClient, logger *zap.Logger) *AIGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIGenerator{client: client, logger: logger.Named("AIGenerator"), now: time.Now}
}

// GenerateLesson asks the model for a JSON plan. A plan missing any section is rejected as a whole.
func (g *AIGenerator) GenerateLesson(ctx context.Context, req models.LessonRequest) (*models.Lesson, error) {
	text, usage, err := g.client.GenerateText(ctx, lessonPlanSystemPrompt, lessonUserPrompt(req))
	if err != nil {
		return nil, err
	}

	plan, err := parsePlan(text)
	if err != nil {
		g.logger.Warn("Model returned an unusable plan", zap.String("topic", req.Topic), zap.String("response", text), zap.Error(err))
		return nil, err
	}
	g.logger.Debug("Lesson plan generated", zap.String("topic", req.Topic), zap.Int("totalTokens", usage.TotalTokens))

	return &models.Lesson{
		ID:        uuid.NewString(),
		Title:     req.Topic,
		Subject:   req.Subject,
		Topic:     req.Topic,
		Level:     req.Level,
		Duration:  req.Duration,
		Style:     req.Style,
		CreatedAt: g.now().UTC(),
		Plan:      plan,
	}, nil
}

func (g *AIGenerator) GenerateVideoScript(ctx context.Context, lesson models.Lesson) (string, error) {
	if err := lesson.Plan.Validate(); err != nil {
		return "", fmt.Errorf("%w: lesson has no plan", models.ErrGenerationFailed)
	}
	text, _, err := g.client.GenerateText(ctx, videoScriptSystemPrompt, videoUserPrompt(lesson))
	if err != nil {
		return "", err
	}
	script := stripCodeFences(text)
	if script == "" {
		return "", fmt.Errorf("%w: empty video script", models.ErrGenerationFailed)
	}
	return script, nil
}

func lessonUserPrompt(req models.LessonRequest) string {
	style := stylePrompts[req.Style]
	if style == "" {
		style = string(req.Style)
	}
	return fmt.Sprintf("Subject: %s\nTopic: %s\nAudience: %s\nDuration: %d minutes\nStyle: %s",
		req.Subject.Label(), req.Topic, req.Level, req.Duration, style)
}

func videoUserPrompt(l models.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\nAudience: %s\nDuration: %d minutes\n\n", l.Topic, l.Level, l.Duration)
	fmt.Fprintf(&b, "## Introduction\n%s\n\n## Explanation\n%s\n\n## Practice\n%s\n\n## Conclusion\n%s\n",
		l.Plan.Introduction, l.Plan.Explanation, l.Plan.Practice, l.Plan.Conclusion)
	return b.String()
}

func parsePlan(text string) (*models.LessonPlan, error) {
	raw := stripCodeFences(text)
	// the model sometimes wraps the object in prose
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		raw = raw[start : end+1]
	}
	var plan models.LessonPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("%w: plan is not valid JSON: %v", models.ErrGenerationFailed, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	return &plan, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}
