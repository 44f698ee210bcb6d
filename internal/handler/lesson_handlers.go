package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"neuroteach/internal/store"
	"neuroteach/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const recentLessonsOnHome = 3

type homeContent struct {
	Recent      []models.Lesson
	LessonCount int
}

type createContent struct {
	Form         lessonForm
	Subjects     []models.Option
	Styles       []models.Option
	IsGenerating bool
}

type lessonContent struct {
	Lesson       models.Lesson
	IsGenerating bool
}

type historyContent struct {
	Lessons   []models.Lesson
	Total     int
	Query     string
	Subject   string
	Subjects  []models.Option
	IsLoading bool
}

func (h *Handler) home(c *gin.Context) {
	lessons := workspace(c).Lessons.State().Lessons
	recent := lessons
	if len(recent) > recentLessonsOnHome {
		recent = recent[:recentLessonsOnHome]
	}
	h.render(c, http.StatusOK, "home.html", "", homeContent{Recent: recent, LessonCount: len(lessons)})
}

func (h *Handler) toggleTheme(c *gin.Context) {
	workspace(c).Lessons.ToggleTheme()
	c.Redirect(http.StatusSeeOther, backTo(c))
}

// backTo возвращает путь страницы, с которой пришел запрос. Чужие хосты игнорируются.
func backTo(c *gin.Context) string {
	ref, err := url.Parse(c.Request.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != c.Request.Host) {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

func (h *Handler) createContent(c *gin.Context, form lessonForm) createContent {
	return createContent{
		Form:         form,
		Subjects:     models.Subjects(),
		Styles:       models.Styles(),
		IsGenerating: workspace(c).Lessons.State().IsGenerating,
	}
}

func (h *Handler) createPage(c *gin.Context) {
	h.render(c, http.StatusOK, "create.html", "Create lesson", h.createContent(c, defaultLessonForm()))
}

func (h *Handler) createLesson(c *gin.Context) {
	form := defaultLessonForm()
	if err := c.ShouldBind(&form); err != nil {
		h.renderWithFlash(c, http.StatusUnprocessableEntity, "create.html", "Create lesson",
			h.createContent(c, form), errorFlash(validationMessage(err)))
		return
	}

	ws := workspace(c)
	lesson, err := ws.Lessons.GenerateLesson(c.Request.Context(), form.request())
	if err != nil {
		status, message := http.StatusBadGateway, "Failed to create the lesson"
		if errors.Is(err, models.ErrInvalidInput) {
			status, message = http.StatusUnprocessableEntity, msgFillRequired
		}
		h.renderWithFlash(c, status, "create.html", "Create lesson", h.createContent(c, form), errorFlash(message))
		return
	}
	h.redirectWithFlash(c, "/lesson/"+url.PathEscape(lesson.ID), "success", "Lesson created!")
}

// findLesson делает урок текущим. В удаленном режиме при промахе один раз перечитывает список.
func (h *Handler) findLesson(c *gin.Context) (*models.Lesson, bool) {
	ws := workspace(c)
	id := c.Param("id")
	if lesson, ok := ws.Lessons.SelectLesson(id); ok {
		return lesson, true
	}
	if ws.Lessons.Remote() {
		if err := ws.Lessons.FetchLessons(c.Request.Context()); err == nil {
			return ws.Lessons.SelectLesson(id)
		}
	}
	return nil, false
}

func (h *Handler) lessonPage(c *gin.Context) {
	lesson, ok := h.findLesson(c)
	if !ok {
		h.render(c, http.StatusNotFound, "not_found.html", "Not found", "Lesson not found.")
		return
	}
	h.render(c, http.StatusOK, "lesson.html", lesson.Title, lessonContent{
		Lesson:       *lesson,
		IsGenerating: workspace(c).Lessons.State().IsGenerating,
	})
}

func (h *Handler) generateVideoScript(c *gin.Context) {
	ws := workspace(c)
	id := c.Param("id")
	location := "/lesson/" + url.PathEscape(id)
	if _, err := ws.Lessons.GenerateVideoScript(c.Request.Context(), id); err != nil {
		if errors.Is(err, models.ErrLessonNotFound) {
			h.render(c, http.StatusNotFound, "not_found.html", "Not found", "Lesson not found.")
			return
		}
		h.redirectWithFlash(c, location, "error", "Failed to create the video script")
		return
	}
	h.redirectWithFlash(c, location, "success", "Video script created!")
}

// downloadLesson отдает план урока Markdown-файлом.
func (h *Handler) downloadLesson(c *gin.Context) {
	lesson, ok := h.findLesson(c)
	if !ok {
		h.render(c, http.StatusNotFound, "not_found.html", "Not found", "Lesson not found.")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lesson-%s.md"`, lesson.ID))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(lessonMarkdown(*lesson)))
}

func lessonMarkdown(l models.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.Title)
	fmt.Fprintf(&b, "- Subject: %s\n- Level: %s\n- Duration: %d min\n- Style: %s\n\n", l.Subject.Label(), l.Level, l.Duration, l.Style.Label())
	if l.Plan != nil {
		fmt.Fprintf(&b, "## Introduction\n\n%s\n\n## Explanation\n\n%s\n\n## Practice\n\n%s\n\n## Conclusion\n\n%s\n",
			l.Plan.Introduction, l.Plan.Explanation, l.Plan.Practice, l.Plan.Conclusion)
	}
	if l.VideoScript != "" {
		fmt.Fprintf(&b, "\n## Video script\n\n%s\n", l.VideoScript)
	}
	return b.String()
}

func (h *Handler) historyPage(c *gin.Context) {
	ws := workspace(c)
	var fetchError string
	if ws.Lessons.Remote() {
		if err := ws.Lessons.FetchLessons(c.Request.Context()); err != nil {
			fetchError = ws.Lessons.State().FetchError
		}
	}

	state := ws.Lessons.State()
	query, subject := c.Query("q"), c.DefaultQuery("subject", store.SubjectAll)
	content := historyContent{
		Lessons:   store.FilterLessons(state.Lessons, query, subject),
		Total:     len(state.Lessons),
		Query:     query,
		Subject:   subject,
		Subjects:  models.Subjects(),
		IsLoading: state.IsLoading,
	}
	if fetchError != "" {
		h.renderWithFlash(c, http.StatusOK, "history.html", "History", content, errorFlash(fetchError))
		return
	}
	h.render(c, http.StatusOK, "history.html", "History", content)
}

func (h *Handler) deleteLesson(c *gin.Context) {
	ws := workspace(c)
	id := c.Param("id")
	if err := ws.Lessons.DeleteLesson(c.Request.Context(), id); err != nil {
		h.logger.Warn("Lesson delete failed", zap.String("lessonID", id), zap.Error(err))
		h.redirectWithFlash(c, "/history", "error", "Could not delete the lesson")
		return
	}
	h.redirectWithFlash(c, "/history", "success", "Lesson removed from history")
}
