package web

import (
	"net/http/httptest"
	"testing"
	"time"

	"neuroteach/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderPage(t *testing.T, r *Renderer, name string, page Page) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, page).Render(w))
	return w.Body.String()
}

func TestRenderer_AllPagesParse(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	for _, name := range []string{"home.html", "login.html", "register.html", "create.html", "lesson.html", "history.html", "not_found.html"} {
		assert.Contains(t, r.pages, name)
	}
	assert.NotContains(t, r.pages, layoutFile)
}

func TestRenderer_HomeForGuestAndUser(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	body := renderPage(t, r, "home.html", Page{Theme: "light", Path: "/"})
	assert.Contains(t, body, `class="light"`)
	assert.Contains(t, body, "Get started")
	assert.Contains(t, body, "How it works")

	user := &models.User{Email: "ann@example.com", Name: "ann"}
	body = renderPage(t, r, "home.html", Page{
		Theme: "dark",
		User:  user,
		Path:  "/",
		Flash: &Flash{Type: "success", Message: "Welcome back!"},
		Content: map[string]any{
			"LessonCount": 1,
			"Recent": []models.Lesson{{
				ID: "l1", Topic: "Optics", Subject: models.SubjectPhysics, Level: "9", Duration: 45,
				CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
			}},
		},
	})
	assert.Contains(t, body, `class="dark"`)
	assert.Contains(t, body, `<span class="avatar" title="ann@example.com">A</span>`)
	assert.Contains(t, body, `<div class="toast success" id="toast">Welcome back!</div>`)
	assert.Contains(t, body, `href="/lesson/l1"`)
	assert.Contains(t, body, "05.03.2024")
	assert.Contains(t, body, "Physics")
}

func TestRenderer_NotFoundMessage(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	assert.Contains(t, renderPage(t, r, "not_found.html", Page{}), "Page not found.")
	assert.Contains(t, renderPage(t, r, "not_found.html", Page{Content: "Lesson not found."}), "Lesson not found.")
}

func TestRenderer_MissingTemplate(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	inst := r.Instance("nope.html", Page{})
	inst.WriteContentType(w)
	assert.Error(t, inst.Render(w))
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestMarkdown(t *testing.T) {
	html := string(Markdown("**5 min.** Warm-up\n\n- one\n- two"))
	assert.Contains(t, html, "<strong>5 min.</strong>")
	assert.Contains(t, html, "<li>one</li>")

	html = string(Markdown("hello <script>alert(1)</script>"))
	assert.NotContains(t, html, "<script>")
}

func TestFuncMap_Initial(t *testing.T) {
	initial := FuncMap()["initial"].(func(*models.User) string)

	assert.Equal(t, "?", initial(nil))
	assert.Equal(t, "?", initial(&models.User{}))
	assert.Equal(t, "Я", initial(&models.User{Name: "яна"}))
	assert.Equal(t, "B", initial(&models.User{Email: "bob@example.com"}))
}
