package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"neuroteach/shared/models"

	"github.com/gin-gonic/gin/render"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "layout.html"

// Flash - одноразовое уведомление (toast).
type Flash struct {
	Type    string // success | error | info
	Message string
}

// Page - общие данные любой страницы.
type Page struct {
	Title   string
	Theme   string
	User    *models.User
	Flash   *Flash
	Path    string
	Content any
}

// Renderer реализует gin render.HTMLRender поверх встроенных шаблонов.
// Каждая страница - отдельный набор layout.html + страница.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer парсит все шаблоны при старте, ошибка шаблона фатальна для сервера.
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("TemplateRenderer")

	layout, err := template.New(layoutFile).Funcs(FuncMap()).ParseFS(templatesFS, "templates/"+layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		if name == layoutFile {
			continue
		}
		set, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := set.ParseFS(templatesFS, file); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = set
	}
	log.Info("Templates loaded", zap.Int("pages", len(pages)))
	return &Renderer{pages: pages, logger: log}, nil
}

// Instance реализует render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error("Template not found", zap.String("templateName", name))
		return missingTemplate{name: name}
	}
	return render.HTML{Template: tmpl, Name: layoutFile, Data: data}
}

type missingTemplate struct{ name string }

func (m missingTemplate) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %s not found", m.name)
}

func (missingTemplate) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown рендерит текст плана урока. Сырой HTML из текста не пропускается.
func Markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(s), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(s) + "</p>")
	}
	return template.HTML(buf.String())
}

// FuncMap - функции, доступные в шаблонах.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown":     Markdown,
		"subjectLabel": func(s models.Subject) string { return s.Label() },
		"styleLabel":   func(s models.LessonStyle) string { return s.Label() },
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("02.01.2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("02.01.2006 15:04")
		},
		"initial": func(u *models.User) string {
			if u == nil {
				return "?"
			}
			name := u.Name
			if name == "" {
				name = u.Email
			}
			if name == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(name)[:1]))
		},
	}
}
