package handler

import (
	"net/http"

	"neuroteach/internal/session"
	"neuroteach/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "neuroteach_session"
	sessionCookieTTL  = 30 * 24 * 60 * 60 // секунды
	workspaceKey      = "workspace"
)

// Handler - слой страниц планировщика уроков.
type Handler struct {
	registry      *session.Registry
	flashSecret   []byte
	secureCookies bool
	logger        *zap.Logger
}

func NewHandler(registry *session.Registry, flashSecret string, secureCookies bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry:      registry,
		flashSecret:   []byte(flashSecret),
		secureCookies: secureCookies,
		logger:        logger.Named("Handler"),
	}
}

// RegisterRoutes регистрирует страницы. authLimiter применяется к POST /login и /register.
func (h *Handler) RegisterRoutes(router *gin.Engine, authLimiter gin.HandlerFunc) {
	if authLimiter == nil {
		authLimiter = func(c *gin.Context) { c.Next() }
	}

	pages := router.Group("/", h.sessionMiddleware)
	pages.GET("/", h.home)
	pages.POST("/theme", h.toggleTheme)

	guest := pages.Group("/", h.redirectIfAuthenticated)
	guest.GET("/login", h.loginPage)
	guest.POST("/login", authLimiter, h.login)
	guest.GET("/register", h.registerPage)
	guest.POST("/register", authLimiter, h.register)

	private := pages.Group("/", h.requireAuth)
	private.POST("/logout", h.logout)
	private.GET("/create", h.createPage)
	private.POST("/create", h.createLesson)
	private.GET("/lesson/:id", h.lessonPage)
	private.GET("/lesson/:id/download", h.downloadLesson)
	private.POST("/lesson/:id/video-script", h.generateVideoScript)
	private.GET("/history", h.historyPage)
	private.POST("/history/:id/delete", h.deleteLesson)

	pages.GET("/ws", h.serveWS)

	router.NoRoute(h.sessionMiddleware, func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "not_found.html", "Not found", nil)
	})
}

// sessionMiddleware находит или создает Workspace браузерной сессии.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	id, err := c.Cookie(sessionCookieName)
	if err != nil || uuid.Validate(id) != nil {
		id = session.NewID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookieName, id, sessionCookieTTL, "/", "", h.secureCookies, true)
	}
	ws, created := h.registry.GetOrCreate(c.Request.Context(), id)
	if created {
		h.logger.Debug("Workspace created", zap.String("sessionID", id), zap.Bool("authenticated", ws.Auth.State().IsAuthenticated))
	}
	c.Set(workspaceKey, ws)
	c.Next()
}

func workspace(c *gin.Context) *session.Workspace {
	return c.MustGet(workspaceKey).(*session.Workspace)
}

func (h *Handler) requireAuth(c *gin.Context) {
	if !workspace(c).Auth.State().IsAuthenticated {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) redirectIfAuthenticated(c *gin.Context) {
	if workspace(c).Auth.State().IsAuthenticated {
		c.Redirect(http.StatusFound, "/")
		c.Abort()
		return
	}
	c.Next()
}

// render рисует страницу с toast из flash-куки.
func (h *Handler) render(c *gin.Context, status int, name, title string, content any) {
	flash, err := h.popFlash(c)
	if err != nil {
		h.logger.Debug("Ignoring invalid flash cookie", zap.Error(err))
	}
	h.renderWithFlash(c, status, name, title, content, flash)
}

// renderWithFlash рисует страницу с явно заданным toast (ошибки формы без редиректа).
func (h *Handler) renderWithFlash(c *gin.Context, status int, name, title string, content any, flash *web.Flash) {
	ws := workspace(c)
	auth := ws.Auth.State()
	c.HTML(status, name, web.Page{
		Title:   title,
		Theme:   string(ws.Lessons.State().Theme),
		User:    auth.User,
		Flash:   flash,
		Path:    c.Request.URL.Path,
		Content: content,
	})
}

// redirectWithFlash - Post/Redirect/Get с toast на следующей странице.
func (h *Handler) redirectWithFlash(c *gin.Context, location, msgType, message string) {
	h.setFlash(c, msgType, message)
	c.Redirect(http.StatusSeeOther, location)
}

func errorFlash(message string) *web.Flash {
	return &web.Flash{Type: "error", Message: message}
}
