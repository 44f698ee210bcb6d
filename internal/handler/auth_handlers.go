package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type authFormContent struct {
	Name  string
	Email string
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", "Log in", authFormContent{})
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderWithFlash(c, http.StatusUnprocessableEntity, "login.html", "Log in",
			authFormContent{Email: form.Email}, errorFlash(validationMessage(err)))
		return
	}

	ws := workspace(c)
	if !ws.Auth.Login(c.Request.Context(), form.Email, form.Password) {
		h.renderWithFlash(c, http.StatusUnauthorized, "login.html", "Log in",
			authFormContent{Email: form.Email}, errorFlash("Invalid email or password"))
		return
	}
	h.afterSignIn(c)
	h.redirectWithFlash(c, "/", "success", "Welcome back!")
}

func (h *Handler) registerPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", "Sign up", authFormContent{})
}

func (h *Handler) register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderWithFlash(c, http.StatusUnprocessableEntity, "register.html", "Sign up",
			authFormContent{Name: form.Name, Email: form.Email}, errorFlash(validationMessage(err)))
		return
	}

	ws := workspace(c)
	if !ws.Auth.Register(c.Request.Context(), form.Email, form.Password, form.Name) {
		h.renderWithFlash(c, http.StatusBadRequest, "register.html", "Sign up",
			authFormContent{Name: form.Name, Email: form.Email}, errorFlash("Could not create the account"))
		return
	}
	h.afterSignIn(c)
	h.redirectWithFlash(c, "/", "success", "Account created! Welcome!")
}

// afterSignIn подтягивает уроки из удаленной коллекции, если она есть.
func (h *Handler) afterSignIn(c *gin.Context) {
	ws := workspace(c)
	// уроки предыдущего аккаунта не должны пережить смену пользователя
	ws.Lessons.Reset()
	if !ws.Lessons.Remote() {
		return
	}
	if err := ws.Lessons.FetchLessons(c.Request.Context()); err != nil {
		h.logger.Warn("Initial lesson fetch failed", zap.String("sessionID", ws.ID), zap.Error(err))
	}
}

func (h *Handler) logout(c *gin.Context) {
	workspace(c).Logout(c.Request.Context())
	h.redirectWithFlash(c, "/", "info", "You have logged out")
}
