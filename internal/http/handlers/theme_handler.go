package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/services"
)

// ThemeResponse is the display preference handed to the presentation layer.
type ThemeResponse struct {
	Mode string `json:"mode" example:"dark" enums:"light,dark"`
	Dark bool   `json:"dark" example:"true"`
}

// SetThemeRequest is the JSON payload for choosing a mode.
type SetThemeRequest struct {
	Mode string `json:"mode" binding:"required" example:"light" enums:"light,dark"`
}

func themeResponse(m domain.ThemeMode) ThemeResponse {
	return ThemeResponse{Mode: string(m), Dark: m == domain.ThemeDark}
}

// GetTheme godoc
// @ID       getTheme
// @Summary  Current theme mode
// @Tags     Preferences
// @Produce  json
// @Success  200  {object} handlers.ThemeResponse
// @Router   /preferences/theme [get]
func (h *Handlers) GetTheme(c *gin.Context) {
	ok(c, http.StatusOK, themeResponse(h.themeSvc.Mode()))
}

// SetTheme godoc
// @ID       setTheme
// @Summary  Choose the theme mode
// @Tags     Preferences
// @Accept   json
// @Produce  json
// @Param    body  body  handlers.SetThemeRequest  true  "Mode"
// @Success  200  {object} handlers.ThemeResponse
// @Failure  400  {object} handlers.ErrorResponse "Unknown mode"
// @Failure  500  {object} handlers.ErrorResponse "Could not persist"
// @Router   /preferences/theme [put]
func (h *Handlers) SetTheme(c *gin.Context) {
	var req SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode required (light or dark)")
		return
	}
	m, err := h.themeSvc.Set(c.Request.Context(), domain.ThemeMode(req.Mode))
	switch {
	case errors.Is(err, services.ErrInvalidTheme):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "mode must be light or dark")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeThemeFailed, "could not save theme")
		return
	}
	ok(c, http.StatusOK, themeResponse(m))
}

// ToggleTheme godoc
// @ID       toggleTheme
// @Summary  Flip between light and dark
// @Tags     Preferences
// @Produce  json
// @Success  200  {object} handlers.ThemeResponse
// @Failure  500  {object} handlers.ErrorResponse "Could not persist"
// @Router   /preferences/theme/toggle [post]
func (h *Handlers) ToggleTheme(c *gin.Context) {
	m, err := h.themeSvc.Toggle(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeThemeFailed, "could not save theme")
		return
	}
	ok(c, http.StatusOK, themeResponse(m))
}
