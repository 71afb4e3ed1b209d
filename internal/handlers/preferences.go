package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miniapp-template/dashboard/internal/middleware"
	"github.com/miniapp-template/dashboard/internal/services"
	appErrors "github.com/miniapp-template/dashboard/pkg/errors"
	"github.com/miniapp-template/dashboard/pkg/response"
)

// PreferencesHandler serves the per-user preference blob. Storage is
// in-memory only; preferences do not survive a restart.
type PreferencesHandler struct {
	svc *services.PreferencesService
}

// NewPreferencesHandler constructs a handler using the provided service.
func NewPreferencesHandler(svc *services.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{svc: svc}
}

// Get returns the caller's preferences, with defaults for first-time users.
func (h *PreferencesHandler) Get(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	prefs, err := h.svc.Get(userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, prefs)
}

// Update shallow-merges the request body over the caller's stored preferences.
func (h *PreferencesHandler) Update(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return
	}

	prefs, err := h.svc.Update(userID, updates)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, http.StatusOK, prefs, "Preferences updated successfully")
}
