package api

import (
	"errors"
	"net/http"

	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler holds the settings service dependency.
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// UpdateSettingsRequest carries the optional settings fields. The provider
// key is write-only: it is accepted here but never echoed back.
type UpdateSettingsRequest struct {
	ProviderKey   *string `json:"providerKey,omitempty"`
	SelectedModel *string `json:"selectedModel,omitempty"`
}

// SettingsResponse exposes the profile plus whether a provider key is on file.
type SettingsResponse struct {
	User           UserResponse `json:"user"`
	HasProviderKey bool         `json:"hasProviderKey"`
}

// GetSettings returns the caller's profile without secret material.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve settings.")
		}
		return
	}

	c.JSON(http.StatusOK, SettingsResponse{
		User:           MapUserToResponse(settings.User),
		HasProviderKey: settings.HasProviderKey,
	})
}

// UpdateSettings stores a new provider key and/or model preference.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid settings payload")
		return
	}
	if req.ProviderKey == nil && req.SelectedModel == nil {
		abortWithError(c, http.StatusBadRequest, "API key or model selection is required")
		return
	}
	if req.ProviderKey != nil && *req.ProviderKey == "" {
		abortWithError(c, http.StatusBadRequest, "API key is required")
		return
	}

	user, err := h.settingsService.UpdateSettings(c.Request.Context(), userID, service.SettingsUpdate{
		ProviderKey:   req.ProviderKey,
		SelectedModel: req.SelectedModel,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update settings.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": MapUserToResponse(user)})
}

// DeleteProviderKey removes the stored provider key. Safe to repeat.
func (h *SettingsHandler) DeleteProviderKey(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.settingsService.DeleteProviderKey(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete API key.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
