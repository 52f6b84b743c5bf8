package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UserResponse excludes sensitive info like the password hash and the
// encrypted provider key.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	SelectedModel string    `json:"selectedModel,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// --- Handler Methods ---

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserAlreadyExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrPasswordTooShort):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrHashingFailed):
			abortWithError(c, http.StatusInternalServerError, "Could not process registration")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during registration")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login authenticates a user and returns a JWT token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAuthenticationFailed):
			abortWithError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrTokenGeneration):
			abortWithError(c, http.StatusInternalServerError, "Could not process login")
		default:
			abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred during login")
		}
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// ChangePassword verifies the current password and stores a new one.
// A wrong current password or a too-short new one is the caller's mistake,
// not a server failure.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Current and new password are required")
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrPasswordTooShort):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to change password.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:            user.ID.Hex(),
		Name:          user.Name,
		Email:         user.Email,
		SelectedModel: user.SelectedModel,
		CreatedAt:     user.CreatedAt,
	}
}
