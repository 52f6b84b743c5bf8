package api

import (
	"errors"
	"net/http"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// GenerationHandler holds the plan generation service dependency.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// GeneratePlanRequest defines the expected JSON for a generation call.
// SplitType is accepted as an alias for TrainingType; clients have sent both.
type GeneratePlanRequest struct {
	Gender          string               `json:"gender" binding:"required"`
	Height          int                  `json:"height" binding:"required"`
	TrainingType    string               `json:"trainingType"`
	SplitType       string               `json:"splitType"`
	SessionDuration string               `json:"sessionDuration" binding:"required"`
	Level           string               `json:"level" binding:"required"`
	Frequency       string               `json:"frequency" binding:"required"`
	SplitsCount     int                  `json:"splitsCount" binding:"required"`
	Model           string               `json:"model"`
	CurrentPlan     *domain.PlanDocument `json:"currentPlan,omitempty"`
}

// GeneratePlan invokes the provider and returns the parsed plan document.
// Nothing is persisted; the client decides whether to save the result.
func (h *GenerationHandler) GeneratePlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainingType := req.TrainingType
	if trainingType == "" {
		trainingType = req.SplitType
	}

	plan, err := h.generationService.GeneratePlan(c.Request.Context(), userID, service.PlanRequest{
		Gender:          req.Gender,
		Height:          req.Height,
		TrainingType:    trainingType,
		SessionDuration: req.SessionDuration,
		Level:           req.Level,
		Frequency:       req.Frequency,
		SplitsCount:     req.SplitsCount,
		Model:           req.Model,
		CurrentPlan:     req.CurrentPlan,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrModelRequired):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrKeyDecryptionFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrGenerationUnavailable):
			abortWithError(c, http.StatusServiceUnavailable, "AI generation is temporarily unavailable")
		case errors.Is(err, service.ErrMalformedPlan):
			abortWithError(c, http.StatusInternalServerError, "Failed to parse the generated plan")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate workout plan")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
