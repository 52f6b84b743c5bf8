package api

import (
	"errors"
	"net/http"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"
	"fitplan/workout-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout lifecycle service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

// CreateWorkoutRequest defines the expected JSON for saving a generated plan.
type CreateWorkoutRequest struct {
	Name         string              `json:"name" binding:"required"`
	Plan         domain.PlanDocument `json:"plan" binding:"required"`
	DurationDays *int                `json:"durationDays,omitempty"`
	// ExpirationDate overrides the duration-derived expiration when supplied.
	ExpirationDate *time.Time `json:"expirationDate,omitempty"`
}

// UpdateWorkoutRequest carries any subset of the updatable fields. Absent
// fields are left untouched, not zeroed.
type UpdateWorkoutRequest struct {
	CompletionPercentage *int                 `json:"completionPercentage,omitempty"`
	IsActive             *bool                `json:"isActive,omitempty"`
	CyclesCompleted      *int                 `json:"cyclesCompleted,omitempty"`
	Plan                 *domain.PlanDocument `json:"plan,omitempty"`
}

// SaveProgressRequest carries the plan document with fresh completion flags.
type SaveProgressRequest struct {
	Plan domain.PlanDocument `json:"plan" binding:"required"`
}

// WorkoutResponse is the DTO for returning workout plan details.
type WorkoutResponse struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Plan                 domain.PlanDocument `json:"plan"`
	CompletionPercentage int                 `json:"completionPercentage"`
	IsActive             bool                `json:"isActive"`
	CyclesCompleted      int                 `json:"cyclesCompleted"`
	DurationDays         *int                `json:"durationDays,omitempty"`
	ExpirationDate       *time.Time          `json:"expirationDate,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
}

// MapWorkoutToResponse converts a domain.WorkoutPlan to WorkoutResponse DTO.
func MapWorkoutToResponse(w *domain.WorkoutPlan) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	return WorkoutResponse{
		ID:                   w.ID.Hex(),
		Name:                 w.Name,
		Plan:                 w.Plan,
		CompletionPercentage: w.CompletionPercentage,
		IsActive:             w.IsActive,
		CyclesCompleted:      w.CyclesCompleted,
		DurationDays:         w.DurationDays,
		ExpirationDate:       w.ExpirationDate,
		CreatedAt:            w.CreatedAt,
	}
}

// MapWorkoutsToResponse converts a slice of domain.WorkoutPlan to DTOs.
func MapWorkoutsToResponse(workouts []domain.WorkoutPlan) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		responses[i] = MapWorkoutToResponse(&workouts[i])
	}
	return responses
}

// workoutIDFromPath parses the :id path parameter, or aborts with 404. An
// unparseable id is treated the same as an unknown one.
func workoutIDFromPath(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusNotFound, "Workout not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Handler Methods ---

// ListWorkouts returns every plan owned by the caller, newest first.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListWorkouts(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": MapWorkoutsToResponse(workouts)})
}

// GetWorkout returns a single owned plan.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.GetWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": MapWorkoutToResponse(workout)})
}

// CreateWorkout stores a generated plan and makes it the caller's single
// active one.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Name and workout plan are required")
		return
	}

	workout, err := h.workoutService.CreateWorkout(c.Request.Context(), userID, req.Name, req.Plan, req.DurationDays, req.ExpirationDate)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutValidation) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create workout.")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": MapWorkoutToResponse(workout)})
}

// UpdateWorkout applies a partial update to an owned plan.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid update payload")
		return
	}

	update := repository.WorkoutUpdate{
		CompletionPercentage: req.CompletionPercentage,
		IsActive:             req.IsActive,
		CyclesCompleted:      req.CyclesCompleted,
		Plan:                 req.Plan,
	}

	err := h.workoutService.UpdateWorkout(c.Request.Context(), userID, workoutID, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		case errors.Is(err, service.ErrWorkoutValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update workout.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteWorkout removes an owned plan.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	err := h.workoutService.DeleteWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeactivateAll sets every plan of the caller inactive.
func (h *WorkoutHandler) DeactivateAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.workoutService.DeactivateAll(c.Request.Context(), userID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to deactivate workouts.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveProgress rewrites the per-exercise completion flags and the derived
// completion percentage in one operation.
func (h *WorkoutHandler) SaveProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	var req SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Workout plan with completion flags is required")
		return
	}

	workout, err := h.workoutService.SaveProgress(c.Request.Context(), userID, workoutID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkoutNotFound):
			abortWithError(c, http.StatusNotFound, "Workout not found")
		case errors.Is(err, service.ErrWorkoutValidation):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save progress.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": MapWorkoutToResponse(workout)})
}

// FinishCycle closes one pass through the plan: flags cleared, progress
// reset, cycle counter incremented.
func (h *WorkoutHandler) FinishCycle(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.FinishCycle(c.Request.Context(), userID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to finish cycle.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": MapWorkoutToResponse(workout)})
}

// ExportSnapshot archives the plan as JSON in object storage and returns a
// temporary download link.
func (h *WorkoutHandler) ExportSnapshot(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	workoutID, ok := workoutIDFromPath(c)
	if !ok {
		return
	}

	result, err := h.workoutService.ExportSnapshot(c.Request.Context(), userID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, "Workout not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to export workout.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"downloadUrl": result.DownloadURL,
		"objectKey":   result.ObjectKey,
	})
}
