package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"
	"fitplan/workout-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound   = errors.New("workout plan not found")
	ErrWorkoutValidation = errors.New("workout plan validation failed")
	ErrSnapshotFailed    = errors.New("failed to export workout plan snapshot")
)

// SnapshotResult is returned when a plan is exported to object storage.
type SnapshotResult struct {
	ObjectKey   string
	DownloadURL string
}

// --- Service Interface ---

// WorkoutService is the lifecycle layer for workout plans: create, fetch,
// list, partial update, progress save, cycle completion, deletion.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, userID primitive.ObjectID, name string, plan domain.PlanDocument, durationDays *int, expirationDate *time.Time) (*domain.WorkoutPlan, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error)
	ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) error
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
	DeactivateAll(ctx context.Context, userID primitive.ObjectID) error
	SaveProgress(ctx context.Context, userID, workoutID primitive.ObjectID, plan domain.PlanDocument) (*domain.WorkoutPlan, error)
	FinishCycle(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error)
	ExportSnapshot(ctx context.Context, userID, workoutID primitive.ObjectID) (*SnapshotResult, error)
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo repository.WorkoutRepository
	fileStorage storage.FileStorage
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, fileStorage storage.FileStorage) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		fileStorage: fileStorage,
	}
}

// CreateWorkout validates and stores a freshly generated plan. Every other
// plan the user owns is deactivated first so the new one becomes the single
// active plan. The two store calls are not wrapped in a transaction; the
// partial unique index on (userId, isActive) catches the rare interleaving.
func (s *workoutService) CreateWorkout(ctx context.Context, userID primitive.ObjectID, name string, plan domain.PlanDocument, durationDays *int, expirationDate *time.Time) (*domain.WorkoutPlan, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrWorkoutValidation)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkoutValidation, err)
	}
	if durationDays != nil && *durationDays <= 0 {
		return nil, fmt.Errorf("%w: durationDays must be positive", ErrWorkoutValidation)
	}
	if expirationDate != nil && !expirationDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: expirationDate must be in the future", ErrWorkoutValidation)
	}

	if err := s.workoutRepo.DeactivateAllForUser(ctx, userID); err != nil {
		return nil, err
	}

	workout := &domain.WorkoutPlan{
		UserID:               userID,
		Name:                 name,
		Plan:                 plan,
		CompletionPercentage: 0,
		IsActive:             true,
		CyclesCompleted:      0,
		DurationDays:         durationDays,
		// An explicit expiration wins; otherwise the store derives one from
		// durationDays at insert time.
		ExpirationDate: expirationDate,
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}

	// Fetch again so CreatedAt/UpdatedAt and the derived expiration date
	// reflect what the store persisted.
	return s.workoutRepo.GetByID(ctx, workoutID, userID)
}

// GetWorkout fetches a single plan owned by the caller.
func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// ListWorkouts returns every plan owned by the caller, newest first.
func (s *workoutService) ListWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// UpdateWorkout applies a partial update; absent fields are untouched.
func (s *workoutService) UpdateWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, update repository.WorkoutUpdate) error {
	if update.IsEmpty() {
		return fmt.Errorf("%w: at least one field must be supplied", ErrWorkoutValidation)
	}
	if update.Plan != nil {
		if err := update.Plan.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrWorkoutValidation, err)
		}
	}
	if update.CompletionPercentage != nil && (*update.CompletionPercentage < 0 || *update.CompletionPercentage > 100) {
		return fmt.Errorf("%w: completionPercentage must be between 0 and 100", ErrWorkoutValidation)
	}
	if update.CyclesCompleted != nil && *update.CyclesCompleted < 0 {
		return fmt.Errorf("%w: cyclesCompleted cannot be negative", ErrWorkoutValidation)
	}

	// Activating one plan deactivates all others first, preserving the
	// single-active-plan invariant.
	if update.IsActive != nil && *update.IsActive {
		if err := s.workoutRepo.DeactivateAllForUser(ctx, userID); err != nil {
			return err
		}
	}

	err := s.workoutRepo.Update(ctx, workoutID, userID, update)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// DeleteWorkout removes an owned plan.
func (s *workoutService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWorkoutNotFound
	}
	return err
}

// DeactivateAll sets every plan of the caller inactive. Safe to repeat.
func (s *workoutService) DeactivateAll(ctx context.Context, userID primitive.ObjectID) error {
	return s.workoutRepo.DeactivateAllForUser(ctx, userID)
}

// SaveProgress accepts the caller's plan document with fresh completion
// flags, recomputes the percentage from those flags and writes both in one
// store update. The percentage is never taken from the client.
func (s *workoutService) SaveProgress(ctx context.Context, userID, workoutID primitive.ObjectID, plan domain.PlanDocument) (*domain.WorkoutPlan, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkoutValidation, err)
	}

	percentage := plan.CompletionPercentage()
	update := repository.WorkoutUpdate{
		Plan:                 &plan,
		CompletionPercentage: &percentage,
	}
	if err := s.workoutRepo.Update(ctx, workoutID, userID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.GetWorkout(ctx, userID, workoutID)
}

// FinishCycle closes one full pass through the plan: all completion flags
// are cleared, the percentage resets to zero and the cycle counter
// increments by exactly one, in a single store write.
func (s *workoutService) FinishCycle(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	workout, err := s.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	cleared := workout.Plan
	cleared.ResetCompletion()

	if err := s.workoutRepo.FinishCycle(ctx, workoutID, userID, cleared); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return s.GetWorkout(ctx, userID, workoutID)
}

// ExportSnapshot serializes an owned plan to JSON, uploads it to object
// storage and hands back a presigned download URL.
func (s *workoutService) ExportSnapshot(ctx context.Context, userID, workoutID primitive.ObjectID) (*SnapshotResult, error) {
	workout, err := s.GetWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}

	snapshot, err := json.MarshalIndent(workout, "", "  ")
	if err != nil {
		return nil, ErrSnapshotFailed
	}

	objectKey := path.Join("snapshots", userID.Hex(), workoutID.Hex(), uuid.NewString()+".json")
	if err := s.fileStorage.UploadObject(ctx, objectKey, "application/json", snapshot); err != nil {
		return nil, ErrSnapshotFailed
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrSnapshotFailed
	}

	return &SnapshotResult{
		ObjectKey:   objectKey,
		DownloadURL: downloadURL,
	}, nil
}
