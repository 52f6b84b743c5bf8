package repository

import (
	"context"

	"fitplan/workout-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	UpdateEncryptedAPIKey(ctx context.Context, id primitive.ObjectID, encryptedKey string) error
	ClearEncryptedAPIKey(ctx context.Context, id primitive.ObjectID) error
	UpdateSelectedModel(ctx context.Context, id primitive.ObjectID, model string) error
}

// WorkoutUpdate describes a partial update to a workout plan. Nil fields are
// left untouched in the store; only supplied fields are written.
type WorkoutUpdate struct {
	CompletionPercentage *int
	IsActive             *bool
	CyclesCompleted      *int
	Plan                 *domain.PlanDocument
}

// IsEmpty reports whether the update carries no fields at all.
func (u WorkoutUpdate) IsEmpty() bool {
	return u.CompletionPercentage == nil && u.IsActive == nil &&
		u.CyclesCompleted == nil && u.Plan == nil
}

// WorkoutRepository defines the interface for interacting with workout plan
// data. Every query that targets a single plan filters by the owning user in
// addition to the plan id; a plan owned by someone else is indistinguishable
// from a missing one.
type WorkoutRepository interface {
	Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.WorkoutPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error)
	Update(ctx context.Context, id, userID primitive.ObjectID, update WorkoutUpdate) error
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error

	// FinishCycle atomically stores the cleared plan document, resets the
	// completion percentage and increments the cycle counter in one write.
	FinishCycle(ctx context.Context, id, userID primitive.ObjectID, clearedPlan domain.PlanDocument) error
}
