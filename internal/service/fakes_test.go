package service

import (
	"context"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes mirroring the mongo implementations' contract:
// owner-scoped filters, sentinel errors, the partial unique index on active
// plans and the single-write finish-cycle update.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) UpdateEncryptedAPIKey(_ context.Context, id primitive.ObjectID, encryptedKey string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.EncryptedAPIKey = encryptedKey
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) ClearEncryptedAPIKey(_ context.Context, id primitive.ObjectID) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.EncryptedAPIKey = ""
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *fakeUserRepo) UpdateSelectedModel(_ context.Context, id primitive.ObjectID, model string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.SelectedModel = model
	user.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeWorkoutRepo struct {
	plans map[primitive.ObjectID]*domain.WorkoutPlan
	clock time.Time
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{
		plans: make(map[primitive.ObjectID]*domain.WorkoutPlan),
		clock: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick gives every write a distinct, increasing timestamp so newest-first
// ordering is deterministic.
func (r *fakeWorkoutRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakeWorkoutRepo) Create(_ context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.IsActive {
		for _, existing := range r.plans {
			if existing.UserID == plan.UserID && existing.IsActive {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	plan.ID = primitive.NewObjectID()
	now := r.tick()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	if plan.DurationDays != nil && plan.ExpirationDate == nil {
		expiration := now.AddDate(0, 0, *plan.DurationDays)
		plan.ExpirationDate = &expiration
	}
	stored := *plan
	r.plans[plan.ID] = &stored
	return plan.ID, nil
}

func (r *fakeWorkoutRepo) GetByID(_ context.Context, id, userID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	plan, ok := r.plans[id]
	if !ok || plan.UserID != userID {
		return nil, repository.ErrNotFound
	}
	copied := *plan
	return &copied, nil
}

func (r *fakeWorkoutRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	var result []domain.WorkoutPlan
	for _, plan := range r.plans {
		if plan.UserID == userID {
			result = append(result, *plan)
		}
	}
	// Newest first, matching the mongo sort.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].CreatedAt.After(result[i].CreatedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result, nil
}

func (r *fakeWorkoutRepo) Update(_ context.Context, id, userID primitive.ObjectID, update repository.WorkoutUpdate) error {
	if update.IsEmpty() {
		return repository.ErrUpdateFailed
	}
	plan, ok := r.plans[id]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	if update.CompletionPercentage != nil {
		plan.CompletionPercentage = *update.CompletionPercentage
	}
	if update.IsActive != nil {
		plan.IsActive = *update.IsActive
	}
	if update.CyclesCompleted != nil {
		plan.CyclesCompleted = *update.CyclesCompleted
	}
	if update.Plan != nil {
		plan.Plan = *update.Plan
	}
	plan.UpdatedAt = r.tick()
	return nil
}

func (r *fakeWorkoutRepo) DeactivateAllForUser(_ context.Context, userID primitive.ObjectID) error {
	for _, plan := range r.plans {
		if plan.UserID == userID && plan.IsActive {
			plan.IsActive = false
			plan.UpdatedAt = r.tick()
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	plan, ok := r.plans[id]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakeWorkoutRepo) FinishCycle(_ context.Context, id, userID primitive.ObjectID, clearedPlan domain.PlanDocument) error {
	plan, ok := r.plans[id]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	plan.Plan = clearedPlan
	plan.CompletionPercentage = 0
	plan.CyclesCompleted++
	plan.UpdatedAt = r.tick()
	return nil
}

func (r *fakeWorkoutRepo) activeCountFor(userID primitive.ObjectID) int {
	count := 0
	for _, plan := range r.plans {
		if plan.UserID == userID && plan.IsActive {
			count++
		}
	}
	return count
}

type fakeFileStorage struct {
	uploads map[string][]byte
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{uploads: make(map[string][]byte)}
}

func (s *fakeFileStorage) UploadObject(_ context.Context, objectKey string, _ string, body []byte) error {
	s.uploads[objectKey] = body
	return nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://storage.test/" + objectKey + "?signed=1", nil
}

func (s *fakeFileStorage) DeleteObject(_ context.Context, objectKey string) error {
	delete(s.uploads, objectKey)
	return nil
}
