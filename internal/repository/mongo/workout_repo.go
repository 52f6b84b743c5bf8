package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout plan.
func (r *mongoWorkoutRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("workout plan requires userId and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	// Expiration is derived once, from the immutable creation timestamp.
	if plan.DurationDays != nil && plan.ExpirationDate == nil {
		expiration := now.AddDate(0, 0, *plan.DurationDays)
		plan.ExpirationDate = &expiration
	}

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		// The partial unique index on (userId, isActive=true) trips here when
		// a concurrent activation slipped in between deactivate-all and insert.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout plan by id, scoped to its owner.
// A plan belonging to another user is reported as not found.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id, userID primitive.ObjectID) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	filter := bson.M{"_id": id, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByUserID retrieves all plans owned by a user, newest first.
func (r *mongoWorkoutRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.WorkoutPlan, error) {
	var plans []domain.WorkoutPlan
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Empty slice when the user has no plans, not an error.
	return plans, nil
}

// Update applies a partial update to an owned plan. Only the fields carried
// by the WorkoutUpdate are written; absent fields keep their stored values.
func (r *mongoWorkoutRepository) Update(ctx context.Context, id, userID primitive.ObjectID, update repository.WorkoutUpdate) error {
	if update.IsEmpty() {
		return repository.ErrUpdateFailed
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.CompletionPercentage != nil {
		set["completionPercentage"] = *update.CompletionPercentage
	}
	if update.IsActive != nil {
		set["isActive"] = *update.IsActive
	}
	if update.CyclesCompleted != nil {
		set["cyclesCompleted"] = *update.CyclesCompleted
	}
	if update.Plan != nil {
		set["plan"] = *update.Plan
	}

	filter := bson.M{"_id": id, "userId": userID}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateAllForUser sets isActive=false on every plan owned by the user.
// Running it against a user with no active plans is a no-op.
func (r *mongoWorkoutRepository) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"userId": userID, "isActive": true}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// Delete removes a plan, scoped to its owner.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "userId": userID}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the plan never existed or it belongs to someone else.
		return repository.ErrNotFound
	}
	return nil
}

// FinishCycle stores the cleared plan document, resets progress to zero and
// increments the cycle counter, all in a single document write so a racing
// progress save cannot interleave between the three changes.
func (r *mongoWorkoutRepository) FinishCycle(ctx context.Context, id, userID primitive.ObjectID, clearedPlan domain.PlanDocument) error {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{
		"$set": bson.M{
			"plan":                 clearedPlan,
			"completionPercentage": 0,
			"updatedAt":            time.Now().UTC(),
		},
		"$inc": bson.M{"cyclesCompleted": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: listing a user's plans newest first.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// At most one active plan per user, enforced at the store.
			Keys: bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isActive": true}),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
