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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	// Basic validation; more robust validation belongs in the service layer.
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		// The unique index on email surfaces as a duplicate key error here.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordHash replaces the stored password hash for a user.
func (r *mongoUserRepository) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{"passwordHash": passwordHash})
}

// UpdateEncryptedAPIKey stores the sealed OpenAI key for a user.
func (r *mongoUserRepository) UpdateEncryptedAPIKey(ctx context.Context, id primitive.ObjectID, encryptedKey string) error {
	return r.setFields(ctx, id, bson.M{"encryptedApiKey": encryptedKey})
}

// ClearEncryptedAPIKey removes the stored OpenAI key for a user.
func (r *mongoUserRepository) ClearEncryptedAPIKey(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$unset": bson.M{"encryptedApiKey": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// ModifiedCount is 0 when no key was stored, which is fine.
	return nil
}

// UpdateSelectedModel stores the user's preferred generation model.
func (r *mongoUserRepository) UpdateSelectedModel(ctx context.Context, id primitive.ObjectID, model string) error {
	return r.setFields(ctx, id, bson.M{"selectedModel": model})
}

// setFields applies a $set update to a single user document and bumps updatedAt.
func (r *mongoUserRepository) setFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	filter := bson.M{"_id": id}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failure is not fatal; queries still work unindexed.
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
