package service

import (
	"context"
	"errors"
	"fmt"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/openai"
	"fitplan/workout-app/internal/repository"
	"fitplan/workout-app/internal/security"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrModelRequired         = errors.New("a generation model must be selected")
	ErrGenerationUnavailable = errors.New("no provider credential is configured")
	ErrGenerationFailed      = errors.New("the provider failed to generate a plan")
	ErrMalformedPlan         = errors.New("the provider returned a malformed plan")
	ErrKeyDecryptionFailed   = errors.New("stored API key could not be decrypted, please configure it again")
)

// PlanRequest carries the training parameters for one generation call.
type PlanRequest struct {
	Gender          string
	Height          int
	TrainingType    string
	SessionDuration string
	Level           string
	Frequency       string
	SplitsCount     int
	Model           string
	// CurrentPlan, when set, makes the provider treat the request as a
	// revision of an existing plan rather than an initial generation.
	CurrentPlan *domain.PlanDocument
}

// --- Service Interface ---
type GenerationService interface {
	GeneratePlan(ctx context.Context, userID primitive.ObjectID, req PlanRequest) (*domain.PlanDocument, error)
}

// --- Service Implementation ---

type generationService struct {
	userRepo     repository.UserRepository
	client       *openai.Client
	keyCipher    *security.KeyCipher
	fallbackKey  string // server-configured provider key, may be empty
}

// NewGenerationService creates the plan generation service. fallbackKey is
// the server-wide provider key used for users without their own.
func NewGenerationService(userRepo repository.UserRepository, client *openai.Client, keyCipher *security.KeyCipher, fallbackKey string) GenerationService {
	return &generationService{
		userRepo:    userRepo,
		client:      client,
		keyCipher:   keyCipher,
		fallbackKey: fallbackKey,
	}
}

// GeneratePlan builds the instruction payload, invokes the provider and
// parses the answer into a validated plan document. Nothing is persisted
// here; a failed call leaves no partial state behind.
func (s *generationService) GeneratePlan(ctx context.Context, userID primitive.ObjectID, req PlanRequest) (*domain.PlanDocument, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}

	apiKey, err := s.resolveProviderKey(ctx, userID)
	if err != nil {
		return nil, err
	}

	exerciseCount := ExerciseCountForDuration(req.SessionDuration)
	prompt := buildGenerationPrompt(req, exerciseCount)

	content, err := s.client.CreateChatCompletion(ctx, apiKey, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.Message{
			{Role: "system", Content: generationSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &openai.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		if errors.Is(err, openai.ErrEmptyCompletion) {
			return nil, ErrGenerationFailed
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	return parsePlanDocument(content)
}

// resolveProviderKey prefers the caller's own decrypted key and falls back
// to the server-configured one.
func (s *generationService) resolveProviderKey(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrGenerationUnavailable
		}
		return "", err
	}

	if user.HasProviderKey() {
		apiKey, err := s.keyCipher.Open(user.EncryptedAPIKey)
		if err != nil {
			return "", ErrKeyDecryptionFailed
		}
		return apiKey, nil
	}

	if s.fallbackKey != "" {
		return s.fallbackKey, nil
	}
	return "", ErrGenerationUnavailable
}
