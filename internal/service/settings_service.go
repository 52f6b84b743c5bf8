package service

import (
	"context"
	"errors"

	"fitplan/workout-app/internal/domain"
	"fitplan/workout-app/internal/repository"
	"fitplan/workout-app/internal/security"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSettings is what the settings surface exposes: the user record minus
// secrets, plus whether a provider key is on file.
type UserSettings struct {
	User           *domain.User
	HasProviderKey bool
}

// SettingsUpdate carries the optional settings fields; nil means unchanged.
type SettingsUpdate struct {
	ProviderKey   *string
	SelectedModel *string
}

// --- Service Interface ---
type SettingsService interface {
	GetSettings(ctx context.Context, userID primitive.ObjectID) (*UserSettings, error)
	UpdateSettings(ctx context.Context, userID primitive.ObjectID, update SettingsUpdate) (*domain.User, error)
	DeleteProviderKey(ctx context.Context, userID primitive.ObjectID) error
}

// --- Service Implementation ---

type settingsService struct {
	userRepo  repository.UserRepository
	keyCipher *security.KeyCipher
}

// NewSettingsService creates a new instance of settingsService.
func NewSettingsService(userRepo repository.UserRepository, keyCipher *security.KeyCipher) SettingsService {
	return &settingsService{
		userRepo:  userRepo,
		keyCipher: keyCipher,
	}
}

// GetSettings returns the caller's profile without secret material.
func (s *settingsService) GetSettings(ctx context.Context, userID primitive.ObjectID) (*UserSettings, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	hasKey := user.HasProviderKey()
	user.PasswordHash = ""
	user.EncryptedAPIKey = ""
	return &UserSettings{
		User:           user,
		HasProviderKey: hasKey,
	}, nil
}

// UpdateSettings seals and stores a new provider key and/or the preferred
// generation model. At least one field must be supplied.
func (s *settingsService) UpdateSettings(ctx context.Context, userID primitive.ObjectID, update SettingsUpdate) (*domain.User, error) {
	if update.ProviderKey == nil && update.SelectedModel == nil {
		return nil, errors.New("nothing to update")
	}
	if update.ProviderKey != nil && *update.ProviderKey == "" {
		return nil, errors.New("API key is required")
	}

	if update.ProviderKey != nil {
		sealed, err := s.keyCipher.Seal(*update.ProviderKey)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdateEncryptedAPIKey(ctx, userID, sealed); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	if update.SelectedModel != nil {
		if err := s.userRepo.UpdateSelectedModel(ctx, userID, *update.SelectedModel); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	user.EncryptedAPIKey = ""
	return user, nil
}

// DeleteProviderKey removes the stored key. Deleting an absent key succeeds.
func (s *settingsService) DeleteProviderKey(ctx context.Context, userID primitive.ObjectID) error {
	err := s.userRepo.ClearEncryptedAPIKey(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
