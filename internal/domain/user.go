package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the system. Each user may store one
// encrypted OpenAI API key and a preferred generation model.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON

	// EncryptedAPIKey holds the user's OpenAI key sealed with the server-side
	// encryption key (AES-GCM, base64). Empty string means no key configured.
	EncryptedAPIKey string `bson:"encryptedApiKey,omitempty" json:"-"`

	// SelectedModel is the user's preferred generation model (e.g. "gpt-4.1-nano").
	SelectedModel string `bson:"selectedModel,omitempty" json:"selectedModel,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasProviderKey reports whether the user has an OpenAI key configured.
func (u *User) HasProviderKey() bool {
	return u.EncryptedAPIKey != ""
}
