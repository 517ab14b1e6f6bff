package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// GetUserByEmail retrieves a user by exact email match.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	doc, err := r.store.FindOne(ctx, UsersCollection, docstore.Filter{"email": email})
	if err != nil {
		if errors.Is(err, docstore.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	var user model.User
	if err := docstore.Decode(doc, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}

// CreateUser inserts a new user document and sets user.ID.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	doc := docstore.Document{
		"email":      user.Email,
		"name":       optional(user.Name),
		"avatar_url": optional(user.AvatarURL),
	}

	id, err := r.store.CreateDocument(ctx, UsersCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id
	return nil
}

// UpsertProfile replaces name and avatar_url of the user with the given email,
// creating the user if none exists. Nil values overwrite stored ones.
func (r *Repository) UpsertProfile(ctx context.Context, email string, name, avatarURL *string, updatedAt time.Time) error {
	set := docstore.Document{
		"name":       optional(name),
		"avatar_url": optional(avatarURL),
		"updated_at": updatedAt.UTC(),
	}

	if err := r.store.UpsertOne(ctx, UsersCollection, docstore.Filter{"email": email}, set); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
