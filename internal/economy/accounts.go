package economy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/civic-engine/internal/models"
	"github.com/hongminglow/civic-engine/internal/storage"
)

// CreateUser registers a new participant. Balances start at zero: tokens only
// enter an account through ledger transactions, so the balance invariant
// holds from the first read. The password is hashed by the caller.
func (e *Engine) CreateUser(ctx context.Context, username, email, passwordHash string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || passwordHash == "" {
		return models.User{}, ErrInvalidInput
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleCitizen,
		Level:        e.curve.LevelOf(0),
		CreatedAt:    time.Now().UTC(),
	}
	created, err := e.store.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}

	e.log.Info().Str("user_id", created.ID).Str("username", username).Msg("user registered")
	return created, nil
}

// User returns a user by id.
func (e *Engine) User(ctx context.Context, userID string) (models.User, error) {
	return userOrNotFound(e.store.GetUser(ctx, userID))
}

// UserByIdentifier resolves a user by username or email for login.
func (e *Engine) UserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	user, err := e.store.FindUserByUsernameOrEmail(ctx, strings.TrimSpace(identifier))
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
