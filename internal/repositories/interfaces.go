package repositories

import (
	"context"
	"errors"

	"github.com/lumen-edu/quiz-session-service/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository resolves authenticated users from the identity provider.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}
