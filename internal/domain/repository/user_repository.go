package repository

import (
	"context"
	"errors"

	"github.com/taskflow-app/taskflow/internal/domain/entity"
)

// ErrNotFound is returned when a row does not exist or is not visible
// to the caller. Repository implementations never distinguish the two.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user whose email is
// already registered (case-insensitive).
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
