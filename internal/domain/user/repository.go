package user

import (
	"context"
)

// Repository persists technician accounts. Create returns ErrLoginTaken
// when the login is already registered.
type Repository interface {
	Create(ctx context.Context, login, passwordHash string) (int, error)
	FindByLogin(ctx context.Context, login string) (User, error)
}
