package repository

import (
	"context"

	"github.com/fastygo/taskhub/domain"
)

type UserRepository interface {
	// Create inserts the user and fills user.ID. It returns domain.ErrConflict
	// when the username is already taken.
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Delete removes the user and, through the foreign key, all of their tasks.
	// Not exposed over HTTP.
	Delete(ctx context.Context, id int64) error
}
