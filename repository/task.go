package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskhub/domain"
)

type TaskFilter struct {
	OwnerID int64
	Search  string
}

// TaskRepository scopes every read and write by owner. Mutations report whether
// a row matched instead of failing, so callers decide how to treat a miss.
type TaskRepository interface {
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) (bool, error)
	Complete(ctx context.Context, ownerID, id int64, at time.Time) (bool, error)
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
}
