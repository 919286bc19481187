package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskhub/domain"
	appLogger "github.com/fastygo/taskhub/pkg/logger"
	"github.com/fastygo/taskhub/repository"
)

// Options tune how mutations that match no row are reported.
type Options struct {
	StrictNotFound bool
}

// UseCase implements the task operations for a single authenticated owner.
// Every mutation answers with the owner's full, freshly read list.
type UseCase struct {
	tasks  repository.TaskRepository
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func New(tasks repository.TaskRepository, opts Options, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (uc *UseCase) List(ctx context.Context, ownerID int64, search string) ([]domain.Task, error) {
	return uc.tasks.List(ctx, repository.TaskFilter{OwnerID: ownerID, Search: search})
}

func (uc *UseCase) Create(ctx context.Context, ownerID int64, title, description string) ([]domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrValidation
	}

	now := uc.now()
	task := &domain.Task{
		Title:       title,
		Description: description,
		Status:      domain.TaskPending,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	appLogger.WithRequestID(ctx, uc.logger).Debug("task created", zap.Int64("task_id", task.ID))
	return uc.List(ctx, ownerID, "")
}

// Update replaces title, description and status. An empty status resets the
// task to pending.
func (uc *UseCase) Update(ctx context.Context, ownerID, taskID int64, title, description string, status domain.TaskStatus) ([]domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrValidation
	}
	if status == "" {
		status = domain.TaskPending
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	matched, err := uc.tasks.Update(ctx, &domain.Task{
		ID:          taskID,
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Status:      status,
		UpdatedAt:   uc.now(),
	})
	return uc.afterMutation(ctx, "update", ownerID, taskID, matched, err)
}

func (uc *UseCase) Delete(ctx context.Context, ownerID, taskID int64) ([]domain.Task, error) {
	matched, err := uc.tasks.Delete(ctx, ownerID, taskID)
	return uc.afterMutation(ctx, "delete", ownerID, taskID, matched, err)
}

func (uc *UseCase) Complete(ctx context.Context, ownerID, taskID int64) ([]domain.Task, error) {
	matched, err := uc.tasks.Complete(ctx, ownerID, taskID, uc.now())
	return uc.afterMutation(ctx, "complete", ownerID, taskID, matched, err)
}

func (uc *UseCase) afterMutation(ctx context.Context, op string, ownerID, taskID int64, matched bool, err error) ([]domain.Task, error) {
	if err != nil {
		return nil, err
	}
	if !matched {
		appLogger.WithRequestID(ctx, uc.logger).Debug("task mutation matched no row",
			zap.String("operation", op),
			zap.Int64("task_id", taskID))
		if uc.opts.StrictNotFound {
			return nil, domain.ErrTaskNotFound
		}
	}
	return uc.List(ctx, ownerID, "")
}
