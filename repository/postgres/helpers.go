package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/taskhub/domain"
)

const taskColumns = `id, title, description, status, user_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}
