package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

// List matches the search term as a literal, case-sensitive substring of the title.
func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = $1
	  AND ($2 = '' OR strpos(title, $2) > 0)
	ORDER BY id DESC
	`
	rows, err := r.pool.Query(ctx, query, filter.OwnerID, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, status, user_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		task.OwnerID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) (bool, error) {
	if task == nil {
		return false, domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		status = $5,
		updated_at = $6
	WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Status),
		task.UpdatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Complete(ctx context.Context, ownerID, id int64, at time.Time) (bool, error) {
	const query = `
	UPDATE tasks
	SET status = $3, updated_at = $4
	WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, ownerID, string(domain.TaskDone), at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
