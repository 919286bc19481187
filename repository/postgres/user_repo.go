package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

// Create is a single statement so two concurrent registrations of the same
// name cannot both succeed or observe each other's half-written row.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.Username == "" || user.PasswordHash == "" {
		return domain.ErrValidation
	}

	const query = `
	INSERT INTO users (username, password)
	VALUES ($1, $2)
	ON CONFLICT (username) DO NOTHING
	RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, user.Username, user.PasswordHash).Scan(&user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `
		SELECT id, username, password
		FROM users
		WHERE username = $1
	`
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
