package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/internal/config"
	pgInfra "github.com/fastygo/taskhub/internal/infrastructure/postgres"
	"github.com/fastygo/taskhub/repository"
)

// openTestPool connects to TEST_DATABASE_URL and skips the test when it is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgInfra.NewPool(ctx, config.DatabaseConfig{URL: url}, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pgInfra.EnsureSchema(ctx, pool, nil))
	return pool
}

func createUser(t *testing.T, users repository.UserRepository) *domain.User {
	t.Helper()
	user := &domain.User{Username: "user-" + uuid.NewString(), PasswordHash: "hash"}
	require.NoError(t, users.Create(context.Background(), user))
	require.NotZero(t, user.ID)
	t.Cleanup(func() { _ = users.Delete(context.Background(), user.ID) })
	return user
}

func newTask(ownerID int64, title string) *domain.Task {
	now := time.Now().UTC()
	return &domain.Task{
		Title:     title,
		Status:    domain.TaskPending,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserRepository(t *testing.T) {
	pool := openTestPool(t)
	users := NewUserRepository(pool)
	ctx := context.Background()

	user := createUser(t, users)

	dup := &domain.User{Username: user.Username, PasswordHash: "other"}
	assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrConflict)

	got, err := users.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = users.GetByUsername(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTaskRepository_OwnerScopedMutations(t *testing.T) {
	pool := openTestPool(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	ctx := context.Background()

	alice := createUser(t, users)
	bob := createUser(t, users)

	first := newTask(alice.ID, "buy milk")
	require.NoError(t, tasks.Create(ctx, first))
	second := newTask(alice.ID, "walk dog")
	require.NoError(t, tasks.Create(ctx, second))

	list, err := tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	list, err = tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID, Search: "milk"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	list, err = tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID, Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, list, "search is literal")

	matched, err := tasks.Complete(ctx, bob.ID, first.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = tasks.Delete(ctx, bob.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = tasks.Complete(ctx, alice.ID, first.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, matched)

	updated := *second
	updated.Title = "walk cat"
	updated.UpdatedAt = time.Now().UTC()
	matched, err = tasks.Update(ctx, &updated)
	require.NoError(t, err)
	assert.True(t, matched)

	list, err = tasks.List(ctx, repository.TaskFilter{OwnerID: alice.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "walk cat", list[0].Title)
	assert.Equal(t, domain.TaskDone, list[1].Status)
}

func TestTaskRepository_CascadeOnUserDelete(t *testing.T) {
	pool := openTestPool(t)
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)
	ctx := context.Background()

	user := createUser(t, users)
	require.NoError(t, tasks.Create(ctx, newTask(user.ID, "orphan")))

	require.NoError(t, users.Delete(ctx, user.ID))

	list, err := tasks.List(ctx, repository.TaskFilter{OwnerID: user.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
}
