package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/repository"
)

func seedUser(t *testing.T, store *Store, name string) int64 {
	t.Helper()
	user := &domain.User{Username: name, PasswordHash: "hash"}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user.ID
}

func seedTask(t *testing.T, store *Store, owner int64, title string) int64 {
	t.Helper()
	now := time.Now().UTC()
	task := &domain.Task{Title: title, Status: domain.TaskPending, OwnerID: owner, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Tasks().Create(context.Background(), task))
	return task.ID
}

func TestUsers_CreateRejectsDuplicateUsername(t *testing.T) {
	store := NewStore()
	seedUser(t, store, "alice")

	err := store.Users().Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTasks_ListIsOwnerScopedNewestFirst(t *testing.T) {
	store := NewStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	first := seedTask(t, store, alice, "buy milk")
	second := seedTask(t, store, alice, "walk dog")
	seedTask(t, store, bob, "buy bread")

	tasks, err := store.Tasks().List(context.Background(), repository.TaskFilter{OwnerID: alice})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second, tasks[0].ID)
	assert.Equal(t, first, tasks[1].ID)

	tasks, err = store.Tasks().List(context.Background(), repository.TaskFilter{OwnerID: alice, Search: "milk"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
}

func TestTasks_CreateRequiresExistingOwner(t *testing.T) {
	store := NewStore()
	err := store.Tasks().Create(context.Background(), &domain.Task{Title: "orphan", OwnerID: 42})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTasks_MutationsIgnoreOtherOwners(t *testing.T) {
	store := NewStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	id := seedTask(t, store, alice, "secret")
	ctx := context.Background()

	ok, err := store.Tasks().Complete(ctx, bob, id, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Tasks().Update(ctx, &domain.Task{ID: id, OwnerID: bob, Title: "mine now", Status: domain.TaskDone})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Tasks().Delete(ctx, bob, id)
	require.NoError(t, err)
	assert.False(t, ok)

	tasks, err := store.Tasks().List(ctx, repository.TaskFilter{OwnerID: alice})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "secret", tasks[0].Title)
	assert.Equal(t, domain.TaskPending, tasks[0].Status)
}

func TestUsers_DeleteCascadesTasks(t *testing.T) {
	store := NewStore()
	alice := seedUser(t, store, "alice")
	seedTask(t, store, alice, "one")
	seedTask(t, store, alice, "two")

	require.NoError(t, store.Users().Delete(context.Background(), alice))

	tasks, err := store.Tasks().List(context.Background(), repository.TaskFilter{OwnerID: alice})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = store.Users().GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
