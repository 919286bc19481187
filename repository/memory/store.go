// Package memory keeps users and tasks in process memory. It follows the same
// constraints as the Postgres schema: unique usernames, owner-scoped task
// access and cascading removal of a user's tasks.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fastygo/taskhub/domain"
	"github.com/fastygo/taskhub/repository"
)

// Store is shared by the user and task repositories so cascades stay atomic.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]domain.User
	byUsername map[string]int64
	tasks      map[int64]domain.Task
	nextUserID int64
	nextTaskID int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]domain.User),
		byUsername: make(map[string]int64),
		tasks:      make(map[int64]domain.Task),
	}
}

func (s *Store) Users() repository.UserRepository { return userRepository{s} }

func (s *Store) Tasks() repository.TaskRepository { return taskRepository{s} }

type userRepository struct{ s *Store }

func (r userRepository) Create(_ context.Context, user *domain.User) error {
	if user == nil || user.Username == "" || user.PasswordHash == "" {
		return domain.ErrValidation
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byUsername[user.Username]; taken {
		return domain.ErrConflict
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	r.s.users[user.ID] = *user
	r.s.byUsername[user.Username] = user.ID
	return nil
}

func (r userRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

func (r userRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.byUsername, user.Username)
	for taskID, task := range r.s.tasks {
		if task.OwnerID == id {
			delete(r.s.tasks, taskID)
		}
	}
	return nil
}

type taskRepository struct{ s *Store }

func (r taskRepository) List(_ context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := []domain.Task{}
	for _, task := range r.s.tasks {
		if task.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Search != "" && !strings.Contains(task.Title, filter.Search) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID > tasks[j].ID })
	return tasks, nil
}

func (r taskRepository) Create(_ context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// mirrors the foreign key on tasks.user_id
	if _, ok := r.s.users[task.OwnerID]; !ok {
		return domain.ErrUserNotFound
	}
	r.s.nextTaskID++
	task.ID = r.s.nextTaskID
	r.s.tasks[task.ID] = *task
	return nil
}

func (r taskRepository) Update(_ context.Context, task *domain.Task) (bool, error) {
	if task == nil {
		return false, domain.ErrInvalidPayload
	}
	return r.modify(task.OwnerID, task.ID, func(stored *domain.Task) {
		stored.Title = task.Title
		stored.Description = task.Description
		stored.Status = task.Status
		stored.UpdatedAt = task.UpdatedAt
	}), nil
}

func (r taskRepository) Complete(_ context.Context, ownerID, id int64, at time.Time) (bool, error) {
	return r.modify(ownerID, id, func(stored *domain.Task) {
		stored.Status = domain.TaskDone
		stored.UpdatedAt = at
	}), nil
}

func (r taskRepository) Delete(_ context.Context, ownerID, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return false, nil
	}
	delete(r.s.tasks, id)
	return true, nil
}

func (r taskRepository) modify(ownerID, id int64, apply func(*domain.Task)) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	task, ok := r.s.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return false
	}
	apply(&task)
	r.s.tasks[id] = task
	return true
}
