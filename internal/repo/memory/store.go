package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
)

// Store keeps users and tasks in maps with the same constraints as the SQL backends.
type Store struct {
	mu     sync.RWMutex
	users  map[int64]user.User
	tasks  map[int64]task.Task
	nextID struct{ user, task int64 }
}

func NewStore() *Store {
	return &Store{
		users: make(map[int64]user.User),
		tasks: make(map[int64]task.Task),
	}
}

func (s *Store) Users() *UsersRepo { return &UsersRepo{s: s} }
func (s *Store) Tasks() *TasksRepo { return &TasksRepo{s: s} }

type UsersRepo struct{ s *Store }

func (r *UsersRepo) Create(_ context.Context, email, passwordHash, name string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	r.s.nextID.user++
	u := user.User{ID: r.s.nextID.user, Email: email, PasswordHash: passwordHash, Name: name}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type TasksRepo struct{ s *Store }

func (r *TasksRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.tasks {
		if existing.Name == t.Name {
			return task.Task{}, task.ErrDuplicateName
		}
	}

	if t.OwnerID != nil {
		if _, ok := r.s.users[*t.OwnerID]; !ok {
			return task.Task{}, task.ErrOwnerNotFound
		}
		owner := *t.OwnerID
		t.OwnerID = &owner
	}

	if t.Category == "" {
		t.Category = task.CategoryToDo
	}

	r.s.nextID.task++
	t.ID = r.s.nextID.task
	r.s.tasks[t.ID] = t

	return t, nil
}

func (r *TasksRepo) GetByID(_ context.Context, id int64) (task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// ListOrderedByOwner mirrors the SQL ordering: unowned first, then owner id, then id.
func (r *TasksRepo) ListOrderedByOwner(_ context.Context) ([]task.Task, error) {
	r.s.mu.RLock()
	out := make([]task.Task, 0, len(r.s.tasks))
	for _, t := range r.s.tasks {
		out = append(out, t)
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]

		switch {
		case a.OwnerID == nil && b.OwnerID != nil:
			return true
		case a.OwnerID != nil && b.OwnerID == nil:
			return false
		case a.OwnerID != nil && *a.OwnerID != *b.OwnerID:
			return *a.OwnerID < *b.OwnerID
		}
		return a.ID < b.ID
	})

	return out, nil
}

func (r *TasksRepo) UpdateCategory(_ context.Context, id int64, category task.Category) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	t.Category = category
	r.s.tasks[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[id]; !ok {
		return task.ErrNotFound
	}

	delete(r.s.tasks, id)
	return nil
}
