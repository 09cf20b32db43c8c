package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/observability"
)

type TasksRepo interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	GetByID(ctx context.Context, id int64) (task.Task, error)
	ListOrderedByOwner(ctx context.Context) ([]task.Task, error)
	UpdateCategory(ctx context.Context, id int64, category task.Category) (task.Task, error)
	Delete(ctx context.Context, id int64) error
}

type TaskService struct {
	repo TasksRepo
	prom *observability.Prom
}

func NewTaskService(repo TasksRepo, prom *observability.Prom) *TaskService {
	return &TaskService{repo: repo, prom: prom}
}

// ListAllOrderedByOwner returns the whole board, not just the caller's tasks.
func (s *TaskService) ListAllOrderedByOwner(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.repo.ListOrderedByOwner(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Add stores a new To Do task. Names are trimmed and must not end up empty.
func (s *TaskService) Add(ctx context.Context, name string, ownerID *int64) (task.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Task{}, task.ErrEmptyName
	}

	t, err := s.repo.Create(ctx, task.New(name, ownerID))
	if err != nil {
		return task.Task{}, fmt.Errorf("add task: %w", err)
	}

	return t, nil
}

// Advance moves a task one step along To Do -> DOING -> DONE.
func (s *TaskService) Advance(ctx context.Context, id int64) (task.Task, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("advance task %d: %w", id, err)
	}

	next := current.Category.Next()

	updated, err := s.repo.UpdateCategory(ctx, id, next)
	if err != nil {
		return task.Task{}, fmt.Errorf("advance task %d: %w", id, err)
	}

	s.prom.ObserveTransition(string(current.Category), string(next))

	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	return nil
}
