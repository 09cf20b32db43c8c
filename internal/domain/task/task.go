package task

import "errors"

type Category string

const (
	CategoryToDo  Category = "To Do"
	CategoryDoing Category = "DOING"
	CategoryDone  Category = "DONE"
)

var (
	ErrNotFound = errors.New("task not found")
	// ErrDuplicateName: task names are unique across the whole board, not per owner.
	ErrDuplicateName = errors.New("task name already exists")
	ErrOwnerNotFound = errors.New("task owner does not exist")
	// ErrEmptyName is returned for names that are blank once surrounding spaces are trimmed.
	ErrEmptyName = errors.New("task name is empty")
)

type Task struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	OwnerID  *int64   `json:"ownerId,omitempty"`
}

// Next returns the category a task moves to when advanced.
// To Do goes to DOING, anything else goes to DONE, so DONE is a fixed point.
func (c Category) Next() Category {
	if c == CategoryToDo {
		return CategoryDoing
	}

	return CategoryDone
}

// New builds an unsaved task in the default category.
func New(name string, ownerID *int64) Task {
	return Task{
		Name:     name,
		Category: CategoryToDo,
		OwnerID:  ownerID,
	}
}

type CreateTaskRequest struct {
	Name string `form:"task" binding:"required,max=250"`
}

type IDParam struct {
	ID int64 `uri:"task_id" binding:"required,min=1"`
}
