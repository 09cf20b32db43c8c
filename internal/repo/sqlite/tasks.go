package sqlite

import (
	"context"
	"errors"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/observability"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TasksRepo struct {
	db   *gorm.DB
	prom *observability.Prom
}

func NewTasksRepo(db *gorm.DB, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{db: db, prom: prom}
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	row := taskRow{OwnerID: t.OwnerID, Name: t.Name, Category: string(t.Category)}

	err := r.prom.ObserveDB("tasks.create", func() error {
		return r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error
	})

	if err != nil {
		switch {
		case isUniqueViolation(err):
			return task.Task{}, task.ErrDuplicateName
		case isForeignKeyViolation(err):
			return task.Task{}, task.ErrOwnerNotFound
		}
		return task.Task{}, err
	}

	return row.toDomain(), nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id int64) (task.Task, error) {
	var row taskRow

	err := r.prom.ObserveDB("tasks.get_by_id", func() error {
		return r.db.WithContext(ctx).First(&row, id).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return row.toDomain(), nil
}

// ListOrderedByOwner returns every task, unowned tasks first (SQLite sorts NULL lowest),
// then by owner id and creation order.
func (r *TasksRepo) ListOrderedByOwner(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow

	err := r.prom.ObserveDB("tasks.list_by_owner", func() error {
		return r.db.WithContext(ctx).Order("owner_id ASC").Order("id ASC").Find(&rows).Error
	})

	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toDomain())
	}

	return tasks, nil
}

func (r *TasksRepo) UpdateCategory(ctx context.Context, id int64, category task.Category) (task.Task, error) {
	var affected int64

	err := r.prom.ObserveDB("tasks.update_category", func() error {
		res := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Update("category", string(category))
		affected = res.RowsAffected
		return res.Error
	})

	if err != nil {
		return task.Task{}, err
	}

	if affected == 0 {
		return task.Task{}, task.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *TasksRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.prom.ObserveDB("tasks.delete", func() error {
		res := r.db.WithContext(ctx).Delete(&taskRow{}, id)
		affected = res.RowsAffected
		return res.Error
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return task.ErrNotFound
	}

	return nil
}
