package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskboard/internal/db"
	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.prom.ObserveDB("tasks.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO tasks (owner_id, name, category) VALUES ($1,$2,$3) RETURNING id`,
			t.OwnerID, t.Name, string(t.Category),
		).Scan(&t.ID)
	})

	if err != nil {
		switch {
		case IsUniqueViolation(err) && constraintName(err) == db.TasksNameConstraint:
			return task.Task{}, task.ErrDuplicateName
		case isForeignKeyViolation(err) && constraintName(err) == db.TasksOwnerConstraint:
			return task.Task{}, task.ErrOwnerNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id int64) (task.Task, error) {
	var t task.Task

	err := r.prom.ObserveDB("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, owner_id, name, category FROM tasks WHERE id = $1`,
			id,
		).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Category)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// ListOrderedByOwner returns every task, unowned tasks first, then by owner id and creation order.
func (r *TasksRepo) ListOrderedByOwner(ctx context.Context) (tasks []task.Task, err error) {
	var rows pgx.Rows

	err = r.prom.ObserveDB("tasks.list_by_owner", func() error {
		rows, err = r.pool.Query(ctx,
			`
	SELECT id, owner_id, name, category
	FROM tasks
	ORDER BY owner_id ASC NULLS FIRST, id ASC
	`)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	tasks = make([]task.Task, 0)

	for rows.Next() {
		var t task.Task

		e := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Category)

		if e != nil {
			err = e
			return
		}
		tasks = append(tasks, t)
	}

	e := rows.Err()

	if e != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("tasks.list_by_owner", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

func (r *TasksRepo) UpdateCategory(ctx context.Context, id int64, category task.Category) (task.Task, error) {
	var t task.Task

	err := r.prom.ObserveDB("tasks.update_category", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE tasks SET category = $2 WHERE id = $1
			RETURNING id, owner_id, name, category`,
			id, string(category),
		).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Category)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// Delete removes a single task

func (r *TasksRepo) Delete(ctx context.Context, id int64) (err error) {

	var tag pgconn.CommandTag
	op := "tasks.delete"
	err = r.prom.ObserveDB(op, func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)

		return err
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = task.ErrNotFound

		return
	}

	return
}
