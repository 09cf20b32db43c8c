package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	UsersEmailConstraint = "users_email_uniq"
	TasksNameConstraint  = "tasks_name_uniq"
	TasksOwnerConstraint = "tasks_owner_fk"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id       BIGSERIAL PRIMARY KEY,
	email    VARCHAR(100) NOT NULL,
	password VARCHAR(200) NOT NULL,
	name     VARCHAR(100) NOT NULL DEFAULT '',
	CONSTRAINT users_email_uniq UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS tasks (
	id       BIGSERIAL PRIMARY KEY,
	owner_id BIGINT NULL,
	name     VARCHAR(250) NOT NULL,
	category VARCHAR(6) NOT NULL DEFAULT 'To Do',
	CONSTRAINT tasks_name_uniq UNIQUE (name),
	CONSTRAINT tasks_owner_fk FOREIGN KEY (owner_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS tasks_owner_idx ON tasks (owner_id, id);
`

// EnsureSchema creates the users and tasks tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, postgresSchema)

	return err
}
