package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/geocoder89/taskboard/internal/db"
	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/repo/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

func TestUsersRepo(t *testing.T) {
	gdb := setupDB(t)
	repo := sqlite.NewUsersRepo(gdb, nil)
	ctx := context.Background()

	u, err := repo.Create(ctx, "sam@example.com", "hash", "Sam")
	require.NoError(t, err)
	assert.Positive(t, u.ID)

	_, err = repo.Create(ctx, "sam@example.com", "hash2", "Other Sam")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	var count int64
	require.NoError(t, gdb.Table("users").Where("email = ?", "sam@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetByEmail(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestTasksRepo(t *testing.T) {
	gdb := setupDB(t)
	users := sqlite.NewUsersRepo(gdb, nil)
	repo := sqlite.NewTasksRepo(gdb, nil)
	ctx := context.Background()

	alice, err := users.Create(ctx, "alice@example.com", "h", "Alice")
	require.NoError(t, err)
	bob, err := users.Create(ctx, "bob@example.com", "h", "Bob")
	require.NoError(t, err)

	created, err := repo.Create(ctx, task.New("bob first", &bob.ID))
	require.NoError(t, err)
	assert.Equal(t, task.CategoryToDo, created.Category)
	assert.Positive(t, created.ID)

	_, err = repo.Create(ctx, task.New("alice first", &alice.ID))
	require.NoError(t, err)
	_, err = repo.Create(ctx, task.New("bob second", &bob.ID))
	require.NoError(t, err)
	_, err = repo.Create(ctx, task.New("nobody's", nil))
	require.NoError(t, err)

	_, err = repo.Create(ctx, task.New("alice first", &bob.ID))
	assert.ErrorIs(t, err, task.ErrDuplicateName)

	ghost := int64(9999)
	_, err = repo.Create(ctx, task.New("ghost", &ghost))
	assert.ErrorIs(t, err, task.ErrOwnerNotFound)

	list, err := repo.ListOrderedByOwner(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(list))
	for _, tk := range list {
		names = append(names, tk.Name)
	}
	assert.Equal(t, []string{"nobody's", "alice first", "bob first", "bob second"}, names)

	updated, err := repo.UpdateCategory(ctx, created.ID, task.CategoryDoing)
	require.NoError(t, err)
	assert.Equal(t, task.CategoryDoing, updated.Category)
	assert.Equal(t, "bob first", updated.Name)

	// same value update still finds the row
	_, err = repo.UpdateCategory(ctx, created.ID, task.CategoryDoing)
	require.NoError(t, err)

	_, err = repo.UpdateCategory(ctx, 9999, task.CategoryDone)
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), task.ErrNotFound)

	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, task.ErrNotFound)
}
