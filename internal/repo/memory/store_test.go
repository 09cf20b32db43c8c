package memory

import (
	"context"
	"testing"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Constraints(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	u, err := s.Users().Create(ctx, "a@example.com", "h", "A")
	require.NoError(t, err)

	_, err = s.Users().Create(ctx, "a@example.com", "h", "A again")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = s.Tasks().Create(ctx, task.New("one", &u.ID))
	require.NoError(t, err)

	_, err = s.Tasks().Create(ctx, task.New("one", nil))
	assert.ErrorIs(t, err, task.ErrDuplicateName)

	missing := int64(77)
	_, err = s.Tasks().Create(ctx, task.New("two", &missing))
	assert.ErrorIs(t, err, task.ErrOwnerNotFound)
}

func TestStore_ListOrdering(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a, _ := s.Users().Create(ctx, "a@example.com", "h", "A")
	b, _ := s.Users().Create(ctx, "b@example.com", "h", "B")

	for _, in := range []task.Task{
		task.New("b1", &b.ID),
		task.New("a1", &a.ID),
		task.New("free", nil),
		task.New("b2", &b.ID),
		task.New("a2", &a.ID),
	} {
		_, err := s.Tasks().Create(ctx, in)
		require.NoError(t, err)
	}

	list, err := s.Tasks().ListOrderedByOwner(ctx)
	require.NoError(t, err)

	names := []string{}
	for _, tk := range list {
		names = append(names, tk.Name)
	}

	assert.Equal(t, []string{"free", "a1", "a2", "b1", "b2"}, names)
}

func TestStore_UpdateDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	tk, err := s.Tasks().Create(ctx, task.New("x", nil))
	require.NoError(t, err)

	got, err := s.Tasks().UpdateCategory(ctx, tk.ID, task.CategoryDone)
	require.NoError(t, err)
	assert.Equal(t, task.CategoryDone, got.Category)

	_, err = s.Tasks().UpdateCategory(ctx, 100, task.CategoryDone)
	assert.ErrorIs(t, err, task.ErrNotFound)

	require.NoError(t, s.Tasks().Delete(ctx, tk.ID))
	assert.ErrorIs(t, s.Tasks().Delete(ctx, tk.ID), task.ErrNotFound)
}
