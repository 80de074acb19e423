package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
)

func newTestRepo(t *testing.T) *UserRepo {
	return NewUserRepo(user.Seed(), zaptest.NewLogger(t))
}

func TestUserRepo_SeededState(t *testing.T) {
	repo := newTestRepo(t)

	u, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepo_CreateAssignsFreshIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	charlie := &user.User{Name: "Charlie", Email: "charlie@example.com"}
	id, err := repo.Create(ctx, charlie)
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, int64(2), charlie.ID)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *charlie, *got)

	_, err = repo.Create(ctx, nil)
	assert.Error(t, err)
}

func TestUserRepo_DeletedIDsAreNotReused(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.Create(ctx, &user.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, id)
	require.NoError(t, err)

	next, err := repo.Create(ctx, &user.User{Name: "Dave", Email: "dave@example.com"})
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestUserRepo_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.Delete(ctx, 999)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, 1)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepo_ListIsOrderedAndEmptyIsNotNil(t *testing.T) {
	repo := NewUserRepo(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := repo.Create(ctx, &user.User{Name: name, Email: name + "@example.com"})
		require.NoError(t, err)
	}

	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for i := range users {
		assert.Equal(t, int64(i+1), users[i].ID)
	}
}

func TestUserRepo_Reset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Delete(ctx, 1)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &user.User{Name: "x", Email: "x@example.com"})
		require.NoError(t, err)
	}

	require.NoError(t, repo.Reset(ctx, user.Seed()))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.Seed(), users)

	id, err := repo.Create(ctx, &user.User{Name: "Charlie", Email: "charlie@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestUserRepo_CanceledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = repo.Create(ctx, &user.User{Name: "a", Email: "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserRepo_ConcurrentCreates(t *testing.T) {
	repo := NewUserRepo(nil, zaptest.NewLogger(t))
	ctx := context.Background()

	const workers = 50
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Create(ctx, &user.User{Name: "n", Email: "e"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
