package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
)

// UserRepo is an in-memory implementation of the user Repository.
// The map is owned by the repo and every access goes through mu.
type UserRepo struct {
	mu     sync.RWMutex
	users  map[int64]user.User
	nextID int64
	log    *zap.Logger
}

// NewUserRepo creates a store holding a copy of seed.
func NewUserRepo(seed []user.User, log *zap.Logger) *UserRepo {
	r := &UserRepo{log: log}
	r.load(seed)
	return r
}

// load replaces the contents with seed. Callers hold mu or own r exclusively.
func (r *UserRepo) load(seed []user.User) {
	r.users = make(map[int64]user.User, len(seed))
	for _, u := range seed {
		r.users[u.ID] = u
	}
	r.nextID = user.MaxID(seed) + 1
}

func notFound(id int64) error {
	return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// Create stores u under a freshly assigned ID and writes the ID back into u.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	u.ID = id
	r.users[id] = *u
	r.mu.Unlock()

	r.log.Debug("user created in memory", zap.Int64("id", id))
	return id, nil
}

// GetByID returns a copy of the stored user.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	u, ok := r.users[id]
	r.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	return &u, nil
}

// Delete removes the user. IDs are never handed out again.
func (r *UserRepo) Delete(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	_, ok := r.users[id]
	if ok {
		delete(r.users, id)
	}
	r.mu.Unlock()

	if !ok {
		return 0, notFound(id)
	}

	r.log.Debug("user deleted from memory", zap.Int64("id", id))
	return id, nil
}

// List returns all users ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	users := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	r.mu.RUnlock()

	slices.SortFunc(users, func(a, b user.User) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return users, nil
}

// Reset replaces the whole collection with seed and restarts ID assignment after it.
func (r *UserRepo) Reset(ctx context.Context, seed []user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.load(seed)
	r.mu.Unlock()

	r.log.Info("in-memory users reset", zap.Int("count", len(seed)))
	return nil
}
