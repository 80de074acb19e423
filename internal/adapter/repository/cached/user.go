package cached

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"users-api/internal/adapter/cache"
	domain "users-api/internal/domain/user"
	"users-api/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps a backing store and a cache; cache failures are logged and never fail a call.
type UserRepository struct {
	store user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		store: store,
		cache: cache,
		log:   log,
	}
}

var _ user.Repository = (*UserRepository)(nil)

// Create delegates to the backing store.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.store.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	// Read the version before the store so a concurrent Delete or Reset drops the write-back
	version, err := r.cache.Version(ctx, id)
	if err != nil {
		r.log.Warn("cache version error, reading store without caching", zap.Int64("id", id), zap.Error(err))
		return r.store.GetByID(ctx, id)
	}

	// Concurrent misses for the same id and version share one store read.
	// The shared read is detached from the caller that started it.
	key := strconv.FormatInt(id, 10) + ":" + version.String()
	readCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		u, err := r.store.GetByID(readCtx, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(readCtx, u, version); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}

		return u, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	u := res.Val.(*domain.User)
	if res.Shared {
		// every caller gets its own copy
		cp := *u
		return &cp, nil
	}
	return u, nil
}

// Delete deletes the user from the store and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	deletedID, err := r.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache after delete", zap.Int64("id", id), zap.Error(err))
	}

	return deletedID, nil
}

// List delegates to the backing store.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.store.List(ctx)
}

// Reset resets the store and drops every cached user.
func (r *UserRepository) Reset(ctx context.Context, seed []domain.User) error {
	if err := r.store.Reset(ctx, seed); err != nil {
		return err
	}

	if err := r.cache.Clear(ctx); err != nil {
		r.log.Warn("failed to clear cache after reset", zap.Error(err))
	}

	return nil
}
