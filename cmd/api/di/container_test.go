package di

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"users-api/internal/adapter/db/memory"
	"users-api/internal/adapter/repository/cached"
	"users-api/internal/config"
	"users-api/internal/usecase/user"
)

func testConfig(t *testing.T) *config.Config {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestNewContainer_Memory(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, testConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &memory.UserRepo{}, c.UserRepo)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.GinHandler)
	assert.NotNil(t, c.RateLimiter)

	resp, err := c.UserUC.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Alice", resp.Users[0].Name)
}

func TestNewContainer_SQLiteSeedsOnStart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Store.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")

	c, err := NewContainer(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.DB)

	_, err = c.UserUC.CreateUser(ctx, user.CreateUserRequest{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	got, err := c.UserUC.GetUser(ctx, user.GetUserRequest{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	resp, err := c.UserUC.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
}

func TestNewContainer_RedisWrapsStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.RateLimit.Enabled = true

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &cached.UserRepository{}, c.UserRepo)
	assert.NotNil(t, c.RedisClient)

	_, err = c.UserUC.GetUser(context.Background(), user.GetUserRequest{ID: 1})
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"))
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Driver = "oracle"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "config validation failed")
}

func TestNewContainer_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = mr.Port()
	cfg.Redis.MaxRetries = -1
	mr.Close()

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "failed to initialize Redis")
}
