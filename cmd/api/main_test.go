package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"users-api/internal/adapter/db/gormdb"
)

func writeConfig(t *testing.T, lines string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(lines), 0o600))
	return dir
}

func execute(ctx context.Context, args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(ctx)
}

func TestResetCommand_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "users.db")
	dir := writeConfig(t, "STORE_DRIVER=sqlite\nDB_SQLITE_PATH="+dbPath+"\nLOG_OUTPUT_PATH=stderr\nLOG_LEVEL=error\n")
	ctx := context.Background()

	require.NoError(t, execute(ctx, "reset", "--config", dir))

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Create(&gormdb.UserSchema{Name: "Bob", Email: "bob@example.com"}).Error)

	require.NoError(t, execute(ctx, "reset", "--config", dir))

	var rows []gormdb.UserSchema
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, "Alice", rows[0].Name)
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	dir := writeConfig(t, "STORE_DRIVER=oracle\nLOG_OUTPUT_PATH=stderr\n")

	err := execute(context.Background(), "serve", "--config", dir)
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	err := execute(context.Background(), "unexpected")
	assert.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, ".", defaultConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/users-api")
	assert.Equal(t, "/etc/users-api", defaultConfigPath())
}
