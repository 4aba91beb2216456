package database

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Redis ---

func TestNewRedisClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := DefaultRedisConfig()
	cfg.Host = mr.Host()
	cfg.Port = port

	client, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	mr.Close()

	cfg := DefaultRedisConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port

	_, err := NewRedisClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "localhost:6379", DefaultRedisConfig().Addr())
}

// --- SQLite ---

func TestOpenSQLite_AppliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	db, err := OpenSQLite(context.Background(), path, `CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v BLOB)`)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO kv (k, v) VALUES ('a', 'b')`)
	require.NoError(t, err)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenSQLite_BadSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	_, err := OpenSQLite(context.Background(), path, `CREATE TABLE (`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")
}
