// Package localcache is the durable client-side key-value store used
// for the offline copy of the account snapshot and session metadata.
package localcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/discussions-app/core/internal/dbx"
	"github.com/discussions-app/core/internal/localcache/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Cache is a process-external key-value store. Get returns (nil, nil)
// for an absent key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// SQLiteCache implements Cache on a local sqlite database.
type SQLiteCache struct {
	db dbx.DBTX
}

func NewSQLiteCache(db dbx.DBTX) *SQLiteCache {
	return &SQLiteCache{db: db}
}

// test seam
var nowFunc = time.Now

// Open opens (creating if needed) the cache database at dsn and runs
// pending migrations.
func Open(ctx context.Context, dsn string) (*SQLiteCache, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return NewSQLiteCache(db), db, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache[%s]: %w", key, err)
	}
	return value, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, nowFunc().Unix())
	if err != nil {
		return fmt.Errorf("failed to set cache[%s]: %w", key, err)
	}
	return nil
}

func (c *SQLiteCache) Remove(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to remove cache[%s]: %w", key, err)
	}
	return nil
}
