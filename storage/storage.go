// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danielhkuo/quickpoll/cliparse"
	"github.com/danielhkuo/quickpoll/db"
)

// Storage is durable client-side key/value state, the stand-in for a
// browser's local storage.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Open builds the storage backend selected by cfg. The returned closer
// releases the underlying connection.
func Open(ctx context.Context, cfg cliparse.Config) (Storage, io.Closer, error) {
	switch cfg.StorageType {
	case cliparse.StorageMemory:
		return NewMemory(), io.NopCloser(nil), nil

	case cliparse.StorageRedis:
		r, err := ConnectRedis(ctx, cfg.StorageURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil

	case cliparse.StorageSQLite, cliparse.StoragePostgres:
		if cfg.StorageType == cliparse.StorageSQLite && !strings.HasPrefix(cfg.StorageURL, "file:") && cfg.StorageURL != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.StorageURL), 0o700); err != nil {
				return nil, nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		conn, err := db.Open(cfg.StorageType, cfg.StorageURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return NewSQL(conn), conn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
}

// SQL keeps entries in the local_storage table.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM local_storage WHERE key = $1
	`, key).Scan(&value)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM local_storage WHERE key = $1`, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}
