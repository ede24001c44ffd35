// Package storage opens the shared connection pool and runs multi-statement operations in transactions.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/silktrader/onair/pkg/failure"
	"github.com/silktrader/onair/pkg/storage/postgres"
	"github.com/silktrader/onair/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	// attempts made by Transact before giving up on conflicting writes
	maxAttempts = 3
)

type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the configured database and tunes its pool.
func Open(logger logrus.FieldLogger, cfg Config) (db *sqlx.DB, err error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err = sqlite.Open(logger, cfg.DSN)
	case DriverPostgres:
		db, err = postgres.Open(logger, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Transact runs fn in a transaction, committing when it returns nil. Transactions aborted by a uniqueness
// violation are retried: the checks inside fn then observe the concurrent write that won and report it.
func Transact(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := transact(ctx, db, fn); !IsConflict(err) {
			return err
		}
	}
	return failure.BadRequest("Conflicting concurrent write, please retry")
}

func transact(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	// rolling back after a transaction commit will result in a safe NOP
	defer func() { _ = tx.Rollback() }()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// LockRow holds the row of table until tx ends, so that transactions locking the same row run one after the
// other. SQLite transactions begin immediate and already exclude each other, so only PostgreSQL takes the lock.
func LockRow(ctx context.Context, tx *sqlx.Tx, table string, id int64) error {
	if tx.DriverName() != DriverPostgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `SELECT id FROM `+table+` WHERE id = $1 FOR UPDATE`, id); err != nil {
		return fmt.Errorf("locking %s %d: %w", table, id, err)
	}
	return nil
}

// IsConflict detects uniqueness and primary key violations reported by either driver.
func IsConflict(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
