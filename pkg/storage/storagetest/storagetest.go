// Package storagetest provides throwaway databases for store tests.
package storagetest

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/silktrader/onair/pkg/storage"
	"github.com/sirupsen/logrus"
)

// Open creates an SQLite database with the full schema in a temporary directory, closed with the test.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db, err := storage.Open(logger, storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "onair.db"),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
