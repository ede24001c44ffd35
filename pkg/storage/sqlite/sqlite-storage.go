package sqlite

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

const driverName = "sqlite3"

var ErrSchemaMismatch = errors.New("schema mismatch")

// Open returns a connection pool to the database file at path. A missing file is created along with the
// schema; an existing one is accepted only when its tables match the schema.
func Open(logger logrus.FieldLogger, path string) (connection *sqlx.DB, err error) {
	logger.WithField("path", path).Info("initialising SQLite DB")

	// the database already exists, check for its contents
	if _, err = os.Stat(path); err == nil {
		connection, err = getValidConnection(path)
		if err != nil {
			logger.WithError(err).Error("error while verifying existing database")
			return nil, err
		}
	} else {
		// create the file and initialise the schema
		connection, err = sqlx.Open(driverName, getConnectionString(path))
		if err != nil {
			logger.WithError(err).Error("error while creating new database")
			return nil, err
		}
		if _, err = connection.Exec(schema); err != nil {
			logger.WithError(err).Error("error while building database schema")
			_ = connection.Close()
			return nil, err
		}
	}

	// opening the DB will fail silently when the package is compiled without CGO_ENABLED
	if err = connection.Ping(); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("pinging %s: %w", path, err)
	}
	return connection, nil
}

func getValidConnection(path string) (*sqlx.DB, error) {
	connection, err := sqlx.Open(driverName, getConnectionString(path))
	if err != nil {
		return nil, err
	}

	// read the schema as defined in the storage package
	desired, err := sqlx.Open(driverName, ":memory:")
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	defer desired.Close()

	// a single connection, otherwise each pooled one gets its own empty memory database
	desired.SetMaxOpenConns(1)
	if _, err = desired.Exec(schema); err != nil {
		_ = connection.Close()
		return nil, err
	}

	// compare the defined schema with the actual one found in the existing database
	desiredTables, err := mapSchema(desired)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	actualTables, err := mapSchema(connection)
	if err != nil {
		_ = connection.Close()
		return nil, err
	}

	if sameSchemaMap(desiredTables, actualTables) {
		return connection, nil
	}
	_ = connection.Close()
	return nil, ErrSchemaMismatch
}

func mapSchema(connection *sqlx.DB) (map[string]string, error) {
	rows, err := connection.Query(`SELECT name, sql FROM sqlite_master WHERE type = 'table'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// in memory and on file schemas differ in their line endings, depending on the hosting platform
	var replacer = strings.NewReplacer(
		"\n\t\t", "",
		"\r\n\t\t", "",
		"\r\n", "",
		"\n", "",
	)

	var tables = make(map[string]string)
	var name, sqlCode string
	for rows.Next() {
		if err = rows.Scan(&name, &sqlCode); err != nil {
			return tables, err
		}
		tables[name] = replacer.Replace(sqlCode)
	}

	return tables, rows.Err()
}

func sameSchemaMap(first, second map[string]string) bool {
	// the second map might be larger than the first, hence the additional length check
	if len(first) != len(second) {
		return false
	}
	for firstKey, firstValue := range first {
		if secondValue, found := second[firstKey]; !found || secondValue != firstValue {
			return false
		}
	}
	return true
}

// getConnectionString enables foreign keys constraints and has transactions take the write lock
// on BEGIN, so that concurrent check-then-write sequences are serialised.
func getConnectionString(path string) string {
	return path + "?_fk=on&_txlock=immediate&_busy_timeout=5000"
}
