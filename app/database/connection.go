package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewConnection opens the SQLite seen-listing store at path and
// verifies it is reachable.
func NewConnection(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc sqlite allows a single writer; serialize all access
	// through one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// NewConnectionWithRecovery opens the store and applies migrations,
// treating an unreadable or corrupt file as "nothing seen yet": the
// bad file is moved aside and an empty store is created in its place.
// Over-notifying once is preferable to permanently blocking all
// notifications. Returns true when the store had to be reset.
func NewConnectionWithRecovery(path string) (*DB, bool, error) {
	db, err := openAndMigrate(path)
	if err == nil {
		return db, false, nil
	}

	slog.Warn("Seen store unreadable, resetting to empty", "path", path, "error", err)

	if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil && !os.IsNotExist(renameErr) {
		return nil, false, fmt.Errorf("failed to move corrupt store aside: %w", renameErr)
	}
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")

	db, err = openAndMigrate(path)
	if err != nil {
		return nil, false, err
	}

	return db, true, nil
}

func openAndMigrate(path string) (*DB, error) {
	db, err := NewConnection(path)
	if err != nil {
		return nil, err
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("Seen store ready", "path", path, "schema_version", version, "dirty", dirty)

	return db, nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
}
