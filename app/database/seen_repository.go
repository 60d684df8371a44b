package database

import (
	"database/sql"
	"fmt"
)

// SeenListingRepository handles database operations for the persisted
// seen set.
type SeenListingRepository struct {
	db *DB
}

var _ SeenRepository = (*SeenListingRepository)(nil)

func NewSeenListingRepository(db *DB) *SeenListingRepository {
	return &SeenListingRepository{db: db}
}

func (r *SeenListingRepository) Contains(key string) (bool, error) {
	var one int
	err := r.db.QueryRow("SELECT 1 FROM seen_listings WHERE key = ? LIMIT 1", key).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen listing: %w", err)
	}
	return true, nil
}

func (r *SeenListingRepository) InsertAll(entries []SeenListing) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO seen_listings (key, source, url, first_seen_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.Exec(entry.Key, entry.Source, entry.URL, entry.FirstSeenAt.UTC()); err != nil {
			return fmt.Errorf("failed to insert seen listing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen listings: %w", err)
	}

	return nil
}

func (r *SeenListingRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM seen_listings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count seen listings: %w", err)
	}
	return count, nil
}
