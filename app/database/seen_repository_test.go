package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, reset, err := NewConnectionWithRecovery(filepath.Join(t.TempDir(), "seen.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if reset {
		t.Fatal("Fresh database should not report a reset")
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestSeenListingRepository_Roundtrip(t *testing.T) {
	repo := NewSeenListingRepository(openTestDB(t))

	seen, err := repo.Contains("k1")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if seen {
		t.Error("Expected empty store to contain nothing")
	}

	now := time.Now()
	entries := []SeenListing{
		{Key: "k1", Source: "craigslist", URL: "https://example.com/1", FirstSeenAt: now},
		{Key: "k2", Source: "zillow", URL: "https://example.com/2", FirstSeenAt: now},
	}
	if err := repo.InsertAll(entries); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}

	for _, key := range []string{"k1", "k2"} {
		seen, err := repo.Contains(key)
		if err != nil {
			t.Fatalf("Contains failed: %v", err)
		}
		if !seen {
			t.Errorf("Expected %s to be recorded", key)
		}
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestSeenListingRepository_InsertAllIgnoresDuplicates(t *testing.T) {
	repo := NewSeenListingRepository(openTestDB(t))

	entry := SeenListing{Key: "k1", Source: "craigslist", URL: "https://example.com/1", FirstSeenAt: time.Now()}
	if err := repo.InsertAll([]SeenListing{entry}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}
	if err := repo.InsertAll([]SeenListing{entry}); err != nil {
		t.Fatalf("Repeated InsertAll failed: %v", err)
	}

	count, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected duplicate insert to be ignored, got count %d", count)
	}
}

func TestSeenListingRepository_InsertAllEmpty(t *testing.T) {
	repo := NewSeenListingRepository(openTestDB(t))

	if err := repo.InsertAll(nil); err != nil {
		t.Fatalf("InsertAll with no entries failed: %v", err)
	}
}

func TestNewConnectionWithRecovery_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	db, _, err := NewConnectionWithRecovery(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	repo := NewSeenListingRepository(db)
	if err := repo.InsertAll([]SeenListing{{Key: "k1", Source: "hotpads", URL: "https://example.com/1", FirstSeenAt: time.Now()}}); err != nil {
		t.Fatalf("InsertAll failed: %v", err)
	}
	db.Close()

	db, reset, err := NewConnectionWithRecovery(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()
	if reset {
		t.Error("Healthy store should reopen without a reset")
	}

	seen, err := NewSeenListingRepository(db).Contains("k1")
	if err != nil {
		t.Fatalf("Contains failed: %v", err)
	}
	if !seen {
		t.Error("Expected k1 to survive a reopen")
	}
}

func TestNewConnectionWithRecovery_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite database at all"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	db, reset, err := NewConnectionWithRecovery(path)
	if err != nil {
		t.Fatalf("Expected recovery from a corrupt file, got: %v", err)
	}
	defer db.Close()
	if !reset {
		t.Error("Expected a corrupt file to report a reset")
	}

	count, err := NewSeenListingRepository(db).Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected recovered store to start empty, got %d", count)
	}

	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Errorf("Expected the corrupt file to be moved aside: %v", err)
	}
}
