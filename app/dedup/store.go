// Package dedup decides listing novelty against the persisted set of
// previously-notified identities.
package dedup

import (
	"fmt"
	"time"

	"github.com/YoungPup/Apartment-Scraper/app/database"
	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

type Store struct {
	repo database.SeenRepository
}

func NewStore(repo database.SeenRepository) *Store {
	return &Store{repo: repo}
}

// Partition splits candidates into listings never notified before and
// listings already present in the seen set, preserving input order
// within each partition. A repeated identity within one batch (the
// same unit found via two searches) counts as already seen after its
// first occurrence. Read-only: nothing is recorded until Commit.
func (s *Store) Partition(candidates []listing.Listing) (novel, alreadySeen []listing.Listing, err error) {
	inBatch := make(map[string]bool)

	for _, candidate := range candidates {
		key := listing.Key(candidate)

		if inBatch[key] {
			alreadySeen = append(alreadySeen, candidate)
			continue
		}

		seen, err := s.repo.Contains(key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check seen set: %w", err)
		}

		if seen {
			alreadySeen = append(alreadySeen, candidate)
		} else {
			novel = append(novel, candidate)
			inBatch[key] = true
		}
	}

	return novel, alreadySeen, nil
}

// Commit records the novel listings' identities with their first-seen
// timestamp, all-or-nothing. Callers invoke this only after the digest
// dispatch has been confirmed.
func (s *Store) Commit(novel []listing.Listing, now time.Time) error {
	entries := make([]database.SeenListing, 0, len(novel))
	for _, item := range novel {
		entries = append(entries, database.SeenListing{
			Key:         listing.Key(item),
			Source:      string(item.Source),
			URL:         item.URL,
			FirstSeenAt: now,
		})
	}

	if err := s.repo.InsertAll(entries); err != nil {
		return fmt.Errorf("failed to commit seen set: %w", err)
	}

	return nil
}

// Size returns the number of identities in the persisted seen set. The
// set is append-only; no eviction policy exists, so it grows with every
// notified listing.
func (s *Store) Size() (int, error) {
	return s.repo.Count()
}
