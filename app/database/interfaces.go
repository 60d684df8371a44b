package database

import (
	"time"
)

// SeenListing is one previously-notified listing identity.
type SeenListing struct {
	Key         string
	Source      string
	URL         string
	FirstSeenAt time.Time
}

type SeenRepository interface {
	Contains(key string) (bool, error)

	// InsertAll records every entry in a single transaction; partial
	// commits never happen.
	InsertAll(entries []SeenListing) error

	Count() (int, error)
}
