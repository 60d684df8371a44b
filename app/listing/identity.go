package listing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns the deduplication identity of a listing: a hash of
// (source, external id), or of (source, url) when the site exposes no
// stable id. Transient fields (price, title, description) never feed
// the key, so a reworded or repriced listing is not re-notified.
func Key(l Listing) string {
	id := l.ExternalID
	if id == "" {
		id = l.URL
	}

	hash := sha256.Sum256([]byte(string(l.Source) + "|" + id))
	return hex.EncodeToString(hash[:])
}
