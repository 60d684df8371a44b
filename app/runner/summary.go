package runner

import (
	"time"
)

// Summary is the per-run outcome reported to the scheduling layer and
// exposed on the stats endpoint. Every configured site appears exactly
// once in Sites.
type Summary struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
	Sites       []SiteResult  `json:"sites"`
	Matched     int           `json:"matched"`
	Novel       int           `json:"novel"`
	AlreadySeen int           `json:"already_seen"`
	Dispatched  bool          `json:"dispatched"`

	// DispatchError records a failed digest composition or send; the
	// novel listings were withheld from the seen set and will be
	// retried as novel on the next run.
	DispatchError string `json:"dispatch_error,omitempty"`

	// StoreError records a seen-set read/commit failure.
	StoreError string `json:"store_error,omitempty"`

	// StoreReset is set when the persisted seen set was found corrupt
	// at startup and replaced with an empty one.
	StoreReset bool `json:"store_reset,omitempty"`
}

type SiteResult struct {
	Site     string `json:"site"`
	Listings int    `json:"listings"`
	Error    string `json:"error,omitempty"`
}

// FailedSites lists the sites whose adapters reported a failure.
func (s *Summary) FailedSites() []string {
	var failed []string
	for _, site := range s.Sites {
		if site.Error != "" {
			failed = append(failed, site.Site)
		}
	}
	return failed
}
