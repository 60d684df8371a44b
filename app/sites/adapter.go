package sites

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

// ErrBlocked marks a fetch the site refused or walled behind
// JS/captcha. Semantically distinct from an empty success: blocked
// means "could not determine", not "no matching listings today".
var ErrBlocked = errors.New("blocked")

// errTimeout replaces context deadline errors so the run summary
// reports a plain "timeout" cause.
var errTimeout = errors.New("timeout")

// Adapter performs one best-effort fetch-and-parse cycle for one site.
// Fetch returns the site's candidate listings or an error describing
// why the site could not be read; it never panics across the boundary
// (see Run).
type Adapter interface {
	Name() string
	Source() listing.Source
	Fetch(ctx context.Context) ([]listing.Listing, error)
}

// NewAdapter builds the adapter variant for a site config.
func NewAdapter(config *Config, client *http.Client, userAgent string) (Adapter, error) {
	switch config.Kind {
	case KindRSS:
		return newFeedAdapter(config, client, userAgent), nil
	case KindHTML:
		return newPageAdapter(config, client, userAgent), nil
	default:
		return nil, fmt.Errorf("unknown adapter kind: %q", config.Kind)
	}
}

// Run executes one adapter and captures any failure, including a
// panic inside a parser, as a Failure result. Exactly one RunResult
// comes back per call; nothing escapes to the caller.
func Run(ctx context.Context, adapter Adapter) (result listing.RunResult) {
	result.Source = adapter.Source()

	defer func() {
		if r := recover(); r != nil {
			result.Listings = nil
			result.Err = fmt.Errorf("adapter panic: %v", r)
		}
	}()

	items, err := adapter.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errTimeout
		}
		result.Err = err
		return result
	}

	result.Listings = items
	return result
}
