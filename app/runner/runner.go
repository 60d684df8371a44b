// Package runner orchestrates one scrape-aggregate-dedup-notify run
// end to end.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/YoungPup/Apartment-Scraper/app/dedup"
	"github.com/YoungPup/Apartment-Scraper/app/digest"
	"github.com/YoungPup/Apartment-Scraper/app/listing"
	"github.com/YoungPup/Apartment-Scraper/app/sites"
)

// ErrRunInProgress is returned when a trigger fires while a previous
// run still holds the seen set. The trigger is skipped, never queued.
var ErrRunInProgress = errors.New("run already in progress")

type Sender interface {
	Send(email *digest.Email) error
}

var _ Sender = (*digest.Mailer)(nil)

type Runner struct {
	adapters    []sites.Adapter
	filterer    *listing.Filterer
	store       *dedup.Store
	composer    *digest.Composer
	sender      Sender
	siteTimeout time.Duration
	workerCount int
	storeReset  bool

	// runMu enforces at most one in-flight run touching the seen
	// set's load/commit cycle.
	runMu sync.Mutex

	lastMu sync.RWMutex
	last   *Summary
}

func NewRunner(adapters []sites.Adapter, filterer *listing.Filterer, store *dedup.Store,
	composer *digest.Composer, sender Sender, siteTimeout time.Duration,
	workerCount int, storeReset bool) *Runner {
	if workerCount < 1 {
		workerCount = 1
	}

	return &Runner{
		adapters:    adapters,
		filterer:    filterer,
		store:       store,
		composer:    composer,
		sender:      sender,
		siteTimeout: siteTimeout,
		workerCount: workerCount,
		storeReset:  storeReset,
	}
}

// RunOnce executes one full run: fetch every site, filter, partition
// against the seen set, and, when anything novel turned up, dispatch
// one digest. The seen set is committed only after a confirmed
// dispatch, so a transient mail failure re-surfaces the same listings
// as novel on the next run. A per-site failure never fails the run;
// only a seen-set error does.
func (r *Runner) RunOnce(ctx context.Context) (*Summary, error) {
	if !r.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	summary := &Summary{
		StartedAt:  time.Now().UTC(),
		StoreReset: r.storeReset,
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
		r.setLast(summary)
	}()

	var collected []listing.Listing
	for _, result := range r.fetchAll(ctx) {
		site := SiteResult{Site: string(result.Source), Listings: len(result.Listings)}
		if result.Err != nil {
			site.Error = result.Err.Error()
			slog.Warn("Site fetch failed", "site", result.Source, "error", result.Err)
		} else {
			collected = append(collected, result.Listings...)
			slog.Debug("Site fetch completed", "site", result.Source, "listings", len(result.Listings))
		}
		summary.Sites = append(summary.Sites, site)
	}

	matched := r.filterer.Run(collected)
	summary.Matched = len(matched)

	novel, alreadySeen, err := r.store.Partition(matched)
	if err != nil {
		summary.StoreError = err.Error()
		return summary, err
	}
	summary.Novel = len(novel)
	summary.AlreadySeen = len(alreadySeen)

	if len(novel) == 0 {
		slog.Info("Run completed, nothing new",
			"collected", len(collected),
			"matched", summary.Matched,
			"already_seen", summary.AlreadySeen,
			"sites_failed", summary.FailedSites())
		return summary, nil
	}

	email, err := r.composer.Run(ctx, novel, summary.StartedAt)
	if err != nil {
		summary.DispatchError = err.Error()
		slog.Error("Digest composition failed, listings withheld from seen set", "error", err)
		return summary, nil
	}

	if err := r.sender.Send(email); err != nil {
		summary.DispatchError = err.Error()
		slog.Error("Digest dispatch failed, listings withheld from seen set",
			"novel", len(novel), "error", err)
		return summary, nil
	}
	summary.Dispatched = true

	if err := r.store.Commit(novel, summary.StartedAt); err != nil {
		// Dispatch already happened; the next run may re-send these.
		summary.StoreError = err.Error()
		slog.Error("Failed to commit seen set after dispatch", "error", err)
		return summary, err
	}

	slog.Info("Run completed",
		"matched", summary.Matched,
		"novel", summary.Novel,
		"already_seen", summary.AlreadySeen,
		"sites_failed", summary.FailedSites())

	return summary, nil
}

// fetchAll runs every adapter with bounded concurrency and a per-site
// timeout. Results land at the adapter's configured position, so the
// aggregation order is site configuration order regardless of which
// fetch finished first.
func (r *Runner) fetchAll(ctx context.Context) []listing.RunResult {
	results := make([]listing.RunResult, len(r.adapters))
	sem := make(chan struct{}, r.workerCount)

	var wg sync.WaitGroup
	for i, adapter := range r.adapters {
		wg.Add(1)
		go func(i int, adapter sites.Adapter) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, r.siteTimeout)
			defer cancel()

			results[i] = sites.Run(fetchCtx, adapter)
		}(i, adapter)
	}
	wg.Wait()

	return results
}

// LastSummary returns the most recent run's summary, or nil before the
// first run finishes.
func (r *Runner) LastSummary() *Summary {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	return r.last
}

func (r *Runner) setLast(summary *Summary) {
	r.lastMu.Lock()
	defer r.lastMu.Unlock()
	r.last = summary
}
