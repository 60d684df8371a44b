package api

import (
	"context"

	"github.com/YoungPup/Apartment-Scraper/app/dedup"
	"github.com/YoungPup/Apartment-Scraper/app/runner"
)

type RunnerInterface interface {
	RunOnce(ctx context.Context) (*runner.Summary, error)
	LastSummary() *runner.Summary
}

var _ RunnerInterface = (*runner.Runner)(nil)

type SeenSetInterface interface {
	Size() (int, error)
}

var _ SeenSetInterface = (*dedup.Store)(nil)

type Handler struct {
	runner    RunnerInterface
	seenSet   SeenSetInterface
	siteCount int
}
