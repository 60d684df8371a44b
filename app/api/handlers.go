package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YoungPup/Apartment-Scraper/app/runner"
)

func NewHandler(r RunnerInterface, seenSet SeenSetInterface, siteCount int) *Handler {
	return &Handler{
		runner:    r,
		seenSet:   seenSet,
		siteCount: siteCount,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sites":     h.siteCount,
	}

	if seenCount, err := h.seenSet.Size(); err == nil {
		health["seen_listings"] = seenCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{
		"sites": h.siteCount,
	}

	if seenCount, err := h.seenSet.Size(); err == nil {
		stats["seen_listings"] = seenCount
	}

	if last := h.runner.LastSummary(); last != nil {
		stats["last_run"] = last
	}

	c.JSON(http.StatusOK, stats)
}

// TriggerRun starts a run outside the schedule and waits for its
// summary. An overlapping run is reported, not queued.
func (h *Handler) TriggerRun(c *gin.Context) {
	summary, err := h.runner.RunOnce(c.Request.Context())
	if err != nil {
		if errors.Is(err, runner.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "run already in progress"})
			return
		}
		slog.Error("Manual run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
		return
	}

	c.JSON(http.StatusOK, summary)
}
