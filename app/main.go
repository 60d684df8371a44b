package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YoungPup/Apartment-Scraper/app/api"
	"github.com/YoungPup/Apartment-Scraper/app/cfg"
	"github.com/YoungPup/Apartment-Scraper/app/database"
	"github.com/YoungPup/Apartment-Scraper/app/dedup"
	"github.com/YoungPup/Apartment-Scraper/app/digest"
	"github.com/YoungPup/Apartment-Scraper/app/listing"
	"github.com/YoungPup/Apartment-Scraper/app/runner"
	"github.com/YoungPup/Apartment-Scraper/app/sites"
	"github.com/YoungPup/Apartment-Scraper/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Apartment Scraper", "version", appCfg.Version)

	db, storeReset, err := database.NewConnectionWithRecovery(appCfg.SeenDBPath)
	if err != nil {
		log.Fatal("Failed to open seen store:", err)
	}
	defer db.Close()
	if storeReset {
		slog.Warn("Seen store was reset; previously notified listings may be re-sent once")
	}

	seenRepo := database.NewSeenListingRepository(db)
	store := dedup.NewStore(seenRepo)

	siteConfigs, err := sites.LoadConfigs(appCfg.SitesDir, appCfg.MinPrice, appCfg.MaxPrice, appCfg.Bedrooms)
	if err != nil {
		log.Fatal("Failed to load site configurations:", err)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.SiteTimeout) * time.Second,
	}

	var adapters []sites.Adapter
	prefiltered := make(map[listing.Source]bool)
	for _, siteConfig := range siteConfigs {
		if !siteConfig.Enabled {
			slog.Info("Site disabled, skipping", "site", siteConfig.Name)
			continue
		}

		adapter, err := sites.NewAdapter(siteConfig, httpClient, appCfg.UserAgent)
		if err != nil {
			log.Fatal("Failed to build site adapter:", err)
		}

		adapters = append(adapters, adapter)
		if siteConfig.BedroomsPrefiltered {
			prefiltered[siteConfig.Source] = true
		}
	}
	slog.Info("Site adapters ready", "count", len(adapters))

	filterer := listing.NewFilterer(listing.Criteria{
		MinPrice:           appCfg.MinPrice,
		MaxPrice:           appCfg.MaxPrice,
		Bedrooms:           appCfg.Bedrooms,
		Towns:              appCfg.Towns,
		PrefilteredSources: prefiltered,
	})

	composer := digest.NewComposer(httpClient, appCfg.UserAgent, appCfg.Towns)
	mailer := digest.NewMailer(appCfg.SMTPHost, appCfg.SMTPPort, appCfg.SMTPUser,
		appCfg.SMTPPassword, appCfg.Recipient)

	listingRunner := runner.NewRunner(adapters, filterer, store, composer, mailer,
		time.Duration(appCfg.SiteTimeout)*time.Second, appCfg.WorkerCount, storeReset)

	scheduler := tasks.NewScheduler(listingRunner, time.Duration(appCfg.RunInterval)*time.Second)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "interval", (time.Duration(appCfg.RunInterval) * time.Second).String())

	handler := api.NewHandler(listingRunner, store, len(adapters))
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer; an in-flight run finishes first.
	slog.Info("Shutdown complete")
}
