package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Mail transport configuration
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" default:"smtp.gmail.com" description:"SMTP server host"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"465" description:"SMTP server port"`
	SMTPUser     string `long:"smtp-user" env:"GMAIL_USER" description:"SMTP account and digest sender address (required)" required:"true"`
	SMTPPassword string `long:"smtp-password" env:"GMAIL_APP_PASSWORD" description:"SMTP app password (required)" required:"true"`
	Recipient    string `long:"recipient" env:"RECIPIENT_EMAIL" description:"Digest recipient address (required)" required:"true"`

	// Filter criteria
	MinPrice int      `long:"min-price" env:"MIN_PRICE" default:"1000" description:"Minimum listing price, inclusive"`
	MaxPrice int      `long:"max-price" env:"MAX_PRICE" default:"1150" description:"Maximum listing price, inclusive"`
	Bedrooms int      `long:"bedrooms" env:"BEDROOMS" default:"1" description:"Required bedroom count"`
	Towns    []string `long:"town" env:"TOWNS" env-delim:"," default:"Troy" default:"Albany" default:"Schenectady" description:"Target towns (repeatable)"`

	// Application configuration
	SitesDir     string `long:"sites-dir" env:"SITES_DIR" description:"Directory with site config overrides (embedded defaults when unset)"`
	SeenDBPath   string `long:"seen-db" env:"SEEN_DB_PATH" default:"./seen.db" description:"Path to the seen-listing database"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	RunInterval  int    `long:"run-interval" env:"RUN_INTERVAL" default:"3600" description:"Seconds between scrape runs"`
	SiteTimeout  int    `long:"site-timeout" env:"SITE_TIMEOUT" default:"20" description:"Per-site fetch timeout in seconds"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent site fetches"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the manual run endpoint (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; ApartmentScraper/1.0; +https://example.com/bot)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SMTPHost:     raw.SMTPHost,
		SMTPPort:     raw.SMTPPort,
		SMTPUser:     raw.SMTPUser,
		SMTPPassword: raw.SMTPPassword,
		Recipient:    raw.Recipient,
		MinPrice:     raw.MinPrice,
		MaxPrice:     raw.MaxPrice,
		Bedrooms:     raw.Bedrooms,
		Towns:        raw.Towns,
		SitesDir:     raw.SitesDir,
		SeenDBPath:   raw.SeenDBPath,
		Port:         raw.Port,
		RunInterval:  raw.RunInterval,
		SiteTimeout:  raw.SiteTimeout,
		WorkerCount:  raw.WorkerCount,
		APIAccessKey: raw.APIAccessKey,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if cfg.MinPrice > cfg.MaxPrice {
		return nil, fmt.Errorf("min price %d exceeds max price %d", cfg.MinPrice, cfg.MaxPrice)
	}
	if len(cfg.Towns) == 0 {
		return nil, fmt.Errorf("at least one town is required")
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
