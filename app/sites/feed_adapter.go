package sites

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/mmcdole/gofeed"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

// feedAdapter reads sites that publish search results as RSS
// (craigslist's ?format=rss search endpoint). Fetching is best-effort
// per search URL: a region that fails is skipped, and the adapter
// fails only when every region failed.
type feedAdapter struct {
	config    *Config
	client    *http.Client
	parser    *gofeed.Parser
	userAgent string
}

var _ Adapter = (*feedAdapter)(nil)

var titleLocationRe = regexp.MustCompile(`\(([^)]+)\)\s*$`)

func newFeedAdapter(config *Config, client *http.Client, userAgent string) *feedAdapter {
	return &feedAdapter{
		config:    config,
		client:    client,
		parser:    gofeed.NewParser(),
		userAgent: userAgent,
	}
}

func (a *feedAdapter) Name() string           { return a.config.Name }
func (a *feedAdapter) Source() listing.Source { return a.config.Source }

func (a *feedAdapter) Fetch(ctx context.Context) ([]listing.Listing, error) {
	var items []listing.Listing
	var lastErr error

	for _, search := range a.config.Searches {
		data, err := fetchURL(ctx, a.client, search.URL, a.userAgent)
		if err != nil {
			lastErr = err
			slog.Debug("Search fetch failed", "site", a.config.Name, "url", search.URL, "error", err)
			continue
		}

		feed, err := a.parser.Parse(bytes.NewReader(data))
		if err != nil {
			lastErr = fmt.Errorf("failed to parse feed: %w", err)
			slog.Debug("Search parse failed", "site", a.config.Name, "url", search.URL, "error", err)
			continue
		}

		for _, item := range feed.Items {
			normalized, ok := a.normalizeItem(item, search)
			if !ok {
				continue
			}
			items = append(items, normalized)
		}
	}

	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return items, nil
}

// normalizeItem maps one feed entry to a Listing. Entries without a
// readable price are dropped, not failed.
func (a *feedAdapter) normalizeItem(item *gofeed.Item, search Search) (listing.Listing, bool) {
	if item.Link == "" {
		return listing.Listing{}, false
	}

	title := listing.NormalizeText(item.Title)
	description := listing.Truncate(listing.StripTags(item.Description), 350)

	price, ok := listing.ParsePrice(title)
	if !ok {
		price, ok = listing.ParsePrice(description)
	}
	if !ok {
		return listing.Listing{}, false
	}

	location := search.Town
	if m := titleLocationRe.FindStringSubmatch(title); m != nil {
		location = listing.NormalizeText(m[1])
	}

	var images []string
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			images = append(images, enclosure.URL)
		}
	}
	if item.Image != nil && item.Image.URL != "" {
		images = append(images, item.Image.URL)
	}

	return listing.Listing{
		Source:      a.config.Source,
		ExternalID:  a.config.ExtractID(item.Link),
		Title:       title,
		Price:       price,
		Bedrooms:    listing.ParseBedrooms(title + " " + description),
		Location:    location,
		Description: description,
		URL:         item.Link,
		ImageURLs:   images,
	}, true
}
