package sites

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

// pageAdapter reads sites that render search results as plain HTML,
// walking result cards with the configured selectors. Sites that wall
// their results behind JS or a captcha degrade to ErrBlocked rather
// than an empty success.
type pageAdapter struct {
	config    *Config
	client    *http.Client
	userAgent string
}

var _ Adapter = (*pageAdapter)(nil)

func newPageAdapter(config *Config, client *http.Client, userAgent string) *pageAdapter {
	return &pageAdapter{
		config:    config,
		client:    client,
		userAgent: userAgent,
	}
}

func (a *pageAdapter) Name() string           { return a.config.Name }
func (a *pageAdapter) Source() listing.Source { return a.config.Source }

func (a *pageAdapter) Fetch(ctx context.Context) ([]listing.Listing, error) {
	var items []listing.Listing
	var lastErr error
	blocked := false

	for _, search := range a.config.Searches {
		data, err := fetchURL(ctx, a.client, search.URL, a.userAgent)
		if err != nil {
			if errors.Is(err, ErrBlocked) {
				blocked = true
			}
			lastErr = err
			slog.Debug("Search fetch failed", "site", a.config.Name, "url", search.URL, "error", err)
			continue
		}

		if a.looksBlocked(data) {
			blocked = true
			lastErr = ErrBlocked
			slog.Debug("Search page blocked", "site", a.config.Name, "url", search.URL)
			continue
		}

		parsed, err := a.parsePage(data, search)
		if err != nil {
			lastErr = err
			slog.Debug("Search parse failed", "site", a.config.Name, "url", search.URL, "error", err)
			continue
		}

		items = append(items, parsed...)
	}

	if len(items) == 0 {
		if blocked {
			return nil, ErrBlocked
		}
		if lastErr != nil {
			return nil, lastErr
		}
		if a.config.EmptyAsBlocked {
			return nil, ErrBlocked
		}
	}

	return items, nil
}

func (a *pageAdapter) looksBlocked(data []byte) bool {
	if len(a.config.BlockedMarkers) == 0 {
		return false
	}
	page := strings.ToLower(string(data))
	for _, marker := range a.config.BlockedMarkers {
		if strings.Contains(page, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (a *pageAdapter) parsePage(data []byte, search Search) ([]listing.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	base, err := url.Parse(search.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid search URL: %w", err)
	}

	var items []listing.Listing
	doc.Find(a.config.Selectors.Card).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if a.config.MaxCards > 0 && i >= a.config.MaxCards {
			return false
		}
		if parsed, ok := a.parseCard(card, base, search); ok {
			items = append(items, parsed)
		}
		return true
	})

	return items, nil
}

// parseCard maps one result card to a Listing. Cards without a detail
// link or a readable price are dropped, not failed.
func (a *pageAdapter) parseCard(card *goquery.Selection, base *url.URL, search Search) (listing.Listing, bool) {
	link := a.cardLink(card, base)
	if link == "" {
		return listing.Listing{}, false
	}

	price, ok := listing.ParsePrice(selectText(card, a.config.Selectors.Price))
	if !ok {
		return listing.Listing{}, false
	}

	title := selectText(card, a.config.Selectors.Title)
	if title == "" {
		title = listing.Truncate(listing.NormalizeText(card.Text()), 80)
	}

	bedroomsText := selectText(card, a.config.Selectors.Bedrooms)
	if bedroomsText == "" {
		bedroomsText = title
	}

	location := selectText(card, a.config.Selectors.Location)
	if location == "" {
		location = search.Town
	}

	return listing.Listing{
		Source:      a.config.Source,
		ExternalID:  a.config.ExtractID(link),
		Title:       title,
		Price:       price,
		Bedrooms:    listing.ParseBedrooms(bedroomsText),
		Location:    location,
		Description: listing.Truncate(selectText(card, a.config.Selectors.Description), 350),
		URL:         link,
		ImageURLs:   a.cardImages(card, base),
	}, true
}

func (a *pageAdapter) cardLink(card *goquery.Selection, base *url.URL) string {
	selector := a.config.Selectors.Link
	if selector == "" {
		selector = "a"
	}
	href, ok := card.Find(selector).First().Attr("href")
	if !ok || href == "" {
		return ""
	}
	return resolveURL(base, href)
}

func (a *pageAdapter) cardImages(card *goquery.Selection, base *url.URL) []string {
	selector := a.config.Selectors.Image
	if selector == "" {
		return nil
	}

	var images []string
	seen := make(map[string]bool)
	card.Find(selector).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("data-src")
		if !ok || src == "" {
			src, _ = img.Attr("src")
		}
		if src == "" {
			return
		}
		resolved := resolveURL(base, src)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	})

	return images
}

// selectText returns the first non-empty normalized text among the
// selector's matches, or "" when the selector is empty or nothing
// matched.
func selectText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}

	var text string
	card.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text = listing.NormalizeText(s.Text())
		return text == ""
	})
	return text
}

func resolveURL(base *url.URL, href string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
