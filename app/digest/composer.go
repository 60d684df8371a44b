package digest

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

// MaxEntries caps the number of listings rendered into one digest.
const MaxEntries = 12

const digestTemplate = `<html><body>
<p>Found {{.Count}} new listing(s) at {{.FoundAt}}</p>
{{range .Entries}}<div style="padding:10px;border:1px solid #eee;border-radius:6px;margin-bottom:10px;">
  <h3 style="margin:0 0 6px 0;"><a href="{{.URL}}" target="_blank">{{.Title}}</a></h3>
  <div style="font-weight:600;margin-bottom:8px;">{{.Price}} &mdash; {{.Site}}</div>
  {{if .InlineName}}<div><img src="cid:{{.InlineName}}" style="max-width:420px;height:auto;margin-bottom:8px;"></div>{{end}}
  {{if .Details}}<div style="margin-top:6px;">{{.Details}}</div>{{end}}
  {{if .ThumbnailURL}}<div style="margin-top:8px;"><a href="{{.URL}}" target="_blank"><img src="{{.ThumbnailURL}}" style="width:120px;height:auto;margin-right:6px;border-radius:3px;"></a></div>{{end}}
  <div style="margin-top:6px;font-size:12px;color:#666;">{{.URL}}</div>
</div>
{{end}}<hr><p>ApartmentBot</p>
</body></html>`

type templateEntry struct {
	Title        string
	URL          string
	Price        string
	Site         string
	Details      string
	InlineName   string
	ThumbnailURL string
}

type templateData struct {
	Count   int
	FoundAt string
	Entries []templateEntry
}

// Composer renders the per-run digest. Composition is pure given the
// input sequence except for one network call: fetching the first
// listing's image for inline embedding.
type Composer struct {
	client    *http.Client
	userAgent string
	towns     []string
	template  *template.Template
	caser     cases.Caser
}

func NewComposer(client *http.Client, userAgent string, towns []string) *Composer {
	return &Composer{
		client:    client,
		userAgent: userAgent,
		towns:     towns,
		template:  template.Must(template.New("digest").Parse(digestTemplate)),
		caser:     cases.Title(language.AmericanEnglish),
	}
}

// Run builds one digest email from the ordered novel listings. The
// first listing's first image is embedded inline when reachable; every
// other listing's first image renders as a thumbnail reference.
// Listings without images degrade to text-only entries.
func (c *Composer) Run(ctx context.Context, novel []listing.Listing, now time.Time) (*Email, error) {
	if len(novel) == 0 {
		return nil, fmt.Errorf("nothing to compose: no novel listings")
	}

	subject := fmt.Sprintf("[ApartmentBot] %d new listing(s) — %s", len(novel), c.townList())

	entries := novel
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}

	var inline *InlineImage
	if imageURL := entries[0].FirstImage(); imageURL != "" {
		inline = c.fetchInline(ctx, imageURL)
	}

	data := templateData{
		Count:   len(novel),
		FoundAt: now.UTC().Format("2006-01-02 15:04:05"),
	}

	for i, item := range entries {
		entry := templateEntry{
			Title:   item.Title,
			URL:     item.URL,
			Price:   fmt.Sprintf("$%d", item.Price),
			Site:    item.Source.DisplayName(),
			Details: c.details(item),
		}

		if i == 0 && inline != nil {
			entry.InlineName = inline.Name
		} else if url := item.FirstImage(); url != "" {
			entry.ThumbnailURL = url
		}

		data.Entries = append(data.Entries, entry)
	}

	var body strings.Builder
	if err := c.template.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	return &Email{
		Subject: subject,
		HTML:    body.String(),
		Inline:  inline,
	}, nil
}

func (c *Composer) townList() string {
	titled := make([]string, 0, len(c.towns))
	for _, town := range c.towns {
		titled = append(titled, c.caser.String(strings.TrimSpace(town)))
	}
	return strings.Join(titled, ", ")
}

func (c *Composer) details(item listing.Listing) string {
	var parts []string
	if item.Bedrooms != listing.BedroomsUnknown {
		parts = append(parts, fmt.Sprintf("%d bd", item.Bedrooms))
	}
	if item.Location != "" {
		parts = append(parts, item.Location)
	}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	return strings.Join(parts, " · ")
}

// fetchInline retrieves the embed image, best-effort: a failure means
// the digest goes out without the inline image, never that the digest
// is withheld.
func (c *Composer) fetchInline(ctx context.Context, imageURL string) *InlineImage {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		slog.Debug("Failed to build inline image request", "url", imageURL, "error", err)
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Debug("Failed to fetch inline image", "url", imageURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Inline image fetch returned non-OK status", "url", imageURL, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		slog.Debug("Failed to read inline image body", "url", imageURL, "error", err)
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return &InlineImage{
		Name:        "img0" + extensionFor(contentType),
		ContentType: contentType,
		Data:        data,
	}
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}
