package sites

import (
	"regexp"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

// Kind selects the fetch/parse strategy for a site.
type Kind string

const (
	KindRSS  Kind = "rss"
	KindHTML Kind = "html"
)

// Config describes one site: where to search and how to read the
// results page. The site set itself is a fixed closed enum; these
// files only tune selectors and search URLs.
type Config struct {
	Name    string         `yaml:"-"` // derived from filename (without .yml extension)
	Source  listing.Source `yaml:"source"`
	Kind    Kind           `yaml:"kind"`
	Enabled bool           `yaml:"enabled"`

	// BedroomsPrefiltered marks sites whose search query already
	// constrains the bedroom count, so unknown-bedroom listings from
	// them are still trusted by the filter.
	BedroomsPrefiltered bool `yaml:"bedrooms_prefiltered"`

	// EmptyAsBlocked treats a page that yields zero cards as a blocked
	// fetch rather than an empty result. Set for JS-heavy sites where
	// a plain GET returning no recognizable cards means "could not
	// determine", not "no matching listings today".
	EmptyAsBlocked bool `yaml:"empty_as_blocked"`

	// IDPattern extracts the site's stable listing id from a detail
	// URL (first capture group). When absent or unmatched, identity
	// falls back to a hash of the URL itself.
	IDPattern string `yaml:"id_pattern"`

	MaxCards       int       `yaml:"max_cards"`
	Searches       []Search  `yaml:"searches"`
	Selectors      Selectors `yaml:"selectors"`
	BlockedMarkers []string  `yaml:"blocked_markers"`

	idRe *regexp.Regexp
}

// Search is one results-page query. Town is used as the listing
// location default when a card carries no location text of its own.
type Search struct {
	URL  string `yaml:"url"`
	Town string `yaml:"town"`
}

// Selectors are goquery CSS selectors for the parts of a result card.
// Comma-separated alternatives are allowed, first match wins.
type Selectors struct {
	Card        string `yaml:"card"`
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Price       string `yaml:"price"`
	Bedrooms    string `yaml:"bedrooms"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Image       string `yaml:"image"`
}

// ExtractID applies the configured id pattern to a detail URL,
// returning "" when no stable id can be read.
func (c *Config) ExtractID(url string) string {
	if c.idRe == nil {
		return ""
	}
	m := c.idRe.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}
