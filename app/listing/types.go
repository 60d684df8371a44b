package listing

// Source identifies one of the fixed set of scraped sites.
type Source string

const (
	SourceCraigslist Source = "craigslist"
	SourceApartments Source = "apartments"
	SourceHotPads    Source = "hotpads"
	SourceZillow     Source = "zillow"
)

func (s Source) DisplayName() string {
	switch s {
	case SourceCraigslist:
		return "Craigslist"
	case SourceApartments:
		return "Apartments.com"
	case SourceHotPads:
		return "HotPads"
	case SourceZillow:
		return "Zillow"
	default:
		return string(s)
	}
}

// BedroomsUnknown marks listings whose bedroom count could not be
// determined from the page text.
const BedroomsUnknown = -1

// Listing is one normalized unit discovered on a search-results page.
// (Source, ExternalID) identifies the same physical listing across runs;
// when a site exposes no stable id, ExternalID is empty and the URL is
// used as the identity fallback.
type Listing struct {
	Source      Source
	ExternalID  string
	Title       string
	Price       int
	Bedrooms    int
	Location    string
	Description string
	URL         string
	ImageURLs   []string
}

// FirstImage returns the listing's primary image URL, or "" when the
// listing carries no images.
func (l Listing) FirstImage() string {
	if len(l.ImageURLs) == 0 {
		return ""
	}
	return l.ImageURLs[0]
}

// RunResult is the per-site outcome of one fetch-and-parse cycle. A nil
// Err with zero listings means "no matching listings today"; a non-nil
// Err means the site could not be determined (blocked, timeout, markup
// change).
type RunResult struct {
	Source   Source
	Listings []Listing
	Err      error
}
