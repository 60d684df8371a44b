package sites

import (
	"strings"
	"testing"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

func TestLoadConfigs_EmbeddedDefaults(t *testing.T) {
	configs, err := LoadConfigs("", 1000, 1150, 1)
	if err != nil {
		t.Fatalf("LoadConfigs failed: %v", err)
	}

	if len(configs) != 4 {
		t.Fatalf("Expected 4 site configs, got %d", len(configs))
	}

	bySource := make(map[listing.Source]*Config)
	for _, config := range configs {
		bySource[config.Source] = config
	}

	for _, source := range []listing.Source{
		listing.SourceCraigslist, listing.SourceApartments,
		listing.SourceHotPads, listing.SourceZillow,
	} {
		if bySource[source] == nil {
			t.Errorf("Missing config for source %s", source)
		}
	}
}

func TestLoadConfigs_ExpandsPlaceholders(t *testing.T) {
	configs, err := LoadConfigs("", 1000, 1150, 1)
	if err != nil {
		t.Fatalf("LoadConfigs failed: %v", err)
	}

	for _, config := range configs {
		for _, search := range config.Searches {
			if strings.Contains(search.URL, "{") {
				t.Errorf("Unexpanded placeholder in %s search URL: %s", config.Name, search.URL)
			}
		}
		if config.Source == listing.SourceCraigslist {
			if !strings.Contains(config.Searches[0].URL, "min_price=1000") {
				t.Errorf("Expected min_price=1000 in craigslist URL, got %s", config.Searches[0].URL)
			}
			if !strings.Contains(config.Searches[0].URL, "max_price=1150") {
				t.Errorf("Expected max_price=1150 in craigslist URL, got %s", config.Searches[0].URL)
			}
		}
	}
}

func TestLoadConfigs_OrderIsDeterministic(t *testing.T) {
	configs, err := LoadConfigs("", 1000, 1150, 1)
	if err != nil {
		t.Fatalf("LoadConfigs failed: %v", err)
	}

	for i := 1; i < len(configs); i++ {
		if configs[i-1].Name >= configs[i].Name {
			t.Errorf("Configs not ordered by name: %s before %s", configs[i-1].Name, configs[i].Name)
		}
	}
}

func TestConfig_ExtractID(t *testing.T) {
	configs, err := LoadConfigs("", 1000, 1150, 1)
	if err != nil {
		t.Fatalf("LoadConfigs failed: %v", err)
	}

	bySource := make(map[listing.Source]*Config)
	for _, config := range configs {
		bySource[config.Source] = config
	}

	tests := []struct {
		source listing.Source
		url    string
		want   string
	}{
		{listing.SourceCraigslist, "https://albany.craigslist.org/apa/d/troy-cozy/7012345678.html", "7012345678"},
		{listing.SourceZillow, "https://www.zillow.com/homedetails/troy-ny/2064512345_zpid/", "2064512345"},
		{listing.SourceApartments, "https://www.apartments.com/river-lofts-troy-ny/abc1234/", "abc1234"},
		// HotPads has no stable id pattern; identity falls back to the URL.
		{listing.SourceHotPads, "https://hotpads.com/river-lofts/pad", ""},
	}

	for _, tt := range tests {
		config := bySource[tt.source]
		if config == nil {
			t.Fatalf("Missing config for %s", tt.source)
		}
		if got := config.ExtractID(tt.url); got != tt.want {
			t.Errorf("ExtractID(%s, %q) = %q, want %q", tt.source, tt.url, got, tt.want)
		}
	}
}

func TestConfig_BedroomsPrefiltered(t *testing.T) {
	configs, err := LoadConfigs("", 1000, 1150, 1)
	if err != nil {
		t.Fatalf("LoadConfigs failed: %v", err)
	}

	for _, config := range configs {
		want := config.Source == listing.SourceCraigslist
		if config.BedroomsPrefiltered != want {
			t.Errorf("Site %s: bedrooms_prefiltered = %v, want %v", config.Name, config.BedroomsPrefiltered, want)
		}
	}
}
