package sites

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/YoungPup/Apartment-Scraper/app/listing"
)

//go:embed defaults/*.yml
var defaultsFS embed.FS

var knownSources = map[listing.Source]bool{
	listing.SourceCraigslist: true,
	listing.SourceApartments: true,
	listing.SourceHotPads:    true,
	listing.SourceZillow:     true,
}

// LoadConfigs reads the per-site YAML configurations, either from
// sitesDir or, when it is empty, from the embedded defaults. Search
// URL placeholders ({min_price}, {max_price}, {bedrooms}) are expanded
// from the filter criteria so sites that support server-side filtering
// narrow results at the source. Returned configs are ordered by name;
// that order is the run's aggregation order.
func LoadConfigs(sitesDir string, minPrice, maxPrice, bedrooms int) ([]*Config, error) {
	files, readFile, err := configFiles(sitesDir)
	if err != nil {
		return nil, err
	}

	replacer := strings.NewReplacer(
		"{min_price}", strconv.Itoa(minPrice),
		"{max_price}", strconv.Itoa(maxPrice),
		"{bedrooms}", strconv.Itoa(bedrooms),
	)

	configs := make([]*Config, 0, len(files))
	for _, file := range files {
		data, err := readFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read site config %s: %w", file, err)
		}

		config := &Config{Enabled: true}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse site config %s: %w", file, err)
		}

		name := filepath.Base(file)
		config.Name = strings.TrimSuffix(name, filepath.Ext(name))

		if err := validate(config); err != nil {
			return nil, fmt.Errorf("invalid site config %s: %w", file, err)
		}

		for i := range config.Searches {
			config.Searches[i].URL = replacer.Replace(config.Searches[i].URL)
		}

		if config.IDPattern != "" {
			config.idRe, err = regexp.Compile(config.IDPattern)
			if err != nil {
				return nil, fmt.Errorf("invalid id pattern in %s: %w", file, err)
			}
		}

		slog.Debug("Site configuration loaded", "site", config.Name,
			"source", config.Source, "kind", config.Kind,
			"enabled", config.Enabled, "searches", len(config.Searches))

		configs = append(configs, config)
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })

	return configs, nil
}

func configFiles(sitesDir string) ([]string, func(string) ([]byte, error), error) {
	if sitesDir == "" {
		files, err := fs.Glob(defaultsFS, "defaults/*.yml")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list embedded site configs: %w", err)
		}
		return files, defaultsFS.ReadFile, nil
	}

	files, err := filepath.Glob(filepath.Join(sitesDir, "*.yml"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list site configs in %s: %w", sitesDir, err)
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no site configs found in %s", sitesDir)
	}
	return files, os.ReadFile, nil
}

func validate(config *Config) error {
	if !knownSources[config.Source] {
		return fmt.Errorf("unknown source: %q", config.Source)
	}
	if config.Kind != KindRSS && config.Kind != KindHTML {
		return fmt.Errorf("unknown kind: %q", config.Kind)
	}
	if len(config.Searches) == 0 {
		return fmt.Errorf("at least one search URL is required")
	}
	for i, search := range config.Searches {
		if search.URL == "" {
			return fmt.Errorf("search %d has no URL", i)
		}
	}
	if config.Kind == KindHTML && config.Selectors.Card == "" {
		return fmt.Errorf("html site requires a card selector")
	}
	if config.MaxCards < 0 {
		return fmt.Errorf("max cards must be non-negative")
	}
	return nil
}
