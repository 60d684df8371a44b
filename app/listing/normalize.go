package listing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	dollarPriceRe = regexp.MustCompile(`\$\s*([0-9][0-9,]*)`)
	barePriceRe   = regexp.MustCompile(`^([0-9][0-9,]*)`)
	bedroomsRe    = regexp.MustCompile(`(?i)([0-9]+)\s*(?:br\b|bd\b|bds\b|bed\b|beds\b|bedroom)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
)

// ParsePrice extracts an integer dollar amount from price text such as
// "$1,050/mo" or "1,050 - 1,150". A "$"-prefixed amount wins; otherwise
// the text must start with a number. Returns false when no amount can
// be read.
func ParsePrice(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	m := dollarPriceRe.FindStringSubmatch(s)
	if m == nil {
		m = barePriceRe.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, false
	}

	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseBedrooms reads a bedroom count from free text like "1 br",
// "1bd" or "one bedroom". Returns BedroomsUnknown when the text is
// silent or ambiguous; callers must not guess.
func ParseBedrooms(s string) int {
	t := strings.ToLower(s)

	if m := bedroomsRe.FindStringSubmatch(t); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return v
		}
	}

	if strings.Contains(t, "one bedroom") {
		return 1
	}
	if strings.Contains(t, "studio") {
		return 0
	}

	return BedroomsUnknown
}

// NormalizeText collapses runs of whitespace and trims the result.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// StripTags removes HTML markup from snippet text, e.g. embedded <img>
// elements inside RSS descriptions.
func StripTags(s string) string {
	return NormalizeText(htmlTagRe.ReplaceAllString(s, " "))
}

// Truncate caps snippet text at n runes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
