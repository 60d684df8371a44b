package listing

import (
	"strings"
)

// Criteria holds the fixed search predicates a listing must satisfy to
// be notified.
type Criteria struct {
	MinPrice int
	MaxPrice int
	Bedrooms int
	Towns    []string

	// PrefilteredSources are sources whose search query already
	// constrains the bedroom count, so a listing with an unknown
	// bedroom count can still be trusted to match. Unknowns from any
	// other source are excluded to avoid false positives.
	PrefilteredSources map[Source]bool
}

type Filterer struct {
	criteria Criteria
}

func NewFilterer(criteria Criteria) *Filterer {
	return &Filterer{criteria: criteria}
}

// Run returns the listings matching every criterion, preserving input
// order. It has no side effects; the same input always yields the same
// output.
func (f *Filterer) Run(items []Listing) []Listing {
	matched := make([]Listing, 0, len(items))
	for _, item := range items {
		if f.matches(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (f *Filterer) matches(item Listing) bool {
	if item.Price < f.criteria.MinPrice || item.Price > f.criteria.MaxPrice {
		return false
	}

	if item.Bedrooms == BedroomsUnknown {
		if !f.criteria.PrefilteredSources[item.Source] {
			return false
		}
	} else if item.Bedrooms != f.criteria.Bedrooms {
		return false
	}

	return f.matchesTown(item.Location)
}

// matchesTown compares case-insensitively and tolerates surrounding
// text such as ", NY" suffixes or "Apartment in Troy".
func (f *Filterer) matchesTown(location string) bool {
	loc := strings.ToLower(location)
	for _, town := range f.criteria.Towns {
		if strings.Contains(loc, strings.ToLower(strings.TrimSpace(town))) {
			return true
		}
	}
	return false
}
