package search

import (
	"math"
	"slices"
	"strings"

	"diving-mate-backend/internal/domain"

	"golang.org/x/text/cases"
)

// Paging defaults, matching the list endpoints
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Search filters profiles and returns them in sortKey order. Ties keep their
// input order. The input slice is not modified.
func Search(profiles []domain.Profile, filter domain.FilterState, sortKey domain.SortKey) []domain.Profile {
	m := newMatcher(filter)
	out := make([]domain.Profile, 0, len(profiles))
	for i := range profiles {
		if m.match(&profiles[i]) {
			out = append(out, profiles[i])
		}
	}

	compare := NewComparator(sortKey)
	slices.SortStableFunc(out, func(a, b domain.Profile) int {
		return compare(&a, &b)
	})
	return out
}

// Paginate slices results into one page
func Paginate(results []domain.Profile, page, limit int) domain.SearchPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// Bound page before multiplying so huge values cannot overflow
	start := len(results)
	if page-1 <= len(results)/limit {
		start = min((page-1)*limit, len(results))
	}
	end := min(start+limit, len(results))

	return domain.SearchPage{
		Items: results[start:end],
		Total: len(results),
		Page:  page,
		Limit: limit,
	}
}

// Facets reports the tag vocabulary and the cheapest-offering price span of a
// dataset. Tags are de-duplicated case-insensitively, keeping the first spelling.
func Facets(profiles []domain.Profile) domain.ProfileFacets {
	fold := cases.Fold()
	seen := make(map[string]struct{})
	facets := domain.ProfileFacets{Tags: []string{}, Count: len(profiles)}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range profiles {
		p := &profiles[i]
		for _, t := range p.Tags {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			key := fold.String(t)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			facets.Tags = append(facets.Tags, t)
		}
		if price, ok := p.MinPrice(); ok {
			lo = math.Min(lo, price)
			hi = math.Max(hi, price)
		}
	}
	slices.Sort(facets.Tags)

	if !math.IsInf(lo, 1) {
		facets.MinPrice = lo
		facets.MaxPrice = hi
	}
	return facets
}
