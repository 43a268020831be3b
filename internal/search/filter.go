// Package search implements the directory filter, sort and result pipeline
// over an in-memory profile collection.
package search

import (
	"strings"

	"diving-mate-backend/internal/domain"

	"golang.org/x/text/cases"
)

// matcher holds a normalized filter with its text pre-folded.
// A matcher is not safe for concurrent use.
type matcher struct {
	fold     cases.Caser
	query    string
	location string
	tags     map[string]struct{}
	price    *domain.PriceRange
}

func newMatcher(f domain.FilterState) *matcher {
	f = f.Normalize()
	m := &matcher{
		fold:  cases.Fold(),
		price: f.PriceRange,
	}
	m.query = m.fold.String(f.Query)
	m.location = m.fold.String(f.Location)
	if len(f.Specialties) > 0 {
		m.tags = make(map[string]struct{}, len(f.Specialties))
		for _, t := range f.Specialties {
			m.tags[m.fold.String(t)] = struct{}{}
		}
	}
	return m
}

// Matches reports whether a profile satisfies every clause of the filter
func Matches(p *domain.Profile, f domain.FilterState) bool {
	return newMatcher(f).match(p)
}

func (m *matcher) match(p *domain.Profile) bool {
	return m.matchQuery(p) && m.matchLocation(p) && m.matchTags(p) && m.matchPrice(p)
}

func (m *matcher) contains(s, folded string) bool {
	return strings.Contains(m.fold.String(s), folded)
}

func (m *matcher) matchQuery(p *domain.Profile) bool {
	if m.query == "" {
		return true
	}
	return m.contains(p.Name, m.query) ||
		m.contains(p.Summary, m.query) ||
		m.contains(p.Address, m.query)
}

func (m *matcher) matchLocation(p *domain.Profile) bool {
	if m.location == "" {
		return true
	}
	return m.contains(p.Address, m.location)
}

// matchTags is an any-of intersection using case-insensitive equality for
// both instructor specialties and resort facilities.
func (m *matcher) matchTags(p *domain.Profile) bool {
	if len(m.tags) == 0 {
		return true
	}
	for _, t := range p.Tags {
		if _, ok := m.tags[m.fold.String(strings.TrimSpace(t))]; ok {
			return true
		}
	}
	return false
}

func (m *matcher) matchPrice(p *domain.Profile) bool {
	if m.price == nil {
		return true
	}
	min, ok := p.MinPrice()
	if !ok {
		return false
	}
	return min >= m.price.Min && min <= m.price.Max
}
