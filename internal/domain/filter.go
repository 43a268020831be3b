package domain

import (
	"math"
	"strings"
)

// Price bounds of the directory price slider
const (
	PriceFloor   = 0
	PriceCeiling = 5000
)

// SortKey selects the result ordering
type SortKey string

const (
	SortByViews      SortKey = "views"
	SortByName       SortKey = "name"
	SortByExperience SortKey = "experience"
)

// PriceRange bounds the cheapest offering of a listing, inclusive
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterState is the full set of user-chosen search constraints.
// A nil PriceRange disables the price clause.
type FilterState struct {
	Query       string      `json:"query"`
	Location    string      `json:"location"`
	Specialties []string    `json:"specialties"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
}

// DefaultFilterState returns the state a fresh search screen starts with.
// Its [0,5000] range is an active price clause: passing it unchanged
// excludes listings with no priced offering or a price above 5000. Leave
// PriceRange nil to skip the clause.
func DefaultFilterState() FilterState {
	return FilterState{
		Specialties: []string{},
		PriceRange:  &PriceRange{Min: PriceFloor, Max: PriceCeiling},
	}
}

// Normalize returns a copy with trimmed text, blank tags dropped and the
// price range clamped into the slider bounds. It never fails.
func (f FilterState) Normalize() FilterState {
	out := FilterState{
		Query:       strings.TrimSpace(f.Query),
		Location:    strings.TrimSpace(f.Location),
		Specialties: make([]string, 0, len(f.Specialties)),
	}
	for _, s := range f.Specialties {
		if s = strings.TrimSpace(s); s != "" {
			out.Specialties = append(out.Specialties, s)
		}
	}
	if f.PriceRange != nil {
		lo := clampPrice(f.PriceRange.Min, PriceFloor)
		hi := clampPrice(f.PriceRange.Max, PriceCeiling)
		if lo > hi {
			lo, hi = hi, lo
		}
		out.PriceRange = &PriceRange{Min: lo, Max: hi}
	}
	return out
}

func clampPrice(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(PriceFloor, math.Min(PriceCeiling, v))
}
