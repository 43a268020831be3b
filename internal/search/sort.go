package search

import (
	"cmp"

	"diving-mate-backend/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparator orders two profiles; negative means a sorts before b
type Comparator func(a, b *domain.Profile) int

// ParseSortKey maps a request value to a sort key, defaulting to views
func ParseSortKey(s string) domain.SortKey {
	if s == "" {
		return domain.SortByViews
	}
	return domain.SortKey(s)
}

// NewComparator returns the ordering for key. Unknown keys get a comparator
// that treats every pair as equal, so a stable sort keeps input order.
// The returned comparator is not safe for concurrent use.
func NewComparator(key domain.SortKey) Comparator {
	switch key {
	case domain.SortByViews:
		return byViews
	case domain.SortByName:
		return byName(collate.New(language.Und))
	case domain.SortByExperience:
		return byExperience
	default:
		return noOrder
	}
}

func byViews(a, b *domain.Profile) int {
	return cmp.Compare(b.Stats.Views, a.Stats.Views)
}

func byName(c *collate.Collator) Comparator {
	return func(a, b *domain.Profile) int {
		return c.CompareString(a.Name, b.Name)
	}
}

// byExperience only ranks instructors. Resorts have no experience figure and
// compare equal to each other; in a mixed set they follow the instructors.
func byExperience(a, b *domain.Profile) int {
	ai, bi := a.Kind == domain.KindInstructor, b.Kind == domain.KindInstructor
	switch {
	case ai && bi:
		return cmp.Compare(b.Experience, a.Experience)
	case ai:
		return -1
	case bi:
		return 1
	default:
		return 0
	}
}

func noOrder(_, _ *domain.Profile) int { return 0 }
