package search

import (
	"math"
	"testing"

	"diving-mate-backend/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instructor(id, name, address string, views int64, experience int, tags []string, prices ...float64) domain.Profile {
	offerings := make([]domain.Offering, 0, len(prices))
	for _, p := range prices {
		offerings = append(offerings, domain.Offering{Name: "dive", Price: p})
	}
	return domain.Profile{
		Kind:       domain.KindInstructor,
		ID:         id,
		Name:       name,
		Summary:    "Instructor " + name,
		Address:    address,
		Tags:       tags,
		Priceables: offerings,
		Stats:      domain.ProfileStats{Views: views},
		Experience: experience,
	}
}

func ids(profiles []domain.Profile) []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.ID)
	}
	return out
}

func fixture() []domain.Profile {
	return []domain.Profile{
		instructor("1", "Mina Park", "Jeju, Korea", 120, 8, []string{"Deep Diving", "Nitrox"}, 150, 90),
		instructor("2", "Daniel Cho", "Busan, Korea", 300, 3, []string{"Wreck"}, 300),
		instructor("3", "Émile Roux", "Seogwipo, Jeju", 300, 12, []string{"nitrox", "Cave"}, 700),
		instructor("4", "alex kim", "Seoul, Korea", 10, 5, []string{"Photography"}, 40),
		instructor("5", "No Offers", "Jeju, Korea", 50, 1, []string{"Nitrox"}),
	}
}

func TestSearch_Scenarios(t *testing.T) {
	profiles := []domain.Profile{
		instructor("a", "A", "Seoul", 10, 0, nil, 100),
		instructor("b", "B", "Busan", 50, 0, nil, 9000),
	}

	t.Run("price range excludes the expensive listing", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{PriceRange: &domain.PriceRange{Min: 0, Max: 5000}}, domain.SortByViews)
		assert.Equal(t, []string{"a"}, ids(got))
	})

	t.Run("query matches name case-insensitively", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{Query: "b"}, domain.SortByViews)
		assert.Equal(t, []string{"b"}, ids(got))
	})
}

func TestSearch_Idempotent(t *testing.T) {
	profiles := fixture()
	filter := domain.FilterState{Location: "jeju", Specialties: []string{"NITROX"}}

	first := Search(profiles, filter, domain.SortByName)
	second := Search(profiles, filter, domain.SortByName)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Search() not idempotent (-first +second):\n%s", diff)
	}
}

func TestSearch_DoesNotMutateInput(t *testing.T) {
	profiles := fixture()
	before := ids(profiles)

	_ = Search(profiles, domain.FilterState{}, domain.SortByName)

	assert.Equal(t, before, ids(profiles))
}

func TestSearch_FilterMonotonicity(t *testing.T) {
	profiles := fixture()
	steps := []domain.FilterState{
		{},
		{Location: "korea"},
		{Location: "korea", Specialties: []string{"nitrox", "wreck"}},
		{Location: "korea", Specialties: []string{"nitrox", "wreck"}, PriceRange: &domain.PriceRange{Min: 0, Max: 200}},
		{Query: "mina", Location: "korea", Specialties: []string{"nitrox", "wreck"}, PriceRange: &domain.PriceRange{Min: 0, Max: 200}},
	}

	prev := ids(Search(profiles, steps[0], domain.SortByViews))
	for i, f := range steps[1:] {
		got := ids(Search(profiles, f, domain.SortByViews))
		assert.Subset(t, prev, got, "step %d widened the result", i+1)
		prev = got
	}
	assert.Equal(t, []string{"1"}, prev)
}

func TestSearch_SortTotality(t *testing.T) {
	profiles := fixture()

	t.Run("views descending", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{}, domain.SortByViews)
		require.NotEmpty(t, got)
		for i := 0; i+1 < len(got); i++ {
			assert.GreaterOrEqual(t, got[i].Stats.Views, got[i+1].Stats.Views)
		}
		// Equal views keep input order.
		assert.Equal(t, []string{"2", "3", "1", "5", "4"}, ids(got))
	})

	t.Run("experience descending", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{}, domain.SortByExperience)
		for i := 0; i+1 < len(got); i++ {
			assert.GreaterOrEqual(t, got[i].Experience, got[i+1].Experience)
		}
	})

	t.Run("name ascending is locale aware", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{}, domain.SortByName)
		// Case and accents do not push lowercase or accented names to the end.
		assert.Equal(t, []string{"4", "2", "3", "1", "5"}, ids(got))
	})

	t.Run("unknown key keeps input order", func(t *testing.T) {
		got := Search(profiles, domain.FilterState{}, domain.SortKey("rating"))
		assert.Equal(t, ids(profiles), ids(got))
	})
}

func TestSearch_ExperienceIgnoresResorts(t *testing.T) {
	resorts := []domain.Profile{
		{Kind: domain.KindResort, ID: "r1", Name: "Blue", Priceables: []domain.Offering{{Price: 1}}},
		{Kind: domain.KindResort, ID: "r2", Name: "Coral", Priceables: []domain.Offering{{Price: 1}}},
	}
	got := Search(resorts, domain.FilterState{}, domain.SortByExperience)
	assert.Equal(t, []string{"r1", "r2"}, ids(got))
}

func TestMatches_PriceGuards(t *testing.T) {
	active := domain.FilterState{PriceRange: &domain.PriceRange{Min: 0, Max: 5000}}

	empty := instructor("e", "Empty", "Jeju", 0, 0, nil)
	assert.False(t, Matches(&empty, active), "no offerings must fail an active price filter")
	assert.True(t, Matches(&empty, domain.FilterState{}), "no price filter means no price clause")

	nan := instructor("n", "NaN", "Jeju", 0, 0, nil, math.NaN())
	assert.False(t, Matches(&nan, active))

	edge := instructor("x", "Edge", "Jeju", 0, 0, nil, 5000, 7000)
	assert.True(t, Matches(&edge, active), "bounds are inclusive and use the cheapest offering")
}

func TestMatches_MalformedFilterDoesNotPanic(t *testing.T) {
	p := instructor("1", "Mina", "Jeju", 0, 0, []string{"Nitrox"}, 100)

	cases := []domain.FilterState{
		{PriceRange: &domain.PriceRange{Min: math.NaN(), Max: math.NaN()}},
		{PriceRange: &domain.PriceRange{Min: 4000, Max: -10}},
		{PriceRange: &domain.PriceRange{Min: math.Inf(-1), Max: math.Inf(1)}},
		{Specialties: []string{"", "   "}},
		{Query: "   "},
	}
	for _, f := range cases {
		assert.NotPanics(t, func() { _ = Matches(&p, f) })
		assert.True(t, Matches(&p, f), "filter %+v", f)
	}
}

func TestMatches_TagsAreCaseInsensitiveExact(t *testing.T) {
	resort := domain.Profile{Kind: domain.KindResort, Tags: []string{"Nitrox Station", "Pool"}}

	assert.True(t, Matches(&resort, domain.FilterState{Specialties: []string{"pool"}}))
	assert.False(t, Matches(&resort, domain.FilterState{Specialties: []string{"nitrox"}}))
}

func TestPaginate(t *testing.T) {
	profiles := fixture()

	page := Paginate(profiles, 2, 2)
	assert.Equal(t, []string{"3", "4"}, ids(page.Items))
	assert.Equal(t, 5, page.Total)

	beyond := Paginate(profiles, 9, 2)
	assert.Empty(t, beyond.Items)

	defaults := Paginate(profiles, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, DefaultLimit, defaults.Limit)

	capped := Paginate(profiles, 1, 1000)
	assert.Equal(t, MaxLimit, capped.Limit)

	huge := Paginate(make([]domain.Profile, 3), math.MaxInt64, 20)
	assert.Empty(t, huge.Items)
	assert.Equal(t, 3, huge.Total)
	assert.Equal(t, math.MaxInt64, huge.Page)
}

func TestFacets(t *testing.T) {
	f := Facets(fixture())

	assert.Equal(t, []string{"Cave", "Deep Diving", "Nitrox", "Photography", "Wreck"}, f.Tags)
	assert.Equal(t, 40.0, f.MinPrice)
	assert.Equal(t, 700.0, f.MaxPrice)
	assert.Equal(t, 5, f.Count)

	none := Facets(nil)
	assert.Empty(t, none.Tags)
	assert.Zero(t, none.MaxPrice)
}
