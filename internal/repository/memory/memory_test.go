package memory

import (
	"context"
	"math"
	"testing"

	"diving-mate-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()

	require.NoError(t, repo.SaveInstructor(ctx, &domain.Instructor{
		ID: "i1", OwnerID: "u1", Name: "Ann", Specialties: []string{"Reef"},
		Services: []domain.Offering{{Name: "Dive", Price: 50}},
	}))
	require.NoError(t, repo.SaveResort(ctx, &domain.Resort{ID: "r1", OwnerID: "u2", Name: "Coral Bay"}))
	require.NoError(t, repo.SaveInstructor(ctx, &domain.Instructor{ID: "i2", OwnerID: "u3", Name: "Ben"}))

	t.Run("lists one kind in insertion order", func(t *testing.T) {
		list, err := repo.List(ctx, domain.KindInstructor)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "i1", list[0].ID)
		assert.Equal(t, "i2", list[1].ID)
		assert.Equal(t, domain.KindInstructor, list[0].Kind)
	})

	t.Run("returned profiles do not alias stored data", func(t *testing.T) {
		p, err := repo.GetByID(ctx, domain.KindInstructor, "i1")
		require.NoError(t, err)
		p.Tags[0] = "changed"

		again, err := repo.GetByID(ctx, domain.KindInstructor, "i1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Reef"}, again.Tags)
	})

	t.Run("missing profile is ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, domain.KindResort, "i1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("finds by owner across kinds", func(t *testing.T) {
		p, err := repo.GetByOwner(ctx, "u2")
		require.NoError(t, err)
		assert.Equal(t, domain.KindResort, p.Kind)
		assert.Equal(t, "r1", p.ID)
	})

	t.Run("increments views", func(t *testing.T) {
		require.NoError(t, repo.IncrementViews(ctx, domain.KindResort, "r1"))
		require.NoError(t, repo.IncrementViews(ctx, domain.KindResort, "r1"))
		p, err := repo.GetByID(ctx, domain.KindResort, "r1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), p.Stats.Views)
		assert.ErrorIs(t, repo.IncrementViews(ctx, domain.KindResort, "nope"), domain.ErrNotFound)
	})

	t.Run("saving again replaces without reordering", func(t *testing.T) {
		require.NoError(t, repo.SaveInstructor(ctx, &domain.Instructor{ID: "i1", OwnerID: "u1", Name: "Anne"}))
		list, err := repo.List(ctx, domain.KindInstructor)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Anne", list[0].Name)
	})
}

func TestSavedItemRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewSavedItemRepository()

	require.NoError(t, repo.Add(ctx, "u1", "b"))
	require.NoError(t, repo.Add(ctx, "u1", "a"))
	require.NoError(t, repo.Add(ctx, "u1", "a"))
	require.NoError(t, repo.Add(ctx, "u2", "c"))

	ids, err := repo.ListIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, repo.Remove(ctx, "u1", "a"))
	require.NoError(t, repo.Remove(ctx, "nobody", "a"))
	ids, err = repo.ListIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	ids, err = repo.ListIDs(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	user := &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleConsumer}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, user), domain.ErrAlreadyExists)

	name := "Ann"
	user.DisplayName = &name
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.DisplayName)
	assert.Equal(t, "Ann", *got.DisplayName)

	assert.ErrorIs(t, repo.Update(ctx, &domain.User{ID: "u2"}), domain.ErrNotFound)
	_, err = repo.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerificationRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewVerificationRepository()

	require.NoError(t, repo.Create(ctx, &domain.VerificationRequest{ID: "v1", UserID: "u1", UserType: domain.UserTypeInstructor, Status: domain.VerificationStatusPending}))
	require.NoError(t, repo.Create(ctx, &domain.VerificationRequest{ID: "v2", UserID: "u2", UserType: domain.UserTypeResort, Status: domain.VerificationStatusDraft}))
	require.NoError(t, repo.Create(ctx, &domain.VerificationRequest{ID: "v3", UserID: "u3", UserType: domain.UserTypeInstructor, Status: domain.VerificationStatusPending}))

	t.Run("one request per user", func(t *testing.T) {
		err := repo.Create(ctx, &domain.VerificationRequest{ID: "v4", UserID: "u1"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("filters and pages newest first", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.VerificationFilter{Status: domain.VerificationStatusPending, Page: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 1)
		assert.Equal(t, "v3", items[0].ID)

		items, _, err = repo.List(ctx, domain.VerificationFilter{Status: domain.VerificationStatusPending, Page: 2, Limit: 1})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "v1", items[0].ID)

		items, _, err = repo.List(ctx, domain.VerificationFilter{Page: 9, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, items)

		items, _, err = repo.List(ctx, domain.VerificationFilter{Page: math.MaxInt, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("filters by user type", func(t *testing.T) {
		items, total, err := repo.List(ctx, domain.VerificationFilter{UserType: "resort"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "v2", items[0].ID)
	})

	t.Run("update and lookup by user", func(t *testing.T) {
		v, err := repo.GetByUserID(ctx, "u2")
		require.NoError(t, err)
		v.Documents = append(v.Documents, domain.VerificationDocument{ID: "d1", Type: "insurance"})
		require.NoError(t, repo.Update(ctx, v))

		got, err := repo.GetByID(ctx, "v2")
		require.NoError(t, err)
		assert.Len(t, got.Documents, 1)

		_, err = repo.GetByUserID(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSeedDemoListings(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository()
	require.NoError(t, SeedDemoListings(ctx, repo))

	instructors, err := repo.List(ctx, domain.KindInstructor)
	require.NoError(t, err)
	assert.Len(t, instructors, 2)

	resorts, err := repo.List(ctx, domain.KindResort)
	require.NoError(t, err)
	assert.Len(t, resorts, 1)
}
