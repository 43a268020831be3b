package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/search"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type profileUsecase struct {
	profileRepo domain.ProfileRepository
	validate    *validator.Validate
}

func NewProfileUsecase(profileRepo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{profileRepo: profileRepo, validate: validate}
}

// Search reloads the collection and reruns the pipeline on every call
func (u *profileUsecase) Search(ctx context.Context, kind domain.ProfileKind, filter domain.FilterState, sort domain.SortKey, page, limit int) (*domain.SearchPage, error) {
	if !kind.IsValid() {
		return nil, apperror.BadRequest("Unknown listing kind")
	}
	profiles, err := u.profileRepo.List(ctx, kind)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	results := search.Search(profiles, filter, sort)
	p := search.Paginate(results, page, limit)
	return &p, nil
}

func (u *profileUsecase) GetProfile(ctx context.Context, kind domain.ProfileKind, id string) (*domain.Profile, error) {
	if !kind.IsValid() {
		return nil, apperror.BadRequest("Unknown listing kind")
	}
	p, err := u.profileRepo.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Listing not found")
		}
		return nil, apperror.Internal(err)
	}

	// A lost view count is not worth failing the request
	if err := u.profileRepo.IncrementViews(ctx, kind, id); err != nil {
		logger.Log.Warn("Failed to record profile view", "kind", kind, "id", id, "error", err)
	} else {
		p.Stats.Views++
	}
	return p, nil
}

func (u *profileUsecase) Facets(ctx context.Context, kind domain.ProfileKind) (*domain.ProfileFacets, error) {
	if !kind.IsValid() {
		return nil, apperror.BadRequest("Unknown listing kind")
	}
	profiles, err := u.profileRepo.List(ctx, kind)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	f := search.Facets(profiles)
	return &f, nil
}

// UpsertOwnListing creates or replaces the caller's listing. The listing kind
// follows the caller's role, which is granted when a verification is approved.
func (u *profileUsecase) UpsertOwnListing(ctx context.Context, ownerID string, req *domain.ListingRequest) (*domain.Profile, error) {
	if err := requireSelf(ctx, ownerID); err != nil {
		return nil, err
	}
	role, _ := ctx.Value(domain.KeyUserRole).(string)
	kind := domain.ProfileKind(role)
	if !kind.IsValid() {
		return nil, apperror.Forbidden("Only verified instructors and resorts can publish a listing")
	}

	if err := u.validate.Struct(req); err != nil {
		return nil, invalidInput(err)
	}

	now := time.Now().UTC()
	id, createdAt, stats := uuid.NewString(), now, domain.ProfileStats{}

	existing, err := u.profileRepo.GetByOwner(ctx, ownerID)
	switch {
	case err == nil:
		if existing.Kind != kind {
			return nil, apperror.Conflict("Existing listing has a different kind")
		}
		id, createdAt, stats = existing.ID, existing.CreatedAt, existing.Stats
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	tags := trimAll(req.Tags)
	var p domain.Profile
	switch kind {
	case domain.KindInstructor:
		doc := &domain.Instructor{
			ID: id, OwnerID: ownerID,
			Name:           strings.TrimSpace(req.Name),
			Bio:            strings.TrimSpace(req.Summary),
			Address:        strings.TrimSpace(req.Address),
			Specialties:    tags,
			Services:       req.Offerings,
			Certifications: trimAll(req.Certifications),
			Experience:     req.Experience,
			ImageURL:       req.ImageURL,
			Stats:          stats,
			CreatedAt:      createdAt,
			UpdatedAt:      now,
		}
		err = u.profileRepo.SaveInstructor(ctx, doc)
		p = doc.Profile()
	case domain.KindResort:
		doc := &domain.Resort{
			ID: id, OwnerID: ownerID,
			Name:        strings.TrimSpace(req.Name),
			Description: strings.TrimSpace(req.Summary),
			Address:     strings.TrimSpace(req.Address),
			Facilities:  tags,
			Packages:    req.Offerings,
			ImageURL:    req.ImageURL,
			Stats:       stats,
			CreatedAt:   createdAt,
			UpdatedAt:   now,
		}
		err = u.profileRepo.SaveResort(ctx, doc)
		p = doc.Profile()
	}
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.Conflict("Listing id is already taken")
		}
		return nil, apperror.Internal(err)
	}
	return &p, nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
