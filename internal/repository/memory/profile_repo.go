// Package memory holds in-memory repositories used when no database is
// configured and in tests. All repositories are safe for concurrent use and
// never hand out references to their internal state.
package memory

import (
	"context"
	"slices"
	"sync"

	"diving-mate-backend/internal/domain"
)

type ProfileRepo struct {
	mu sync.RWMutex

	instructors map[string]domain.Instructor
	resorts     map[string]domain.Resort
	order       []profileRef // insertion order, used as the list order
}

type profileRef struct {
	kind domain.ProfileKind
	id   string
}

func NewProfileRepository() *ProfileRepo {
	return &ProfileRepo{
		instructors: make(map[string]domain.Instructor),
		resorts:     make(map[string]domain.Resort),
	}
}

func (r *ProfileRepo) List(ctx context.Context, kind domain.ProfileKind) ([]domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Profile, 0, len(r.order))
	for _, ref := range r.order {
		if ref.kind != kind {
			continue
		}
		if p, ok := r.profileLocked(ref.kind, ref.id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, kind domain.ProfileKind, id string) (*domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profileLocked(kind, id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ref := range r.order {
		p, ok := r.profileLocked(ref.kind, ref.id)
		if ok && p.OwnerID == ownerID {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ProfileRepo) SaveInstructor(ctx context.Context, instructor *domain.Instructor) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instructors[instructor.ID]; !ok {
		r.order = append(r.order, profileRef{kind: domain.KindInstructor, id: instructor.ID})
	}
	r.instructors[instructor.ID] = cloneInstructor(*instructor)
	return nil
}

func (r *ProfileRepo) SaveResort(ctx context.Context, resort *domain.Resort) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.resorts[resort.ID]; !ok {
		r.order = append(r.order, profileRef{kind: domain.KindResort, id: resort.ID})
	}
	r.resorts[resort.ID] = cloneResort(*resort)
	return nil
}

func (r *ProfileRepo) IncrementViews(ctx context.Context, kind domain.ProfileKind, id string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	switch kind {
	case domain.KindInstructor:
		i, ok := r.instructors[id]
		if !ok {
			return domain.ErrNotFound
		}
		i.Stats.Views++
		r.instructors[id] = i
	case domain.KindResort:
		res, ok := r.resorts[id]
		if !ok {
			return domain.ErrNotFound
		}
		res.Stats.Views++
		r.resorts[id] = res
	default:
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProfileRepo) profileLocked(kind domain.ProfileKind, id string) (domain.Profile, bool) {
	switch kind {
	case domain.KindInstructor:
		i, ok := r.instructors[id]
		if !ok {
			return domain.Profile{}, false
		}
		c := cloneInstructor(i)
		return c.Profile(), true
	case domain.KindResort:
		res, ok := r.resorts[id]
		if !ok {
			return domain.Profile{}, false
		}
		c := cloneResort(res)
		return c.Profile(), true
	}
	return domain.Profile{}, false
}

func cloneInstructor(i domain.Instructor) domain.Instructor {
	i.Specialties = slices.Clone(i.Specialties)
	i.Services = slices.Clone(i.Services)
	i.Certifications = slices.Clone(i.Certifications)
	i.ImageURL = cloneString(i.ImageURL)
	return i
}

func cloneResort(r domain.Resort) domain.Resort {
	r.Facilities = slices.Clone(r.Facilities)
	r.Packages = slices.Clone(r.Packages)
	r.ImageURL = cloneString(r.ImageURL)
	return r
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
