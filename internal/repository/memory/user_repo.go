package memory

import (
	"context"
	"sync"

	"diving-mate-backend/internal/domain"
)

type UserRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

func NewUserRepository() *UserRepo {
	return &UserRepo{byID: make(map[string]domain.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.byID[user.ID] = cloneUser(*user)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u = cloneUser(u)
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[user.ID] = cloneUser(*user)
	return nil
}

func cloneUser(u domain.User) domain.User {
	u.DisplayName = cloneString(u.DisplayName)
	u.Phone = cloneString(u.Phone)
	return u
}
