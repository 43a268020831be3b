package memory

import (
	"context"
	"slices"
	"sync"

	"diving-mate-backend/internal/domain"
)

type VerificationRepo struct {
	mu     sync.RWMutex
	byID   map[string]domain.VerificationRequest
	byUser map[string]string
	order  []string
}

func NewVerificationRepository() *VerificationRepo {
	return &VerificationRepo{
		byID:   make(map[string]domain.VerificationRequest),
		byUser: make(map[string]string),
	}
}

func (r *VerificationRepo) Create(ctx context.Context, req *domain.VerificationRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[req.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.byUser[req.UserID]; ok {
		return domain.ErrAlreadyExists
	}
	r.byID[req.ID] = cloneVerification(*req)
	r.byUser[req.UserID] = req.ID
	r.order = append(r.order, req.ID)
	return nil
}

func (r *VerificationRepo) GetByID(ctx context.Context, id string) (*domain.VerificationRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	v = cloneVerification(v)
	return &v, nil
}

func (r *VerificationRepo) GetByUserID(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	v := cloneVerification(r.byID[id])
	return &v, nil
}

func (r *VerificationRepo) Update(ctx context.Context, req *domain.VerificationRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[req.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[req.ID] = cloneVerification(*req)
	return nil
}

// List returns newest first, matching the database ordering by created_at
func (r *VerificationRepo) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.VerificationRequest
	for i := len(r.order) - 1; i >= 0; i-- {
		v := r.byID[r.order[i]]
		if filter.UserType != "" && string(v.UserType) != filter.UserType {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		matched = append(matched, v)
	}

	total := int64(len(matched))
	page, limit := pageBounds(filter.Page, filter.Limit)
	if page-1 > len(matched)/limit || (page-1)*limit >= len(matched) {
		return []domain.VerificationRequest{}, total, nil
	}
	start := (page - 1) * limit
	end := min(start+limit, len(matched))

	out := make([]domain.VerificationRequest, 0, end-start)
	for _, v := range matched[start:end] {
		out = append(out, cloneVerification(v))
	}
	return out, total, nil
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func cloneVerification(v domain.VerificationRequest) domain.VerificationRequest {
	v.Documents = slices.Clone(v.Documents)
	if v.ContactInfo.Emergency != nil {
		e := *v.ContactInfo.Emergency
		v.ContactInfo.Emergency = &e
	}
	v.Notes = cloneString(v.Notes)
	v.ReviewedBy = cloneString(v.ReviewedBy)
	if v.SubmittedAt != nil {
		t := *v.SubmittedAt
		v.SubmittedAt = &t
	}
	if v.ReviewedAt != nil {
		t := *v.ReviewedAt
		v.ReviewedAt = &t
	}
	return v
}
