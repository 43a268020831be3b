package memory

import (
	"context"
	"sort"
	"sync"
)

type SavedItemRepo struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
}

func NewSavedItemRepository() *SavedItemRepo {
	return &SavedItemRepo{byUser: make(map[string]map[string]struct{})}
}

func (r *SavedItemRepo) ListIDs(ctx context.Context, userID string) ([]string, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.byUser[userID]))
	for id := range r.byUser[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *SavedItemRepo) Add(ctx context.Context, userID, itemID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	items, ok := r.byUser[userID]
	if !ok {
		items = make(map[string]struct{})
		r.byUser[userID] = items
	}
	items[itemID] = struct{}{}
	return nil
}

func (r *SavedItemRepo) Remove(ctx context.Context, userID, itemID string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byUser[userID], itemID)
	return nil
}
