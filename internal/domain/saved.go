package domain

import "context"

// SavedItems is the response for a user's favorites
type SavedItems struct {
	IDs []string `json:"ids"`
}

// SavedToggleResult reports the outcome of a toggle
type SavedToggleResult struct {
	ID    string   `json:"id"`
	Saved bool     `json:"saved"`
	IDs   []string `json:"ids"`
}

// SavedItemRepository persists favorites per user
type SavedItemRepository interface {
	ListIDs(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, itemID string) error
	Remove(ctx context.Context, userID, itemID string) error
}

type SavedItemsUsecase interface {
	List(ctx context.Context, userID string) (*SavedItems, error)
	Toggle(ctx context.Context, userID, itemID string) (*SavedToggleResult, error)
}
