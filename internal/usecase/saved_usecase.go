package usecase

import (
	"context"
	"strings"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/saved"
	"diving-mate-backend/pkg/apperror"
)

// savedItemsUsecase serves favorites from the in-memory store and writes
// every toggle through to the repository.
type savedItemsUsecase struct {
	repo  domain.SavedItemRepository
	store *saved.Store
}

func NewSavedItemsUsecase(repo domain.SavedItemRepository, store *saved.Store) domain.SavedItemsUsecase {
	return &savedItemsUsecase{repo: repo, store: store}
}

func (u *savedItemsUsecase) List(ctx context.Context, userID string) (*domain.SavedItems, error) {
	if err := requireSelf(ctx, userID); err != nil {
		return nil, err
	}
	set, err := u.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.SavedItems{IDs: set.IDs()}, nil
}

func (u *savedItemsUsecase) Toggle(ctx context.Context, userID, itemID string) (*domain.SavedToggleResult, error) {
	if err := requireSelf(ctx, userID); err != nil {
		return nil, err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, apperror.BadRequest("Item id is required")
	}
	if _, err := u.load(ctx, userID); err != nil {
		return nil, err
	}

	prev, next := u.store.Toggle(userID, itemID)
	isSaved := next.Has(itemID)

	var err error
	if isSaved {
		err = u.repo.Add(ctx, userID, itemID)
	} else {
		err = u.repo.Remove(ctx, userID, itemID)
	}
	if err != nil {
		// Leave the set alone if another toggle already replaced it
		u.store.Swap(userID, next, prev)
		return nil, apperror.Internal(err)
	}

	return &domain.SavedToggleResult{ID: itemID, Saved: isSaved, IDs: next.IDs()}, nil
}

// load seeds the store from the repository on first use
func (u *savedItemsUsecase) load(ctx context.Context, userID string) (saved.Set, error) {
	if set, ok := u.store.Get(userID); ok {
		return set, nil
	}
	ids, err := u.repo.ListIDs(ctx, userID)
	if err != nil {
		return saved.Set{}, apperror.Internal(err)
	}
	set := saved.NewSet(ids...)
	u.store.Load(userID, set)
	return set, nil
}
