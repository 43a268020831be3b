package postgres

import (
	"context"

	"diving-mate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type savedItemRepo struct {
	db *pgxpool.Pool
}

func NewSavedItemRepository(db *pgxpool.Pool) domain.SavedItemRepository {
	return &savedItemRepo{db: db}
}

func (r *savedItemRepo) ListIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT item_id FROM saved_items WHERE user_id = $1 ORDER BY item_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *savedItemRepo) Add(ctx context.Context, userID, itemID string) error {
	query := `INSERT INTO saved_items (user_id, item_id, created_at) VALUES ($1, $2, NOW())
	          ON CONFLICT (user_id, item_id) DO NOTHING`
	_, err := r.db.Exec(ctx, query, userID, itemID)
	return err
}

func (r *savedItemRepo) Remove(ctx context.Context, userID, itemID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_items WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	return err
}
