package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"diving-mate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// verificationRepo keeps the request document in JSONB and mirrors the
// columns the admin list filters and orders on.
type verificationRepo struct {
	db *pgxpool.Pool
}

func NewVerificationRepository(db *pgxpool.Pool) domain.VerificationRepository {
	return &verificationRepo{db: db}
}

func (r *verificationRepo) Create(ctx context.Context, req *domain.VerificationRequest) error {
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}
	query := `
		INSERT INTO verification_requests (id, user_id, user_type, status, doc, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Exec(ctx, query,
		req.ID, req.UserID, string(req.UserType), req.Status, string(doc), req.SubmittedAt, req.CreatedAt, req.UpdatedAt,
	)
	return mapError(err)
}

func (r *verificationRepo) GetByID(ctx context.Context, id string) (*domain.VerificationRequest, error) {
	return r.getOne(ctx, `SELECT doc FROM verification_requests WHERE id = $1`, id)
}

func (r *verificationRepo) GetByUserID(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	return r.getOne(ctx, `SELECT doc FROM verification_requests WHERE user_id = $1`, userID)
}

func (r *verificationRepo) getOne(ctx context.Context, query string, arg string) (*domain.VerificationRequest, error) {
	var doc []byte
	if err := r.db.QueryRow(ctx, query, arg).Scan(&doc); err != nil {
		return nil, mapError(err)
	}
	var v domain.VerificationRequest
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("decode verification: %w", err)
	}
	return &v, nil
}

func (r *verificationRepo) Update(ctx context.Context, req *domain.VerificationRequest) error {
	doc, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode verification: %w", err)
	}
	query := `
		UPDATE verification_requests
		SET status = $2, doc = $3, submitted_at = $4, updated_at = $5
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, req.ID, req.Status, string(doc), req.SubmittedAt, req.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *verificationRepo) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCounter := 1

	if filter.UserType != "" {
		where += fmt.Sprintf(" AND user_type = $%d", argCounter)
		args = append(args, filter.UserType)
		argCounter++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argCounter)
		args = append(args, filter.Status)
		argCounter++
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM verification_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if int64(page-1) > total/int64(limit) {
		return []domain.VerificationRequest{}, total, nil
	}
	query := `SELECT doc FROM verification_requests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results := []domain.VerificationRequest{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, 0, err
		}
		var v domain.VerificationRequest
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, 0, fmt.Errorf("decode verification: %w", err)
		}
		results = append(results, v)
	}
	return results, total, rows.Err()
}
