package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"diving-mate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// Listings are stored as JSONB documents. views lives in its own column so a
// detail view can bump it without rewriting the document.
type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `kind, doc, views`

func (r *profileRepo) List(ctx context.Context, kind domain.ProfileKind) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE kind = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var (
			k     string
			doc   []byte
			views int64
		)
		if err := rows.Scan(&k, &doc, &views); err != nil {
			return nil, err
		}
		p, err := decodeProfile(domain.ProfileKind(k), doc, views)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) GetByID(ctx context.Context, kind domain.ProfileKind, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE kind = $1 AND id = $2`
	return r.getOne(ctx, query, string(kind), id)
}

func (r *profileRepo) GetByOwner(ctx context.Context, ownerID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE owner_id = $1 ORDER BY created_at LIMIT 1`
	return r.getOne(ctx, query, ownerID)
}

func (r *profileRepo) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Profile, error) {
	var (
		k     string
		doc   []byte
		views int64
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&k, &doc, &views); err != nil {
		return nil, mapError(err)
	}
	p, err := decodeProfile(domain.ProfileKind(k), doc, views)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) SaveInstructor(ctx context.Context, instructor *domain.Instructor) error {
	return r.save(ctx, domain.KindInstructor, instructor.ID, instructor.OwnerID, instructor.Specialties, instructor)
}

func (r *profileRepo) SaveResort(ctx context.Context, resort *domain.Resort) error {
	return r.save(ctx, domain.KindResort, resort.ID, resort.OwnerID, resort.Facilities, resort)
}

func (r *profileRepo) save(ctx context.Context, kind domain.ProfileKind, id, ownerID string, tags []string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}

	query := `
		INSERT INTO profiles (id, kind, owner_id, doc, tags, views, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id, doc = EXCLUDED.doc, tags = EXCLUDED.tags, updated_at = NOW()
		WHERE profiles.kind = EXCLUDED.kind
	`
	if tags == nil {
		tags = []string{}
	}
	// JSON goes over the wire as text; the simple protocol would send []byte as bytea
	tag, err := r.db.Exec(ctx, query, id, string(kind), ownerID, string(body), pq.Array(tags))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *profileRepo) IncrementViews(ctx context.Context, kind domain.ProfileKind, id string) error {
	query := `UPDATE profiles SET views = views + 1 WHERE kind = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, string(kind), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// decodeProfile resolves the document kind once and projects it
func decodeProfile(kind domain.ProfileKind, doc []byte, views int64) (domain.Profile, error) {
	switch kind {
	case domain.KindInstructor:
		var i domain.Instructor
		if err := json.Unmarshal(doc, &i); err != nil {
			return domain.Profile{}, fmt.Errorf("decode instructor: %w", err)
		}
		i.Stats.Views = views
		return i.Profile(), nil
	case domain.KindResort:
		var res domain.Resort
		if err := json.Unmarshal(doc, &res); err != nil {
			return domain.Profile{}, fmt.Errorf("decode resort: %w", err)
		}
		res.Stats.Views = views
		return res.Profile(), nil
	default:
		return domain.Profile{}, fmt.Errorf("unknown profile kind %q", kind)
	}
}
