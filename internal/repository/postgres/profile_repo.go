// internal/repository/postgres/profile_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"vitrina-service/internal/domain/profile"
	xerrors "vitrina-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, display_name, base_score, base_tier, active, created_at, updated_at`

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.DisplayName, &p.BaseScore, &p.BaseTier, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	query := `
		INSERT INTO profiles (display_name, base_score, base_tier, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, p.DisplayName, p.BaseScore, p.BaseTier, p.Active).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id int64) (*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *ProfileRepository) Update(ctx context.Context, p *profile.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, base_score = $3, base_tier = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, p.ID, p.DisplayName, p.BaseScore, p.BaseTier, p.Active).
		Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (r *ProfileRepository) ListActive(ctx context.Context) ([]*profile.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE active = TRUE ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
	}
	defer rows.Close()

	var profiles []*profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	return profiles, nil
}
