// internal/repository/postgres/upgrade_definition_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UpgradeDefinitionRepository struct {
	db *pgxpool.Pool
}

func NewUpgradeDefinitionRepository(db *pgxpool.Pool) *UpgradeDefinitionRepository {
	return &UpgradeDefinitionRepository{db: db}
}

const definitionColumns = `
	code, name, description, price, currency, duration_hours,
	requires, stacking_policy, effect_type, effect_value, effect_rule,
	active, created_at, updated_at`

func scanDefinition(row pgx.Row) (*upgrade.Definition, error) {
	var def upgrade.Definition
	err := row.Scan(
		&def.Code, &def.Name, &def.Description, &def.Price, &def.Currency, &def.DurationHours,
		&def.Requires, &def.Stacking, &def.Effect.Type, &def.Effect.Value, &def.Effect.Rule,
		&def.Active, &def.CreatedAt, &def.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan upgrade definition: %w", err)
	}
	return &def, nil
}

// Create inserts a new upgrade definition.
func (r *UpgradeDefinitionRepository) Create(ctx context.Context, def *upgrade.Definition) error {
	query := `
		INSERT INTO upgrade_definitions (
			code, name, description, price, currency, duration_hours,
			requires, stacking_policy, effect_type, effect_value, effect_rule, active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		def.Code, def.Name, def.Description, def.Price, def.Currency, def.DurationHours,
		def.Requires, def.Stacking, def.Effect.Type, def.Effect.Value, def.Effect.Rule, def.Active,
	).Scan(&def.CreatedAt, &def.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return xerrors.ErrConflict
		}
		return fmt.Errorf("failed to create upgrade definition: %w", err)
	}

	return nil
}

// FindByCode retrieves one definition, active or not.
func (r *UpgradeDefinitionRepository) FindByCode(ctx context.Context, code string) (*upgrade.Definition, error) {
	query := `SELECT` + definitionColumns + `
		FROM upgrade_definitions
		WHERE code = $1`

	return scanDefinition(r.db.QueryRow(ctx, query, code))
}

// ListActive retrieves all currently purchasable definitions.
func (r *UpgradeDefinitionRepository) ListActive(ctx context.Context) ([]*upgrade.Definition, error) {
	query := `SELECT` + definitionColumns + `
		FROM upgrade_definitions
		WHERE active = TRUE
		ORDER BY code`

	return r.queryDefinitions(ctx, query)
}

// ListAll retrieves every definition for the admin surface.
func (r *UpgradeDefinitionRepository) ListAll(ctx context.Context) ([]*upgrade.Definition, error) {
	query := `SELECT` + definitionColumns + `
		FROM upgrade_definitions
		ORDER BY code`

	return r.queryDefinitions(ctx, query)
}

func (r *UpgradeDefinitionRepository) queryDefinitions(ctx context.Context, query string, args ...any) ([]*upgrade.Definition, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgrade definitions: %w", err)
	}
	defer rows.Close()

	var defs []*upgrade.Definition
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read upgrade definitions: %w", err)
	}

	return defs, nil
}

// Update overwrites the mutable fields of a definition.
func (r *UpgradeDefinitionRepository) Update(ctx context.Context, def *upgrade.Definition) error {
	query := `
		UPDATE upgrade_definitions
		SET name = $2, description = $3, price = $4, currency = $5,
		    duration_hours = $6, requires = $7, stacking_policy = $8,
		    effect_type = $9, effect_value = $10, effect_rule = $11,
		    updated_at = NOW()
		WHERE code = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		def.Code, def.Name, def.Description, def.Price, def.Currency,
		def.DurationHours, def.Requires, def.Stacking,
		def.Effect.Type, def.Effect.Value, def.Effect.Rule,
	).Scan(&def.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update upgrade definition: %w", err)
	}

	return nil
}

// SetActive toggles whether a definition can be purchased. Already-granted
// entitlements are unaffected.
func (r *UpgradeDefinitionRepository) SetActive(ctx context.Context, code string, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE upgrade_definitions SET active = $2, updated_at = NOW() WHERE code = $1`,
		code, active,
	)
	if err != nil {
		return fmt.Errorf("failed to set upgrade definition status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
