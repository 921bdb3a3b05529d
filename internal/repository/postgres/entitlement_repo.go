// internal/repository/postgres/entitlement_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrina-service/internal/domain/entitlement"
	xerrors "vitrina-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so read queries can
// run inside or outside a ledger transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EntitlementLedger is the Postgres implementation of entitlement.Ledger.
// Per-profile mutual exclusion uses a transaction-scoped advisory lock
// keyed on the profile ID; the lock is released on commit or rollback.
type EntitlementLedger struct {
	db *DB
}

func NewEntitlementLedger(db *DB) *EntitlementLedger {
	return &EntitlementLedger{db: db}
}

const entitlementColumns = `
	id, profile_id, upgrade_code, start_date, end_date, granted_at,
	terminated, superseded_by, payment_id, created_at, updated_at`

func scanEntitlement(row pgx.Row) (*entitlement.Entitlement, error) {
	var e entitlement.Entitlement
	err := row.Scan(
		&e.ID, &e.ProfileID, &e.UpgradeCode, &e.StartDate, &e.EndDate, &e.GrantedAt,
		&e.Terminated, &e.SupersededBy, &e.PaymentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan entitlement: %w", err)
	}
	return &e, nil
}

func activeEntitlements(ctx context.Context, q querier, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	query := `SELECT` + entitlementColumns + `
		FROM entitlements
		WHERE profile_id = $1 AND start_date <= $2 AND end_date > $2
		ORDER BY granted_at, id`

	rows, err := q.Query(ctx, query, profileID, at)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
	}
	defer rows.Close()

	var ents []*entitlement.Entitlement
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		ents = append(ents, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entitlements: %w", err)
	}

	return ents, nil
}

// ActiveEntitlements returns the entitlements covering the given instant.
func (l *EntitlementLedger) ActiveEntitlements(ctx context.Context, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	return activeEntitlements(ctx, l.db.Pool(), profileID, at)
}

// ActiveEntitlementsForProfiles is the bulk variant used by listing queries.
func (l *EntitlementLedger) ActiveEntitlementsForProfiles(ctx context.Context, profileIDs []int64, at time.Time) (map[int64][]*entitlement.Entitlement, error) {
	if len(profileIDs) == 0 {
		return map[int64][]*entitlement.Entitlement{}, nil
	}

	query := `SELECT` + entitlementColumns + `
		FROM entitlements
		WHERE profile_id = ANY($1) AND start_date <= $2 AND end_date > $2
		ORDER BY profile_id, granted_at, id`

	rows, err := l.db.Pool().Query(ctx, query, profileIDs, at)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
	}
	defer rows.Close()

	byProfile := make(map[int64][]*entitlement.Entitlement, len(profileIDs))
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, err
		}
		byProfile[e.ProfileID] = append(byProfile[e.ProfileID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entitlements: %w", err)
	}

	return byProfile, nil
}

// WithProfileLock runs fn inside a transaction holding the per-profile
// advisory lock. Commit happens iff fn returns nil.
func (l *EntitlementLedger) WithProfileLock(ctx context.Context, profileID int64, fn func(tx entitlement.LedgerTx) error) error {
	tx, err := l.db.BeginTx(ctx)
	if err != nil {
		return xerrors.Wrap(xerrors.ErrPersistenceFailure, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, profileID); err != nil {
		return mapLedgerError(err)
	}

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapLedgerError(err)
	}

	return nil
}

// mapLedgerError surfaces lock and serialization contention as a retryable
// ConcurrencyConflict; everything else is a transient persistence failure.
func mapLedgerError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected, 55P03 lock_not_available
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return xerrors.ErrConcurrencyConflict
		}
	}
	return xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ledgerTx implements entitlement.LedgerTx over an open pgx transaction.
type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) ActiveEntitlements(ctx context.Context, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	return activeEntitlements(ctx, t.tx, profileID, at)
}

func (t *ledgerTx) Create(ctx context.Context, e *entitlement.Entitlement) error {
	query := `
		INSERT INTO entitlements (
			profile_id, upgrade_code, start_date, end_date, granted_at, payment_id
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(
		ctx, query,
		e.ProfileID, e.UpgradeCode, e.StartDate, e.EndDate, e.GrantedAt, e.PaymentID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return mapLedgerError(err)
	}

	return nil
}

func (t *ledgerTx) UpdateEnd(ctx context.Context, id int64, newEnd time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE entitlements SET end_date = $2, updated_at = NOW() WHERE id = $1`,
		id, newEnd,
	)
	if err != nil {
		return mapLedgerError(err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (t *ledgerTx) Terminate(ctx context.Context, id int64, at time.Time, supersededBy int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE entitlements
		 SET end_date = $2, terminated = TRUE, superseded_by = $3, updated_at = NOW()
		 WHERE id = $1`,
		id, at, supersededBy,
	)
	if err != nil {
		return mapLedgerError(err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

func (t *ledgerTx) RecordPayment(ctx context.Context, p *entitlement.Payment) error {
	query := `
		INSERT INTO payment_history (
			reference, profile_id, upgrade_codes, amount, currency, window_start, window_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := t.tx.QueryRow(
		ctx, query,
		p.Reference, p.ProfileID, p.UpgradeCodes, p.Amount, p.Currency, p.WindowStart, p.WindowEnd,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return mapLedgerError(err)
	}

	return nil
}
