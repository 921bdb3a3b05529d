// internal/repository/postgres/payment_history_repo.go
package postgres

import (
	"context"
	"fmt"

	"vitrina-service/internal/domain/entitlement"
	xerrors "vitrina-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentHistoryRepository struct {
	db *pgxpool.Pool
}

func NewPaymentHistoryRepository(db *pgxpool.Pool) *PaymentHistoryRepository {
	return &PaymentHistoryRepository{db: db}
}

const paymentColumns = `
	id, reference, profile_id, upgrade_codes, amount, currency,
	window_start, window_end, created_at`

// ListByProfile returns one profile's payment trail, newest first.
func (r *PaymentHistoryRepository) ListByProfile(ctx context.Context, profileID int64, page, pageSize int) ([]*entitlement.Payment, int64, error) {
	filters := &entitlement.PaymentListFilters{
		ProfileID: &profileID,
		Page:      page,
		PageSize:  pageSize,
	}
	return r.List(ctx, filters)
}

// List returns payments matching the filters plus the total match count.
func (r *PaymentHistoryRepository) List(ctx context.Context, filters *entitlement.PaymentListFilters) ([]*entitlement.Payment, int64, error) {
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	where := ""
	args := []any{}
	if filters.ProfileID != nil {
		where = "WHERE profile_id = $1"
		args = append(args, *filters.ProfileID)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM payment_history " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
	}

	query := fmt.Sprintf(
		`SELECT %s FROM payment_history %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		paymentColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, xerrors.Wrap(xerrors.ErrPersistenceFailure, err.Error())
	}
	defer rows.Close()

	var payments []*entitlement.Payment
	for rows.Next() {
		var p entitlement.Payment
		err := rows.Scan(
			&p.ID, &p.Reference, &p.ProfileID, &p.UpgradeCodes, &p.Amount, &p.Currency,
			&p.WindowStart, &p.WindowEnd, &p.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read payments: %w", err)
	}

	return payments, total, nil
}
