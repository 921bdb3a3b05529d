// internal/domain/entitlement/repository.go
package entitlement

import (
	"context"
	"time"
)

// Ledger is the append-only record of granted upgrades. All mutation runs
// inside WithProfileLock so that two concurrent purchases for the same
// profile cannot both observe "no active entitlement" and both insert.
type Ledger interface {
	// ActiveEntitlements returns the entitlements whose window covers at,
	// one per upgrade code at most.
	ActiveEntitlements(ctx context.Context, profileID int64, at time.Time) ([]*Entitlement, error)

	// ActiveEntitlementsForProfiles is the bulk read used by listing
	// queries; the result maps profile ID to its active set.
	ActiveEntitlementsForProfiles(ctx context.Context, profileIDs []int64, at time.Time) (map[int64][]*Entitlement, error)

	// WithProfileLock runs fn inside a transaction holding a per-profile
	// exclusive lock. The transaction commits iff fn returns nil; any
	// error leaves the ledger untouched.
	WithProfileLock(ctx context.Context, profileID int64, fn func(tx LedgerTx) error) error
}

// LedgerTx is the mutation surface available inside a locked transaction.
type LedgerTx interface {
	ActiveEntitlements(ctx context.Context, profileID int64, at time.Time) ([]*Entitlement, error)

	// Create appends a fresh entitlement and fills in its ID.
	Create(ctx context.Context, e *Entitlement) error

	// UpdateEnd moves an entitlement's end date (extend policy).
	UpdateEnd(ctx context.Context, id int64, newEnd time.Time) error

	// Terminate cuts an entitlement's window short at the given instant and
	// records the superseding entitlement (replace policy).
	Terminate(ctx context.Context, id int64, at time.Time, supersededBy int64) error

	// RecordPayment appends the audit-trail row and fills in its ID.
	RecordPayment(ctx context.Context, p *Payment) error
}

// PaymentHistory is the read side of the audit trail.
type PaymentHistory interface {
	ListByProfile(ctx context.Context, profileID int64, page, pageSize int) ([]*Payment, int64, error)
	List(ctx context.Context, filters *PaymentListFilters) ([]*Payment, int64, error)
}
