// internal/domain/entitlement/entity.go
package entitlement

import (
	"database/sql"
	"time"
)

// Entitlement is a time-bounded grant of one upgrade's effect to one
// profile. Validity is the half-open interval [StartDate, EndDate).
// Rows are never deleted; expiry and supersession only narrow the window.
type Entitlement struct {
	ID          int64  `json:"id" db:"id"`
	ProfileID   int64  `json:"profile_id" db:"profile_id"`
	UpgradeCode string `json:"upgrade_code" db:"upgrade_code"`

	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`

	// GrantedAt is when the entitlement was first created. It is preserved
	// across extensions and used as the deterministic tie-break key.
	GrantedAt time.Time `json:"granted_at" db:"granted_at"`

	// Terminated marks a window that was cut short by a replace purchase.
	Terminated   bool          `json:"terminated" db:"terminated"`
	SupersededBy sql.NullInt64 `json:"superseded_by,omitempty" db:"superseded_by"`

	PaymentID sql.NullInt64 `json:"payment_id,omitempty" db:"payment_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsActive reports whether the entitlement's window covers the given
// instant: StartDate <= at < EndDate.
func (e *Entitlement) IsActive(at time.Time) bool {
	return !e.StartDate.After(at) && at.Before(e.EndDate)
}

// Payment is the durable audit record behind one purchase. One payment may
// grant multiple entitlements when upgrades are bought together.
type Payment struct {
	ID           int64     `json:"id" db:"id"`
	Reference    string    `json:"reference" db:"reference"`
	ProfileID    int64     `json:"profile_id" db:"profile_id"`
	UpgradeCodes []string  `json:"upgrade_codes" db:"upgrade_codes"`
	Amount       float64   `json:"amount" db:"amount"`
	Currency     string    `json:"currency" db:"currency"`
	WindowStart  time.Time `json:"window_start" db:"window_start"`
	WindowEnd    time.Time `json:"window_end" db:"window_end"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
