// internal/domain/entitlement/dto.go
package entitlement

import "time"

// PurchaseRequest arrives from the billing system after the charge has
// succeeded. The engine never touches money; on failure the caller is
// responsible for the billing reversal.
type PurchaseRequest struct {
	ProfileID   int64  `json:"profile_id" binding:"required"`
	UpgradeCode string `json:"upgrade_code" binding:"required,max=50"`

	// PurchasedAt defaults to the server clock when omitted.
	PurchasedAt *time.Time `json:"purchased_at"`

	PaymentReference string  `json:"payment_reference"`
	AmountPaid       float64 `json:"amount_paid" binding:"min=0"`
}

// PurchaseResult reports the ledger state after a successful resolution.
type PurchaseResult struct {
	Entitlement *Entitlement   `json:"entitlement"`
	ActiveSet   []*Entitlement `json:"active_entitlements"`
	Payment     *Payment       `json:"payment"`

	// Outcome is one of "created", "extended", "replaced".
	Outcome string `json:"outcome"`
}

type PaymentListFilters struct {
	ProfileID *int64 `form:"profile_id"`
	Page      int    `form:"page,default=1" binding:"min=1"`
	PageSize  int    `form:"page_size,default=20" binding:"min=1,max=100"`
}
