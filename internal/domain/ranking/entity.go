// internal/domain/ranking/entity.go
package ranking

import (
	"time"

	"vitrina-service/internal/domain/profile"
)

type Pin string

const (
	PinNone  Pin = "NONE"
	PinFront Pin = "FRONT"
	PinBack  Pin = "BACK"
)

// Effect is the aggregated ranking contribution of a profile's currently
// active entitlements, merged onto its base score and tier.
type Effect struct {
	Score float64 `json:"score"`
	Tier  int     `json:"tier"`
	Pin   Pin     `json:"pin"`

	// LatestGrant is the most recent entitlement grant time in the active
	// set, zero when the set is empty. Used as the listing tie-break key.
	LatestGrant time.Time `json:"latest_grant,omitempty"`
}

// ListedProfile pairs a profile with its aggregated effect for ordering.
type ListedProfile struct {
	Profile *profile.Profile `json:"profile"`
	Effect  Effect           `json:"effect"`
}
