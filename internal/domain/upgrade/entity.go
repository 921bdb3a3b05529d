// internal/domain/upgrade/entity.go
package upgrade

import (
	"time"
)

type StackingPolicy string

const (
	// StackExtend adds the purchased duration onto the end of the existing
	// active window of the same code.
	StackExtend StackingPolicy = "extend"
	// StackReplace terminates the existing active window and starts a new one.
	StackReplace StackingPolicy = "replace"
	// StackReject refuses the purchase while an instance is still active.
	StackReject StackingPolicy = "reject"
)

type EffectType string

const (
	EffectLevelDelta    EffectType = "level_delta"
	EffectSetLevelTo    EffectType = "set_level_to"
	EffectPriorityBonus EffectType = "priority_bonus"
	EffectPositionRule  EffectType = "position_rule"
)

type PositionRule string

const (
	PositionByScore PositionRule = "BY_SCORE"
	PositionFront   PositionRule = "FRONT"
	PositionBack    PositionRule = "BACK"
)

// Effect is a tagged variant: exactly one ranking-effect shape per
// definition. Value carries the numeric payload for level_delta,
// set_level_to and priority_bonus; Rule carries the payload for
// position_rule.
type Effect struct {
	Type  EffectType   `json:"type" db:"effect_type"`
	Value int          `json:"value,omitempty" db:"effect_value"`
	Rule  PositionRule `json:"rule,omitempty" db:"effect_rule"`
}

// Definition is one purchasable upgrade in the catalog. Definitions are
// immutable from the resolver's point of view; admin edits never
// retroactively change already-granted entitlements.
type Definition struct {
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`

	// Billing display data, not consumed by the resolver
	Price    float64 `json:"price" db:"price"`
	Currency string  `json:"currency" db:"currency"`

	// Validity granted per purchase unit
	DurationHours int `json:"duration_hours" db:"duration_hours"`

	// Upgrade codes that must be currently active for this purchase
	Requires []string `json:"requires,omitempty" db:"requires"`

	Stacking StackingPolicy `json:"stacking_policy" db:"stacking_policy"`
	Effect   Effect         `json:"effect" db:"effect"`

	// Whether the definition can currently be purchased
	Active bool `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Duration returns the validity window length granted by one purchase.
func (d *Definition) Duration() time.Duration {
	return time.Duration(d.DurationHours) * time.Hour
}
