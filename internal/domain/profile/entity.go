// internal/domain/profile/entity.go
package profile

import "time"

// Profile carries the base ranking inputs for one listed profile. The
// directory that owns the rest of the profile data (photos, descriptions,
// verification) lives outside this service.
type Profile struct {
	ID          int64  `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`

	BaseScore float64 `json:"base_score" db:"base_score"`
	BaseTier  int     `json:"base_tier" db:"base_tier"`

	Active bool `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
