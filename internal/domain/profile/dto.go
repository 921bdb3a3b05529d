// internal/domain/profile/dto.go
package profile

type CreateProfileRequest struct {
	DisplayName string  `json:"display_name" binding:"required,max=255"`
	BaseScore   float64 `json:"base_score"`
	BaseTier    int     `json:"base_tier"`
	Active      bool    `json:"active"`
}

type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name" binding:"omitempty,max=255"`
	BaseScore   *float64 `json:"base_score"`
	BaseTier    *int     `json:"base_tier"`
	Active      *bool    `json:"active"`
}
