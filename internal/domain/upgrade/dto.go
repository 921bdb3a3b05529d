// internal/domain/upgrade/dto.go
package upgrade

type CreateDefinitionRequest struct {
	Code        string `json:"code" binding:"required,max=50"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`

	Price    float64 `json:"price" binding:"min=0"`
	Currency string  `json:"currency" binding:"required,len=3"`

	DurationHours int `json:"duration_hours" binding:"required,min=1"`

	Requires []string       `json:"requires"`
	Stacking StackingPolicy `json:"stacking_policy" binding:"required,oneof=extend replace reject"`

	EffectType  EffectType   `json:"effect_type" binding:"required,oneof=level_delta set_level_to priority_bonus position_rule"`
	EffectValue int          `json:"effect_value"`
	EffectRule  PositionRule `json:"effect_rule" binding:"omitempty,oneof=BY_SCORE FRONT BACK"`

	Active bool `json:"active"`
}

type UpdateDefinitionRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`

	Price    *float64 `json:"price" binding:"omitempty,min=0"`
	Currency *string  `json:"currency" binding:"omitempty,len=3"`

	DurationHours *int `json:"duration_hours" binding:"omitempty,min=1"`

	Requires *[]string       `json:"requires"`
	Stacking *StackingPolicy `json:"stacking_policy" binding:"omitempty,oneof=extend replace reject"`

	EffectType  *EffectType   `json:"effect_type" binding:"omitempty,oneof=level_delta set_level_to priority_bonus position_rule"`
	EffectValue *int          `json:"effect_value"`
	EffectRule  *PositionRule `json:"effect_rule" binding:"omitempty,oneof=BY_SCORE FRONT BACK"`
}
