// internal/service/ranking/aggregator.go
package ranking

import (
	"context"
	"sort"

	"vitrina-service/internal/domain/entitlement"
	"vitrina-service/internal/domain/profile"
	"vitrina-service/internal/domain/ranking"
	"vitrina-service/internal/domain/upgrade"

	"go.uber.org/zap"
)

// Aggregator computes the combined ranking effect of a profile's active
// entitlements. It is stateless: every call recomputes from the snapshot
// it is given, so expiry between writes needs no background sweep.
type Aggregator struct {
	catalog upgrade.Catalog
	logger  *zap.Logger
}

func NewAggregator(catalog upgrade.Catalog, logger *zap.Logger) *Aggregator {
	return &Aggregator{catalog: catalog, logger: logger}
}

// Aggregate resolves each entitlement's definition and merges the effects
// onto the profile's base score and tier. Entitlements whose code no
// longer resolves contribute nothing; the profile falls back toward its
// base values instead of being excluded.
func (a *Aggregator) Aggregate(ctx context.Context, p *profile.Profile, active []*entitlement.Entitlement) ranking.Effect {
	defs := make(map[string]*upgrade.Definition, len(active))
	for _, e := range active {
		if _, ok := defs[e.UpgradeCode]; ok {
			continue
		}
		def, err := a.catalog.Definition(ctx, e.UpgradeCode)
		if err != nil {
			a.logger.Warn("entitlement refers to unresolvable upgrade, skipping",
				zap.Int64("profile_id", p.ID),
				zap.String("upgrade_code", e.UpgradeCode),
				zap.Error(err),
			)
			continue
		}
		defs[e.UpgradeCode] = def
	}

	return Merge(p, active, defs)
}

// Merge is the pure effect-combination rule. Entitlements are processed in
// (grantedAt, id) order so every tie-break is deterministic:
//   - priority bonuses sum onto the base score
//   - level deltas sum onto the base tier
//   - the highest absolute level override wins outright, ties going to the
//     later-granted entitlement
//   - FRONT and BACK pins beat BY_SCORE; FRONT beats BACK
func Merge(p *profile.Profile, active []*entitlement.Entitlement, defs map[string]*upgrade.Definition) ranking.Effect {
	ordered := make([]*entitlement.Entitlement, len(active))
	copy(ordered, active)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].GrantedAt.Equal(ordered[j].GrantedAt) {
			return ordered[i].GrantedAt.Before(ordered[j].GrantedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	effect := ranking.Effect{
		Score: p.BaseScore,
		Tier:  p.BaseTier,
		Pin:   ranking.PinNone,
	}

	deltaSum := 0
	override := 0
	hasOverride := false

	for _, e := range ordered {
		def, ok := defs[e.UpgradeCode]
		if !ok {
			continue
		}

		if e.GrantedAt.After(effect.LatestGrant) {
			effect.LatestGrant = e.GrantedAt
		}

		switch def.Effect.Type {
		case upgrade.EffectPriorityBonus:
			effect.Score += float64(def.Effect.Value)
		case upgrade.EffectLevelDelta:
			deltaSum += def.Effect.Value
		case upgrade.EffectSetLevelTo:
			// >= so an equal value from a later grant takes the slot
			if !hasOverride || def.Effect.Value >= override {
				override = def.Effect.Value
				hasOverride = true
			}
		case upgrade.EffectPositionRule:
			switch def.Effect.Rule {
			case upgrade.PositionFront:
				effect.Pin = ranking.PinFront
			case upgrade.PositionBack:
				if effect.Pin != ranking.PinFront {
					effect.Pin = ranking.PinBack
				}
			}
			// BY_SCORE leaves the pin unset
		}
	}

	if hasOverride {
		effect.Tier = override
	} else {
		effect.Tier += deltaSum
	}

	return effect
}
