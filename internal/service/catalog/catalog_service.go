// internal/service/catalog/catalog_service.go
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/repository/postgres"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CatalogService serves upgrade definitions to the resolver, the
// aggregator and the public API, with a redis read-through cache in front
// of Postgres. Admin writes invalidate the cached entry.
type CatalogService struct {
	repo     *postgres.UpgradeDefinitionRepository
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewCatalogService(repo *postgres.UpgradeDefinitionRepository, redisClient *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &CatalogService{
		repo:     repo,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func definitionKey(code string) string {
	return fmt.Sprintf("catalog:definition:%s", code)
}

// Definition returns one definition, active or not. Callers on the
// purchase path must check Active themselves.
func (s *CatalogService) Definition(ctx context.Context, code string) (*upgrade.Definition, error) {
	// Redis fast path; any cache error falls through to Postgres
	if s.redis != nil {
		data, err := s.redis.Get(ctx, definitionKey(code)).Bytes()
		if err == nil {
			var def upgrade.Definition
			if err := json.Unmarshal(data, &def); err == nil {
				return &def, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("catalog cache read failed, falling back to db",
				zap.String("code", code), zap.Error(err))
		}
	}

	def, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(def); err == nil {
			if err := s.redis.Set(ctx, definitionKey(code), data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("catalog cache write failed", zap.String("code", code), zap.Error(err))
			}
		}
	}

	return def, nil
}

// ListActiveDefinitions returns all currently purchasable definitions.
func (s *CatalogService) ListActiveDefinitions(ctx context.Context) ([]*upgrade.Definition, error) {
	return s.repo.ListActive(ctx)
}

// ListAllDefinitions returns every definition for the admin surface.
func (s *CatalogService) ListAllDefinitions(ctx context.Context) ([]*upgrade.Definition, error) {
	return s.repo.ListAll(ctx)
}

// CreateDefinition publishes a new upgrade definition.
func (s *CatalogService) CreateDefinition(ctx context.Context, req *upgrade.CreateDefinitionRequest) (*upgrade.Definition, error) {
	effect := upgrade.Effect{
		Type:  req.EffectType,
		Value: req.EffectValue,
		Rule:  req.EffectRule,
	}
	if err := validateEffect(effect); err != nil {
		return nil, err
	}

	def := &upgrade.Definition{
		Code:          req.Code,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      req.Currency,
		DurationHours: req.DurationHours,
		Requires:      req.Requires,
		Stacking:      req.Stacking,
		Effect:        effect,
		Active:        req.Active,
	}

	if err := s.repo.Create(ctx, def); err != nil {
		return nil, err
	}

	s.logger.Info("upgrade definition created",
		zap.String("code", def.Code),
		zap.String("stacking_policy", string(def.Stacking)),
		zap.String("effect_type", string(def.Effect.Type)),
	)

	return def, nil
}

// UpdateDefinition patches a definition and drops its cache entry.
func (s *CatalogService) UpdateDefinition(ctx context.Context, code string, req *upgrade.UpdateDefinitionRequest) (*upgrade.Definition, error) {
	def, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		def.Name = *req.Name
	}
	if req.Description != nil {
		def.Description = *req.Description
	}
	if req.Price != nil {
		def.Price = *req.Price
	}
	if req.Currency != nil {
		def.Currency = *req.Currency
	}
	if req.DurationHours != nil {
		def.DurationHours = *req.DurationHours
	}
	if req.Requires != nil {
		def.Requires = *req.Requires
	}
	if req.Stacking != nil {
		def.Stacking = *req.Stacking
	}
	if req.EffectType != nil {
		def.Effect.Type = *req.EffectType
	}
	if req.EffectValue != nil {
		def.Effect.Value = *req.EffectValue
	}
	if req.EffectRule != nil {
		def.Effect.Rule = *req.EffectRule
	}

	if err := validateEffect(def.Effect); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, err
	}
	s.invalidate(ctx, code)

	return def, nil
}

// SetDefinitionActive toggles purchasability. Existing entitlements keep
// their windows either way.
func (s *CatalogService) SetDefinitionActive(ctx context.Context, code string, active bool) error {
	if err := s.repo.SetActive(ctx, code, active); err != nil {
		return err
	}
	s.invalidate(ctx, code)

	s.logger.Info("upgrade definition status changed",
		zap.String("code", code), zap.Bool("active", active))

	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, code string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, definitionKey(code)).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.String("code", code), zap.Error(err))
	}
}

func validateEffect(e upgrade.Effect) error {
	switch e.Type {
	case upgrade.EffectLevelDelta, upgrade.EffectSetLevelTo, upgrade.EffectPriorityBonus:
		if e.Rule != "" {
			return xerrors.Wrap(xerrors.ErrInvalidInput, "effect_rule is only valid for position_rule effects")
		}
	case upgrade.EffectPositionRule:
		switch e.Rule {
		case upgrade.PositionByScore, upgrade.PositionFront, upgrade.PositionBack:
		default:
			return xerrors.Wrap(xerrors.ErrInvalidInput, "position_rule effect requires a rule of BY_SCORE, FRONT or BACK")
		}
	default:
		return xerrors.Wrap(xerrors.ErrInvalidInput, "unknown effect type")
	}
	return nil
}
