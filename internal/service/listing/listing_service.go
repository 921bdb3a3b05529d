// internal/service/listing/listing_service.go
package listing

import (
	"context"
	"time"

	"vitrina-service/internal/domain/entitlement"
	"vitrina-service/internal/domain/profile"
	domainranking "vitrina-service/internal/domain/ranking"
	"vitrina-service/internal/service/ranking"

	"go.uber.org/zap"
)

// ListingService assembles ordered listings: it pulls the candidate
// profiles, their active entitlement snapshot, aggregates each profile's
// ranking effect and hands the set to the ordering engine. Read-only and
// side-effect-free.
type ListingService struct {
	profiles   profile.Repository
	ledger     entitlement.Ledger
	aggregator *ranking.Aggregator
	logger     *zap.Logger
	now        func() time.Time
}

func NewListingService(profiles profile.Repository, ledger entitlement.Ledger, aggregator *ranking.Aggregator, logger *zap.Logger) *ListingService {
	return &ListingService{
		profiles:   profiles,
		ledger:     ledger,
		aggregator: aggregator,
		logger:     logger,
		now:        time.Now,
	}
}

// Listing returns all active profiles in display order.
func (s *ListingService) Listing(ctx context.Context) ([]domainranking.ListedProfile, error) {
	now := s.now().UTC()

	profiles, err := s.profiles.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return []domainranking.ListedProfile{}, nil
	}

	ids := make([]int64, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	byProfile, err := s.ledger.ActiveEntitlementsForProfiles(ctx, ids, now)
	if err != nil {
		// Listing queries never fail on entitlement data issues; fall back
		// to base scores for everyone.
		s.logger.Warn("entitlement snapshot unavailable, listing by base score", zap.Error(err))
		byProfile = map[int64][]*entitlement.Entitlement{}
	}

	items := make([]domainranking.ListedProfile, len(profiles))
	for i, p := range profiles {
		items[i] = domainranking.ListedProfile{
			Profile: p,
			Effect:  s.aggregator.Aggregate(ctx, p, byProfile[p.ID]),
		}
	}

	return ranking.Order(items), nil
}

// ProfileRanking returns one profile's aggregated effect at the current
// instant.
func (s *ListingService) ProfileRanking(ctx context.Context, profileID int64) (*domainranking.Effect, error) {
	now := s.now().UTC()

	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	active, err := s.ledger.ActiveEntitlements(ctx, profileID, now)
	if err != nil {
		s.logger.Warn("entitlements unavailable, falling back to base ranking",
			zap.Int64("profile_id", profileID), zap.Error(err))
		active = nil
	}

	effect := s.aggregator.Aggregate(ctx, p, active)
	return &effect, nil
}
