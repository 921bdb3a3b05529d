package listing

import (
	"context"
	"testing"
	"time"

	"vitrina-service/internal/domain/entitlement"
	"vitrina-service/internal/domain/profile"
	domainranking "vitrina-service/internal/domain/ranking"
	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/service/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	profiles map[int64]*profile.Profile
}

func (f *fakeProfiles) Create(_ context.Context, p *profile.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfiles) FindByID(_ context.Context, id int64) (*profile.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeProfiles) Update(_ context.Context, p *profile.Profile) error {
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfiles) Delete(_ context.Context, id int64) error {
	delete(f.profiles, id)
	return nil
}

func (f *fakeProfiles) ListActive(_ context.Context) ([]*profile.Profile, error) {
	var out []*profile.Profile
	for _, p := range f.profiles {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeCatalog struct {
	defs map[string]*upgrade.Definition
}

func (f *fakeCatalog) Definition(_ context.Context, code string) (*upgrade.Definition, error) {
	if d, ok := f.defs[code]; ok {
		return d, nil
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCatalog) ListActiveDefinitions(_ context.Context) ([]*upgrade.Definition, error) {
	return nil, nil
}

type fakeLedger struct {
	byProfile map[int64][]*entitlement.Entitlement
	err       error
}

func (l *fakeLedger) ActiveEntitlements(_ context.Context, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	if l.err != nil {
		return nil, l.err
	}
	var out []*entitlement.Entitlement
	for _, e := range l.byProfile[profileID] {
		if e.IsActive(at) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *fakeLedger) ActiveEntitlementsForProfiles(ctx context.Context, profileIDs []int64, at time.Time) (map[int64][]*entitlement.Entitlement, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make(map[int64][]*entitlement.Entitlement)
	for _, id := range profileIDs {
		active, _ := l.ActiveEntitlements(ctx, id, at)
		if len(active) > 0 {
			out[id] = active
		}
	}
	return out, nil
}

func (l *fakeLedger) WithProfileLock(_ context.Context, _ int64, _ func(tx entitlement.LedgerTx) error) error {
	panic("listing never mutates the ledger")
}

func active(profileID int64, code string, grantedAt time.Time) *entitlement.Entitlement {
	return &entitlement.Entitlement{
		ProfileID:   profileID,
		UpgradeCode: code,
		StartDate:   grantedAt,
		EndDate:     grantedAt.Add(24 * time.Hour),
		GrantedAt:   grantedAt,
	}
}

func newTestService(profiles *fakeProfiles, ledger *fakeLedger, catalog *fakeCatalog) *ListingService {
	aggregator := ranking.NewAggregator(catalog, zap.NewNop())
	svc := NewListingService(profiles, ledger, aggregator, zap.NewNop())
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	return svc
}

func TestListingOrdersByEffect(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[int64]*profile.Profile{
		1: {ID: 1, BaseScore: 1000, Active: true},
		2: {ID: 2, BaseScore: 0, Active: true},
		3: {ID: 3, BaseScore: 500, Active: true},
	}}
	catalog := &fakeCatalog{defs: map[string]*upgrade.Definition{
		"PORTADA": {Code: "PORTADA", Active: true,
			Effect: upgrade.Effect{Type: upgrade.EffectPositionRule, Rule: upgrade.PositionFront}},
	}}
	ledger := &fakeLedger{byProfile: map[int64][]*entitlement.Entitlement{
		2: {active(2, "PORTADA", t0)},
	}}

	svc := newTestService(profiles, ledger, catalog)

	items, err := svc.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// The FRONT-pinned profile leads despite a zero score.
	assert.Equal(t, int64(2), items[0].Profile.ID)
	assert.Equal(t, domainranking.PinFront, items[0].Effect.Pin)
	assert.Equal(t, int64(1), items[1].Profile.ID)
	assert.Equal(t, int64(3), items[2].Profile.ID)
}

func TestListingExcludesExpiredEntitlements(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[int64]*profile.Profile{
		1: {ID: 1, BaseScore: 10, Active: true},
	}}
	catalog := &fakeCatalog{defs: map[string]*upgrade.Definition{
		"DESTACADO": {Code: "DESTACADO", Active: true,
			Effect: upgrade.Effect{Type: upgrade.EffectPriorityBonus, Value: 50}},
	}}
	expired := active(1, "DESTACADO", t0.Add(-48*time.Hour))
	ledger := &fakeLedger{byProfile: map[int64][]*entitlement.Entitlement{1: {expired}}}

	svc := newTestService(profiles, ledger, catalog)

	items, err := svc.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, float64(10), items[0].Effect.Score)
}

func TestListingFallsBackWhenLedgerUnavailable(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[int64]*profile.Profile{
		1: {ID: 1, BaseScore: 10, BaseTier: 2, Active: true},
	}}
	ledger := &fakeLedger{err: xerrors.ErrPersistenceFailure}

	svc := newTestService(profiles, ledger, &fakeCatalog{})

	// Listing queries never fail on entitlement data issues.
	items, err := svc.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, float64(10), items[0].Effect.Score)
	assert.Equal(t, 2, items[0].Effect.Tier)
}

func TestProfileRanking(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[int64]*profile.Profile{
		7: {ID: 7, BaseScore: 10, Active: true},
	}}
	catalog := &fakeCatalog{defs: map[string]*upgrade.Definition{
		"DESTACADO": {Code: "DESTACADO", Active: true,
			Effect: upgrade.Effect{Type: upgrade.EffectPriorityBonus, Value: 50}},
	}}
	ledger := &fakeLedger{byProfile: map[int64][]*entitlement.Entitlement{
		7: {active(7, "DESTACADO", t0)},
	}}

	svc := newTestService(profiles, ledger, catalog)

	effect, err := svc.ProfileRanking(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, float64(60), effect.Score)

	_, err = svc.ProfileRanking(context.Background(), 99)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}
