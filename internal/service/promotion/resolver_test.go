package promotion

import (
	"context"
	"sync"
	"testing"
	"time"

	"vitrina-service/internal/domain/entitlement"
	"vitrina-service/internal/domain/profile"
	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/service/ranking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// ---- fakes ----

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
	var out []*upgrade.Definition
	for _, d := range f.defs {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeLedger struct {
	mu       sync.Mutex
	nextEnt  int64
	nextPay  int64
	ents     []*entitlement.Entitlement
	payments []*entitlement.Payment
}

func (l *fakeLedger) activeLocked(profileID int64, at time.Time) []*entitlement.Entitlement {
	var out []*entitlement.Entitlement
	for _, e := range l.ents {
		if e.ProfileID == profileID && e.IsActive(at) {
			out = append(out, e)
		}
	}
	return out
}

func (l *fakeLedger) ActiveEntitlements(_ context.Context, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeLocked(profileID, at), nil
}

func (l *fakeLedger) ActiveEntitlementsForProfiles(_ context.Context, profileIDs []int64, at time.Time) (map[int64][]*entitlement.Entitlement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int64][]*entitlement.Entitlement)
	for _, id := range profileIDs {
		if active := l.activeLocked(id, at); len(active) > 0 {
			out[id] = active
		}
	}
	return out, nil
}

func (l *fakeLedger) WithProfileLock(_ context.Context, _ int64, fn func(tx entitlement.LedgerTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(&fakeLedgerTx{l: l})
}

type fakeLedgerTx struct {
	l *fakeLedger
}

func (t *fakeLedgerTx) ActiveEntitlements(_ context.Context, profileID int64, at time.Time) ([]*entitlement.Entitlement, error) {
	return t.l.activeLocked(profileID, at), nil
}

func (t *fakeLedgerTx) Create(_ context.Context, e *entitlement.Entitlement) error {
	t.l.nextEnt++
	e.ID = t.l.nextEnt
	t.l.ents = append(t.l.ents, e)
	return nil
}

func (t *fakeLedgerTx) UpdateEnd(_ context.Context, id int64, newEnd time.Time) error {
	for _, e := range t.l.ents {
		if e.ID == id {
			e.EndDate = newEnd
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (t *fakeLedgerTx) Terminate(_ context.Context, id int64, at time.Time, supersededBy int64) error {
	for _, e := range t.l.ents {
		if e.ID == id {
			e.EndDate = at
			e.Terminated = true
			e.SupersededBy.Int64 = supersededBy
			e.SupersededBy.Valid = true
			return nil
		}
	}
	return xerrors.ErrNotFound
}

func (t *fakeLedgerTx) RecordPayment(_ context.Context, p *entitlement.Payment) error {
	t.l.nextPay++
	p.ID = t.l.nextPay
	t.l.payments = append(t.l.payments, p)
	return nil
}

// ---- helpers ----

func destacado() *upgrade.Definition {
	return &upgrade.Definition{
		Code:          "DESTACADO",
		Name:          "Destacado",
		Currency:      "EUR",
		DurationHours: 24,
		Stacking:      upgrade.StackExtend,
		Effect:        upgrade.Effect{Type: upgrade.EffectPriorityBonus, Value: 50},
		Active:        true,
	}
}

func impulso() *upgrade.Definition {
	return &upgrade.Definition{
		Code:          "IMPULSO",
		Name:          "Impulso",
		Currency:      "EUR",
		DurationHours: 12,
		Requires:      []string{"DESTACADO"},
		Stacking:      upgrade.StackReject,
		Effect:        upgrade.Effect{Type: upgrade.EffectPositionRule, Rule: upgrade.PositionFront},
		Active:        true,
	}
}

func portada() *upgrade.Definition {
	return &upgrade.Definition{
		Code:          "PORTADA",
		Name:          "Portada",
		Currency:      "EUR",
		DurationHours: 48,
		Stacking:      upgrade.StackReplace,
		Effect:        upgrade.Effect{Type: upgrade.EffectSetLevelTo, Value: 9},
		Active:        true,
	}
}

func newTestResolver(defs ...*upgrade.Definition) (*Resolver, *fakeLedger) {
	catalog := &fakeCatalog{defs: map[string]*upgrade.Definition{}}
	for _, d := range defs {
		catalog.defs[d.Code] = d
	}
	ledger := &fakeLedger{}
	r := NewResolver(catalog, ledger, zap.NewNop())
	r.now = func() time.Time { return t0 }
	return r, ledger
}

func purchase(profileID int64, code string, at time.Time) *entitlement.PurchaseRequest {
	return &entitlement.PurchaseRequest{
		ProfileID:   profileID,
		UpgradeCode: code,
		PurchasedAt: &at,
		AmountPaid:  10,
	}
}

// ---- tests ----

func TestApplyPurchaseFreshGrant(t *testing.T) {
	r, ledger := newTestResolver(destacado())

	result, err := r.ApplyPurchase(context.Background(), purchase(1, "DESTACADO", t0))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, t0, result.Entitlement.StartDate)
	assert.Equal(t, t0.Add(24*time.Hour), result.Entitlement.EndDate)
	require.Len(t, result.ActiveSet, 1)

	require.Len(t, ledger.payments, 1)
	assert.Equal(t, []string{"DESTACADO"}, ledger.payments[0].UpgradeCodes)
	assert.NotEmpty(t, ledger.payments[0].Reference)
	assert.True(t, result.Entitlement.PaymentID.Valid)
}

func TestApplyPurchaseUnknownUpgrade(t *testing.T) {
	r, ledger := newTestResolver(destacado())

	_, err := r.ApplyPurchase(context.Background(), purchase(1, "NO_SUCH_UPGRADE", t0))
	assert.ErrorIs(t, err, xerrors.ErrUnknownUpgrade)
	assert.Empty(t, ledger.ents)
}

func TestApplyPurchaseInactiveDefinition(t *testing.T) {
	retired := destacado()
	retired.Active = false
	r, _ := newTestResolver(retired)

	_, err := r.ApplyPurchase(context.Background(), purchase(1, "DESTACADO", t0))
	assert.ErrorIs(t, err, xerrors.ErrUnknownUpgrade)
}

func TestApplyPurchaseExtendNeverLosesTime(t *testing.T) {
	r, _ := newTestResolver(destacado())
	ctx := context.Background()

	first, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)
	require.Equal(t, t0.Add(24*time.Hour), first.Entitlement.EndDate)

	// Buying again at t+10h stacks from the current expiry, not from now.
	second, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0.Add(10*time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, OutcomeExtended, second.Outcome)
	assert.Equal(t, t0.Add(48*time.Hour), second.Entitlement.EndDate)
	assert.Equal(t, first.Entitlement.ID, second.Entitlement.ID)
	require.Len(t, second.ActiveSet, 1)
}

func TestApplyPurchaseAfterExpiryCreatesFreshWindow(t *testing.T) {
	r, ledger := newTestResolver(destacado())
	ctx := context.Background()

	_, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)

	// The first window [t0, t0+24h) has fully lapsed.
	later := t0.Add(30 * time.Hour)
	result, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", later))
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, result.Outcome)
	assert.Equal(t, later, result.Entitlement.StartDate)
	assert.Equal(t, later.Add(24*time.Hour), result.Entitlement.EndDate)
	assert.Len(t, ledger.ents, 2)
	require.Len(t, result.ActiveSet, 1)
}

func TestApplyPurchaseReplaceDiscardsRemainingTime(t *testing.T) {
	r, ledger := newTestResolver(portada())
	ctx := context.Background()

	first, err := r.ApplyPurchase(ctx, purchase(1, "PORTADA", t0))
	require.NoError(t, err)

	mid := t0.Add(10 * time.Hour)
	second, err := r.ApplyPurchase(ctx, purchase(1, "PORTADA", mid))
	require.NoError(t, err)

	assert.Equal(t, OutcomeReplaced, second.Outcome)
	assert.Equal(t, mid, second.Entitlement.StartDate)
	assert.Equal(t, mid.Add(48*time.Hour), second.Entitlement.EndDate)

	// Old row is cut short at the replacement instant, never deleted.
	old := ledger.ents[0]
	assert.Equal(t, first.Entitlement.ID, old.ID)
	assert.Equal(t, mid, old.EndDate)
	assert.True(t, old.Terminated)
	require.True(t, old.SupersededBy.Valid)
	assert.Equal(t, second.Entitlement.ID, old.SupersededBy.Int64)

	// At most one active PORTADA at any instant.
	require.Len(t, second.ActiveSet, 1)
	assert.Equal(t, second.Entitlement.ID, second.ActiveSet[0].ID)
}

func TestApplyPurchaseRejectIsNoOp(t *testing.T) {
	r, ledger := newTestResolver(destacado(), impulso())
	ctx := context.Background()

	_, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)
	_, err = r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(time.Hour)))
	require.NoError(t, err)

	entsBefore := len(ledger.ents)
	paysBefore := len(ledger.payments)
	endBefore := ledger.ents[1].EndDate

	_, err = r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(2*time.Hour)))
	assert.ErrorIs(t, err, xerrors.ErrUpgradeAlreadyActive)

	// Ledger state is identical before and after the rejected purchase.
	assert.Len(t, ledger.ents, entsBefore)
	assert.Len(t, ledger.payments, paysBefore)
	assert.Equal(t, endBefore, ledger.ents[1].EndDate)
}

func TestApplyPurchaseRequirementGating(t *testing.T) {
	r, ledger := newTestResolver(destacado(), impulso())
	ctx := context.Background()

	// IMPULSO requires an active DESTACADO.
	_, err := r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0))
	var reqErr *xerrors.RequirementNotMetError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, []string{"DESTACADO"}, reqErr.Missing)
	assert.Empty(t, ledger.ents)

	// Succeeds once the prerequisite is active.
	_, err = r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)
	result, err := r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(time.Hour)))
	require.NoError(t, err)
	assert.Len(t, result.ActiveSet, 2)
}

func TestApplyPurchaseRequirementEvaluatedAtDecisionTime(t *testing.T) {
	r, _ := newTestResolver(destacado(), impulso())
	ctx := context.Background()

	_, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)

	// DESTACADO expired before this attempt, so the requirement fails.
	_, err = r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(25*time.Hour)))
	var reqErr *xerrors.RequirementNotMetError
	assert.ErrorAs(t, err, &reqErr)
}

func TestApplyPurchaseKeepsProvidedPaymentReference(t *testing.T) {
	r, ledger := newTestResolver(destacado())

	req := purchase(1, "DESTACADO", t0)
	req.PaymentReference = "mp-000123"

	_, err := r.ApplyPurchase(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "mp-000123", ledger.payments[0].Reference)
}

func TestApplyPurchaseIsolatesProfiles(t *testing.T) {
	r, _ := newTestResolver(destacado(), impulso())
	ctx := context.Background()

	_, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)

	// Profile 2 has no DESTACADO; profile 1's entitlements must not leak.
	_, err = r.ApplyPurchase(ctx, purchase(2, "IMPULSO", t0.Add(time.Hour)))
	var reqErr *xerrors.RequirementNotMetError
	assert.ErrorAs(t, err, &reqErr)
}

// Scenario: base score 10, DESTACADO at t=0 and t=10h, IMPULSO at t=20h,
// duplicate IMPULSO at t=21h.
func TestPurchaseScenarioEndToEnd(t *testing.T) {
	r, ledger := newTestResolver(destacado(), impulso())
	ctx := context.Background()
	p := &profile.Profile{ID: 1, BaseScore: 10}
	defs := map[string]*upgrade.Definition{"DESTACADO": destacado(), "IMPULSO": impulso()}

	first, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0))
	require.NoError(t, err)
	require.Len(t, first.ActiveSet, 1)
	assert.Equal(t, float64(60), ranking.Merge(p, first.ActiveSet, defs).Score)

	second, err := r.ApplyPurchase(ctx, purchase(1, "DESTACADO", t0.Add(10*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(48*time.Hour), second.Entitlement.EndDate)
	assert.Equal(t, float64(60), ranking.Merge(p, second.ActiveSet, defs).Score)

	third, err := r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(20*time.Hour)))
	require.NoError(t, err)
	assert.Len(t, third.ActiveSet, 2)

	_, err = r.ApplyPurchase(ctx, purchase(1, "IMPULSO", t0.Add(21*time.Hour)))
	assert.ErrorIs(t, err, xerrors.ErrUpgradeAlreadyActive)

	// Invariant: at most one active entitlement per upgrade code.
	active, err := r.ActiveEntitlements(ctx, 1, timePtr(t0.Add(21*time.Hour)))
	require.NoError(t, err)
	seen := map[string]int{}
	for _, e := range active {
		seen[e.UpgradeCode]++
	}
	for code, n := range seen {
		assert.Equal(t, 1, n, "code %s", code)
	}

	assert.Len(t, ledger.payments, 3)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
