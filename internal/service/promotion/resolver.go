// internal/service/promotion/resolver.go
package promotion

import (
	"context"
	"errors"
	"strings"
	"time"

	"vitrina-service/internal/domain/entitlement"
	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	OutcomeCreated  = "created"
	OutcomeExtended = "extended"
	OutcomeReplaced = "replaced"
)

// Resolver is the purchase path of the promotion engine. Given an
// already-charged purchase it decides accept/extend/replace/reject against
// the profile's active entitlement set and mutates the ledger atomically.
// On any failure the ledger is untouched and the caller owns the billing
// reversal.
type Resolver struct {
	catalog upgrade.Catalog
	ledger  entitlement.Ledger
	logger  *zap.Logger
	now     func() time.Time
}

func NewResolver(catalog upgrade.Catalog, ledger entitlement.Ledger, logger *zap.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
	}
}

// ApplyPurchase resolves one purchase and returns the refreshed active set.
func (r *Resolver) ApplyPurchase(ctx context.Context, req *entitlement.PurchaseRequest) (*entitlement.PurchaseResult, error) {
	def, err := r.catalog.Definition(ctx, req.UpgradeCode)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnknownUpgrade
		}
		return nil, err
	}
	if !def.Active {
		return nil, xerrors.ErrUnknownUpgrade
	}

	now := r.now().UTC()
	if req.PurchasedAt != nil {
		now = req.PurchasedAt.UTC()
	}

	var result *entitlement.PurchaseResult
	err = r.ledger.WithProfileLock(ctx, req.ProfileID, func(tx entitlement.LedgerTx) error {
		active, err := tx.ActiveEntitlements(ctx, req.ProfileID, now)
		if err != nil {
			return err
		}

		if missing := missingRequirements(def, active); len(missing) > 0 {
			return &xerrors.RequirementNotMetError{UpgradeCode: def.Code, Missing: missing}
		}

		var current *entitlement.Entitlement
		for _, e := range active {
			if e.UpgradeCode == def.Code {
				current = e
				break
			}
		}

		if current != nil && def.Stacking == upgrade.StackReject {
			return xerrors.ErrUpgradeAlreadyActive
		}

		payment := &entitlement.Payment{
			Reference:    paymentReference(req.PaymentReference),
			ProfileID:    req.ProfileID,
			UpgradeCodes: []string{def.Code},
			Amount:       req.AmountPaid,
			Currency:     def.Currency,
			WindowStart:  now,
			WindowEnd:    now.Add(def.Duration()),
		}

		var granted *entitlement.Entitlement
		outcome := OutcomeCreated

		switch {
		case current == nil:
			if err := tx.RecordPayment(ctx, payment); err != nil {
				return err
			}
			granted = newEntitlement(req.ProfileID, def, now, payment.ID)
			if err := tx.Create(ctx, granted); err != nil {
				return err
			}

		case def.Stacking == upgrade.StackExtend:
			// Stack from the later of now and the current expiry so unused
			// paid time is never lost.
			newEnd := laterOf(current.EndDate, now).Add(def.Duration())
			payment.WindowEnd = newEnd
			if err := tx.RecordPayment(ctx, payment); err != nil {
				return err
			}
			if err := tx.UpdateEnd(ctx, current.ID, newEnd); err != nil {
				return err
			}
			current.EndDate = newEnd
			granted = current
			outcome = OutcomeExtended

		case def.Stacking == upgrade.StackReplace:
			if err := tx.RecordPayment(ctx, payment); err != nil {
				return err
			}
			granted = newEntitlement(req.ProfileID, def, now, payment.ID)
			if err := tx.Create(ctx, granted); err != nil {
				return err
			}
			if err := tx.Terminate(ctx, current.ID, now, granted.ID); err != nil {
				return err
			}
			outcome = OutcomeReplaced

		default:
			return xerrors.Wrap(xerrors.ErrInternal, "unknown stacking policy "+string(def.Stacking))
		}

		refreshed, err := tx.ActiveEntitlements(ctx, req.ProfileID, now)
		if err != nil {
			return err
		}

		result = &entitlement.PurchaseResult{
			Entitlement: granted,
			ActiveSet:   refreshed,
			Payment:     payment,
			Outcome:     outcome,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("purchase resolved",
		zap.Int64("profile_id", req.ProfileID),
		zap.String("upgrade_code", req.UpgradeCode),
		zap.String("outcome", result.Outcome),
		zap.Time("end_date", result.Entitlement.EndDate),
	)

	return result, nil
}

// ActiveEntitlements is the read side used by the entitlements endpoint.
func (r *Resolver) ActiveEntitlements(ctx context.Context, profileID int64, at *time.Time) ([]*entitlement.Entitlement, error) {
	t := r.now().UTC()
	if at != nil {
		t = at.UTC()
	}
	return r.ledger.ActiveEntitlements(ctx, profileID, t)
}

func missingRequirements(def *upgrade.Definition, active []*entitlement.Entitlement) []string {
	if len(def.Requires) == 0 {
		return nil
	}

	activeCodes := make(map[string]bool, len(active))
	for _, e := range active {
		activeCodes[e.UpgradeCode] = true
	}

	var missing []string
	for _, code := range def.Requires {
		if !activeCodes[code] {
			missing = append(missing, code)
		}
	}
	return missing
}

func newEntitlement(profileID int64, def *upgrade.Definition, now time.Time, paymentID int64) *entitlement.Entitlement {
	e := &entitlement.Entitlement{
		ProfileID:   profileID,
		UpgradeCode: def.Code,
		StartDate:   now,
		EndDate:     now.Add(def.Duration()),
		GrantedAt:   now,
	}
	if paymentID > 0 {
		e.PaymentID.Int64 = paymentID
		e.PaymentID.Valid = true
	}
	return e
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func paymentReference(provided string) string {
	if s := strings.TrimSpace(provided); s != "" {
		return s
	}
	return ulid.Make().String()
}
