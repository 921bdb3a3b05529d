// internal/service/promotion/history.go
package promotion

import (
	"context"

	"vitrina-service/internal/domain/entitlement"
)

// HistoryService exposes the payment audit trail. Read-only; the trail is
// only ever appended to by the resolver.
type HistoryService struct {
	payments entitlement.PaymentHistory
}

func NewHistoryService(payments entitlement.PaymentHistory) *HistoryService {
	return &HistoryService{payments: payments}
}

func (s *HistoryService) ProfilePayments(ctx context.Context, profileID int64, page, pageSize int) ([]*entitlement.Payment, int64, error) {
	return s.payments.ListByProfile(ctx, profileID, page, pageSize)
}

func (s *HistoryService) ListPayments(ctx context.Context, filters *entitlement.PaymentListFilters) ([]*entitlement.Payment, int64, error) {
	return s.payments.List(ctx, filters)
}
