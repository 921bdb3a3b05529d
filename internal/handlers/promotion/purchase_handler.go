// internal/handlers/promotion/purchase_handler.go
package promotion

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"vitrina-service/internal/domain/entitlement"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/pkg/ratelimit"
	"vitrina-service/internal/pkg/response"
	service "vitrina-service/internal/service/promotion"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	resolver    *service.Resolver
	history     *service.HistoryService
	rateLimiter *ratelimit.RateLimiter
	rateLimit   int64
	rateWindow  time.Duration
	logger      *zap.Logger
}

func NewPurchaseHandler(
	resolver *service.Resolver,
	history *service.HistoryService,
	rateLimiter *ratelimit.RateLimiter,
	rateLimit int64,
	rateWindow time.Duration,
	logger *zap.Logger,
) *PurchaseHandler {
	return &PurchaseHandler{
		resolver:    resolver,
		history:     history,
		rateLimiter: rateLimiter,
		rateLimit:   rateLimit,
		rateWindow:  rateWindow,
		logger:      logger,
	}
}

// ApplyPurchase resolves a purchase that billing has already charged.
// Failures carry a reason code so the caller can show an explanatory
// message and reverse the charge.
func (h *PurchaseHandler) ApplyPurchase(c *gin.Context) {
	var req entitlement.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	allowed, err := h.rateLimiter.CheckPurchaseAttempt(c.Request.Context(), req.ProfileID, h.rateLimit, h.rateWindow)
	if err != nil {
		h.logger.Warn("purchase rate limiter unavailable", zap.Error(err))
	}
	if !allowed {
		response.Fail(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many purchase attempts", nil)
		return
	}

	result, err := h.resolver.ApplyPurchase(c.Request.Context(), &req)
	if err != nil {
		h.failPurchase(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "purchase applied", result)
}

// failPurchase maps resolver errors onto HTTP status + reason codes.
func (h *PurchaseHandler) failPurchase(c *gin.Context, err error) {
	var reqErr *xerrors.RequirementNotMetError

	switch {
	case errors.Is(err, xerrors.ErrUnknownUpgrade):
		response.Fail(c, http.StatusNotFound, "UNKNOWN_UPGRADE", "unknown or inactive upgrade", err)

	case errors.As(err, &reqErr):
		response.Fail(c, http.StatusUnprocessableEntity, "REQUIREMENT_NOT_MET",
			"required upgrades are not active", err,
			gin.H{"missing": reqErr.Missing})

	case errors.Is(err, xerrors.ErrUpgradeAlreadyActive):
		response.Fail(c, http.StatusConflict, "UPGRADE_ALREADY_ACTIVE", "this boost is already active", err)

	case errors.Is(err, xerrors.ErrConcurrencyConflict):
		// Retryable by the caller with backoff
		response.Fail(c, http.StatusConflict, "CONCURRENCY_CONFLICT", "concurrent purchase in progress, retry", err)

	case errors.Is(err, xerrors.ErrPersistenceFailure):
		response.Fail(c, http.StatusServiceUnavailable, "PERSISTENCE_FAILURE", "storage temporarily unavailable, retry", err)

	default:
		response.Error(c, http.StatusInternalServerError, "failed to apply purchase", err)
	}
}

// GetEntitlements retrieves a profile's active entitlement set, optionally
// evaluated at a caller-provided instant (?at=RFC3339).
func (h *PurchaseHandler) GetEntitlements(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	var at *time.Time
	if raw := c.Query("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid 'at' timestamp, want RFC3339", err)
			return
		}
		at = &t
	}

	active, err := h.resolver.ActiveEntitlements(c.Request.Context(), profileID, at)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to get entitlements", err)
		return
	}

	response.Success(c, http.StatusOK, "entitlements retrieved", active)
}

// GetProfilePayments retrieves one profile's payment history
func (h *PurchaseHandler) GetProfilePayments(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	page, pageSize := pagination(c)

	payments, total, err := h.history.ProfilePayments(c.Request.Context(), profileID, page, pageSize)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", gin.H{
		"payments": payments,
		"total":    total,
		"page":     page,
	})
}

// ListPayments retrieves the cross-profile payment trail (admin)
func (h *PurchaseHandler) ListPayments(c *gin.Context) {
	var filters entitlement.PaymentListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	payments, total, err := h.history.ListPayments(c.Request.Context(), &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments retrieved", gin.H{
		"payments": payments,
		"total":    total,
	})
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return page, pageSize
}
