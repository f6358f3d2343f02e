package handler

import (
	"context"

	appfinance "github.com/assetflow/backend/internal/application/finance"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DebtHandler exposes the inter-branch debt ledger endpoints.
type DebtHandler struct {
	BaseHandler
	service *appfinance.DebtService
}

func NewDebtHandler(service *appfinance.DebtService) *DebtHandler {
	return &DebtHandler{service: service}
}

// Get handles GET /api/v1/debts/:id
func (h *DebtHandler) Get(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	debtID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid debt ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), scope, debtID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /api/v1/debts/:id/payments
func (h *DebtHandler) RecordPayment(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	debtID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid debt ID")
		return
	}

	var req appfinance.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), scope, debtID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListOwedBy handles GET /api/v1/branches/:id/debts/owed-by
func (h *DebtHandler) ListOwedBy(c *gin.Context) {
	h.list(c, h.service.ListOwedBy)
}

// ListOwedTo handles GET /api/v1/branches/:id/debts/owed-to
func (h *DebtHandler) ListOwedTo(c *gin.Context) {
	h.list(c, h.service.ListOwedTo)
}

type debtListFn func(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter appfinance.DebtListFilter) ([]appfinance.DebtResponse, error)

func (h *DebtHandler) list(c *gin.Context, fn debtListFn) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	req, err := bindListRequest(c)
	if err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := appfinance.DebtListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   c.Query("status"),
	}

	resp, err := fn(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
