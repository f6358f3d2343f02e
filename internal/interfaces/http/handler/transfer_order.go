package handler

import (
	apptransfer "github.com/assetflow/backend/internal/application/transfer"
	"github.com/gin-gonic/gin"
)

// TransferOrderHandler exposes transfer order endpoints.
type TransferOrderHandler struct {
	BaseHandler
	service *apptransfer.TransferOrderService
}

func NewTransferOrderHandler(service *apptransfer.TransferOrderService) *TransferOrderHandler {
	return &TransferOrderHandler{service: service}
}

// Create handles POST /api/v1/transfers
func (h *TransferOrderHandler) Create(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req apptransfer.CreateTransferOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/transfers/:id
func (h *TransferOrderHandler) Get(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer order ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), scope, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Receive handles POST /api/v1/transfers/:id/receive
func (h *TransferOrderHandler) Receive(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer order ID")
		return
	}

	var req apptransfer.ReceiveTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Receive(c.Request.Context(), scope, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reject handles POST /api/v1/transfers/:id/reject
func (h *TransferOrderHandler) Reject(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer order ID")
		return
	}

	var req apptransfer.RejectTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), scope, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /api/v1/transfers/:id/cancel
func (h *TransferOrderHandler) Cancel(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transfer order ID")
		return
	}

	var req apptransfer.CancelTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), scope, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByBranch handles GET /api/v1/branches/:id/transfers
func (h *TransferOrderHandler) ListByBranch(c *gin.Context) {
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

	filter := apptransfer.TransferOrderListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Status:   c.Query("status"),
		Purpose:  c.Query("purpose"),
	}

	resp, total, err := h.service.ListByBranch(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, resp, total, filter.Page, filter.PageSize)
}
