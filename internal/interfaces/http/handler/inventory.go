package handler

import (
	appinventory "github.com/assetflow/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// InventoryHandler exposes per-branch part stock endpoints.
type InventoryHandler struct {
	BaseHandler
	service *appinventory.InventoryService
}

func NewInventoryHandler(service *appinventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// CreatePart handles POST /api/v1/branches/:id/inventory/parts
func (h *InventoryHandler) CreatePart(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req appinventory.CreatePartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.CreatePart(c.Request.Context(), scope, branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Replenish handles POST /api/v1/branches/:id/inventory/replenish
func (h *InventoryHandler) Replenish(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req appinventory.ReplenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Replenish(c.Request.Context(), scope, branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Adjust handles POST /api/v1/branches/:id/inventory/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req appinventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Adjust(c.Request.Context(), scope, branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// minQuantityBody carries the reorder threshold update.
type minQuantityBody struct {
	MinQuantity int64 `json:"min_quantity" binding:"min=0"`
}

// SetMinQuantity handles PUT /api/v1/branches/:id/inventory/parts/:code/min-quantity
func (h *InventoryHandler) SetMinQuantity(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var body minQuantityBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.SetMinQuantity(c.Request.Context(), scope, branchID, c.Param("code"), body.MinQuantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// unitPriceBody carries the unit price update.
type unitPriceBody struct {
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// SetUnitPrice handles PUT /api/v1/branches/:id/inventory/parts/:code/price
func (h *InventoryHandler) SetUnitPrice(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var body unitPriceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.SetUnitPrice(c.Request.Context(), scope, branchID, c.Param("code"), body.UnitPrice)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/branches/:id/inventory
func (h *InventoryHandler) List(c *gin.Context) {
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

	filter := toFilter(req)
	if partCode := c.Query("part_code"); partCode != "" {
		filter.Filters["part_code"] = partCode
	}

	resp, err := h.service.ListByBranch(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListLowStock handles GET /api/v1/branches/:id/inventory/low-stock
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	resp, err := h.service.ListLowStock(c.Request.Context(), scope, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMovements handles GET /api/v1/branches/:id/inventory/movements
func (h *InventoryHandler) ListMovements(c *gin.Context) {
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

	filter := toFilter(req)
	if partCode := c.Query("part_code"); partCode != "" {
		filter.Filters["part_code"] = partCode
	}
	if source := c.Query("source"); source != "" {
		filter.Filters["source"] = source
	}

	resp, err := h.service.ListMovements(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
