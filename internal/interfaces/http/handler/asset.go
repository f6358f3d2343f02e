package handler

import (
	appasset "github.com/assetflow/backend/internal/application/asset"
	"github.com/gin-gonic/gin"
)

// AssetHandler exposes serialized asset endpoints.
type AssetHandler struct {
	BaseHandler
	service *appasset.AssetService
}

func NewAssetHandler(service *appasset.AssetService) *AssetHandler {
	return &AssetHandler{service: service}
}

// Register handles POST /api/v1/branches/:id/assets
func (h *AssetHandler) Register(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req appasset.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), scope, branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Import handles POST /api/v1/asset-imports
func (h *AssetHandler) Import(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req appasset.ImportAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Import(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/assets/:serial
func (h *AssetHandler) Get(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	resp, err := h.service.GetBySerial(c.Request.Context(), scope, c.Param("serial"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// History handles GET /api/v1/assets/:serial/history
func (h *AssetHandler) History(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	req, err := bindListRequest(c)
	if err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.History(c.Request.Context(), scope, c.Param("serial"), toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByBranch handles GET /api/v1/branches/:id/assets
func (h *AssetHandler) ListByBranch(c *gin.Context) {
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
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if category := c.Query("category"); category != "" {
		filter.Filters["category"] = category
	}

	resp, err := h.service.ListByBranch(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkSold handles POST /api/v1/assets/:serial/sold
func (h *AssetHandler) MarkSold(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	resp, err := h.service.MarkSold(c.Request.Context(), scope, c.Param("serial"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkScrapped handles POST /api/v1/assets/:serial/scrapped
func (h *AssetHandler) MarkScrapped(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	resp, err := h.service.MarkScrapped(c.Request.Context(), scope, c.Param("serial"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
