package handler

import (
	apporg "github.com/assetflow/backend/internal/application/org"
	"github.com/gin-gonic/gin"
)

// BranchHandler exposes branch hierarchy management endpoints.
type BranchHandler struct {
	BaseHandler
	service *apporg.BranchService
}

func NewBranchHandler(service *apporg.BranchService) *BranchHandler {
	return &BranchHandler{service: service}
}

// Create handles POST /api/v1/branches
func (h *BranchHandler) Create(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req apporg.CreateBranchRequest
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

// Update handles PUT /api/v1/branches/:id
func (h *BranchHandler) Update(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req apporg.UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), scope, branchID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate handles POST /api/v1/branches/:id/deactivate
func (h *BranchHandler) Deactivate(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	resp, err := h.service.Deactivate(c.Request.Context(), scope, branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/branches
func (h *BranchHandler) List(c *gin.Context) {
	req, err := bindListRequest(c)
	if err != nil {
		h.ValidationError(c, err)
		return
	}

	filter := toFilter(req)
	if branchType := c.Query("type"); branchType != "" {
		filter.Filters["type"] = branchType
	}
	if active := c.Query("active"); active != "" {
		filter.Filters["active"] = active == "true"
	}

	resp, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Children handles GET /api/v1/branches/:id/children
func (h *BranchHandler) Children(c *gin.Context) {
	branchID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	resp, err := h.service.Children(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
