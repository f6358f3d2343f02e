package handler

import (
	appmaintenance "github.com/assetflow/backend/internal/application/maintenance"
	"github.com/gin-gonic/gin"
)

// MaintenanceHandler exposes the repair workflow and approval endpoints.
type MaintenanceHandler struct {
	BaseHandler
	workflow  *appmaintenance.WorkflowService
	approvals *appmaintenance.ApprovalService
}

func NewMaintenanceHandler(workflow *appmaintenance.WorkflowService, approvals *appmaintenance.ApprovalService) *MaintenanceHandler {
	return &MaintenanceHandler{workflow: workflow, approvals: approvals}
}

// Intake handles POST /api/v1/maintenance/intake
func (h *MaintenanceHandler) Intake(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req appmaintenance.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.workflow.Intake(c.Request.Context(), scope, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Assign handles POST /api/v1/maintenance/assignments
func (h *MaintenanceHandler) Assign(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req appmaintenance.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.workflow.Assign(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Transition handles POST /api/v1/maintenance/transitions
func (h *MaintenanceHandler) Transition(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req appmaintenance.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.workflow.Transition(c.Request.Context(), scope, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Diagnose handles PUT /api/v1/maintenance/assignments/:id/diagnosis
func (h *MaintenanceHandler) Diagnose(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	assignmentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var req appmaintenance.DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.workflow.Diagnose(c.Request.Context(), scope, assignmentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetAssignment handles GET /api/v1/maintenance/assignments/:id
func (h *MaintenanceHandler) GetAssignment(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	assignmentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	resp, err := h.workflow.GetAssignment(c.Request.Context(), scope, assignmentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCenter handles GET /api/v1/branches/:id/assignments
func (h *MaintenanceHandler) ListByCenter(c *gin.Context) {
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
	if technicianID := c.Query("technician_id"); technicianID != "" {
		filter.Filters["technician_id"] = technicianID
	}

	resp, err := h.workflow.ListByCenter(c.Request.Context(), scope, branchID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RequestApproval handles POST /api/v1/maintenance/approvals
func (h *MaintenanceHandler) RequestApproval(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	var req appmaintenance.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.approvals.RequestApproval(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RespondApproval handles POST /api/v1/maintenance/approvals/:id/respond
func (h *MaintenanceHandler) RespondApproval(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	approvalID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid approval ID")
		return
	}

	var req appmaintenance.RespondApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.approvals.RespondApproval(c.Request.Context(), scope, approvalID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListPendingApprovals handles GET /api/v1/branches/:id/approvals
func (h *MaintenanceHandler) ListPendingApprovals(c *gin.Context) {
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

	resp, err := h.approvals.ListPendingForBranch(c.Request.Context(), scope, branchID, toFilter(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// completeBody is the request body for completing an assignment.
type completeBody struct {
	Notes         string `json:"notes"`
	AfterApproval bool   `json:"after_approval"`
}

// Complete handles POST /api/v1/maintenance/assignments/:id/complete
// When after_approval is set the assignment must hold an approved quote;
// otherwise the repair settles directly from the center's own stock.
func (h *MaintenanceHandler) Complete(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	assignmentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var body completeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	req := appmaintenance.CompleteRequest{
		AssignmentID: assignmentID,
		Notes:        body.Notes,
	}

	var resp *appmaintenance.AssignmentResponse
	if body.AfterApproval {
		resp, err = h.approvals.CompleteAfterApproval(c.Request.Context(), scope, req)
	} else {
		resp, err = h.approvals.CompleteDirect(c.Request.Context(), scope, req)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// closeBody is the request body for closing an assignment without repair.
type closeBody struct {
	Resolution string `json:"resolution" binding:"required,oneof=SCRAPPED REJECTED_REPAIR"`
	Notes      string `json:"notes"`
}

// Close handles POST /api/v1/maintenance/assignments/:id/close
func (h *MaintenanceHandler) Close(c *gin.Context) {
	scope, ok := h.requireScope(c)
	if !ok {
		return
	}

	assignmentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid assignment ID")
		return
	}

	var body closeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.approvals.CloseWithoutRepair(c.Request.Context(), scope, appmaintenance.CloseWithoutRepairRequest{
		AssignmentID: assignmentID,
		Resolution:   body.Resolution,
		Notes:        body.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
