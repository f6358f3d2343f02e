package maintenance

import (
	"time"

	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssignRequest hands a received asset to a technician
type AssignRequest struct {
	SerialNumber string    `json:"serial_number" binding:"required"`
	TechnicianID uuid.UUID `json:"technician_id" binding:"required"`
}

// TransitionRequest moves an asset along the repair cycle
type TransitionRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"`
	TargetStatus string `json:"target_status" binding:"required"`
	Notes        string `json:"notes"`
}

// IntakeRequest registers a walk-in or re-entering asset at a center
type IntakeRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"`
	Notes        string `json:"notes"`
}

// PartLineRequest is one part proposed or used on a repair job. Name and
// unit price are resolved from the center's inventory catalog.
type PartLineRequest struct {
	PartCode string `json:"part_code" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
	Billable *bool  `json:"billable" binding:"required"`
}

// DiagnoseRequest records findings and the planned part consumption
type DiagnoseRequest struct {
	Notes     string            `json:"notes"`
	LaborCost decimal.Decimal   `json:"labor_cost"`
	Parts     []PartLineRequest `json:"parts"`
}

// RequestApprovalRequest sends the quote to the asset's owning branch
type RequestApprovalRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	Notes        string    `json:"notes"`
}

// RespondApprovalRequest answers a pending quote
type RespondApprovalRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason"`
}

// CompleteRequest settles a repair job
type CompleteRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	Notes        string    `json:"notes"`
}

// CloseWithoutRepairRequest ends a job with SCRAPPED or REJECTED_REPAIR
type CloseWithoutRepairRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id" binding:"required"`
	Resolution   string    `json:"resolution" binding:"required,oneof=SCRAPPED REJECTED_REPAIR"`
	Notes        string    `json:"notes"`
}

// PartLineResponse is one part line in a response
type PartLineResponse struct {
	PartCode   string          `json:"part_code"`
	PartName   string          `json:"part_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Billable   bool            `json:"billable"`
}

// AssignmentResponse is the API representation of a repair job
type AssignmentResponse struct {
	ID             uuid.UUID          `json:"id"`
	AssetID        uuid.UUID          `json:"asset_id"`
	SerialNumber   string             `json:"serial_number"`
	TechnicianID   uuid.UUID          `json:"technician_id"`
	CenterBranchID uuid.UUID          `json:"center_branch_id"`
	OriginBranchID uuid.UUID          `json:"origin_branch_id"`
	Status         string             `json:"status"`
	Resolution     string             `json:"resolution,omitempty"`
	DiagnosisNotes string             `json:"diagnosis_notes,omitempty"`
	LaborCost      decimal.Decimal    `json:"labor_cost"`
	BillableTotal  decimal.Decimal    `json:"billable_total"`
	Parts          []PartLineResponse `json:"parts"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ApprovalResponse is the API representation of a repair quote
type ApprovalResponse struct {
	ID                 uuid.UUID               `json:"id"`
	AssignmentID       uuid.UUID               `json:"assignment_id"`
	SerialNumber       string                  `json:"serial_number"`
	RequestingBranchID uuid.UUID               `json:"requesting_branch_id"`
	RespondingBranchID uuid.UUID               `json:"responding_branch_id"`
	Status             string                  `json:"status"`
	Parts              maintenance.QuotedParts `json:"parts"`
	LaborCost          decimal.Decimal         `json:"labor_cost"`
	TotalCost          decimal.Decimal         `json:"total_cost"`
	Notes              string                  `json:"notes,omitempty"`
	DecisionReason     string                  `json:"decision_reason,omitempty"`
	AnsweredAt         *time.Time              `json:"answered_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

// ToAssignmentResponse converts a repair job to its API representation
func ToAssignmentResponse(a *maintenance.ServiceAssignment) AssignmentResponse {
	parts := make([]PartLineResponse, 0, len(a.Parts))
	for _, line := range a.Parts {
		parts = append(parts, PartLineResponse{
			PartCode:   line.PartCode,
			PartName:   line.PartName,
			Quantity:   line.Quantity.Value(),
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Billable:   line.Billable,
		})
	}
	return AssignmentResponse{
		ID:             a.ID,
		AssetID:        a.AssetID,
		SerialNumber:   a.SerialNumber,
		TechnicianID:   a.TechnicianID,
		CenterBranchID: a.CenterBranchID,
		OriginBranchID: a.OriginBranchID,
		Status:         string(a.Status),
		Resolution:     string(a.Resolution),
		DiagnosisNotes: a.DiagnosisNotes,
		LaborCost:      a.LaborCost,
		BillableTotal:  a.BillableTotal(),
		Parts:          parts,
		CompletedAt:    a.CompletedAt,
		CreatedAt:      a.CreatedAt,
	}
}

// ToApprovalResponse converts a quote to its API representation
func ToApprovalResponse(a *maintenance.MaintenanceApproval) ApprovalResponse {
	return ApprovalResponse{
		ID:                 a.ID,
		AssignmentID:       a.AssignmentID,
		SerialNumber:       a.SerialNumber,
		RequestingBranchID: a.RequestingBranchID,
		RespondingBranchID: a.RespondingBranchID,
		Status:             string(a.Status),
		Parts:              a.Parts,
		LaborCost:          a.LaborCost,
		TotalCost:          a.TotalCost,
		Notes:              a.Notes,
		DecisionReason:     a.DecisionReason,
		AnsweredAt:         a.AnsweredAt,
		CreatedAt:          a.CreatedAt,
	}
}
