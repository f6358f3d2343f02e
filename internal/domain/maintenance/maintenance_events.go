package maintenance

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssignmentCreatedEvent is raised when an asset is handed to a technician
type AssignmentCreatedEvent struct {
	shared.BaseDomainEvent
	AssetID        uuid.UUID `json:"asset_id"`
	SerialNumber   string    `json:"serial_number"`
	TechnicianID   uuid.UUID `json:"technician_id"`
	CenterBranchID uuid.UUID `json:"center_branch_id"`
	OriginBranchID uuid.UUID `json:"origin_branch_id"`
}

func NewAssignmentCreatedEvent(a *ServiceAssignment) *AssignmentCreatedEvent {
	return &AssignmentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("maintenance.assignment_created", "ServiceAssignment", a.ID),
		AssetID:         a.AssetID,
		SerialNumber:    a.SerialNumber,
		TechnicianID:    a.TechnicianID,
		CenterBranchID:  a.CenterBranchID,
		OriginBranchID:  a.OriginBranchID,
	}
}

// AssignmentCompletedEvent is raised when the work phase closes
type AssignmentCompletedEvent struct {
	shared.BaseDomainEvent
	AssetID       uuid.UUID       `json:"asset_id"`
	SerialNumber  string          `json:"serial_number"`
	Resolution    string          `json:"resolution"`
	BillableTotal decimal.Decimal `json:"billable_total"`
}

func NewAssignmentCompletedEvent(a *ServiceAssignment) *AssignmentCompletedEvent {
	return &AssignmentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("maintenance.assignment_completed", "ServiceAssignment", a.ID),
		AssetID:         a.AssetID,
		SerialNumber:    a.SerialNumber,
		Resolution:      string(a.Resolution),
		BillableTotal:   a.BillableTotal(),
	}
}

// ApprovalAnsweredEvent is raised when the owning branch answers a quote
type ApprovalAnsweredEvent struct {
	shared.BaseDomainEvent
	AssignmentID       uuid.UUID `json:"assignment_id"`
	SerialNumber       string    `json:"serial_number"`
	Status             string    `json:"status"`
	RespondingBranchID uuid.UUID `json:"responding_branch_id"`
	DecisionReason     string    `json:"decision_reason"`
}

func NewApprovalAnsweredEvent(a *MaintenanceApproval) *ApprovalAnsweredEvent {
	return &ApprovalAnsweredEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent("maintenance.approval_answered", "MaintenanceApproval", a.ID),
		AssignmentID:       a.AssignmentID,
		SerialNumber:       a.SerialNumber,
		Status:             string(a.Status),
		RespondingBranchID: a.RespondingBranchID,
		DecisionReason:     a.DecisionReason,
	}
}
