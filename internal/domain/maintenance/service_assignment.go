package maintenance

import (
	"time"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssignmentStatus tracks a repair job through the maintenance workflow
type AssignmentStatus string

const (
	AssignmentUnderMaintenance AssignmentStatus = "UNDER_MAINTENANCE"
	AssignmentPendingApproval  AssignmentStatus = "PENDING_APPROVAL"
	AssignmentApproved         AssignmentStatus = "APPROVED"
	AssignmentCompleted        AssignmentStatus = "COMPLETED"
	AssignmentReturned         AssignmentStatus = "RETURNED"
)

// IsValid checks if the assignment status is valid
func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentUnderMaintenance, AssignmentPendingApproval,
		AssignmentApproved, AssignmentCompleted, AssignmentReturned:
		return true
	}
	return false
}

// IsOpen reports whether the assignment still has work or a return pending
func (s AssignmentStatus) IsOpen() bool {
	return s != AssignmentReturned
}

// PartLine is one part consumed (or proposed) on a repair job.
// Billable lines roll up into the debt charged to the origin branch;
// warranty work is recorded with Billable=false and settles at zero.
type PartLine struct {
	shared.BaseEntity
	AssignmentID uuid.UUID
	PartCode     string
	PartName     string
	Quantity     valueobject.Quantity
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	Billable     bool
}

// NewPartLine creates a part line with the total computed from qty and price
func NewPartLine(assignmentID uuid.UUID, partCode, partName string, quantity valueobject.Quantity, unitPrice decimal.Decimal, billable bool) (*PartLine, error) {
	if partCode == "" {
		return nil, shared.NewDomainError("INVALID_PART", "Part code cannot be empty")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &PartLine{
		BaseEntity:   shared.NewBaseEntity(),
		AssignmentID: assignmentID,
		PartCode:     partCode,
		PartName:     partName,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice.Mul(quantity.Value()),
		Billable:     billable,
	}, nil
}

// ServiceAssignment is the repair job for one asset at a maintenance center.
// It is created when the asset is handed to a technician and stays open until
// the asset is confirmed back at its origin branch.
type ServiceAssignment struct {
	shared.AuditedAggregateRoot
	AssetID           uuid.UUID
	SerialNumber      string
	TechnicianID      uuid.UUID
	CenterBranchID    uuid.UUID
	OriginBranchID    uuid.UUID
	Status            AssignmentStatus
	Resolution        asset.Resolution
	DiagnosisNotes    string
	LaborCost         decimal.Decimal
	Parts             []*PartLine
	PendingTransferID *uuid.UUID
	CompletedAt       *time.Time
}

// NewServiceAssignment creates a repair job for an asset received at a center
func NewServiceAssignment(assetID uuid.UUID, serialNumber string, technicianID, centerBranchID, originBranchID uuid.UUID) (*ServiceAssignment, error) {
	if assetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSET", "Asset ID cannot be empty")
	}
	if technicianID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TECHNICIAN", "Technician ID cannot be empty")
	}
	if centerBranchID == uuid.Nil || originBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch IDs cannot be empty")
	}

	a := &ServiceAssignment{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		AssetID:              assetID,
		SerialNumber:         serialNumber,
		TechnicianID:         technicianID,
		CenterBranchID:       centerBranchID,
		OriginBranchID:       originBranchID,
		Status:               AssignmentUnderMaintenance,
		LaborCost:            decimal.Zero,
		Parts:                []*PartLine{},
	}
	a.AddDomainEvent(NewAssignmentCreatedEvent(a))
	return a, nil
}

// SetDiagnosis records the technician's findings
func (a *ServiceAssignment) SetDiagnosis(notes string) error {
	if a.Status == AssignmentCompleted || a.Status == AssignmentReturned {
		return shared.NewDomainError("ASSIGNMENT_CLOSED", "Cannot modify a closed assignment")
	}
	a.DiagnosisNotes = notes
	a.UpdatedAt = time.Now()
	return nil
}

// SetLaborCost records the labor charge for the job
func (a *ServiceAssignment) SetLaborCost(cost decimal.Decimal) error {
	if cost.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Labor cost cannot be negative")
	}
	if a.Status == AssignmentCompleted || a.Status == AssignmentReturned {
		return shared.NewDomainError("ASSIGNMENT_CLOSED", "Cannot modify a closed assignment")
	}
	a.LaborCost = cost
	a.UpdatedAt = time.Now()
	return nil
}

// AddPart adds a part line to the job. Only open, unanswered jobs accept parts.
func (a *ServiceAssignment) AddPart(partCode, partName string, quantity valueobject.Quantity, unitPrice decimal.Decimal, billable bool) (*PartLine, error) {
	if a.Status != AssignmentUnderMaintenance {
		return nil, shared.NewDomainError("INVALID_STATE", "Parts can only be added while the job is under maintenance")
	}
	for _, line := range a.Parts {
		if line.PartCode == partCode {
			return nil, shared.NewDomainError("DUPLICATE_PART", "Part already listed on this job: "+partCode)
		}
	}

	line, err := NewPartLine(a.ID, partCode, partName, quantity, unitPrice, billable)
	if err != nil {
		return nil, err
	}
	a.Parts = append(a.Parts, line)
	a.UpdatedAt = time.Now()
	return line, nil
}

// RemovePart drops a part line from an open job
func (a *ServiceAssignment) RemovePart(partCode string) error {
	if a.Status != AssignmentUnderMaintenance {
		return shared.NewDomainError("INVALID_STATE", "Parts can only be removed while the job is under maintenance")
	}
	for idx, line := range a.Parts {
		if line.PartCode == partCode {
			a.Parts = append(a.Parts[:idx], a.Parts[idx+1:]...)
			a.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("PART_NOT_FOUND", "Part not listed on this job: "+partCode)
}

// BillableTotal sums the billable part lines. Labor is tracked separately
// and does not enter inter-branch debt.
func (a *ServiceAssignment) BillableTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range a.Parts {
		if line.Billable {
			total = total.Add(line.TotalPrice)
		}
	}
	return total
}

// HasBillableParts reports whether any line is billable
func (a *ServiceAssignment) HasBillableParts() bool {
	for _, line := range a.Parts {
		if line.Billable {
			return true
		}
	}
	return false
}

// MarkPendingApproval moves the job into the approval gate
func (a *ServiceAssignment) MarkPendingApproval() error {
	if a.Status != AssignmentUnderMaintenance {
		return shared.NewDomainError("INVALID_STATE", "Approval can only be requested while under maintenance")
	}
	a.Status = AssignmentPendingApproval
	a.touch()
	return nil
}

// MarkApproved records a granted approval
func (a *ServiceAssignment) MarkApproved() error {
	if a.Status != AssignmentPendingApproval {
		return shared.NewDomainError("INVALID_STATE", "Job is not awaiting approval")
	}
	a.Status = AssignmentApproved
	a.touch()
	return nil
}

// ReturnToMaintenance puts a rejected job back under the technician's hands
// so the asset can be prepared for return without repair
func (a *ServiceAssignment) ReturnToMaintenance() error {
	if a.Status != AssignmentPendingApproval {
		return shared.NewDomainError("INVALID_STATE", "Job is not awaiting approval")
	}
	a.Status = AssignmentUnderMaintenance
	a.touch()
	return nil
}

// Complete closes the work phase with a resolution. Direct completions come
// from UNDER_MAINTENANCE, approval-gated ones from APPROVED.
func (a *ServiceAssignment) Complete(resolution asset.Resolution) error {
	if !resolution.IsValid() {
		return shared.NewDomainError("INVALID_RESOLUTION", "Resolution must be set to complete a job")
	}
	if a.Status != AssignmentUnderMaintenance && a.Status != AssignmentApproved {
		return shared.NewDomainError("INVALID_STATE", "Job cannot be completed from status "+string(a.Status))
	}
	now := time.Now()
	a.Status = AssignmentCompleted
	a.Resolution = resolution
	a.CompletedAt = &now
	a.touch()
	a.AddDomainEvent(NewAssignmentCompletedEvent(a))
	return nil
}

// HoldForTransfer links the job to the return transfer carrying its asset.
// The job stays COMPLETED until the origin branch confirms receipt; the hold
// is released if the transfer is rejected or cancelled.
func (a *ServiceAssignment) HoldForTransfer(transferID uuid.UUID) error {
	if a.Status != AssignmentCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed jobs can be held for return transfer")
	}
	if a.PendingTransferID != nil {
		return shared.NewDomainError("ALREADY_HELD", "Job is already held by a pending transfer")
	}
	a.PendingTransferID = &transferID
	a.touch()
	return nil
}

// ReleaseHold detaches the job from a rejected or cancelled transfer
func (a *ServiceAssignment) ReleaseHold() {
	a.PendingTransferID = nil
	a.touch()
}

// CloseReturned finalizes the job once the asset is back at its origin
func (a *ServiceAssignment) CloseReturned() error {
	if a.Status != AssignmentCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed jobs can be closed as returned")
	}
	a.Status = AssignmentReturned
	a.PendingTransferID = nil
	a.touch()
	return nil
}

func (a *ServiceAssignment) touch() {
	a.UpdatedAt = time.Now()
}
