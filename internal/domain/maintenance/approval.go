package maintenance

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalStatus is the answer state of a repair quote
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// IsAnswered reports whether the owning branch has already responded
func (s ApprovalStatus) IsAnswered() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// QuotedPart is one proposed line in a repair quote
type QuotedPart struct {
	PartCode  string          `json:"part_code"`
	PartName  string          `json:"part_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
	Billable  bool            `json:"billable"`
}

// QuotedParts is the immutable snapshot of the quote, stored as JSONB
type QuotedParts []QuotedPart

// Value implements the driver.Valuer interface for database storage
func (p QuotedParts) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (p *QuotedParts) Scan(value interface{}) error {
	if value == nil {
		*p = QuotedParts{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into QuotedParts", value)
	}
	return json.Unmarshal(data, p)
}

// MaintenanceApproval is a repair quote waiting on the asset's owning branch.
// At most one open approval exists per assignment and an answered approval
// is final.
type MaintenanceApproval struct {
	shared.AuditedAggregateRoot
	AssignmentID       uuid.UUID
	AssetID            uuid.UUID
	SerialNumber       string
	RequestingBranchID uuid.UUID
	RespondingBranchID uuid.UUID
	Status             ApprovalStatus
	Parts              QuotedParts
	LaborCost          decimal.Decimal
	TotalCost          decimal.Decimal
	Notes              string
	DecisionReason     string
	AnsweredBy         *uuid.UUID
	AnsweredAt         *time.Time
}

// NewMaintenanceApproval creates a quote from an assignment's current lines
func NewMaintenanceApproval(assignment *ServiceAssignment, notes string) (*MaintenanceApproval, error) {
	if len(assignment.Parts) == 0 && assignment.LaborCost.IsZero() {
		return nil, shared.NewDomainError("EMPTY_QUOTE", "A quote needs at least one part line or a labor cost")
	}

	parts := make(QuotedParts, 0, len(assignment.Parts))
	for _, line := range assignment.Parts {
		parts = append(parts, QuotedPart{
			PartCode:  line.PartCode,
			PartName:  line.PartName,
			Quantity:  line.Quantity.Value(),
			UnitPrice: line.UnitPrice,
			Total:     line.TotalPrice,
			Billable:  line.Billable,
		})
	}

	return &MaintenanceApproval{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		AssignmentID:         assignment.ID,
		AssetID:              assignment.AssetID,
		SerialNumber:         assignment.SerialNumber,
		RequestingBranchID:   assignment.CenterBranchID,
		RespondingBranchID:   assignment.OriginBranchID,
		Status:               ApprovalPending,
		Parts:                parts,
		LaborCost:            assignment.LaborCost,
		TotalCost:            assignment.BillableTotal(),
		Notes:                notes,
	}, nil
}

// Approve records a positive answer from the owning branch
func (a *MaintenanceApproval) Approve(answeredBy uuid.UUID, reason string) error {
	return a.answer(ApprovalApproved, answeredBy, reason)
}

// Reject records a negative answer. A reason is required so the technician
// knows why the repair was declined.
func (a *MaintenanceApproval) Reject(answeredBy uuid.UUID, reason string) error {
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "A rejection must carry a reason")
	}
	return a.answer(ApprovalRejected, answeredBy, reason)
}

func (a *MaintenanceApproval) answer(status ApprovalStatus, answeredBy uuid.UUID, reason string) error {
	if a.Status.IsAnswered() {
		return shared.NewDomainError("APPROVAL_ALREADY_ANSWERED", "This quote has already been answered")
	}
	now := time.Now()
	a.Status = status
	a.DecisionReason = reason
	a.AnsweredBy = &answeredBy
	a.AnsweredAt = &now
	a.UpdatedAt = now
	a.AddDomainEvent(NewApprovalAnsweredEvent(a))
	return nil
}
