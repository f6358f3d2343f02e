package models

import (
	"time"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ServiceAssignmentModel is the persistence model for the ServiceAssignment aggregate root.
type ServiceAssignmentModel struct {
	AuditedAggregateModel
	AssetID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SerialNumber      string          `gorm:"type:varchar(100);not null;index"`
	TechnicianID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CenterBranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OriginBranchID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status            string          `gorm:"type:varchar(30);not null;index"`
	Resolution        string          `gorm:"type:varchar(30)"`
	DiagnosisNotes    string          `gorm:"type:text"`
	LaborCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PendingTransferID *uuid.UUID      `gorm:"type:uuid;index"`
	CompletedAt       *time.Time      ``
	// Associations
	Parts []PartLineModel `gorm:"foreignKey:AssignmentID;references:ID"`
}

// TableName returns the table name for GORM
func (ServiceAssignmentModel) TableName() string {
	return "service_assignments"
}

// ToDomain converts the persistence model to a domain ServiceAssignment entity.
func (m *ServiceAssignmentModel) ToDomain() *maintenance.ServiceAssignment {
	sa := &maintenance.ServiceAssignment{
		AssetID:           m.AssetID,
		SerialNumber:      m.SerialNumber,
		TechnicianID:      m.TechnicianID,
		CenterBranchID:    m.CenterBranchID,
		OriginBranchID:    m.OriginBranchID,
		Status:            maintenance.AssignmentStatus(m.Status),
		Resolution:        asset.Resolution(m.Resolution),
		DiagnosisNotes:    m.DiagnosisNotes,
		LaborCost:         m.LaborCost,
		PendingTransferID: m.PendingTransferID,
		CompletedAt:       m.CompletedAt,
		Parts:             make([]*maintenance.PartLine, len(m.Parts)),
	}
	m.PopulateAuditedAggregateRoot(&sa.AuditedAggregateRoot)
	for i, part := range m.Parts {
		sa.Parts[i] = part.ToDomain()
	}
	return sa
}

// FromDomain populates the persistence model from a domain ServiceAssignment entity.
func (m *ServiceAssignmentModel) FromDomain(sa *maintenance.ServiceAssignment) {
	m.FromDomainAuditedAggregateRoot(sa.AuditedAggregateRoot)
	m.AssetID = sa.AssetID
	m.SerialNumber = sa.SerialNumber
	m.TechnicianID = sa.TechnicianID
	m.CenterBranchID = sa.CenterBranchID
	m.OriginBranchID = sa.OriginBranchID
	m.Status = string(sa.Status)
	m.Resolution = string(sa.Resolution)
	m.DiagnosisNotes = sa.DiagnosisNotes
	m.LaborCost = sa.LaborCost
	m.PendingTransferID = sa.PendingTransferID
	m.CompletedAt = sa.CompletedAt
	m.Parts = make([]PartLineModel, len(sa.Parts))
	for i, part := range sa.Parts {
		m.Parts[i] = *PartLineModelFromDomain(part)
	}
}

// ServiceAssignmentModelFromDomain creates a new persistence model from a domain ServiceAssignment entity.
func ServiceAssignmentModelFromDomain(sa *maintenance.ServiceAssignment) *ServiceAssignmentModel {
	m := &ServiceAssignmentModel{}
	m.FromDomain(sa)
	return m
}

// PartLineModel is the persistence model for a part consumed by a repair job.
type PartLineModel struct {
	BaseModel
	AssignmentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartCode     string          `gorm:"type:varchar(50);not null;index"`
	PartName     string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Billable     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PartLineModel) TableName() string {
	return "assignment_part_lines"
}

// ToDomain converts the persistence model to a domain PartLine entity.
func (m *PartLineModel) ToDomain() *maintenance.PartLine {
	return &maintenance.PartLine{
		BaseEntity:   m.BaseModel.ToDomain(),
		AssignmentID: m.AssignmentID,
		PartCode:     m.PartCode,
		PartName:     m.PartName,
		Quantity:     valueobject.MustNewQuantity(m.Quantity),
		UnitPrice:    m.UnitPrice,
		TotalPrice:   m.TotalPrice,
		Billable:     m.Billable,
	}
}

// FromDomain populates the persistence model from a domain PartLine entity.
func (m *PartLineModel) FromDomain(p *maintenance.PartLine) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.AssignmentID = p.AssignmentID
	m.PartCode = p.PartCode
	m.PartName = p.PartName
	m.Quantity = p.Quantity.Value()
	m.UnitPrice = p.UnitPrice
	m.TotalPrice = p.TotalPrice
	m.Billable = p.Billable
}

// PartLineModelFromDomain creates a new persistence model from a domain PartLine entity.
func PartLineModelFromDomain(p *maintenance.PartLine) *PartLineModel {
	m := &PartLineModel{}
	m.FromDomain(p)
	return m
}

// MaintenanceApprovalModel is the persistence model for the MaintenanceApproval aggregate root.
type MaintenanceApprovalModel struct {
	AuditedAggregateModel
	AssignmentID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	AssetID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	SerialNumber       string                  `gorm:"type:varchar(100);not null"`
	RequestingBranchID uuid.UUID               `gorm:"type:uuid;not null;index"`
	RespondingBranchID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Status             string                  `gorm:"type:varchar(20);not null;index"`
	Parts              maintenance.QuotedParts `gorm:"type:jsonb"`
	LaborCost          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Notes              string                  `gorm:"type:text"`
	DecisionReason     string                  `gorm:"type:text"`
	AnsweredBy         *uuid.UUID              `gorm:"type:uuid"`
	AnsweredAt         *time.Time              ``
}

// TableName returns the table name for GORM
func (MaintenanceApprovalModel) TableName() string {
	return "maintenance_approvals"
}

// ToDomain converts the persistence model to a domain MaintenanceApproval entity.
func (m *MaintenanceApprovalModel) ToDomain() *maintenance.MaintenanceApproval {
	a := &maintenance.MaintenanceApproval{
		AssignmentID:       m.AssignmentID,
		AssetID:            m.AssetID,
		SerialNumber:       m.SerialNumber,
		RequestingBranchID: m.RequestingBranchID,
		RespondingBranchID: m.RespondingBranchID,
		Status:             maintenance.ApprovalStatus(m.Status),
		Parts:              m.Parts,
		LaborCost:          m.LaborCost,
		TotalCost:          m.TotalCost,
		Notes:              m.Notes,
		DecisionReason:     m.DecisionReason,
		AnsweredBy:         m.AnsweredBy,
		AnsweredAt:         m.AnsweredAt,
	}
	m.PopulateAuditedAggregateRoot(&a.AuditedAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain MaintenanceApproval entity.
func (m *MaintenanceApprovalModel) FromDomain(a *maintenance.MaintenanceApproval) {
	m.FromDomainAuditedAggregateRoot(a.AuditedAggregateRoot)
	m.AssignmentID = a.AssignmentID
	m.AssetID = a.AssetID
	m.SerialNumber = a.SerialNumber
	m.RequestingBranchID = a.RequestingBranchID
	m.RespondingBranchID = a.RespondingBranchID
	m.Status = string(a.Status)
	m.Parts = a.Parts
	m.LaborCost = a.LaborCost
	m.TotalCost = a.TotalCost
	m.Notes = a.Notes
	m.DecisionReason = a.DecisionReason
	m.AnsweredBy = a.AnsweredBy
	m.AnsweredAt = a.AnsweredAt
}

// MaintenanceApprovalModelFromDomain creates a new persistence model from a domain MaintenanceApproval entity.
func MaintenanceApprovalModelFromDomain(a *maintenance.MaintenanceApproval) *MaintenanceApprovalModel {
	m := &MaintenanceApprovalModel{}
	m.FromDomain(a)
	return m
}
