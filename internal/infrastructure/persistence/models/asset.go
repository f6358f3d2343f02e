package models

import (
	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/google/uuid"
)

// AssetModel is the persistence model for the Asset aggregate root.
type AssetModel struct {
	AuditedAggregateModel
	SerialNumber       string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Category           string     `gorm:"type:varchar(30);not null;index"`
	Model              string     `gorm:"type:varchar(100)"`
	Vendor             string     `gorm:"type:varchar(100)"`
	BranchID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status             string     `gorm:"type:varchar(30);not null;index"`
	OriginBranchID     *uuid.UUID `gorm:"type:uuid;index"`
	ActiveAssignmentID *uuid.UUID `gorm:"type:uuid;index"`
	Resolution         *string    `gorm:"type:varchar(30)"`
}

// TableName returns the table name for GORM
func (AssetModel) TableName() string {
	return "assets"
}

// ToDomain converts the persistence model to a domain Asset entity.
func (m *AssetModel) ToDomain() *asset.Asset {
	a := &asset.Asset{
		SerialNumber:       m.SerialNumber,
		Category:           asset.AssetCategory(m.Category),
		Model:              m.Model,
		Vendor:             m.Vendor,
		BranchID:           m.BranchID,
		Status:             asset.AssetStatus(m.Status),
		OriginBranchID:     m.OriginBranchID,
		ActiveAssignmentID: m.ActiveAssignmentID,
	}
	if m.Resolution != nil {
		res := asset.Resolution(*m.Resolution)
		a.Resolution = &res
	}
	m.PopulateAuditedAggregateRoot(&a.AuditedAggregateRoot)
	return a
}

// FromDomain populates the persistence model from a domain Asset entity.
func (m *AssetModel) FromDomain(a *asset.Asset) {
	m.FromDomainAuditedAggregateRoot(a.AuditedAggregateRoot)
	m.SerialNumber = a.SerialNumber
	m.Category = string(a.Category)
	m.Model = a.Model
	m.Vendor = a.Vendor
	m.BranchID = a.BranchID
	m.Status = string(a.Status)
	m.OriginBranchID = a.OriginBranchID
	m.ActiveAssignmentID = a.ActiveAssignmentID
	m.Resolution = nil
	if a.Resolution != nil {
		res := string(*a.Resolution)
		m.Resolution = &res
	}
}

// AssetModelFromDomain creates a new persistence model from a domain Asset entity.
func AssetModelFromDomain(a *asset.Asset) *AssetModel {
	m := &AssetModel{}
	m.FromDomain(a)
	return m
}

// MovementLogModel is the persistence model for the append-only asset audit journal.
type MovementLogModel struct {
	BaseModel
	AssetID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SerialNumber string          `gorm:"type:varchar(100);not null;index"`
	BranchID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromStatus   string          `gorm:"type:varchar(30);not null"`
	ToStatus     string          `gorm:"type:varchar(30);not null"`
	Resolution   *string         `gorm:"type:varchar(30)"`
	Notes        string          `gorm:"type:text"`
	Payload      asset.LogPayload `gorm:"type:jsonb"`
	ActorID      *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MovementLogModel) TableName() string {
	return "asset_movement_logs"
}

// ToDomain converts the persistence model to a domain MovementLog entity.
func (m *MovementLogModel) ToDomain() *asset.MovementLog {
	log := &asset.MovementLog{
		BaseEntity:   m.BaseModel.ToDomain(),
		AssetID:      m.AssetID,
		SerialNumber: m.SerialNumber,
		BranchID:     m.BranchID,
		FromStatus:   asset.AssetStatus(m.FromStatus),
		ToStatus:     asset.AssetStatus(m.ToStatus),
		Notes:        m.Notes,
		Payload:      m.Payload,
		ActorID:      m.ActorID,
	}
	if m.Resolution != nil {
		res := asset.Resolution(*m.Resolution)
		log.Resolution = &res
	}
	return log
}

// FromDomain populates the persistence model from a domain MovementLog entity.
func (m *MovementLogModel) FromDomain(l *asset.MovementLog) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.AssetID = l.AssetID
	m.SerialNumber = l.SerialNumber
	m.BranchID = l.BranchID
	m.FromStatus = string(l.FromStatus)
	m.ToStatus = string(l.ToStatus)
	m.Notes = l.Notes
	m.Payload = l.Payload
	m.ActorID = l.ActorID
	m.Resolution = nil
	if l.Resolution != nil {
		res := string(*l.Resolution)
		m.Resolution = &res
	}
}

// MovementLogModelFromDomain creates a new persistence model from a domain MovementLog entity.
func MovementLogModelFromDomain(l *asset.MovementLog) *MovementLogModel {
	m := &MovementLogModel{}
	m.FromDomain(l)
	return m
}
