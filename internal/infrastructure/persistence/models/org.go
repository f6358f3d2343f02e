package models

import (
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/google/uuid"
)

// BranchModel is the persistence model for the Branch aggregate root.
type BranchModel struct {
	AggregateModel
	Code     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Type     string     `gorm:"type:varchar(30);not null;index"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	Address  string     `gorm:"type:varchar(500)"`
	Phone    string     `gorm:"type:varchar(50)"`
	Active   bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts the persistence model to a domain Branch entity.
func (m *BranchModel) ToDomain() *org.Branch {
	b := &org.Branch{
		Code:     m.Code,
		Name:     m.Name,
		Type:     org.BranchType(m.Type),
		ParentID: m.ParentID,
		Address:  m.Address,
		Phone:    m.Phone,
		Active:   m.Active,
	}
	m.PopulateAggregateRoot(&b.BaseAggregateRoot)
	return b
}

// FromDomain populates the persistence model from a domain Branch entity.
func (m *BranchModel) FromDomain(b *org.Branch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Code = b.Code
	m.Name = b.Name
	m.Type = string(b.Type)
	m.ParentID = b.ParentID
	m.Address = b.Address
	m.Phone = b.Phone
	m.Active = b.Active
}

// BranchModelFromDomain creates a new persistence model from a domain Branch entity.
func BranchModelFromDomain(b *org.Branch) *BranchModel {
	m := &BranchModel{}
	m.FromDomain(b)
	return m
}
