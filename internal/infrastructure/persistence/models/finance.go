package models

import (
	"time"

	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BranchDebtModel is the persistence model for the BranchDebt aggregate root.
type BranchDebtModel struct {
	AuditedAggregateModel
	DebtNumber        string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	DebtorBranchID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	CreditorBranchID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	AssignmentID      uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex"`
	SerialNumber      string                  `gorm:"type:varchar(100);not null"`
	Amount            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status            string                  `gorm:"type:varchar(20);not null;index"`
	PartsSnapshot     maintenance.QuotedParts `gorm:"type:jsonb"`
	Payments          finance.PaymentRecords  `gorm:"type:jsonb"`
	SettledAt         *time.Time              ``
}

// TableName returns the table name for GORM
func (BranchDebtModel) TableName() string {
	return "branch_debts"
}

// ToDomain converts the persistence model to a domain BranchDebt entity.
func (m *BranchDebtModel) ToDomain() *finance.BranchDebt {
	d := &finance.BranchDebt{
		DebtNumber:        m.DebtNumber,
		DebtorBranchID:    m.DebtorBranchID,
		CreditorBranchID:  m.CreditorBranchID,
		AssignmentID:      m.AssignmentID,
		SerialNumber:      m.SerialNumber,
		Amount:            m.Amount,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            finance.DebtStatus(m.Status),
		PartsSnapshot:     m.PartsSnapshot,
		Payments:          m.Payments,
		SettledAt:         m.SettledAt,
	}
	m.PopulateAuditedAggregateRoot(&d.AuditedAggregateRoot)
	return d
}

// FromDomain populates the persistence model from a domain BranchDebt entity.
func (m *BranchDebtModel) FromDomain(d *finance.BranchDebt) {
	m.FromDomainAuditedAggregateRoot(d.AuditedAggregateRoot)
	m.DebtNumber = d.DebtNumber
	m.DebtorBranchID = d.DebtorBranchID
	m.CreditorBranchID = d.CreditorBranchID
	m.AssignmentID = d.AssignmentID
	m.SerialNumber = d.SerialNumber
	m.Amount = d.Amount
	m.PaidAmount = d.PaidAmount
	m.OutstandingAmount = d.OutstandingAmount
	m.Status = string(d.Status)
	m.PartsSnapshot = d.PartsSnapshot
	m.Payments = d.Payments
	m.SettledAt = d.SettledAt
}

// BranchDebtModelFromDomain creates a new persistence model from a domain BranchDebt entity.
func BranchDebtModelFromDomain(d *finance.BranchDebt) *BranchDebtModel {
	m := &BranchDebtModel{}
	m.FromDomain(d)
	return m
}
