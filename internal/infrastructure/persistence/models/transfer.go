package models

import (
	"time"

	"github.com/assetflow/backend/internal/domain/transfer"
	"github.com/google/uuid"
)

// TransferOrderModel is the persistence model for the TransferOrder aggregate root.
type TransferOrderModel struct {
	AuditedAggregateModel
	OrderNumber         string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceBranchID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	DestinationBranchID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Purpose             string     `gorm:"type:varchar(30);not null;index"`
	Status              string     `gorm:"type:varchar(30);not null;index"`
	Remark              string     `gorm:"type:text"`
	RejectReason        string     `gorm:"type:text"`
	CancelReason        string     `gorm:"type:text"`
	ClosedAt            *time.Time `gorm:"index"`
	// Associations
	Items []TransferOrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (TransferOrderModel) TableName() string {
	return "transfer_orders"
}

// ToDomain converts the persistence model to a domain TransferOrder entity.
func (m *TransferOrderModel) ToDomain() *transfer.TransferOrder {
	order := &transfer.TransferOrder{
		OrderNumber:         m.OrderNumber,
		SourceBranchID:      m.SourceBranchID,
		DestinationBranchID: m.DestinationBranchID,
		Purpose:             transfer.TransferPurpose(m.Purpose),
		Status:              transfer.TransferOrderStatus(m.Status),
		Remark:              m.Remark,
		RejectReason:        m.RejectReason,
		CancelReason:        m.CancelReason,
		ClosedAt:            m.ClosedAt,
		Items:               make([]transfer.TransferOrderItem, len(m.Items)),
	}
	m.PopulateAuditedAggregateRoot(&order.AuditedAggregateRoot)
	for i, item := range m.Items {
		order.Items[i] = *item.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain TransferOrder entity.
func (m *TransferOrderModel) FromDomain(o *transfer.TransferOrder) {
	m.FromDomainAuditedAggregateRoot(o.AuditedAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.SourceBranchID = o.SourceBranchID
	m.DestinationBranchID = o.DestinationBranchID
	m.Purpose = string(o.Purpose)
	m.Status = string(o.Status)
	m.Remark = o.Remark
	m.RejectReason = o.RejectReason
	m.CancelReason = o.CancelReason
	m.ClosedAt = o.ClosedAt
	m.Items = make([]TransferOrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *TransferOrderItemModelFromDomain(&o.Items[i])
	}
}

// TransferOrderModelFromDomain creates a new persistence model from a domain TransferOrder entity.
func TransferOrderModelFromDomain(o *transfer.TransferOrder) *TransferOrderModel {
	m := &TransferOrderModel{}
	m.FromDomain(o)
	return m
}

// TransferOrderItemModel is the persistence model for a manifest line.
type TransferOrderItemModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssetID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SerialNumber string     `gorm:"type:varchar(100);not null;index"`
	Received     bool       `gorm:"not null;default:false"`
	ReceivedAt   *time.Time ``
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransferOrderItemModel) TableName() string {
	return "transfer_order_items"
}

// ToDomain converts the persistence model to a domain TransferOrderItem entity.
func (m *TransferOrderItemModel) ToDomain() *transfer.TransferOrderItem {
	return &transfer.TransferOrderItem{
		ID:           m.ID,
		OrderID:      m.OrderID,
		AssetID:      m.AssetID,
		SerialNumber: m.SerialNumber,
		Received:     m.Received,
		ReceivedAt:   m.ReceivedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain TransferOrderItem entity.
func (m *TransferOrderItemModel) FromDomain(i *transfer.TransferOrderItem) {
	m.ID = i.ID
	m.OrderID = i.OrderID
	m.AssetID = i.AssetID
	m.SerialNumber = i.SerialNumber
	m.Received = i.Received
	m.ReceivedAt = i.ReceivedAt
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// TransferOrderItemModelFromDomain creates a new persistence model from a domain TransferOrderItem entity.
func TransferOrderItemModelFromDomain(i *transfer.TransferOrderItem) *TransferOrderItemModel {
	m := &TransferOrderItemModel{}
	m.FromDomain(i)
	return m
}
