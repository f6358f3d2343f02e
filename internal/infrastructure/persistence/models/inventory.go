package models

import (
	"github.com/assetflow/backend/internal/domain/inventory"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryItemModel is the persistence model for the InventoryItem aggregate root.
type InventoryItemModel struct {
	AggregateModel
	BranchID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_item_branch_part,priority:1"`
	PartCode    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_inventory_item_branch_part,priority:2"`
	PartName    string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryItemModel) TableName() string {
	return "inventory_items"
}

// ToDomain converts the persistence model to a domain InventoryItem entity.
func (m *InventoryItemModel) ToDomain() *inventory.InventoryItem {
	item := &inventory.InventoryItem{
		BranchID:    m.BranchID,
		PartCode:    m.PartCode,
		PartName:    m.PartName,
		Quantity:    valueobject.MustNewQuantity(m.Quantity),
		UnitPrice:   m.UnitPrice,
		MinQuantity: valueobject.MustNewQuantity(m.MinQuantity),
	}
	m.PopulateAggregateRoot(&item.BaseAggregateRoot)
	return item
}

// FromDomain populates the persistence model from a domain InventoryItem entity.
func (m *InventoryItemModel) FromDomain(i *inventory.InventoryItem) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.BranchID = i.BranchID
	m.PartCode = i.PartCode
	m.PartName = i.PartName
	m.Quantity = i.Quantity.Value()
	m.UnitPrice = i.UnitPrice
	m.MinQuantity = i.MinQuantity.Value()
}

// InventoryItemModelFromDomain creates a new persistence model from a domain InventoryItem entity.
func InventoryItemModelFromDomain(i *inventory.InventoryItem) *InventoryItemModel {
	m := &InventoryItemModel{}
	m.FromDomain(i)
	return m
}

// StockMovementModel is the persistence model for the append-only stock journal.
type StockMovementModel struct {
	BaseModel
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartCode  string          `gorm:"type:varchar(50);not null;index"`
	Direction string          `gorm:"type:varchar(10);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Source    string          `gorm:"type:varchar(30);not null;index"`
	SourceID  *uuid.UUID      `gorm:"type:uuid;index"`
	Billable  bool            `gorm:"not null;default:true"`
	ActorID   *uuid.UUID      `gorm:"type:uuid"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement entity.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity: m.BaseModel.ToDomain(),
		BranchID:   m.BranchID,
		PartCode:   m.PartCode,
		Direction:  inventory.MovementDirection(m.Direction),
		Quantity:   valueobject.MustNewQuantity(m.Quantity),
		UnitPrice:  m.UnitPrice,
		Source:     inventory.MovementSource(m.Source),
		SourceID:   m.SourceID,
		Billable:   m.Billable,
		ActorID:    m.ActorID,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain StockMovement entity.
func (m *StockMovementModel) FromDomain(sm *inventory.StockMovement) {
	m.FromDomainBaseEntity(sm.BaseEntity)
	m.BranchID = sm.BranchID
	m.PartCode = sm.PartCode
	m.Direction = string(sm.Direction)
	m.Quantity = sm.Quantity.Value()
	m.UnitPrice = sm.UnitPrice
	m.Source = string(sm.Source)
	m.SourceID = sm.SourceID
	m.Billable = sm.Billable
	m.ActorID = sm.ActorID
	m.Notes = sm.Notes
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement entity.
func StockMovementModelFromDomain(sm *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(sm)
	return m
}
