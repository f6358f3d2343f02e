package inventory

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection indicates which way stock moved
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

// MovementSource identifies what caused a stock movement
type MovementSource string

const (
	SourceImport      MovementSource = "IMPORT"
	SourceAdjustment  MovementSource = "ADJUSTMENT"
	SourceMaintenance MovementSource = "MAINTENANCE"
)

// StockMovement is an append-only journal line recording one stock change.
// Maintenance deductions carry the assignment reference and the billable
// flag so debt settlement can be reconciled against the journal.
type StockMovement struct {
	shared.BaseEntity
	BranchID   uuid.UUID
	PartCode   string
	Direction  MovementDirection
	Quantity   valueobject.Quantity
	UnitPrice  decimal.Decimal
	Source     MovementSource
	SourceID   *uuid.UUID
	Billable   bool
	ActorID    *uuid.UUID
	Notes      string
}

// NewStockMovement creates a journal line for a stock change
func NewStockMovement(branchID uuid.UUID, partCode string, direction MovementDirection, quantity valueobject.Quantity, unitPrice decimal.Decimal, source MovementSource) *StockMovement {
	return &StockMovement{
		BaseEntity: shared.NewBaseEntity(),
		BranchID:   branchID,
		PartCode:   partCode,
		Direction:  direction,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		Source:     source,
	}
}

// WithSourceRef attaches the causing aggregate (e.g. a service assignment)
func (m *StockMovement) WithSourceRef(sourceID uuid.UUID, billable bool) *StockMovement {
	m.SourceID = &sourceID
	m.Billable = billable
	return m
}

// WithActor records who performed the movement
func (m *StockMovement) WithActor(actorID uuid.UUID) *StockMovement {
	m.ActorID = &actorID
	return m
}
