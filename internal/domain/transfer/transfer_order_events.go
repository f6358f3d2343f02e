package transfer

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTransferOrder = "TransferOrder"

// Event type constants
const (
	EventTypeTransferOrderCreated  = "TransferOrderCreated"
	EventTypeTransferOrderReceived = "TransferOrderReceived"
	EventTypeTransferOrderClosed   = "TransferOrderClosed"
)

// TransferOrderCreatedEvent is raised when a new transfer order is created
type TransferOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID             uuid.UUID       `json:"order_id"`
	OrderNumber         string          `json:"order_number"`
	SourceBranchID      uuid.UUID       `json:"source_branch_id"`
	DestinationBranchID uuid.UUID       `json:"destination_branch_id"`
	Purpose             TransferPurpose `json:"purpose"`
	ItemCount           int             `json:"item_count"`
}

// NewTransferOrderCreatedEvent creates a new TransferOrderCreatedEvent
func NewTransferOrderCreatedEvent(o *TransferOrder) *TransferOrderCreatedEvent {
	return &TransferOrderCreatedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeTransferOrderCreated, AggregateTypeTransferOrder, o.ID),
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		SourceBranchID:      o.SourceBranchID,
		DestinationBranchID: o.DestinationBranchID,
		Purpose:             o.Purpose,
		ItemCount:           len(o.Items),
	}
}

// EventType returns the event type name
func (e *TransferOrderCreatedEvent) EventType() string {
	return EventTypeTransferOrderCreated
}

// TransferOrderReceivedEvent is raised when every line of an order has been received
type TransferOrderReceivedEvent struct {
	shared.BaseDomainEvent
	OrderID             uuid.UUID       `json:"order_id"`
	OrderNumber         string          `json:"order_number"`
	DestinationBranchID uuid.UUID       `json:"destination_branch_id"`
	Purpose             TransferPurpose `json:"purpose"`
}

// NewTransferOrderReceivedEvent creates a new TransferOrderReceivedEvent
func NewTransferOrderReceivedEvent(o *TransferOrder) *TransferOrderReceivedEvent {
	return &TransferOrderReceivedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeTransferOrderReceived, AggregateTypeTransferOrder, o.ID),
		OrderID:             o.ID,
		OrderNumber:         o.OrderNumber,
		DestinationBranchID: o.DestinationBranchID,
		Purpose:             o.Purpose,
	}
}

// EventType returns the event type name
func (e *TransferOrderReceivedEvent) EventType() string {
	return EventTypeTransferOrderReceived
}

// TransferOrderClosedEvent is raised when an order is rejected or cancelled
type TransferOrderClosedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	Status         TransferOrderStatus `json:"status"`
	SourceBranchID uuid.UUID           `json:"source_branch_id"`
	Reason         string              `json:"reason,omitempty"`
}

// NewTransferOrderClosedEvent creates a new TransferOrderClosedEvent
func NewTransferOrderClosedEvent(o *TransferOrder) *TransferOrderClosedEvent {
	reason := o.RejectReason
	if o.Status == TransferOrderStatusCancelled {
		reason = o.CancelReason
	}
	return &TransferOrderClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransferOrderClosed, AggregateTypeTransferOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          o.Status,
		SourceBranchID:  o.SourceBranchID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *TransferOrderClosedEvent) EventType() string {
	return EventTypeTransferOrderClosed
}
