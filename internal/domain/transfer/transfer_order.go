package transfer

import (
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransferPurpose is the business purpose of a transfer order. The purpose
// determines the branch-pair compatibility rule and the status an asset
// takes on receipt or rollback.
type TransferPurpose string

const (
	PurposeMaintenance   TransferPurpose = "MAINTENANCE"    // outlet -> maintenance center
	PurposeReturn        TransferPurpose = "RETURN"         // center -> asset's origin branch
	PurposeStockTransfer TransferPurpose = "STOCK_TRANSFER" // branch -> branch re-supply
)

// IsValid checks if the purpose is a valid TransferPurpose
func (p TransferPurpose) IsValid() bool {
	switch p {
	case PurposeMaintenance, PurposeReturn, PurposeStockTransfer:
		return true
	}
	return false
}

// String returns the string representation of TransferPurpose
func (p TransferPurpose) String() string {
	return string(p)
}

// TransferOrderStatus represents the status of a transfer order
type TransferOrderStatus string

const (
	TransferOrderStatusPending   TransferOrderStatus = "PENDING"
	TransferOrderStatusPartial   TransferOrderStatus = "PARTIAL"
	TransferOrderStatusReceived  TransferOrderStatus = "RECEIVED"
	TransferOrderStatusRejected  TransferOrderStatus = "REJECTED"
	TransferOrderStatusCancelled TransferOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TransferOrderStatus
func (s TransferOrderStatus) IsValid() bool {
	switch s {
	case TransferOrderStatusPending, TransferOrderStatusPartial, TransferOrderStatusReceived,
		TransferOrderStatusRejected, TransferOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TransferOrderStatus
func (s TransferOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that admit no further mutation
func (s TransferOrderStatus) IsTerminal() bool {
	return s == TransferOrderStatusReceived || s == TransferOrderStatusRejected ||
		s == TransferOrderStatusCancelled
}

// CanReceive returns true if items can still be received in this status
func (s TransferOrderStatus) CanReceive() bool {
	return s == TransferOrderStatusPending || s == TransferOrderStatusPartial
}

// TransferOrderItem is one manifest line referencing a serialized asset
type TransferOrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	AssetID      uuid.UUID
	SerialNumber string
	Received     bool
	ReceivedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTransferOrderItem creates a new manifest line
func NewTransferOrderItem(orderID, assetID uuid.UUID, serialNumber string) (*TransferOrderItem, error) {
	if assetID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSET", "Asset ID cannot be empty")
	}
	if serialNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	now := time.Now()
	return &TransferOrderItem{
		ID:           uuid.New(),
		OrderID:      orderID,
		AssetID:      assetID,
		SerialNumber: serialNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// MarkReceived stamps the line as received. Receiving an already-received
// line is a no-op, not an error.
func (i *TransferOrderItem) MarkReceived() bool {
	if i.Received {
		return false
	}
	now := time.Now()
	i.Received = true
	i.ReceivedAt = &now
	i.UpdatedAt = now
	return true
}

// TransferOrder is the manifest moving serialized assets between two
// branches. It is the aggregate root for the transfer engine.
type TransferOrder struct {
	shared.AuditedAggregateRoot
	OrderNumber         string
	SourceBranchID      uuid.UUID
	DestinationBranchID uuid.UUID
	Purpose             TransferPurpose
	Status              TransferOrderStatus
	Remark              string
	RejectReason        string
	CancelReason        string
	ClosedAt            *time.Time
	Items               []TransferOrderItem
}

// NewTransferOrder creates a new pending transfer order
func NewTransferOrder(orderNumber string, sourceBranchID, destinationBranchID uuid.UUID, purpose TransferPurpose) (*TransferOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if sourceBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Source branch ID cannot be empty")
	}
	if destinationBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Destination branch ID cannot be empty")
	}
	if sourceBranchID == destinationBranchID {
		return nil, shared.NewDomainError("INVALID_BRANCH_PAIR", "Source and destination branches must differ")
	}
	if !purpose.IsValid() {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Transfer purpose is not valid")
	}

	order := &TransferOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		OrderNumber:          orderNumber,
		SourceBranchID:       sourceBranchID,
		DestinationBranchID:  destinationBranchID,
		Purpose:              purpose,
		Status:               TransferOrderStatusPending,
		Items:                make([]TransferOrderItem, 0),
	}
	order.AddDomainEvent(NewTransferOrderCreatedEvent(order))
	return order, nil
}

// AddItem appends a manifest line for an asset serial
func (o *TransferOrder) AddItem(assetID uuid.UUID, serialNumber string) (*TransferOrderItem, error) {
	if o.Status != TransferOrderStatusPending {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot add items to order in %s status", o.Status))
	}
	for _, item := range o.Items {
		if item.SerialNumber == serialNumber {
			return nil, shared.NewDomainError("DUPLICATE_SERIAL",
				fmt.Sprintf("Serial %s is already on this order", serialNumber))
		}
	}
	item, err := NewTransferOrderItem(o.ID, assetID, serialNumber)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.UpdatedAt = time.Now()
	return &o.Items[len(o.Items)-1], nil
}

// ItemBySerial finds a manifest line by serial number
func (o *TransferOrder) ItemBySerial(serialNumber string) *TransferOrderItem {
	for i := range o.Items {
		if o.Items[i].SerialNumber == serialNumber {
			return &o.Items[i]
		}
	}
	return nil
}

// ReceiveItems marks the given serials received and recomputes the order
// status: all lines received => RECEIVED, some => PARTIAL. Serials already
// received are skipped, so the racing loser of a duplicate receipt observes
// a no-op rather than an error, even after the order has closed as RECEIVED.
// Returns the serials whose state actually changed.
func (o *TransferOrder) ReceiveItems(serialNumbers []string) ([]string, error) {
	if !o.Status.CanReceive() {
		if o.Status != TransferOrderStatusReceived {
			return nil, shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Cannot receive items on order in %s status", o.Status))
		}
		for _, serial := range serialNumbers {
			if o.ItemBySerial(serial) == nil {
				return nil, shared.NewDomainError("NOT_FOUND",
					fmt.Sprintf("Serial %s is not on order %s", serial, o.OrderNumber))
			}
		}
		return []string{}, nil
	}

	changed := make([]string, 0, len(serialNumbers))
	for _, serial := range serialNumbers {
		item := o.ItemBySerial(serial)
		if item == nil {
			return nil, shared.NewDomainError("NOT_FOUND",
				fmt.Sprintf("Serial %s is not on order %s", serial, o.OrderNumber))
		}
		if item.MarkReceived() {
			changed = append(changed, serial)
		}
	}

	received := 0
	for _, item := range o.Items {
		if item.Received {
			received++
		}
	}

	previous := o.Status
	if received == len(o.Items) {
		now := time.Now()
		o.Status = TransferOrderStatusReceived
		o.ClosedAt = &now
	} else if received > 0 {
		o.Status = TransferOrderStatusPartial
	}
	if o.Status != previous || len(changed) > 0 {
		o.UpdatedAt = time.Now()
	}
	if o.Status == TransferOrderStatusReceived {
		o.AddDomainEvent(NewTransferOrderReceivedEvent(o))
	}
	return changed, nil
}

// Reject declines a pending order at the destination
func (o *TransferOrder) Reject(reason string) error {
	if o.Status != TransferOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only pending orders can be rejected, order is %s", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection requires a reason")
	}
	now := time.Now()
	o.Status = TransferOrderStatusRejected
	o.RejectReason = reason
	o.ClosedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewTransferOrderClosedEvent(o))
	return nil
}

// Cancel withdraws a pending order at the sender side
func (o *TransferOrder) Cancel(reason string) error {
	if o.Status != TransferOrderStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only pending orders can be cancelled, order is %s", o.Status))
	}
	now := time.Now()
	o.Status = TransferOrderStatusCancelled
	o.CancelReason = reason
	o.ClosedAt = &now
	o.UpdatedAt = now
	o.AddDomainEvent(NewTransferOrderClosedEvent(o))
	return nil
}
