package transfer

import (
	"time"

	"github.com/assetflow/backend/internal/domain/transfer"
	"github.com/google/uuid"
)

// CreateTransferOrderRequest is the request to open a transfer order
type CreateTransferOrderRequest struct {
	SourceBranchID      uuid.UUID `json:"source_branch_id" binding:"required"`
	DestinationBranchID uuid.UUID `json:"destination_branch_id" binding:"required"`
	Purpose             string    `json:"purpose" binding:"required,oneof=MAINTENANCE RETURN STOCK_TRANSFER"`
	SerialNumbers       []string  `json:"serial_numbers" binding:"required,min=1,dive,required"`
	Remark              string    `json:"remark"`
}

// ReceiveTransferRequest acknowledges serials arriving at the destination
type ReceiveTransferRequest struct {
	SerialNumbers []string `json:"serial_numbers" binding:"required,min=1,dive,required"`
}

// RejectTransferRequest declines a pending order
type RejectTransferRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelTransferRequest withdraws a pending order
type CancelTransferRequest struct {
	Reason string `json:"reason"`
}

// TransferOrderItemResponse is one manifest line in a response
type TransferOrderItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	AssetID      uuid.UUID  `json:"asset_id"`
	SerialNumber string     `json:"serial_number"`
	Received     bool       `json:"received"`
	ReceivedAt   *time.Time `json:"received_at,omitempty"`
}

// TransferOrderResponse is the API representation of a transfer order
type TransferOrderResponse struct {
	ID                  uuid.UUID                   `json:"id"`
	OrderNumber         string                      `json:"order_number"`
	SourceBranchID      uuid.UUID                   `json:"source_branch_id"`
	DestinationBranchID uuid.UUID                   `json:"destination_branch_id"`
	Purpose             string                      `json:"purpose"`
	Status              string                      `json:"status"`
	Remark              string                      `json:"remark,omitempty"`
	RejectReason        string                      `json:"reject_reason,omitempty"`
	CancelReason        string                      `json:"cancel_reason,omitempty"`
	Items               []TransferOrderItemResponse `json:"items"`
	ClosedAt            *time.Time                  `json:"closed_at,omitempty"`
	CreatedBy           *uuid.UUID                  `json:"created_by,omitempty"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// TransferOrderListFilter narrows transfer order listings
type TransferOrderListFilter struct {
	Page     int
	PageSize int
	Status   string
	Purpose  string
	BranchID *uuid.UUID
}

// ReceiveResultResponse reports the outcome of a receive call
type ReceiveResultResponse struct {
	Order           TransferOrderResponse `json:"order"`
	ReceivedSerials []string              `json:"received_serials"`
}

// ToTransferOrderResponse converts a domain order to its API representation
func ToTransferOrderResponse(o *transfer.TransferOrder) TransferOrderResponse {
	items := make([]TransferOrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, TransferOrderItemResponse{
			ID:           item.ID,
			AssetID:      item.AssetID,
			SerialNumber: item.SerialNumber,
			Received:     item.Received,
			ReceivedAt:   item.ReceivedAt,
		})
	}
	return TransferOrderResponse{
		ID:                  o.ID,
		OrderNumber:         o.OrderNumber,
		SourceBranchID:      o.SourceBranchID,
		DestinationBranchID: o.DestinationBranchID,
		Purpose:             o.Purpose.String(),
		Status:              o.Status.String(),
		Remark:              o.Remark,
		RejectReason:        o.RejectReason,
		CancelReason:        o.CancelReason,
		Items:               items,
		ClosedAt:            o.ClosedAt,
		CreatedBy:           o.CreatedBy,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
	}
}
