package asset

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeAsset = "Asset"

// Event type constants
const (
	EventTypeAssetCreated      = "AssetCreated"
	EventTypeAssetTransitioned = "AssetTransitioned"
)

// AssetCreatedEvent is raised when a new asset enters a branch warehouse
type AssetCreatedEvent struct {
	shared.BaseDomainEvent
	AssetID      uuid.UUID     `json:"asset_id"`
	SerialNumber string        `json:"serial_number"`
	Category     AssetCategory `json:"category"`
	BranchID     uuid.UUID     `json:"branch_id"`
}

// NewAssetCreatedEvent creates a new AssetCreatedEvent
func NewAssetCreatedEvent(a *Asset) *AssetCreatedEvent {
	return &AssetCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetCreated, AggregateTypeAsset, a.ID),
		AssetID:         a.ID,
		SerialNumber:    a.SerialNumber,
		Category:        a.Category,
		BranchID:        a.BranchID,
	}
}

// EventType returns the event type name
func (e *AssetCreatedEvent) EventType() string {
	return EventTypeAssetCreated
}

// AssetTransitionedEvent is raised on every asset status change
type AssetTransitionedEvent struct {
	shared.BaseDomainEvent
	AssetID      uuid.UUID   `json:"asset_id"`
	SerialNumber string      `json:"serial_number"`
	BranchID     uuid.UUID   `json:"branch_id"`
	FromStatus   AssetStatus `json:"from_status"`
	ToStatus     AssetStatus `json:"to_status"`
	Resolution   *Resolution `json:"resolution,omitempty"`
}

// NewAssetTransitionedEvent creates a new AssetTransitionedEvent
func NewAssetTransitionedEvent(a *Asset, from, to AssetStatus, resolution *Resolution) *AssetTransitionedEvent {
	return &AssetTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetTransitioned, AggregateTypeAsset, a.ID),
		AssetID:         a.ID,
		SerialNumber:    a.SerialNumber,
		BranchID:        a.BranchID,
		FromStatus:      from,
		ToStatus:        to,
		Resolution:      resolution,
	}
}

// EventType returns the event type name
func (e *AssetTransitionedEvent) EventType() string {
	return EventTypeAssetTransitioned
}
