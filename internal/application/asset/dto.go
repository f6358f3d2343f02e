package asset

import (
	"time"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/google/uuid"
)

// RegisterAssetRequest registers one serialized asset at a branch
type RegisterAssetRequest struct {
	SerialNumber string `json:"serial_number" binding:"required"`
	Category     string `json:"category" binding:"required,oneof=POS_MACHINE SIM_CARD"`
	Model        string `json:"model"`
	Vendor       string `json:"vendor"`
}

// ImportAssetsRequest registers a batch of assets at a branch. Rows are
// validated independently; valid rows are imported, failed rows reported.
type ImportAssetsRequest struct {
	BranchID uuid.UUID             `json:"branch_id" binding:"required"`
	Rows     []RegisterAssetRequest `json:"rows" binding:"required,min=1,dive"`
}

// ImportRowError reports one failed import row
type ImportRowError struct {
	Row          int    `json:"row"`
	SerialNumber string `json:"serial_number"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// ImportResultResponse summarizes a bulk import
type ImportResultResponse struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// AssetResponse is the API representation of an asset
type AssetResponse struct {
	ID                 uuid.UUID  `json:"id"`
	SerialNumber       string     `json:"serial_number"`
	Category           string     `json:"category"`
	Model              string     `json:"model,omitempty"`
	Vendor             string     `json:"vendor,omitempty"`
	BranchID           uuid.UUID  `json:"branch_id"`
	Status             string     `json:"status"`
	OriginBranchID     *uuid.UUID `json:"origin_branch_id,omitempty"`
	ActiveAssignmentID *uuid.UUID `json:"active_assignment_id,omitempty"`
	Resolution         string     `json:"resolution,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// MovementLogResponse is one audit row in a response
type MovementLogResponse struct {
	ID           uuid.UUID              `json:"id"`
	AssetID      uuid.UUID              `json:"asset_id"`
	SerialNumber string                 `json:"serial_number"`
	BranchID     uuid.UUID              `json:"branch_id"`
	FromStatus   string                 `json:"from_status"`
	ToStatus     string                 `json:"to_status"`
	Resolution   string                 `json:"resolution,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
	ActorID      *uuid.UUID             `json:"actor_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ToAssetResponse converts an asset to its API representation
func ToAssetResponse(a *asset.Asset) AssetResponse {
	resolution := ""
	if a.Resolution != nil {
		resolution = a.Resolution.String()
	}
	return AssetResponse{
		ID:                 a.ID,
		SerialNumber:       a.SerialNumber,
		Category:           a.Category.String(),
		Model:              a.Model,
		Vendor:             a.Vendor,
		BranchID:           a.BranchID,
		Status:             a.Status.String(),
		OriginBranchID:     a.OriginBranchID,
		ActiveAssignmentID: a.ActiveAssignmentID,
		Resolution:         resolution,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// ToMovementLogResponse converts an audit row to its API representation
func ToMovementLogResponse(l *asset.MovementLog) MovementLogResponse {
	resolution := ""
	if l.Resolution != nil {
		resolution = l.Resolution.String()
	}
	return MovementLogResponse{
		ID:           l.ID,
		AssetID:      l.AssetID,
		SerialNumber: l.SerialNumber,
		BranchID:     l.BranchID,
		FromStatus:   l.FromStatus.String(),
		ToStatus:     l.ToStatus.String(),
		Resolution:   resolution,
		Notes:        l.Notes,
		Payload:      l.Payload,
		ActorID:      l.ActorID,
		CreatedAt:    l.CreatedAt,
	}
}
