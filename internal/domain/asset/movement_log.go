package asset

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LogPayload carries free-form structured context for a movement log row
type LogPayload map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (p LogPayload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *LogPayload) Scan(value interface{}) error {
	if value == nil {
		*p = LogPayload{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LogPayload: unsupported type")
	}
	if len(bytes) == 0 {
		*p = LogPayload{}
		return nil
	}
	return json.Unmarshal(bytes, p)
}

// MovementLog is one append-only audit entry for an asset lifecycle event.
// Rows are never updated or deleted.
type MovementLog struct {
	shared.BaseEntity
	AssetID      uuid.UUID
	SerialNumber string
	BranchID     uuid.UUID
	FromStatus   AssetStatus
	ToStatus     AssetStatus
	Resolution   *Resolution
	Notes        string
	Payload      LogPayload
	ActorID      *uuid.UUID
}

// NewMovementLog creates a new movement log entry for an asset transition
func NewMovementLog(a *Asset, from, to AssetStatus, notes string, payload LogPayload, actorID *uuid.UUID) *MovementLog {
	return &MovementLog{
		BaseEntity:   shared.NewBaseEntity(),
		AssetID:      a.ID,
		SerialNumber: a.SerialNumber,
		BranchID:     a.BranchID,
		FromStatus:   from,
		ToStatus:     to,
		Resolution:   a.Resolution,
		Notes:        notes,
		Payload:      payload,
		ActorID:      actorID,
	}
}
