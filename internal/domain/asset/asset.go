package asset

import (
	"fmt"
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AssetCategory is the explicit business classification of an asset.
// It is set once at creation and never re-derived from names.
type AssetCategory string

const (
	CategoryPOSMachine AssetCategory = "POS_MACHINE"
	CategorySIMCard    AssetCategory = "SIM_CARD"
)

// IsValid checks if the category is valid
func (c AssetCategory) IsValid() bool {
	return c == CategoryPOSMachine || c == CategorySIMCard
}

// String returns the string representation of AssetCategory
func (c AssetCategory) String() string {
	return string(c)
}

// AssetStatus represents the lifecycle status of an asset
type AssetStatus string

const (
	// Warehouse / customer lifecycle
	StatusNew      AssetStatus = "NEW"
	StatusSold     AssetStatus = "SOLD"
	StatusScrapped AssetStatus = "SCRAPPED"

	// Maintenance cycle
	StatusInTransit        AssetStatus = "IN_TRANSIT"
	StatusReceivedAtCenter AssetStatus = "RECEIVED_AT_CENTER"
	StatusAssigned         AssetStatus = "ASSIGNED"
	StatusUnderInspection  AssetStatus = "UNDER_INSPECTION"
	StatusAwaitingApproval AssetStatus = "AWAITING_APPROVAL"
	StatusInProgress       AssetStatus = "IN_PROGRESS"
	StatusReadyForReturn   AssetStatus = "READY_FOR_RETURN"
	StatusReturning        AssetStatus = "RETURNING"
	StatusCompleted        AssetStatus = "COMPLETED"
)

// IsValid checks if the status is a valid AssetStatus
func (s AssetStatus) IsValid() bool {
	switch s {
	case StatusNew, StatusSold, StatusScrapped,
		StatusInTransit, StatusReceivedAtCenter, StatusAssigned,
		StatusUnderInspection, StatusAwaitingApproval, StatusInProgress,
		StatusReadyForReturn, StatusReturning, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of AssetStatus
func (s AssetStatus) String() string {
	return string(s)
}

// IsPreCenter returns true for statuses an asset holds before entering a
// maintenance cycle. Only these may begin transit outside the declared
// transition table.
func (s AssetStatus) IsPreCenter() bool {
	return s == StatusNew || s == StatusCompleted
}

// CanTransitionTo checks if the status can transition to the target status
// within the declared repair cycle table. The two sanctioned bypasses
// (BeginTransit and ForceIntake) are deliberately NOT part of this table;
// they exist as named operations on the Asset so the bypass stays auditable.
func (s AssetStatus) CanTransitionTo(target AssetStatus) bool {
	switch s {
	case StatusInTransit:
		return target == StatusReceivedAtCenter
	case StatusReceivedAtCenter:
		return target == StatusUnderInspection || target == StatusAssigned
	case StatusAssigned:
		return target == StatusInProgress || target == StatusUnderInspection
	case StatusUnderInspection:
		return target == StatusAwaitingApproval || target == StatusInProgress ||
			target == StatusReadyForReturn || target == StatusAssigned
	case StatusAwaitingApproval:
		return target == StatusInProgress || target == StatusReadyForReturn
	case StatusInProgress:
		return target == StatusReadyForReturn
	case StatusReadyForReturn:
		return target == StatusReturning
	case StatusReturning:
		return target == StatusCompleted
	}
	return false
}

// Resolution tags how a maintenance cycle ended for an asset
type Resolution string

const (
	ResolutionRepaired       Resolution = "REPAIRED"
	ResolutionScrapped       Resolution = "SCRAPPED"
	ResolutionRejectedRepair Resolution = "REJECTED_REPAIR"
)

// IsValid checks if the resolution is valid
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionRepaired, ResolutionScrapped, ResolutionRejectedRepair:
		return true
	}
	return false
}

// String returns the string representation of Resolution
func (r Resolution) String() string {
	return string(r)
}

// Asset is a serialized machine or SIM card tracked through warehouse,
// transfer and maintenance lifecycles. The serial number is externally
// unique; rows are never deleted, only marked SOLD or SCRAPPED.
type Asset struct {
	shared.AuditedAggregateRoot
	SerialNumber string
	Category     AssetCategory
	Model        string
	Vendor       string
	BranchID     uuid.UUID
	Status       AssetStatus
	// OriginBranchID is the home branch owed a return. It is stamped on
	// maintenance intake and preserved until final return confirmation.
	OriginBranchID *uuid.UUID
	// ActiveAssignmentID links the single non-terminal service assignment.
	ActiveAssignmentID *uuid.UUID
	Resolution         *Resolution
}

// NewAsset creates a new asset in a branch's warehouse
func NewAsset(serialNumber string, category AssetCategory, model, vendor string, branchID uuid.UUID) (*Asset, error) {
	if serialNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Asset category is not valid")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}

	a := &Asset{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(),
		SerialNumber:         serialNumber,
		Category:             category,
		Model:                model,
		Vendor:               vendor,
		BranchID:             branchID,
		Status:               StatusNew,
	}
	a.AddDomainEvent(NewAssetCreatedEvent(a))
	return a, nil
}

// TransitionTo moves the asset along the declared repair cycle table.
// Entering READY_FOR_RETURN requires a resolution tag.
func (a *Asset) TransitionTo(target AssetStatus, resolution *Resolution) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown status %q", target))
	}
	if !a.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s cannot transition from %s to %s", a.SerialNumber, a.Status, target))
	}
	if target == StatusReadyForReturn {
		if resolution == nil || !resolution.IsValid() {
			return shared.NewDomainError("RESOLUTION_REQUIRED",
				"Entering READY_FOR_RETURN requires a resolution of REPAIRED, SCRAPPED or REJECTED_REPAIR")
		}
		a.Resolution = resolution
	}

	from := a.Status
	a.Status = target
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, target, a.Resolution))
	return nil
}

// BeginTransit places a pre-center asset into transit. This is the first of
// the two sanctioned bypasses of the transition table: a small legacy set of
// pre-center statuses may enter IN_TRANSIT directly.
func (a *Asset) BeginTransit() error {
	if !a.Status.IsPreCenter() {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s cannot begin transit from status %s", a.SerialNumber, a.Status))
	}
	from := a.Status
	a.Status = StatusInTransit
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusInTransit, nil))
	return nil
}

// ForceIntake moves the asset into RECEIVED_AT_CENTER from any status and
// stamps the origin branch if not yet recorded. This is the second sanctioned
// bypass: the cycle's re-entry point accepts every status. It exists as a
// dedicated operation so the override is explicit in call sites and audit.
func (a *Asset) ForceIntake(centerBranchID uuid.UUID) error {
	if centerBranchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Center branch ID cannot be empty")
	}
	from := a.Status
	if a.OriginBranchID == nil {
		origin := a.BranchID
		a.OriginBranchID = &origin
	}
	a.BranchID = centerBranchID
	a.Status = StatusReceivedAtCenter
	a.Resolution = nil
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusReceivedAtCenter, nil))
	return nil
}

// StampOrigin records the home branch owed a return. A stamped origin is
// preserved until ConfirmReturned.
func (a *Asset) StampOrigin(branchID uuid.UUID) {
	if a.OriginBranchID == nil {
		a.OriginBranchID = &branchID
		a.touch()
	}
}

// TransferOwnership moves the asset to a new owning branch
func (a *Asset) TransferOwnership(branchID uuid.UUID) error {
	if branchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	a.BranchID = branchID
	a.touch()
	return nil
}

// ConfirmReturned closes a return cycle: the asset is COMPLETED at its
// origin branch and the origin stamp is released.
func (a *Asset) ConfirmReturned() error {
	if a.Status != StatusReturning {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s is not returning (status %s)", a.SerialNumber, a.Status))
	}
	if a.OriginBranchID != nil {
		a.BranchID = *a.OriginBranchID
	}
	from := a.Status
	a.Status = StatusCompleted
	a.OriginBranchID = nil
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusCompleted, a.Resolution))
	return nil
}

// ConfirmStockArrival lands a stock transfer: the asset becomes NEW stock
// at the receiving branch.
func (a *Asset) ConfirmStockArrival(branchID uuid.UUID) error {
	if a.Status != StatusInTransit {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s is not in transit (status %s)", a.SerialNumber, a.Status))
	}
	if branchID == uuid.Nil {
		return shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	from := a.Status
	a.BranchID = branchID
	a.Status = StatusNew
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusNew, nil))
	return nil
}

// AbortTransit rolls back a rejected or cancelled outbound transfer. The
// asset stays at its current branch and returns to NEW.
func (a *Asset) AbortTransit() error {
	if a.Status != StatusInTransit {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s is not in transit (status %s)", a.SerialNumber, a.Status))
	}
	from := a.Status
	a.Status = StatusNew
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusNew, nil))
	return nil
}

// AbortReturn rolls back a rejected or cancelled return transfer. The asset
// goes back to READY_FOR_RETURN at the center; the stamped resolution is kept.
func (a *Asset) AbortReturn() error {
	if a.Status != StatusReturning {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s is not returning (status %s)", a.SerialNumber, a.Status))
	}
	from := a.Status
	a.Status = StatusReadyForReturn
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusReadyForReturn, a.Resolution))
	return nil
}

// AttachAssignment links a service assignment. An asset has at most one
// non-terminal assignment at any time.
func (a *Asset) AttachAssignment(assignmentID uuid.UUID) error {
	if a.ActiveAssignmentID != nil {
		return shared.NewDomainError("DUPLICATE_ASSIGNMENT",
			fmt.Sprintf("Asset %s already has an active service assignment", a.SerialNumber))
	}
	a.ActiveAssignmentID = &assignmentID
	a.touch()
	return nil
}

// DetachAssignment clears the active assignment link
func (a *Asset) DetachAssignment() {
	a.ActiveAssignmentID = nil
	a.touch()
}

// MarkSold logically destroys the asset as sold
func (a *Asset) MarkSold() error {
	if a.Status != StatusNew && a.Status != StatusCompleted {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s cannot be sold from status %s", a.SerialNumber, a.Status))
	}
	from := a.Status
	a.Status = StatusSold
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusSold, nil))
	return nil
}

// MarkScrapped logically destroys the asset as scrapped
func (a *Asset) MarkScrapped() error {
	if a.Status == StatusSold || a.Status == StatusScrapped {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Asset %s is already retired (status %s)", a.SerialNumber, a.Status))
	}
	from := a.Status
	a.Status = StatusScrapped
	a.touch()
	a.AddDomainEvent(NewAssetTransitionedEvent(a, from, StatusScrapped, nil))
	return nil
}

// AvailableForTransfer returns true if the asset can be placed on a new
// transfer order from its current status
func (a *Asset) AvailableForTransfer() bool {
	return a.Status.IsPreCenter() || a.Status == StatusReadyForReturn
}

func (a *Asset) touch() {
	a.UpdatedAt = time.Now()
}
