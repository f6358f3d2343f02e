package org

import (
	"time"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchType classifies a node in the organizational hierarchy
type BranchType string

const (
	BranchTypeOutlet            BranchType = "OUTLET"             // ordinary outlet owning assets and customers
	BranchTypeMaintenanceCenter BranchType = "MAINTENANCE_CENTER" // centralized repair facility
	BranchTypeAdminUnit         BranchType = "ADMIN_UNIT"         // administrative unit, no day-to-day stock
)

// IsValid checks if the branch type is valid
func (t BranchType) IsValid() bool {
	switch t {
	case BranchTypeOutlet, BranchTypeMaintenanceCenter, BranchTypeAdminUnit:
		return true
	}
	return false
}

// String returns the string representation of BranchType
func (t BranchType) String() string {
	return string(t)
}

// CanReceiveMaintenance returns true if the branch may act as the destination
// of a maintenance shipment
func (t BranchType) CanReceiveMaintenance() bool {
	return t == BranchTypeMaintenanceCenter
}

// Branch is an organizational node owning assets, inventory and staff.
// An optional parent reference forms the support hierarchy used for
// branch scoping.
type Branch struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Type     BranchType
	ParentID *uuid.UUID
	Address  string
	Phone    string
	Active   bool
}

// NewBranch creates a new branch
func NewBranch(code, name string, branchType BranchType, parentID *uuid.UUID) (*Branch, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_CODE", "Branch code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	if !branchType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BRANCH_TYPE", "Branch type is not valid")
	}

	return &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              branchType,
		ParentID:          parentID,
		Active:            true,
	}, nil
}

// Rename updates the branch display name
func (b *Branch) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	return nil
}

// SetContact updates contact details
func (b *Branch) SetContact(address, phone string) {
	b.Address = address
	b.Phone = phone
	b.UpdatedAt = time.Now()
}

// Deactivate marks the branch inactive; inactive branches cannot be a
// party to new transfer orders
func (b *Branch) Deactivate() {
	b.Active = false
	b.UpdatedAt = time.Now()
}

// Activate re-activates the branch
func (b *Branch) Activate() {
	b.Active = true
	b.UpdatedAt = time.Now()
}

// IsCenter returns true if the branch is a maintenance center
func (b *Branch) IsCenter() bool {
	return b.Type == BranchTypeMaintenanceCenter
}
