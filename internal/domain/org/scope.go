package org

import (
	"context"

	"github.com/google/uuid"
)

// Role is the authorization role of an actor
type Role string

const (
	RoleBranchStaff   Role = "BRANCH_STAFF"   // operates within the own branch only
	RoleBranchManager Role = "BRANCH_MANAGER" // own branch plus authorized children
	RoleTechnician    Role = "TECHNICIAN"     // maintenance center staff
	RoleAdmin         Role = "ADMIN"          // global, unrestricted
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleBranchStaff, RoleBranchManager, RoleTechnician, RoleAdmin:
		return true
	}
	return false
}

// IsGlobal returns true for roles that bypass branch scoping
func (r Role) IsGlobal() bool {
	return r == RoleAdmin
}

// Scope is the resolved authorization scope of an actor: the own branch,
// the authorized child branches, and the role. A global role yields an
// unrestricted scope.
type Scope struct {
	UserID             uuid.UUID
	BranchID           uuid.UUID
	AuthorizedBranches []uuid.UUID
	Role               Role
}

// Unrestricted returns true if the scope bypasses branch filtering.
// Callers that rely on this bypass must log the override explicitly.
func (s Scope) Unrestricted() bool {
	return s.Role.IsGlobal()
}

// Covers reports whether the scope authorizes operations on the given branch
func (s Scope) Covers(branchID uuid.UUID) bool {
	if s.Unrestricted() {
		return true
	}
	if s.BranchID == branchID {
		return true
	}
	for _, id := range s.AuthorizedBranches {
		if id == branchID {
			return true
		}
	}
	return false
}

// ScopeResolver resolves an actor into an authorization scope.
// Implementations combine the actor's claims with the branch hierarchy.
type ScopeResolver interface {
	Resolve(ctx context.Context, userID, branchID uuid.UUID, role Role) (Scope, error)
}
