package org

import (
	"context"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxHierarchyDepth bounds the descendant walk so a corrupted parent link
// cannot loop forever.
const maxHierarchyDepth = 10

// HierarchyScopeResolver resolves an actor's authorization scope from the
// branch hierarchy. Managers are authorized for their own branch and every
// descendant; other roles operate on the own branch only. Global roles skip
// the walk entirely.
type HierarchyScopeResolver struct {
	branchRepo org.BranchRepository
}

// NewHierarchyScopeResolver creates a new HierarchyScopeResolver
func NewHierarchyScopeResolver(branchRepo org.BranchRepository) *HierarchyScopeResolver {
	return &HierarchyScopeResolver{branchRepo: branchRepo}
}

// Resolve builds the authorization scope for the given actor claims
func (r *HierarchyScopeResolver) Resolve(ctx context.Context, userID, branchID uuid.UUID, role org.Role) (org.Scope, error) {
	if !role.IsValid() {
		return org.Scope{}, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}

	scope := org.Scope{
		UserID:   userID,
		BranchID: branchID,
		Role:     role,
	}
	if role.IsGlobal() {
		return scope, nil
	}

	if _, err := r.branchRepo.FindByID(ctx, branchID); err != nil {
		return org.Scope{}, err
	}

	if role == org.RoleBranchManager {
		descendants, err := r.collectDescendants(ctx, branchID)
		if err != nil {
			return org.Scope{}, err
		}
		scope.AuthorizedBranches = descendants
	}

	return scope, nil
}

// collectDescendants walks the hierarchy breadth-first from the given branch
func (r *HierarchyScopeResolver) collectDescendants(ctx context.Context, branchID uuid.UUID) ([]uuid.UUID, error) {
	var descendants []uuid.UUID
	frontier := []uuid.UUID{branchID}

	for depth := 0; depth < maxHierarchyDepth && len(frontier) > 0; depth++ {
		var next []uuid.UUID
		for _, id := range frontier {
			children, err := r.branchRepo.FindChildren(ctx, id)
			if err != nil {
				return nil, err
			}
			for i := range children {
				descendants = append(descendants, children[i].ID)
				next = append(next, children[i].ID)
			}
		}
		frontier = next
	}

	return descendants, nil
}

var _ org.ScopeResolver = (*HierarchyScopeResolver)(nil)
