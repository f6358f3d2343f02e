package org

import (
	"context"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBranchRequest registers a branch in the hierarchy
type CreateBranchRequest struct {
	Code     string     `json:"code" binding:"required"`
	Name     string     `json:"name" binding:"required"`
	Type     string     `json:"type" binding:"required,oneof=OUTLET MAINTENANCE_CENTER ADMIN_UNIT"`
	ParentID *uuid.UUID `json:"parent_id"`
	Address  string     `json:"address"`
	Phone    string     `json:"phone"`
}

// UpdateBranchRequest updates branch display fields
type UpdateBranchRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// BranchResponse is the API representation of a branch
type BranchResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Address   string     `json:"address,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToBranchResponse converts a branch to its API representation
func ToBranchResponse(b *org.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID,
		Code:      b.Code,
		Name:      b.Name,
		Type:      b.Type.String(),
		ParentID:  b.ParentID,
		Address:   b.Address,
		Phone:     b.Phone,
		Active:    b.Active,
		CreatedAt: b.CreatedAt,
	}
}

// ScopeInvalidator drops cached scopes when the hierarchy changes
type ScopeInvalidator interface {
	InvalidateBranch(ctx context.Context, branchID uuid.UUID)
}

// BranchService manages the branch hierarchy. Structural changes are
// admin-only and invalidate the branch-scope cache.
type BranchService struct {
	branchRepo  org.BranchRepository
	invalidator ScopeInvalidator
	logger      *zap.Logger
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo org.BranchRepository) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		logger:     zap.NewNop(),
	}
}

// SetScopeInvalidator sets the branch-scope cache invalidator
func (s *BranchService) SetScopeInvalidator(inv ScopeInvalidator) {
	s.invalidator = inv
}

// SetLogger sets the service logger
func (s *BranchService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Create registers a branch. Admin only.
func (s *BranchService) Create(ctx context.Context, scope org.Scope, req CreateBranchRequest) (*BranchResponse, error) {
	if !scope.Unrestricted() {
		return nil, shared.ErrForbidden
	}
	if existing, err := s.branchRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Branch code already in use: "+req.Code)
	}
	if req.ParentID != nil {
		if _, err := s.branchRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	branch, err := org.NewBranch(req.Code, req.Name, org.BranchType(req.Type), req.ParentID)
	if err != nil {
		return nil, err
	}
	if req.Address != "" || req.Phone != "" {
		branch.SetContact(req.Address, req.Phone)
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		s.invalidate(ctx, *req.ParentID)
	}

	response := ToBranchResponse(branch)
	return &response, nil
}

// Update changes display fields on a branch. Admin only.
func (s *BranchService) Update(ctx context.Context, scope org.Scope, branchID uuid.UUID, req UpdateBranchRequest) (*BranchResponse, error) {
	if !scope.Unrestricted() {
		return nil, shared.ErrForbidden
	}
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		if err := branch.Rename(req.Name); err != nil {
			return nil, err
		}
	}
	if req.Address != "" || req.Phone != "" {
		branch.SetContact(req.Address, req.Phone)
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	s.invalidate(ctx, branchID)

	response := ToBranchResponse(branch)
	return &response, nil
}

// Deactivate marks a branch inactive. Admin only.
func (s *BranchService) Deactivate(ctx context.Context, scope org.Scope, branchID uuid.UUID) (*BranchResponse, error) {
	if !scope.Unrestricted() {
		return nil, shared.ErrForbidden
	}
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	branch.Deactivate()
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}
	s.invalidate(ctx, branchID)

	response := ToBranchResponse(branch)
	return &response, nil
}

// GetByID retrieves a branch
func (s *BranchService) GetByID(ctx context.Context, branchID uuid.UUID) (*BranchResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	response := ToBranchResponse(branch)
	return &response, nil
}

// List lists all branches
func (s *BranchService) List(ctx context.Context, filter shared.Filter) ([]BranchResponse, error) {
	branches, err := s.branchRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]BranchResponse, 0, len(branches))
	for i := range branches {
		responses = append(responses, ToBranchResponse(&branches[i]))
	}
	return responses, nil
}

// Children lists the direct children of a branch
func (s *BranchService) Children(ctx context.Context, branchID uuid.UUID) ([]BranchResponse, error) {
	branches, err := s.branchRepo.FindChildren(ctx, branchID)
	if err != nil {
		return nil, err
	}
	responses := make([]BranchResponse, 0, len(branches))
	for i := range branches {
		responses = append(responses, ToBranchResponse(&branches[i]))
	}
	return responses, nil
}

func (s *BranchService) invalidate(ctx context.Context, branchID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateBranch(ctx, branchID)
}
