package org

import (
	"context"

	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchRepository provides access to Branch aggregates
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	FindByCode(ctx context.Context, code string) (*Branch, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Branch, error)
	// FindChildren returns the direct children of a branch in the
	// support hierarchy.
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]Branch, error)
	Save(ctx context.Context, branch *Branch) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
