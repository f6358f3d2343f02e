package asset

import (
	"context"
	"errors"

	"github.com/assetflow/backend/internal/domain/asset"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetService manages asset registration, bulk import, retirement and the
// movement history. Lifecycle transitions belong to the transfer and
// maintenance services.
type AssetService struct {
	assetRepo       asset.AssetRepository
	logRepo         asset.MovementLogRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewAssetService creates a new AssetService
func NewAssetService(assetRepo asset.AssetRepository, logRepo asset.MovementLogRepository) *AssetService {
	return &AssetService{
		assetRepo: assetRepo,
		logRepo:   logRepo,
		logger:    zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AssetService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *AssetService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *AssetService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Register creates one asset at the given branch
func (s *AssetService) Register(ctx context.Context, scope org.Scope, branchID uuid.UUID, req RegisterAssetRequest) (*AssetResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	exists, err := s.assetRepo.ExistsBySerial(ctx, req.SerialNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Serial number already registered: "+req.SerialNumber)
	}

	a, err := asset.NewAsset(req.SerialNumber, asset.AssetCategory(req.Category), req.Model, req.Vendor, branchID)
	if err != nil {
		return nil, err
	}
	a.SetCreatedBy(scope.UserID)
	if err := s.assetRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, a.GetDomainEvents())
	a.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordAssetRegistered(ctx, req.Category)
	}

	response := ToAssetResponse(a)
	return &response, nil
}

// Import registers a batch of assets. Each row is validated independently:
// valid rows import, failed rows are reported with their row number. A batch
// never fails as a whole.
func (s *AssetService) Import(ctx context.Context, scope org.Scope, req ImportAssetsRequest) (*ImportResultResponse, error) {
	if !scope.Covers(req.BranchID) {
		return nil, shared.ErrOutOfScope
	}

	result := &ImportResultResponse{}
	seen := make(map[string]bool, len(req.Rows))
	for i, row := range req.Rows {
		if seen[row.SerialNumber] {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Row: i + 1, SerialNumber: row.SerialNumber,
				Code: "DUPLICATE_SERIAL", Message: "Serial number repeated in batch",
			})
			continue
		}
		seen[row.SerialNumber] = true

		if _, err := s.Register(ctx, scope, req.BranchID, row); err != nil {
			result.Failed++
			rowErr := ImportRowError{Row: i + 1, SerialNumber: row.SerialNumber, Message: err.Error()}
			var domainErr *shared.DomainError
			if errors.As(err, &domainErr) {
				rowErr.Code = domainErr.Code
			}
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		result.Imported++
	}

	s.logger.Info("asset import finished",
		zap.String("branch_id", req.BranchID.String()),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed))
	return result, nil
}

// GetBySerial retrieves an asset visible to the caller's scope
func (s *AssetService) GetBySerial(ctx context.Context, scope org.Scope, serialNumber string) (*AssetResponse, error) {
	a, err := s.assetRepo.FindBySerial(ctx, serialNumber)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(a.BranchID) && (a.OriginBranchID == nil || !scope.Covers(*a.OriginBranchID)) {
		return nil, shared.ErrOutOfScope
	}
	response := ToAssetResponse(a)
	return &response, nil
}

// ListByBranch lists a branch's assets
func (s *AssetService) ListByBranch(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter shared.Filter) ([]AssetResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	assets, err := s.assetRepo.FindByBranch(ctx, branchID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]AssetResponse, 0, len(assets))
	for i := range assets {
		responses = append(responses, ToAssetResponse(&assets[i]))
	}
	return responses, nil
}

// History returns the audit trail for a serial
func (s *AssetService) History(ctx context.Context, scope org.Scope, serialNumber string, filter shared.Filter) ([]MovementLogResponse, error) {
	a, err := s.assetRepo.FindBySerial(ctx, serialNumber)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(a.BranchID) && (a.OriginBranchID == nil || !scope.Covers(*a.OriginBranchID)) {
		return nil, shared.ErrOutOfScope
	}

	logs, err := s.logRepo.FindBySerial(ctx, serialNumber, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]MovementLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, ToMovementLogResponse(&logs[i]))
	}
	return responses, nil
}

// MarkSold retires an asset as sold to a customer
func (s *AssetService) MarkSold(ctx context.Context, scope org.Scope, serialNumber string) (*AssetResponse, error) {
	return s.retire(ctx, scope, serialNumber, (*asset.Asset).MarkSold)
}

// MarkScrapped retires an asset as scrapped
func (s *AssetService) MarkScrapped(ctx context.Context, scope org.Scope, serialNumber string) (*AssetResponse, error) {
	return s.retire(ctx, scope, serialNumber, (*asset.Asset).MarkScrapped)
}

func (s *AssetService) retire(ctx context.Context, scope org.Scope, serialNumber string, op func(*asset.Asset) error) (*AssetResponse, error) {
	a, err := s.assetRepo.FindBySerial(ctx, serialNumber)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(a.BranchID) {
		return nil, shared.ErrOutOfScope
	}
	from := a.Status
	if err := op(a); err != nil {
		return nil, err
	}
	if err := s.assetRepo.SaveWithLock(ctx, a); err != nil {
		return nil, err
	}
	log := asset.NewMovementLog(a, from, a.Status, "", nil, &scope.UserID)
	if err := s.logRepo.Append(ctx, log); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, a.GetDomainEvents())
	a.ClearDomainEvents()

	response := ToAssetResponse(a)
	return &response, nil
}

func (s *AssetService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range events {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
}
