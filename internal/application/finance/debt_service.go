package finance

import (
	"context"

	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DebtService manages the settlement side of the inter-branch debt ledger.
// Debts are created by repair settlement, never through this service.
type DebtService struct {
	debtRepo        finance.BranchDebtRepository
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewDebtService creates a new DebtService
func NewDebtService(debtRepo finance.BranchDebtRepository) *DebtService {
	return &DebtService{
		debtRepo: debtRepo,
		logger:   zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *DebtService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *DebtService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetLogger sets the service logger
func (s *DebtService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// RecordPayment applies a payment against a debt. Only the debtor branch or
// an admin may pay; overpayment is rejected in the aggregate.
func (s *DebtService) RecordPayment(ctx context.Context, scope org.Scope, debtID uuid.UUID, req RecordPaymentRequest) (*DebtResponse, error) {
	debt, err := s.debtRepo.FindByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(debt.DebtorBranchID) {
		return nil, shared.ErrOutOfScope
	}
	if scope.Unrestricted() && scope.BranchID != debt.DebtorBranchID {
		s.logger.Info("admin scope override",
			zap.String("operation", "debt.record_payment"),
			zap.String("user_id", scope.UserID.String()),
			zap.String("debt_number", debt.DebtNumber))
	}

	if err := debt.RecordPayment(req.Amount, req.ReceiptReference, scope.UserID, req.Notes); err != nil {
		return nil, err
	}
	if err := s.debtRepo.SaveWithLock(ctx, debt); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, debt.GetDomainEvents())
	debt.ClearDomainEvents()
	if s.businessMetrics != nil {
		s.businessMetrics.RecordDebtPayment(ctx, req.Amount)
	}

	response := ToDebtResponse(debt)
	return &response, nil
}

// GetByID retrieves a debt visible to the caller's scope
func (s *DebtService) GetByID(ctx context.Context, scope org.Scope, debtID uuid.UUID) (*DebtResponse, error) {
	debt, err := s.debtRepo.FindByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if !scope.Covers(debt.DebtorBranchID) && !scope.Covers(debt.CreditorBranchID) {
		return nil, shared.ErrOutOfScope
	}
	response := ToDebtResponse(debt)
	return &response, nil
}

// ListOwedBy lists debts the branch owes other branches
func (s *DebtService) ListOwedBy(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter DebtListFilter) ([]DebtResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	return s.list(ctx, branchID, filter, s.debtRepo.FindByDebtor)
}

// ListOwedTo lists debts other branches owe this branch
func (s *DebtService) ListOwedTo(ctx context.Context, scope org.Scope, branchID uuid.UUID, filter DebtListFilter) ([]DebtResponse, error) {
	if !scope.Covers(branchID) {
		return nil, shared.ErrOutOfScope
	}
	return s.list(ctx, branchID, filter, s.debtRepo.FindByCreditor)
}

func (s *DebtService) list(ctx context.Context, branchID uuid.UUID, filter DebtListFilter,
	find func(context.Context, uuid.UUID, shared.Filter) ([]*finance.BranchDebt, error)) ([]DebtResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	debts, err := find(ctx, branchID, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]DebtResponse, 0, len(debts))
	for _, d := range debts {
		responses = append(responses, ToDebtResponse(d))
	}
	return responses, nil
}

func (s *DebtService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
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
