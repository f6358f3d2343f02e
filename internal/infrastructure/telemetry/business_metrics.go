package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when business metrics are built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is required")

var centsFactor = decimal.NewFromInt(100)

// InventoryMetricsProvider supplies spare part stock levels for the
// periodic gauge collection, keeping the telemetry layer off the
// inventory domain.
type InventoryMetricsProvider interface {
	// GetLowStockCountByBranch returns, per branch, the number of parts at
	// or below their minimum stock threshold.
	GetLowStockCountByBranch(ctx context.Context) (map[uuid.UUID]int64, error)
}

// BusinessMetricsConfig configures NewBusinessMetrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	InventoryProvider InventoryMetricsProvider
}

// BusinessMetrics tracks the asset workflow: transfer orders, asset
// registrations, maintenance settlements, debt payments, and spare part
// stock health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	transferOrderTotal     *Counter
	assetRegisteredTotal   *Counter
	assignmentOpenedTotal  *Counter
	assignmentSettledTotal *Counter
	settledAmountTotal     *Counter
	debtPaymentTotal       *Counter
	debtPaymentAmountTotal *Counter

	inventoryLowStockCount *Gauge

	inventoryProvider InventoryMetricsProvider

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewBusinessMetrics registers the workflow instruments on cfg.Meter.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		inventoryProvider: cfg.InventoryProvider,
	}

	counters := []struct {
		dst  **Counter
		name string
		desc string
		unit string
	}{
		{&bm.transferOrderTotal, "assetflow_transfer_order_total", "Total number of transfer orders by purpose and status", "{orders}"},
		{&bm.assetRegisteredTotal, "assetflow_asset_registered_total", "Total number of assets registered", "{assets}"},
		{&bm.assignmentOpenedTotal, "assetflow_assignment_opened_total", "Total number of maintenance assignments opened", "{assignments}"},
		{&bm.assignmentSettledTotal, "assetflow_assignment_settled_total", "Total number of maintenance assignments settled", "{assignments}"},
		{&bm.settledAmountTotal, "assetflow_assignment_settled_amount_total", "Total billable settlement amount in cents", "{cents}"},
		{&bm.debtPaymentTotal, "assetflow_debt_payment_total", "Total number of branch debt payments recorded", "{payments}"},
		{&bm.debtPaymentAmountTotal, "assetflow_debt_payment_amount_total", "Total branch debt payment amount in cents", "{cents}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	gauge, err := NewGauge(cfg.Meter,
		"assetflow_inventory_low_stock_count",
		"Number of spare parts at or below minimum stock threshold",
		"{parts}")
	if err != nil {
		return nil, err
	}
	bm.inventoryLowStockCount = gauge

	return bm, nil
}

// RecordTransferOrder counts an order reaching a status. Called on creation
// and again when the order closes.
func (bm *BusinessMetrics) RecordTransferOrder(ctx context.Context, purpose, status string) {
	bm.transferOrderTotal.Inc(ctx,
		AttrTransferPurpose.String(purpose),
		AttrTransferStatus.String(status),
	)
}

// RecordAssetRegistered counts an asset registration.
func (bm *BusinessMetrics) RecordAssetRegistered(ctx context.Context, category string) {
	bm.assetRegisteredTotal.Inc(ctx, AttrAssetCategory.String(category))
}

// RecordAssignmentOpened counts a maintenance assignment being opened.
func (bm *BusinessMetrics) RecordAssignmentOpened(ctx context.Context) {
	bm.assignmentOpenedTotal.Inc(ctx)
}

// RecordAssignmentSettled counts a settled assignment and accumulates its
// billable amount in cents.
func (bm *BusinessMetrics) RecordAssignmentSettled(ctx context.Context, billable decimal.Decimal) {
	bm.assignmentSettledTotal.Inc(ctx)
	bm.settledAmountTotal.Add(ctx, billable.Mul(centsFactor).IntPart())
}

// RecordDebtPayment counts a branch debt payment and accumulates its amount
// in cents.
func (bm *BusinessMetrics) RecordDebtPayment(ctx context.Context, amount decimal.Decimal) {
	bm.debtPaymentTotal.Inc(ctx)
	bm.debtPaymentAmountTotal.Add(ctx, amount.Mul(centsFactor).IntPart())
}

// RecordLowStockCount sets the low stock gauge for one branch.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, branchID uuid.UUID, count int64) {
	bm.inventoryLowStockCount.Record(ctx, count, AttrBranchID.String(branchID.String()))
}

// StartPeriodicCollection launches the background gauge refresh. It returns
// immediately; Stop ends the loop. Subsequent calls are no-ops.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go bm.collectLoop(ctx, interval)
	})
}

func (bm *BusinessMetrics) collectLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectInventory(ctx)
	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectInventory(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectInventory(ctx context.Context) {
	if bm.inventoryProvider == nil {
		bm.logger.Debug("No inventory provider configured, skipping inventory metrics collection")
		return
	}
	lowStockByBranch, err := bm.inventoryProvider.GetLowStockCountByBranch(ctx)
	if err != nil {
		bm.logger.Error("Failed to collect low stock metrics", zap.Error(err))
		return
	}
	for branchID, count := range lowStockByBranch {
		bm.RecordLowStockCount(ctx, branchID, count)
	}
}

// Stop ends the periodic collection loop. Safe to call more than once.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}
