// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the service. It tracks
// invoice issuance, e-invoice submissions, PDF rendering and the size
// of each tenant's grid schema.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	invoiceCreatedTotal     *Counter
	invoiceAmountTotal      *Counter
	einvoiceSubmissionTotal *Counter
	pdfRenderTotal          *Counter

	// Gauge metrics (point-in-time values)
	gridTableCount *Gauge
	gridRowCount   *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	schemaProvider SchemaMetricsProvider
}

// SchemaMetricsProvider provides grid schema data for periodic metrics
// collection. The interface keeps the telemetry layer from depending on
// the schema domain directly.
type SchemaMetricsProvider interface {
	// GetTableCount returns the number of user tables for a tenant
	GetTableCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetRowCountByDatabase returns total row counts per database for a tenant
	GetRowCountByDatabase(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	SchemaProvider  SchemaMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		schemaProvider: cfg.SchemaProvider,
	}

	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&bm.invoiceCreatedTotal, "gridbase_invoice_created_total", "Total number of invoices created", "{invoices}"},
		{&bm.invoiceAmountTotal, "gridbase_invoice_amount_total", "Total invoiced amount in minor currency units", "{bani}"},
		{&bm.einvoiceSubmissionTotal, "gridbase_einvoice_submission_total", "Total number of e-invoice submissions", "{submissions}"},
		{&bm.pdfRenderTotal, "gridbase_invoice_pdf_render_total", "Total number of invoice PDF renders", "{documents}"},
	}
	for _, c := range counters {
		inst, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = inst
	}

	gauges := []struct {
		dst              **Gauge
		name, desc, unit string
	}{
		{&bm.gridTableCount, "gridbase_grid_table_count", "Number of user tables per tenant", "{tables}"},
		{&bm.gridRowCount, "gridbase_grid_row_count", "Number of rows per database", "{rows}"},
	}
	for _, g := range gauges {
		inst, err := NewGauge(cfg.Meter, g.name, g.desc, g.unit)
		if err != nil {
			return nil, err
		}
		*g.dst = inst
	}

	return bm, nil
}

// =============================================================================
// Invoice Metrics
// =============================================================================

// RecordInvoiceCreated records an invoice creation event. Called from
// the application layer after the creation transaction commits.
func (bm *BusinessMetrics) RecordInvoiceCreated(ctx context.Context, tenantID uuid.UUID, series, currency string) {
	bm.invoiceCreatedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrInvoiceSeries.String(series),
		AttrCurrency.String(currency),
	)
}

// RecordInvoiceAmount records the grand total of a created invoice.
// Amount should be in the base currency's major unit.
func (bm *BusinessMetrics) RecordInvoiceAmount(ctx context.Context, tenantID uuid.UUID, currency string, amount decimal.Decimal) {
	minor := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.invoiceAmountTotal.Add(ctx, minor,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordEInvoiceSubmission records an e-invoice upload outcome
func (bm *BusinessMetrics) RecordEInvoiceSubmission(ctx context.Context, tenantID uuid.UUID, status string) {
	bm.einvoiceSubmissionTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrSubmissionStatus.String(status),
	)
}

// RecordPDFRender records one invoice PDF render
func (bm *BusinessMetrics) RecordPDFRender(ctx context.Context, tenantID uuid.UUID) {
	bm.pdfRenderTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Schema Metrics
// =============================================================================

// RecordTableCount records the number of tables for a tenant.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordTableCount(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.gridTableCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordRowCount records the current row count for a database.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordRowCount(ctx context.Context, tenantID, databaseID uuid.UUID, count int64) {
	bm.gridRowCount.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
		AttrDatabaseID.String(databaseID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects schema size metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectSchemaMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectSchemaMetrics(ctx, tenantProvider)
		}
	}
}

// collectSchemaMetrics collects schema gauge metrics for all tenants.
func (bm *BusinessMetrics) collectSchemaMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.schemaProvider == nil {
		bm.logger.Debug("No schema provider configured, skipping schema metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantSchemaMetrics(ctx, tenantID)
	}
}

func (bm *BusinessMetrics) collectTenantSchemaMetrics(ctx context.Context, tenantID uuid.UUID) {
	tableCount, err := bm.schemaProvider.GetTableCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get table count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordTableCount(ctx, tenantID, tableCount)
	}

	rowsByDatabase, err := bm.schemaProvider.GetRowCountByDatabase(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get row counts for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		for databaseID, count := range rowsByDatabase {
			bm.RecordRowCount(ctx, tenantID, databaseID, count)
		}
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
