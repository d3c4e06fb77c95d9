// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSchemaMetricsProvider implements SchemaMetricsProvider using GORM.
// It queries the grid metadata tables directly for aggregated metrics.
type GormSchemaMetricsProvider struct {
	db *gorm.DB
}

// NewGormSchemaMetricsProvider creates a new GormSchemaMetricsProvider.
func NewGormSchemaMetricsProvider(db *gorm.DB) *GormSchemaMetricsProvider {
	return &GormSchemaMetricsProvider{db: db}
}

// GetTableCount returns the number of user tables for a tenant.
func (p *GormSchemaMetricsProvider) GetTableCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("grid_tables").
		Where("tenant_id = ?", tenantID).
		Count(&count).Error

	return count, err
}

// GetRowCountByDatabase returns total row counts per database for a tenant.
func (p *GormSchemaMetricsProvider) GetRowCountByDatabase(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID]int64, error) {
	type result struct {
		DatabaseID uuid.UUID `gorm:"column:database_id"`
		RowCount   int64     `gorm:"column:row_count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("grid_rows").
		Select("grid_tables.database_id, COUNT(grid_rows.id) as row_count").
		Joins("JOIN grid_tables ON grid_tables.id = grid_rows.table_id").
		Where("grid_tables.tenant_id = ?", tenantID).
		Group("grid_tables.database_id").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[uuid.UUID]int64, len(results))
	for _, r := range results {
		m[r.DatabaseID] = r.RowCount
	}

	return m, nil
}

// GormTenantProvider implements TenantProvider using GORM. Tenants are
// anything with a settings row; tenants that never touched settings
// are picked up once they do.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all known tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenant_settings").
		Select("tenant_id").
		Find(&ids).Error

	return ids, err
}
