package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// GormTableRepository implements schema.TableRepository using GORM
type GormTableRepository struct {
	db *gorm.DB
}

// NewGormTableRepository creates a new GormTableRepository
func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

// Save creates or updates a table definition together with its columns
func (r *GormTableRepository) Save(ctx context.Context, table *schema.Table) error {
	var model models.TableModel
	model.FromDomain(table)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := model.Columns
		model.Columns = nil
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		for i := range columns {
			if err := tx.Save(&columns[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a table by ID within a tenant, loading its columns
func (r *GormTableRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Table, error) {
	var model models.TableModel
	if err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrTableNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a table by name within a logical database
func (r *GormTableRepository) FindByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, error) {
	var model models.TableModel
	if err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND database_id = ? AND name = ?", tenantID, databaseID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrTableNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForDatabase finds all tables in a logical database with columns
func (r *GormTableRepository) FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]schema.Table, error) {
	var tableModels []models.TableModel
	if err := r.db.WithContext(ctx).
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND database_id = ?", tenantID, databaseID).
		Order("name ASC").
		Find(&tableModels).Error; err != nil {
		return nil, err
	}
	tables := make([]schema.Table, len(tableModels))
	for i := range tableModels {
		tables[i] = *tableModels[i].ToDomain()
	}
	return tables, nil
}

// Delete deletes a table and, via cascade, its columns and rows
func (r *GormTableRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TableModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrTableNotFound
	}
	return nil
}

// SaveColumn creates or updates a single column definition
func (r *GormTableRepository) SaveColumn(ctx context.Context, column *schema.Column) error {
	var model models.ColumnModel
	model.FromDomain(column)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteColumn deletes a column after checking the table belongs to the
// tenant. Cell values for the column are removed with it.
func (r *GormTableRepository) DeleteColumn(ctx context.Context, tenantID, tableID, columnID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TableModel{}).
			Where("tenant_id = ? AND id = ?", tenantID, tableID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrTableNotFound
		}
		result := tx.Delete(&models.ColumnModel{}, "table_id = ? AND id = ?", tableID, columnID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrColumnNotFound
		}
		return tx.Delete(&models.CellModel{}, "column_id = ?", columnID).Error
	})
}

// Ensure GormTableRepository implements schema.TableRepository
var _ schema.TableRepository = (*GormTableRepository)(nil)
