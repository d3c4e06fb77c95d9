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

// GormDatabaseRepository implements schema.DatabaseRepository using GORM
type GormDatabaseRepository struct {
	db *gorm.DB
}

// NewGormDatabaseRepository creates a new GormDatabaseRepository
func NewGormDatabaseRepository(db *gorm.DB) *GormDatabaseRepository {
	return &GormDatabaseRepository{db: db}
}

// Save creates or updates a logical database
func (r *GormDatabaseRepository) Save(ctx context.Context, database *schema.Database) error {
	var model models.DatabaseModel
	model.FromDomain(database)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByID finds a logical database by ID within a tenant
func (r *GormDatabaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Database, error) {
	var model models.DatabaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all logical databases for a tenant
func (r *GormDatabaseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]schema.Database, error) {
	var databaseModels []models.DatabaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&databaseModels).Error; err != nil {
		return nil, err
	}
	databases := make([]schema.Database, len(databaseModels))
	for i := range databaseModels {
		databases[i] = *databaseModels[i].ToDomain()
	}
	return databases, nil
}

// Delete deletes a logical database within a tenant
func (r *GormDatabaseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DatabaseModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormDatabaseRepository implements schema.DatabaseRepository
var _ schema.DatabaseRepository = (*GormDatabaseRepository)(nil)
