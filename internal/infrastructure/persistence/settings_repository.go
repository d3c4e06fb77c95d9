package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/tenant"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// GormSettingsRepository implements tenant.SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Save creates or updates tenant settings
func (r *GormSettingsRepository) Save(ctx context.Context, settings *tenant.Settings) error {
	var model models.SettingsModel
	model.FromDomain(settings)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindByTenant finds the settings row for a tenant
func (r *GormSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*tenant.Settings, error) {
	var model models.SettingsModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSettingsRepository implements tenant.SettingsRepository
var _ tenant.SettingsRepository = (*GormSettingsRepository)(nil)
