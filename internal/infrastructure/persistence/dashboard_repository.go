package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/dashboard"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// DashboardSortFields contains allowed sort fields for dashboards
var DashboardSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// GormDashboardRepository implements dashboard.Repository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// Save creates or updates a dashboard together with its widgets
func (r *GormDashboardRepository) Save(ctx context.Context, d *dashboard.Dashboard) error {
	var model models.DashboardModel
	model.FromDomain(d)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		widgets := model.Widgets
		model.Widgets = nil
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		for i := range widgets {
			if err := tx.Save(&widgets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a dashboard by ID within a tenant, loading widgets
func (r *GormDashboardRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*dashboard.Dashboard, error) {
	var model models.DashboardModel
	if err := r.db.WithContext(ctx).
		Preload("Widgets", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds dashboards for a tenant matching the filter
func (r *GormDashboardRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[dashboard.Dashboard], error) {
	var total int64
	if err := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.DashboardModel{}).Where("tenant_id = ?", tenantID),
		filter,
	).Count(&total).Error; err != nil {
		return shared.Paginated[dashboard.Dashboard]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, DashboardSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var dashboardModels []models.DashboardModel
	if err := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.DashboardModel{}).Where("tenant_id = ?", tenantID),
		filter,
	).
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dashboardModels).Error; err != nil {
		return shared.Paginated[dashboard.Dashboard]{}, err
	}

	dashboards := make([]dashboard.Dashboard, len(dashboardModels))
	for i := range dashboardModels {
		dashboards[i] = *dashboardModels[i].ToDomain()
	}
	return shared.NewPaginated(dashboards, total, page, pageSize), nil
}

func (r *GormDashboardRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if databaseID, ok := filter.Filters["database_id"]; ok {
		query = query.Where("database_id = ?", databaseID)
	}
	return query
}

// Delete deletes a dashboard and, via cascade, its widgets
func (r *GormDashboardRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DashboardModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveWidget creates or updates a single widget
func (r *GormDashboardRepository) SaveWidget(ctx context.Context, w *dashboard.Widget) error {
	var model models.WidgetModel
	model.FromDomain(w)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteWidget deletes a widget from a dashboard
func (r *GormDashboardRepository) DeleteWidget(ctx context.Context, dashboardID, widgetID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.WidgetModel{}, "dashboard_id = ? AND id = ?", dashboardID, widgetID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormDashboardRepository implements dashboard.Repository
var _ dashboard.Repository = (*GormDashboardRepository)(nil)
