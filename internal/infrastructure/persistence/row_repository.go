package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence/models"
)

// RowSortFields contains allowed sort fields for rows
var RowSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// GormRowRepository implements schema.RowRepository using GORM
type GormRowRepository struct {
	db *gorm.DB
}

// NewGormRowRepository creates a new GormRowRepository
func NewGormRowRepository(db *gorm.DB) *GormRowRepository {
	return &GormRowRepository{db: db}
}

// Save creates or updates a row together with its cells
func (r *GormRowRepository) Save(ctx context.Context, row *schema.Row) error {
	var model models.RowModel
	model.FromDomain(row)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cells := model.Cells
		model.Cells = nil
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		for i := range cells {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "row_id"}, {Name: "column_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&cells[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID finds a row by ID within a table, loading its cells
func (r *GormRowRepository) FindByID(ctx context.Context, tableID, id uuid.UUID) (*schema.Row, error) {
	var model models.RowModel
	if err := r.db.WithContext(ctx).
		Preload("Cells").
		Where("table_id = ? AND id = ?", tableID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds rows in a table matching the filter, with cells loaded.
// Cell filters add one EXISTS subquery per column.
func (r *GormRowRepository) FindAll(ctx context.Context, tableID uuid.UUID, filter schema.RowFilter) (shared.Paginated[schema.Row], error) {
	var total int64
	if err := r.applyCellFilters(
		r.db.WithContext(ctx).Model(&models.RowModel{}).Where("table_id = ?", tableID),
		filter,
	).Count(&total).Error; err != nil {
		return shared.Paginated[schema.Row]{}, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	orderBy := ValidateSortField(filter.OrderBy, RowSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rowModels []models.RowModel
	if err := r.applyCellFilters(
		r.db.WithContext(ctx).Model(&models.RowModel{}).Where("table_id = ?", tableID),
		filter,
	).
		Preload("Cells").
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rowModels).Error; err != nil {
		return shared.Paginated[schema.Row]{}, err
	}

	rows := make([]schema.Row, len(rowModels))
	for i := range rowModels {
		rows[i] = *rowModels[i].ToDomain()
	}
	return shared.NewPaginated(rows, total, page, pageSize), nil
}

func (r *GormRowRepository) applyCellFilters(query *gorm.DB, filter schema.RowFilter) *gorm.DB {
	for columnID, value := range filter.CellEquals {
		query = query.Where(
			"EXISTS (SELECT 1 FROM grid_cells WHERE grid_cells.row_id = grid_rows.id AND grid_cells.column_id = ? AND grid_cells.value = ?)",
			columnID, value,
		)
	}
	return query
}

// Delete deletes a row and, via cascade, its cells
func (r *GormRowRepository) Delete(ctx context.Context, tableID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RowModel{}, "table_id = ? AND id = ?", tableID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpsertCells writes cell values on an existing row
func (r *GormRowRepository) UpsertCells(ctx context.Context, rowID uuid.UUID, values map[uuid.UUID]string) error {
	if len(values) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for columnID, value := range values {
			var cell models.CellModel
			cell.FromDomain(&schema.Cell{
				BaseEntity: shared.NewBaseEntity(),
				RowID:      rowID,
				ColumnID:   columnID,
				Value:      value,
			})
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "row_id"}, {Name: "column_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&cell).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByTable returns the number of rows in a table
func (r *GormRowRepository) CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RowModel{}).
		Where("table_id = ?", tableID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormRowRepository implements schema.RowRepository
var _ schema.RowRepository = (*GormRowRepository)(nil)
