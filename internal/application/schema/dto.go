package schema

import (
	"time"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// CreateDatabaseRequest creates a logical database for the tenant
type CreateDatabaseRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// DatabaseResponse is the database representation returned to clients
type DatabaseResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTableRequest creates a table with an optional initial column set
type CreateTableRequest struct {
	Name        string                `json:"name" binding:"required,max=63"`
	DisplayName string                `json:"display_name" binding:"omitempty,max=255"`
	Columns     []CreateColumnRequest `json:"columns" binding:"omitempty,dive"`
}

// CreateColumnRequest adds a column to a table
type CreateColumnRequest struct {
	Name         string `json:"name" binding:"required,max=63"`
	DisplayName  string `json:"display_name" binding:"omitempty,max=255"`
	DataType     string `json:"data_type" binding:"required"`
	SemanticType string `json:"semantic_type"`
	Required     bool   `json:"required"`
}

// TableResponse is the table representation returned to clients
type TableResponse struct {
	ID          string           `json:"id"`
	DatabaseID  string           `json:"database_id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"display_name"`
	System      bool             `json:"system"`
	Columns     []ColumnResponse `json:"columns"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ColumnResponse is the column representation returned to clients
type ColumnResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	DataType     string `json:"data_type"`
	SemanticType string `json:"semantic_type,omitempty"`
	Position     int    `json:"position"`
	Required     bool   `json:"required"`
}

// CreateRowRequest creates a row; cells are keyed by column name
type CreateRowRequest struct {
	Cells map[string]string `json:"cells" binding:"required"`
}

// UpdateRowRequest updates cell values on an existing row. Only the
// named columns change.
type UpdateRowRequest struct {
	Cells map[string]string `json:"cells" binding:"required"`
}

// ListRowsRequest narrows and pages a row listing. Filters are exact
// cell matches keyed by column name.
type ListRowsRequest struct {
	Page     int               `form:"page"`
	PageSize int               `form:"page_size"`
	SortBy   string            `form:"sort_by"`
	SortDir  string            `form:"sort_dir"`
	Filters  map[string]string `form:"-"`
}

// RowResponse is the row representation returned to clients, with cells
// keyed by column name
type RowResponse struct {
	ID        string            `json:"id"`
	TableID   string            `json:"table_id"`
	Cells     map[string]string `json:"cells"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func toDatabaseResponse(db *schema.Database) *DatabaseResponse {
	return &DatabaseResponse{
		ID:        db.ID.String(),
		Name:      db.Name,
		CreatedAt: db.CreatedAt,
	}
}

func toTableResponse(t *schema.Table) *TableResponse {
	columns := make([]ColumnResponse, 0, len(t.Columns))
	for i := range t.Columns {
		columns = append(columns, toColumnResponse(&t.Columns[i]))
	}
	return &TableResponse{
		ID:          t.ID.String(),
		DatabaseID:  t.DatabaseID.String(),
		Name:        t.Name,
		DisplayName: t.DisplayName,
		System:      t.System,
		Columns:     columns,
		CreatedAt:   t.CreatedAt,
	}
}

func toColumnResponse(c *schema.Column) ColumnResponse {
	return ColumnResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		DisplayName:  c.DisplayName,
		DataType:     string(c.DataType),
		SemanticType: string(c.SemanticType),
		Position:     c.Position,
		Required:     c.Required,
	}
}

// toRowResponse maps cells back to column names; cells for columns that
// no longer exist are dropped from the view
func toRowResponse(table *schema.Table, row *schema.Row) *RowResponse {
	byID := make(map[string]string, len(table.Columns))
	for i := range table.Columns {
		byID[table.Columns[i].ID.String()] = table.Columns[i].Name
	}
	cells := make(map[string]string, len(row.Cells))
	for i := range row.Cells {
		if name, ok := byID[row.Cells[i].ColumnID.String()]; ok {
			cells[name] = row.Cells[i].Value
		}
	}
	return &RowResponse{
		ID:        row.ID.String(),
		TableID:   row.TableID.String(),
		Cells:     cells,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func toRowPage(table *schema.Table, page shared.Paginated[schema.Row]) *shared.Paginated[RowResponse] {
	items := make([]RowResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *toRowResponse(table, &page.Items[i]))
	}
	return &shared.Paginated[RowResponse]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}
