package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/shared"
)

// DatabaseRepository persists tenants' logical databases
type DatabaseRepository interface {
	Save(ctx context.Context, db *Database) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Database, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Database, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// TableRepository persists table and column definitions. FindByID and
// FindByName load the table with its columns.
type TableRepository interface {
	Save(ctx context.Context, table *Table) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Table, error)
	FindByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*Table, error)
	FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]Table, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	SaveColumn(ctx context.Context, column *Column) error
	DeleteColumn(ctx context.Context, tenantID, tableID, columnID uuid.UUID) error
}

// RowFilter narrows row listings. CellEquals filters on exact cell
// values by column.
type RowFilter struct {
	shared.Filter
	CellEquals map[uuid.UUID]string
}

// RowRepository persists rows and their cells
type RowRepository interface {
	Save(ctx context.Context, row *Row) error
	FindByID(ctx context.Context, tableID, id uuid.UUID) (*Row, error)
	FindAll(ctx context.Context, tableID uuid.UUID, filter RowFilter) (shared.Paginated[Row], error)
	Delete(ctx context.Context, tableID, id uuid.UUID) error

	// UpsertCells writes cell values on an existing row
	UpsertCells(ctx context.Context, rowID uuid.UUID, values map[uuid.UUID]string) error

	// CountByTable returns the number of rows in a table
	CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error)
}
