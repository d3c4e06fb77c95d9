package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// setupSchemaTestDB creates an in-memory SQLite database with the
// dynamic schema tables
func setupSchemaTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE grid_databases (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(tenant_id, name)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE grid_tables (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			database_id TEXT NOT NULL,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			system INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(database_id, name)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE grid_columns (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			name TEXT NOT NULL,
			display_name TEXT NOT NULL,
			data_type TEXT NOT NULL,
			semantic_type TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			required INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(table_id, name)
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE grid_rows (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE grid_cells (
			id TEXT PRIMARY KEY,
			row_id TEXT NOT NULL,
			column_id TEXT NOT NULL,
			value TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE(row_id, column_id)
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newTestTable(t *testing.T, tenantID, databaseID uuid.UUID) *schema.Table {
	table, err := schema.NewTable(tenantID, databaseID, "invoices", "Invoices")
	require.NoError(t, err)

	number, err := schema.NewColumn("number", "Number", schema.DataTypeText, schema.SemanticInvoiceNumber)
	require.NoError(t, err)
	require.NoError(t, table.AddColumn(number))

	customer, err := schema.NewColumn("customer_name", "Customer", schema.DataTypeText, schema.SemanticCustomerName)
	require.NoError(t, err)
	require.NoError(t, table.AddColumn(customer))

	return table
}

func TestGormTableRepository_SaveAndFindByName(t *testing.T) {
	db := setupSchemaTestDB(t)
	repo := NewGormTableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	databaseID := uuid.New()
	table := newTestTable(t, tenantID, databaseID)

	require.NoError(t, repo.Save(ctx, table))

	retrieved, err := repo.FindByName(ctx, tenantID, databaseID, "invoices")
	require.NoError(t, err)
	assert.Equal(t, table.ID, retrieved.ID)
	assert.Equal(t, "Invoices", retrieved.DisplayName)
	require.Len(t, retrieved.Columns, 2)
	assert.Equal(t, "number", retrieved.Columns[0].Name)
	assert.Equal(t, schema.SemanticInvoiceNumber, retrieved.Columns[0].SemanticType)
}

func TestGormTableRepository_FindByNameWrongTenant(t *testing.T) {
	db := setupSchemaTestDB(t)
	repo := NewGormTableRepository(db)
	ctx := context.Background()

	databaseID := uuid.New()
	table := newTestTable(t, uuid.New(), databaseID)
	require.NoError(t, repo.Save(ctx, table))

	_, err := repo.FindByName(ctx, uuid.New(), databaseID, "invoices")
	assert.ErrorIs(t, err, shared.ErrTableNotFound)
}

func TestGormTableRepository_SemanticIndexRoundtrip(t *testing.T) {
	db := setupSchemaTestDB(t)
	repo := NewGormTableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	table := newTestTable(t, tenantID, uuid.New())
	require.NoError(t, repo.Save(ctx, table))

	retrieved, err := repo.FindByID(ctx, tenantID, table.ID)
	require.NoError(t, err)

	idx := retrieved.SemanticIndex()
	col, ok := idx.Column(schema.SemanticCustomerName)
	require.True(t, ok)
	assert.Equal(t, "customer_name", col.Name)
	assert.False(t, idx.Has(schema.SemanticInvoiceTotal))
}

func TestGormTableRepository_DeleteColumn(t *testing.T) {
	db := setupSchemaTestDB(t)
	repo := NewGormTableRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	table := newTestTable(t, tenantID, uuid.New())
	require.NoError(t, repo.Save(ctx, table))

	col, ok := table.ColumnByName("customer_name")
	require.True(t, ok)

	require.NoError(t, repo.DeleteColumn(ctx, tenantID, table.ID, col.ID))

	retrieved, err := repo.FindByID(ctx, tenantID, table.ID)
	require.NoError(t, err)
	assert.Len(t, retrieved.Columns, 1)

	err = repo.DeleteColumn(ctx, tenantID, table.ID, col.ID)
	assert.ErrorIs(t, err, shared.ErrColumnNotFound)

	err = repo.DeleteColumn(ctx, uuid.New(), table.ID, col.ID)
	assert.ErrorIs(t, err, shared.ErrTableNotFound)
}

func TestGormRowRepository_SaveAndFilter(t *testing.T) {
	db := setupSchemaTestDB(t)
	tableRepo := NewGormTableRepository(db)
	rowRepo := NewGormRowRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	table := newTestTable(t, tenantID, uuid.New())
	require.NoError(t, tableRepo.Save(ctx, table))

	numberCol, _ := table.ColumnByName("number")
	customerCol, _ := table.ColumnByName("customer_name")

	for i, customer := range []string{"Acme SRL", "Acme SRL", "Globex SA"} {
		row := schema.NewRow(table.ID)
		row.SetCell(numberCol.ID, fmt.Sprintf("INV-2024-%04d", i+1))
		row.SetCell(customerCol.ID, customer)
		require.NoError(t, rowRepo.Save(ctx, row))
	}

	filter := schema.RowFilter{
		Filter:     shared.DefaultFilter(),
		CellEquals: map[uuid.UUID]string{customerCol.ID: "Acme SRL"},
	}
	result, err := rowRepo.FindAll(ctx, table.ID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Items, 2)
	for _, row := range result.Items {
		value, ok := row.CellValue(customerCol.ID)
		require.True(t, ok)
		assert.Equal(t, "Acme SRL", value)
	}

	count, err := rowRepo.CountByTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestGormRowRepository_UpsertCells(t *testing.T) {
	db := setupSchemaTestDB(t)
	tableRepo := NewGormTableRepository(db)
	rowRepo := NewGormRowRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	table := newTestTable(t, tenantID, uuid.New())
	require.NoError(t, tableRepo.Save(ctx, table))

	numberCol, _ := table.ColumnByName("number")

	row := schema.NewRow(table.ID)
	row.SetCell(numberCol.ID, "INV-2024-0001")
	require.NoError(t, rowRepo.Save(ctx, row))

	require.NoError(t, rowRepo.UpsertCells(ctx, row.ID, map[uuid.UUID]string{
		numberCol.ID: "INV-2024-0002",
	}))

	retrieved, err := rowRepo.FindByID(ctx, table.ID, row.ID)
	require.NoError(t, err)
	value, ok := retrieved.CellValue(numberCol.ID)
	require.True(t, ok)
	assert.Equal(t, "INV-2024-0002", value)
	assert.Len(t, retrieved.Cells, 1)
}
