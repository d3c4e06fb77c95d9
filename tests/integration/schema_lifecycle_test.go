// Integration tests for the grid schema lifecycle: logical databases,
// tables with typed columns, and rows with sparse cells, all persisted
// through the GORM repositories against a real PostgreSQL instance.
package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/persistence"
	"github.com/gridbase/backend/tests/testutil"
)

type schemaTestHarness struct {
	DB           *TestDB
	DatabaseRepo *persistence.GormDatabaseRepository
	TableRepo    *persistence.GormTableRepository
	RowRepo      *persistence.GormRowRepository
	TenantID     uuid.UUID
}

func newSchemaTestHarness(t *testing.T) *schemaTestHarness {
	t.Helper()

	testDB := NewTestDB(t)
	return &schemaTestHarness{
		DB:           testDB,
		DatabaseRepo: persistence.NewGormDatabaseRepository(testDB.DB),
		TableRepo:    persistence.NewGormTableRepository(testDB.DB),
		RowRepo:      persistence.NewGormRowRepository(testDB.DB),
		TenantID:     testutil.TestTenantID(),
	}
}

func (h *schemaTestHarness) createDatabase(t *testing.T, ctx context.Context, name string) *schema.Database {
	t.Helper()

	db, err := schema.NewDatabase(h.TenantID, name)
	require.NoError(t, err)
	require.NoError(t, h.DatabaseRepo.Save(ctx, db))
	return db
}

func (h *schemaTestHarness) createTable(t *testing.T, ctx context.Context, databaseID uuid.UUID, name string, cols ...schema.Column) *schema.Table {
	t.Helper()

	table, err := schema.NewTable(h.TenantID, databaseID, name, "")
	require.NoError(t, err)
	for _, col := range cols {
		require.NoError(t, table.AddColumn(col))
	}
	require.NoError(t, h.TableRepo.Save(ctx, table))
	return table
}

func mustColumn(t *testing.T, name string, dataType schema.DataType) schema.Column {
	t.Helper()

	col, err := schema.NewColumn(name, "", dataType, schema.SemanticNone)
	require.NoError(t, err)
	return col
}

func TestSchemaLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	h := newSchemaTestHarness(t)
	ctx := context.Background()

	t.Run("database round trip", func(t *testing.T) {
		created := h.createDatabase(t, ctx, "Accounting")

		found, err := h.DatabaseRepo.FindByID(ctx, h.TenantID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Accounting", found.Name)
		assert.Equal(t, h.TenantID, found.TenantID)
	})

	t.Run("duplicate database name in tenant is rejected", func(t *testing.T) {
		h.createDatabase(t, ctx, "CRM")

		dup, err := schema.NewDatabase(h.TenantID, "CRM")
		require.NoError(t, err)
		assert.Error(t, h.DatabaseRepo.Save(ctx, dup), "unique (tenant_id, name) index must reject the duplicate")
	})

	t.Run("table with columns round trips ordered by position", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Inventory")
		h.createTable(t, ctx, db.ID, "products",
			mustColumn(t, "name", schema.DataTypeText),
			mustColumn(t, "price", schema.DataTypeNumber),
			mustColumn(t, "in_stock", schema.DataTypeBoolean),
		)

		found, err := h.TableRepo.FindByName(ctx, h.TenantID, db.ID, "products")
		require.NoError(t, err)
		require.Len(t, found.Columns, 3)
		assert.Equal(t, "name", found.Columns[0].Name)
		assert.Equal(t, "price", found.Columns[1].Name)
		assert.Equal(t, "in_stock", found.Columns[2].Name)
		assert.Equal(t, schema.DataTypeNumber, found.Columns[1].DataType)
	})

	t.Run("duplicate table name in database is rejected", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Projects")
		h.createTable(t, ctx, db.ID, "tasks")

		dup, err := schema.NewTable(h.TenantID, db.ID, "tasks", "")
		require.NoError(t, err)
		assert.Error(t, h.TableRepo.Save(ctx, dup))
	})

	t.Run("rows persist sparse cells", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Contacts")
		table := h.createTable(t, ctx, db.ID, "people",
			mustColumn(t, "name", schema.DataTypeText),
			mustColumn(t, "email", schema.DataTypeText),
		)

		nameCol, ok := table.ColumnByName("name")
		require.True(t, ok)

		row := schema.NewRow(table.ID)
		row.SetCell(nameCol.ID, "Ana Pop")
		require.NoError(t, h.RowRepo.Save(ctx, row))

		found, err := h.RowRepo.FindByID(ctx, table.ID, row.ID)
		require.NoError(t, err)
		require.Len(t, found.Cells, 1, "only the populated cell is stored")

		value, ok := found.CellValue(nameCol.ID)
		require.True(t, ok)
		assert.Equal(t, "Ana Pop", value)
	})

	t.Run("UpsertCells overwrites existing values", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Ledger")
		table := h.createTable(t, ctx, db.ID, "entries",
			mustColumn(t, "amount", schema.DataTypeNumber),
		)
		amountCol, ok := table.ColumnByName("amount")
		require.True(t, ok)

		row := schema.NewRow(table.ID)
		row.SetCell(amountCol.ID, "100.00")
		require.NoError(t, h.RowRepo.Save(ctx, row))

		require.NoError(t, h.RowRepo.UpsertCells(ctx, row.ID, map[uuid.UUID]string{
			amountCol.ID: "250.50",
		}))

		found, err := h.RowRepo.FindByID(ctx, table.ID, row.ID)
		require.NoError(t, err)
		value, _ := found.CellValue(amountCol.ID)
		assert.Equal(t, "250.50", value)
	})

	t.Run("row listing filters on cell values", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Sales")
		table := h.createTable(t, ctx, db.ID, "orders",
			mustColumn(t, "status", schema.DataTypeText),
		)
		statusCol, ok := table.ColumnByName("status")
		require.True(t, ok)

		for _, status := range []string{"draft", "sent", "sent", "paid"} {
			row := schema.NewRow(table.ID)
			row.SetCell(statusCol.ID, status)
			require.NoError(t, h.RowRepo.Save(ctx, row))
		}

		filter := schema.RowFilter{
			Filter:     shared.DefaultFilter(),
			CellEquals: map[uuid.UUID]string{statusCol.ID: "sent"},
		}
		page, err := h.RowRepo.FindAll(ctx, table.ID, filter)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		assert.Len(t, page.Items, 2)

		count, err := h.RowRepo.CountByTable(ctx, table.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 4, count)
	})

	t.Run("deleting a table cascades to rows and cells", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Archive")
		table := h.createTable(t, ctx, db.ID, "documents",
			mustColumn(t, "title", schema.DataTypeText),
		)
		titleCol, _ := table.ColumnByName("title")

		row := schema.NewRow(table.ID)
		row.SetCell(titleCol.ID, "Q1 report")
		require.NoError(t, h.RowRepo.Save(ctx, row))

		require.NoError(t, h.TableRepo.Delete(ctx, h.TenantID, table.ID))

		_, err := h.TableRepo.FindByID(ctx, h.TenantID, table.ID)
		assert.ErrorIs(t, err, shared.ErrTableNotFound)

		var cellCount int64
		require.NoError(t, h.DB.DB.Raw(
			"SELECT COUNT(*) FROM grid_cells WHERE row_id = ?", row.ID,
		).Scan(&cellCount).Error)
		assert.Zero(t, cellCount)
	})

	t.Run("deleting a database cascades to its tables", func(t *testing.T) {
		db := h.createDatabase(t, ctx, "Temporary")
		table := h.createTable(t, ctx, db.ID, "scratch")

		require.NoError(t, h.DatabaseRepo.Delete(ctx, h.TenantID, db.ID))

		_, err := h.DatabaseRepo.FindByID(ctx, h.TenantID, db.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = h.TableRepo.FindByID(ctx, h.TenantID, table.ID)
		assert.True(t, errors.Is(err, shared.ErrTableNotFound))
	})

	t.Run("seeded schema is visible through the repositories", func(t *testing.T) {
		databaseID := testutil.NewTestUUID("seeded-db")
		tableID := testutil.NewTestUUID("seeded-table")

		h.DB.SeedDatabase(h.TenantID, databaseID, "Seeded")
		h.DB.SeedTable(h.TenantID, databaseID, tableID, "customers")
		h.DB.SeedColumn(tableID, testutil.NewTestUUID("seeded-col"), "name", string(schema.DataTypeText), 0)

		found, err := h.TableRepo.FindByName(ctx, h.TenantID, databaseID, "customers")
		require.NoError(t, err)
		require.Len(t, found.Columns, 1)
		assert.Equal(t, "name", found.Columns[0].Name)
	})

	t.Run("deleting a missing database reports not found", func(t *testing.T) {
		err := h.DatabaseRepo.Delete(ctx, h.TenantID, testutil.NewRandomUUID())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
