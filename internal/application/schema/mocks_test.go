package schema

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// MockDatabaseRepository is a mock implementation of schema.DatabaseRepository
type MockDatabaseRepository struct {
	mock.Mock
}

func (m *MockDatabaseRepository) Save(ctx context.Context, db *schema.Database) error {
	args := m.Called(ctx, db)
	return args.Error(0)
}

func (m *MockDatabaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Database, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Database), args.Error(1)
}

func (m *MockDatabaseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]schema.Database, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.Database), args.Error(1)
}

func (m *MockDatabaseRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockTableRepository is a mock implementation of schema.TableRepository
type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) Save(ctx context.Context, table *schema.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockTableRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*schema.Table, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Table), args.Error(1)
}

func (m *MockTableRepository) FindByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, error) {
	args := m.Called(ctx, tenantID, databaseID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Table), args.Error(1)
}

func (m *MockTableRepository) FindAllForDatabase(ctx context.Context, tenantID, databaseID uuid.UUID) ([]schema.Table, error) {
	args := m.Called(ctx, tenantID, databaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]schema.Table), args.Error(1)
}

func (m *MockTableRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTableRepository) SaveColumn(ctx context.Context, column *schema.Column) error {
	args := m.Called(ctx, column)
	return args.Error(0)
}

func (m *MockTableRepository) DeleteColumn(ctx context.Context, tenantID, tableID, columnID uuid.UUID) error {
	args := m.Called(ctx, tenantID, tableID, columnID)
	return args.Error(0)
}

// MockRowRepository is a mock implementation of schema.RowRepository
type MockRowRepository struct {
	mock.Mock
}

func (m *MockRowRepository) Save(ctx context.Context, row *schema.Row) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

func (m *MockRowRepository) FindByID(ctx context.Context, tableID, id uuid.UUID) (*schema.Row, error) {
	args := m.Called(ctx, tableID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schema.Row), args.Error(1)
}

func (m *MockRowRepository) FindAll(ctx context.Context, tableID uuid.UUID, filter schema.RowFilter) (shared.Paginated[schema.Row], error) {
	args := m.Called(ctx, tableID, filter)
	return args.Get(0).(shared.Paginated[schema.Row]), args.Error(1)
}

func (m *MockRowRepository) Delete(ctx context.Context, tableID, id uuid.UUID) error {
	args := m.Called(ctx, tableID, id)
	return args.Error(0)
}

func (m *MockRowRepository) UpsertCells(ctx context.Context, rowID uuid.UUID, values map[uuid.UUID]string) error {
	args := m.Called(ctx, rowID, values)
	return args.Error(0)
}

func (m *MockRowRepository) CountByTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).(int64), args.Error(1)
}

// newTestTable builds a table definition with the usual column mix
func newTestTable(tenantID, databaseID uuid.UUID) *schema.Table {
	table, _ := schema.NewTable(tenantID, databaseID, "products", "Products")
	name, _ := schema.NewColumn("name", "Name", schema.DataTypeText, schema.SemanticProductName)
	name.Required = true
	price, _ := schema.NewColumn("price", "Price", schema.DataTypeNumber, schema.SemanticProductPrice)
	active, _ := schema.NewColumn("active", "Active", schema.DataTypeBoolean, schema.SemanticNone)
	_ = table.AddColumn(name)
	_ = table.AddColumn(price)
	_ = table.AddColumn(active)
	return table
}
