package schema

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

func TestTableService_Create(t *testing.T) {
	databaseRepo := new(MockDatabaseRepository)
	tableRepo := new(MockTableRepository)
	rowRepo := new(MockRowRepository)
	service := NewTableService(databaseRepo, tableRepo, rowRepo, nil)

	tenantID := uuid.New()
	databaseID := uuid.New()

	db, _ := schema.NewDatabase(tenantID, "main")
	databaseRepo.On("FindByID", mock.Anything, tenantID, databaseID).Return(db, nil)
	tableRepo.On("FindByName", mock.Anything, tenantID, databaseID, "orders").Return(nil, shared.ErrTableNotFound)
	tableRepo.On("Save", mock.Anything, mock.AnythingOfType("*schema.Table")).Return(nil)

	resp, err := service.Create(context.Background(), tenantID, databaseID, CreateTableRequest{
		Name: "orders",
		Columns: []CreateColumnRequest{
			{Name: "number", DataType: "text", SemanticType: "INVOICE_NUMBER", Required: true},
			{Name: "total", DataType: "number"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", resp.Name)
	require.Len(t, resp.Columns, 2)
	assert.Equal(t, 0, resp.Columns[0].Position)
	assert.Equal(t, 1, resp.Columns[1].Position)
	assert.Equal(t, "INVOICE_NUMBER", resp.Columns[0].SemanticType)
	tableRepo.AssertExpectations(t)
}

func TestTableService_Create_DuplicateName(t *testing.T) {
	databaseRepo := new(MockDatabaseRepository)
	tableRepo := new(MockTableRepository)
	service := NewTableService(databaseRepo, tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	databaseID := uuid.New()

	db, _ := schema.NewDatabase(tenantID, "main")
	existing := newTestTable(tenantID, databaseID)
	databaseRepo.On("FindByID", mock.Anything, tenantID, databaseID).Return(db, nil)
	tableRepo.On("FindByName", mock.Anything, tenantID, databaseID, "products").Return(existing, nil)

	_, err := service.Create(context.Background(), tenantID, databaseID, CreateTableRequest{Name: "products"})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	tableRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTableService_Create_InvalidName(t *testing.T) {
	databaseRepo := new(MockDatabaseRepository)
	tableRepo := new(MockTableRepository)
	service := NewTableService(databaseRepo, tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	databaseID := uuid.New()
	db, _ := schema.NewDatabase(tenantID, "main")
	databaseRepo.On("FindByID", mock.Anything, tenantID, databaseID).Return(db, nil)
	tableRepo.On("FindByName", mock.Anything, tenantID, databaseID, "Bad Name").Return(nil, shared.ErrTableNotFound)

	_, err := service.Create(context.Background(), tenantID, databaseID, CreateTableRequest{Name: "Bad Name"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestTableService_Delete_SystemTableProtected(t *testing.T) {
	tableRepo := new(MockTableRepository)
	service := NewTableService(new(MockDatabaseRepository), tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	table := newTestTable(tenantID, uuid.New())
	table.System = true
	tableRepo.On("FindByID", mock.Anything, tenantID, table.ID).Return(table, nil)

	err := service.Delete(context.Background(), tenantID, table.ID)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SYSTEM_TABLE", domainErr.Code)
	tableRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestTableService_AddColumn_DuplicateSemanticType(t *testing.T) {
	tableRepo := new(MockTableRepository)
	service := NewTableService(new(MockDatabaseRepository), tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	table := newTestTable(tenantID, uuid.New())
	tableRepo.On("FindByID", mock.Anything, tenantID, table.ID).Return(table, nil)

	// PRODUCT_NAME is already assigned to the name column
	_, err := service.AddColumn(context.Background(), tenantID, table.ID, CreateColumnRequest{
		Name:         "alias",
		DataType:     "text",
		SemanticType: "PRODUCT_NAME",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestTableService_DeleteColumn_SystemSemanticProtected(t *testing.T) {
	tableRepo := new(MockTableRepository)
	service := NewTableService(new(MockDatabaseRepository), tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	table := newTestTable(tenantID, uuid.New())
	table.System = true
	tableRepo.On("FindByID", mock.Anything, tenantID, table.ID).Return(table, nil)

	err := service.DeleteColumn(context.Background(), tenantID, table.ID, table.Columns[0].ID)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SYSTEM_COLUMN", domainErr.Code)
}

func TestTableService_DeleteColumn_PlainColumnOnSystemTable(t *testing.T) {
	tableRepo := new(MockTableRepository)
	service := NewTableService(new(MockDatabaseRepository), tableRepo, new(MockRowRepository), nil)

	tenantID := uuid.New()
	table := newTestTable(tenantID, uuid.New())
	table.System = true
	untagged := table.Columns[2] // active, no semantic tag
	tableRepo.On("FindByID", mock.Anything, tenantID, table.ID).Return(table, nil)
	tableRepo.On("DeleteColumn", mock.Anything, tenantID, table.ID, untagged.ID).Return(nil)

	err := service.DeleteColumn(context.Background(), tenantID, table.ID, untagged.ID)
	require.NoError(t, err)
	tableRepo.AssertExpectations(t)
}
