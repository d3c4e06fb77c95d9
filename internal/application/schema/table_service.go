package schema

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// TableMetadataCache caches loaded table definitions. Implemented by
// the infrastructure TTL cache; a nil cache disables caching.
type TableMetadataCache interface {
	GetByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, bool)
	GetByID(ctx context.Context, tenantID, tableID uuid.UUID) (*schema.Table, bool)
	Set(ctx context.Context, table *schema.Table)
	Invalidate(ctx context.Context, table *schema.Table)
}

// TableService manages table and column definitions
type TableService struct {
	databaseRepo schema.DatabaseRepository
	tableRepo    schema.TableRepository
	rowRepo      schema.RowRepository
	cache        TableMetadataCache
}

// NewTableService creates a new TableService. Cache may be nil.
func NewTableService(
	databaseRepo schema.DatabaseRepository,
	tableRepo schema.TableRepository,
	rowRepo schema.RowRepository,
	cache TableMetadataCache,
) *TableService {
	return &TableService{
		databaseRepo: databaseRepo,
		tableRepo:    tableRepo,
		rowRepo:      rowRepo,
		cache:        cache,
	}
}

// Create creates a table with its initial columns
func (s *TableService) Create(ctx context.Context, tenantID, databaseID uuid.UUID, req CreateTableRequest) (*TableResponse, error) {
	if _, err := s.databaseRepo.FindByID(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}

	if _, err := s.tableRepo.FindByName(ctx, tenantID, databaseID, req.Name); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Table with this name already exists")
	} else if !errors.Is(err, shared.ErrTableNotFound) {
		return nil, err
	}

	table, err := schema.NewTable(tenantID, databaseID, req.Name, req.DisplayName)
	if err != nil {
		return nil, err
	}
	for _, colReq := range req.Columns {
		col, err := schema.NewColumn(colReq.Name, colReq.DisplayName, schema.DataType(colReq.DataType), schema.SemanticType(colReq.SemanticType))
		if err != nil {
			return nil, err
		}
		col.Required = colReq.Required
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}

	if err := s.tableRepo.Save(ctx, table); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, table)
	}
	return toTableResponse(table), nil
}

// Get returns a table with its columns by ID
func (s *TableService) Get(ctx context.Context, tenantID, tableID uuid.UUID) (*TableResponse, error) {
	table, err := s.loadByID(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	return toTableResponse(table), nil
}

// GetByName returns a table with its columns by name within a database
func (s *TableService) GetByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*TableResponse, error) {
	table, err := s.loadByName(ctx, tenantID, databaseID, name)
	if err != nil {
		return nil, err
	}
	return toTableResponse(table), nil
}

// List returns all tables of a database
func (s *TableService) List(ctx context.Context, tenantID, databaseID uuid.UUID) ([]TableResponse, error) {
	tables, err := s.tableRepo.FindAllForDatabase(ctx, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	responses := make([]TableResponse, 0, len(tables))
	for i := range tables {
		responses = append(responses, *toTableResponse(&tables[i]))
	}
	return responses, nil
}

// Delete removes a table and its rows. System tables provisioned by the
// invoicing bootstrap cannot be deleted.
func (s *TableService) Delete(ctx context.Context, tenantID, tableID uuid.UUID) error {
	table, err := s.tableRepo.FindByID(ctx, tenantID, tableID)
	if err != nil {
		return err
	}
	if table.System {
		return shared.NewDomainError("SYSTEM_TABLE", "System tables cannot be deleted")
	}
	if err := s.tableRepo.Delete(ctx, tenantID, tableID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, table)
	}
	return nil
}

// AddColumn appends a column to an existing table
func (s *TableService) AddColumn(ctx context.Context, tenantID, tableID uuid.UUID, req CreateColumnRequest) (*TableResponse, error) {
	table, err := s.tableRepo.FindByID(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}

	col, err := schema.NewColumn(req.Name, req.DisplayName, schema.DataType(req.DataType), schema.SemanticType(req.SemanticType))
	if err != nil {
		return nil, err
	}
	col.Required = req.Required
	if err := table.AddColumn(col); err != nil {
		return nil, err
	}

	added := &table.Columns[len(table.Columns)-1]
	if err := s.tableRepo.SaveColumn(ctx, added); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, table)
	}
	return toTableResponse(table), nil
}

// DeleteColumn removes a column and its cells. Semantic columns on
// system tables are protected because the invoicing workflow resolves
// them by tag.
func (s *TableService) DeleteColumn(ctx context.Context, tenantID, tableID, columnID uuid.UUID) error {
	table, err := s.tableRepo.FindByID(ctx, tenantID, tableID)
	if err != nil {
		return err
	}
	for i := range table.Columns {
		if table.Columns[i].ID == columnID {
			if table.System && table.Columns[i].SemanticType != schema.SemanticNone {
				return shared.NewDomainError("SYSTEM_COLUMN", "Semantic columns on system tables cannot be deleted")
			}
			break
		}
	}
	if err := s.tableRepo.DeleteColumn(ctx, tenantID, tableID, columnID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, table)
	}
	return nil
}

// RowCount returns the number of rows stored in a table
func (s *TableService) RowCount(ctx context.Context, tenantID, tableID uuid.UUID) (int64, error) {
	table, err := s.loadByID(ctx, tenantID, tableID)
	if err != nil {
		return 0, err
	}
	return s.rowRepo.CountByTable(ctx, table.ID)
}

func (s *TableService) loadByID(ctx context.Context, tenantID, tableID uuid.UUID) (*schema.Table, error) {
	if s.cache != nil {
		if table, ok := s.cache.GetByID(ctx, tenantID, tableID); ok {
			return table, nil
		}
	}
	table, err := s.tableRepo.FindByID(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, table)
	}
	return table, nil
}

func (s *TableService) loadByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, error) {
	if s.cache != nil {
		if table, ok := s.cache.GetByName(ctx, tenantID, databaseID, name); ok {
			return table, nil
		}
	}
	table, err := s.tableRepo.FindByName(ctx, tenantID, databaseID, name)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, table)
	}
	return table, nil
}
