package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/infrastructure/telemetry"
)

const cellDateLayout = "2006-01-02"

// RowService manages rows in user-defined tables
type RowService struct {
	tableRepo schema.TableRepository
	rowRepo   schema.RowRepository
	cache     TableMetadataCache
}

// NewRowService creates a new RowService. Cache may be nil.
func NewRowService(tableRepo schema.TableRepository, rowRepo schema.RowRepository, cache TableMetadataCache) *RowService {
	return &RowService{
		tableRepo: tableRepo,
		rowRepo:   rowRepo,
		cache:     cache,
	}
}

// Create validates the submitted cells against the table's column
// definitions and stores the row
func (s *RowService) Create(ctx context.Context, tenantID, tableID uuid.UUID, req CreateRowRequest) (*RowResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "row", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrTableID, tableID),
	)
	defer span.End()

	table, err := s.loadTable(ctx, tenantID, tableID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	row := schema.NewRow(table.ID)
	if err := applyCells(table, row, req.Cells, true); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.rowRepo.Save(ctx, row); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrRowID, row.ID)
	return toRowResponse(table, row), nil
}

// Get returns one row with its cells keyed by column name
func (s *RowService) Get(ctx context.Context, tenantID, tableID, rowID uuid.UUID) (*RowResponse, error) {
	table, err := s.loadTable(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	row, err := s.rowRepo.FindByID(ctx, table.ID, rowID)
	if err != nil {
		return nil, err
	}
	return toRowResponse(table, row), nil
}

// List returns a page of rows. Filter keys are column names; unknown
// names are rejected so typos fail loudly instead of matching nothing.
func (s *RowService) List(ctx context.Context, tenantID, tableID uuid.UUID, req ListRowsRequest) (*shared.Paginated[RowResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "row", "list",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrTableID, tableID),
	)
	defer span.End()

	table, err := s.loadTable(ctx, tenantID, tableID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	filter := schema.RowFilter{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.SortBy != "" {
		filter.OrderBy = req.SortBy
	}
	if req.SortDir != "" {
		filter.OrderDir = req.SortDir
	}
	if len(req.Filters) > 0 {
		filter.CellEquals = make(map[uuid.UUID]string, len(req.Filters))
		for name, value := range req.Filters {
			col, ok := table.ColumnByName(name)
			if !ok {
				return nil, shared.NewDomainError("COLUMN_NOT_FOUND", fmt.Sprintf("No column named %q", name))
			}
			filter.CellEquals[col.ID] = value
		}
	}

	page, err := s.rowRepo.FindAll(ctx, table.ID, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrRowCount, len(page.Items))
	return toRowPage(table, page), nil
}

// Update writes cell values on an existing row. Only the named columns
// change; required columns may not be blanked.
func (s *RowService) Update(ctx context.Context, tenantID, tableID, rowID uuid.UUID, req UpdateRowRequest) (*RowResponse, error) {
	table, err := s.loadTable(ctx, tenantID, tableID)
	if err != nil {
		return nil, err
	}
	row, err := s.rowRepo.FindByID(ctx, table.ID, rowID)
	if err != nil {
		return nil, err
	}
	if err := applyCells(table, row, req.Cells, false); err != nil {
		return nil, err
	}
	if err := s.rowRepo.UpsertCells(ctx, row.ID, row.ValueMap()); err != nil {
		return nil, err
	}
	return toRowResponse(table, row), nil
}

// Delete removes a row and its cells
func (s *RowService) Delete(ctx context.Context, tenantID, tableID, rowID uuid.UUID) error {
	table, err := s.loadTable(ctx, tenantID, tableID)
	if err != nil {
		return err
	}
	return s.rowRepo.Delete(ctx, table.ID, rowID)
}

func (s *RowService) loadTable(ctx context.Context, tenantID, tableID uuid.UUID) (*schema.Table, error) {
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

// applyCells validates submitted values against column definitions and
// writes them onto the row. On create, required columns must be present
// and non-empty; on update, only submitted columns are checked.
func applyCells(table *schema.Table, row *schema.Row, cells map[string]string, isCreate bool) error {
	for name, value := range cells {
		col, ok := table.ColumnByName(name)
		if !ok {
			return shared.NewDomainError("COLUMN_NOT_FOUND", fmt.Sprintf("No column named %q", name))
		}
		if value == "" {
			if col.Required {
				return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Column %q is required", name))
			}
			row.SetCell(col.ID, "")
			continue
		}
		if err := ValidateCellValue(col.DataType, value); err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Column %q: %s", name, err))
		}
		row.SetCell(col.ID, value)
	}

	if isCreate {
		for i := range table.Columns {
			col := &table.Columns[i]
			if !col.Required {
				continue
			}
			if v, ok := row.CellValue(col.ID); !ok || v == "" {
				return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Column %q is required", col.Name))
			}
		}
	}
	return nil
}

// ValidateCellValue checks a non-empty cell value against its column's
// data type. All cell values are stored as strings; this is the single
// place their shape is enforced.
func ValidateCellValue(dataType schema.DataType, value string) error {
	switch dataType {
	case schema.DataTypeText:
		return nil
	case schema.DataTypeNumber:
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("%q is not a valid number", value)
		}
	case schema.DataTypeDate:
		if _, err := time.Parse(cellDateLayout, value); err != nil {
			return fmt.Errorf("%q is not a valid date, expected YYYY-MM-DD", value)
		}
	case schema.DataTypeBoolean:
		if value != "true" && value != "false" {
			return fmt.Errorf("%q is not a valid boolean, expected true or false", value)
		}
	case schema.DataTypeReference:
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("%q is not a valid reference id", value)
		}
	default:
		return fmt.Errorf("unknown data type %q", dataType)
	}
	return nil
}
