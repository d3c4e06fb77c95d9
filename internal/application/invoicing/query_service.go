package invoicing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/tenant"
)

const statsScanPageSize = 500

// QueryService reads invoices: the listing joined with customer
// display fields, single invoice detail and numbering statistics
type QueryService struct {
	settingsRepo tenant.SettingsRepository
	tableRepo    schema.TableRepository
	rowRepo      schema.RowRepository
	sequenceRepo invoicing.SequenceRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewQueryService creates a new QueryService
func NewQueryService(
	settingsRepo tenant.SettingsRepository,
	tableRepo schema.TableRepository,
	rowRepo schema.RowRepository,
	sequenceRepo invoicing.SequenceRepository,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		settingsRepo: settingsRepo,
		tableRepo:    tableRepo,
		rowRepo:      rowRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// List returns a page of invoices joined with customer display fields,
// plus the numbering statistics the invoices screen shows alongside
func (s *QueryService) List(ctx context.Context, tenantID, databaseID uuid.UUID, req ListInvoicesRequest) (*ListInvoicesResponse, error) {
	tables, err := loadInvoiceTables(ctx, s.tableRepo, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	idx := tables.Invoices.SemanticIndex()

	filter := schema.RowFilter{Filter: shared.DefaultFilter()}
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.Status != "" {
		statusCol, ok := idx.Column(schema.SemanticInvoiceStatus)
		if !ok {
			return nil, schema.ErrSemanticColumnMissing
		}
		filter.CellEquals = map[uuid.UUID]string{statusCol.ID: req.Status}
	}

	page, err := s.rowRepo.FindAll(ctx, tables.Invoices.ID, filter)
	if err != nil {
		return nil, err
	}

	invoices := make([]InvoiceResponse, 0, len(page.Items))
	for i := range page.Items {
		row := &page.Items[i]
		customer := findCustomerRow(ctx, s.rowRepo, tables, row)
		invoices = append(invoices, *toInvoiceResponse(projectInvoice(tables, row, nil, customer), false))
	}

	stats, err := s.buildStats(ctx, tenantID, databaseID, tables)
	if err != nil {
		return nil, err
	}

	return &ListInvoicesResponse{
		Invoices: shared.Paginated[InvoiceResponse]{
			Items:      invoices,
			Total:      page.Total,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalPages: page.TotalPages,
		},
		Stats: *stats,
	}, nil
}

// Get returns one invoice with its line items
func (s *QueryService) Get(ctx context.Context, tenantID, databaseID, rowID uuid.UUID) (*InvoiceResponse, error) {
	tables, err := loadInvoiceTables(ctx, s.tableRepo, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	row, err := s.rowRepo.FindByID(ctx, tables.Invoices.ID, rowID)
	if err != nil {
		return nil, err
	}
	itemRows, err := findItemRows(ctx, s.rowRepo, tables, rowID)
	if err != nil {
		return nil, err
	}
	customer := findCustomerRow(ctx, s.rowRepo, tables, row)
	return toInvoiceResponse(projectInvoice(tables, row, itemRows, customer), true), nil
}

// GetInvoice returns the full read model, used by the PDF renderer and
// the e-invoice builder
func (s *QueryService) GetInvoice(ctx context.Context, tenantID, databaseID, rowID uuid.UUID) (*invoicing.Invoice, error) {
	tables, err := loadInvoiceTables(ctx, s.tableRepo, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	row, err := s.rowRepo.FindByID(ctx, tables.Invoices.ID, rowID)
	if err != nil {
		return nil, err
	}
	itemRows, err := findItemRows(ctx, s.rowRepo, tables, rowID)
	if err != nil {
		return nil, err
	}
	customer := findCustomerRow(ctx, s.rowRepo, tables, row)
	return projectInvoice(tables, row, itemRows, customer), nil
}

// NumberingStats returns the numbering statistics on their own
func (s *QueryService) NumberingStats(ctx context.Context, tenantID, databaseID uuid.UUID) (*invoicing.NumberingStats, error) {
	tables, err := loadInvoiceTables(ctx, s.tableRepo, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	return s.buildStats(ctx, tenantID, databaseID, tables)
}

func (s *QueryService) buildStats(ctx context.Context, tenantID, databaseID uuid.UUID, tables *InvoiceTables) (*invoicing.NumberingStats, error) {
	settings := loadTenantSettings(ctx, s.settingsRepo, tenantID)
	cfg := settings.Series.Normalize()

	sequences, err := s.sequenceRepo.FindAllForDatabase(ctx, tenantID, databaseID)
	if err != nil {
		return nil, err
	}
	byMonth, err := s.monthHistogram(ctx, tables)
	if err != nil {
		return nil, err
	}

	year := 0
	if cfg.IncludeYear {
		year = s.now().Year()
	}
	stats := invoicing.BuildNumberingStats(cfg, year, sequences, byMonth)
	return &stats, nil
}

// monthHistogram scans the invoices table and buckets issue dates by
// calendar month
func (s *QueryService) monthHistogram(ctx context.Context, tables *InvoiceTables) ([]invoicing.MonthBreakdown, error) {
	idx := tables.Invoices.SemanticIndex()
	dateCol, ok := idx.Column(schema.SemanticInvoiceDate)
	if !ok {
		return nil, nil
	}

	counts := make(map[string]int64)
	for page := 1; ; page++ {
		result, err := s.rowRepo.FindAll(ctx, tables.Invoices.ID, schema.RowFilter{
			Filter: shared.Filter{Page: page, PageSize: statsScanPageSize, OrderBy: "created_at", OrderDir: "asc"},
		})
		if err != nil {
			return nil, err
		}
		for i := range result.Items {
			v, ok := result.Items[i].CellValue(dateCol.ID)
			if !ok || len(v) < 7 {
				continue
			}
			// YYYY-MM prefix of the stored date
			counts[v[:7]]++
		}
		if page >= result.TotalPages || len(result.Items) == 0 {
			break
		}
	}

	months := make([]invoicing.MonthBreakdown, 0, len(counts))
	for month, count := range counts {
		months = append(months, invoicing.MonthBreakdown{Month: month, Count: count})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}
