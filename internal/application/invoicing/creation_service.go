package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
	"github.com/gridbase/backend/internal/domain/tenant"
	"github.com/gridbase/backend/internal/infrastructure/telemetry"
)

// idempotencyTTL is how long a creation result is replayed for the
// same Idempotency-Key
const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers created invoice row IDs by request key so
// a retried POST returns the original invoice instead of issuing a new
// number
type IdempotencyStore interface {
	Remember(ctx context.Context, key string) (string, bool, error)
	Record(ctx context.Context, key string, value string, ttl time.Duration) error
}

// CreationService creates invoices. All writes of one creation happen
// in a single transaction: the allocated number, the invoice row, the
// item rows and the computed totals land or roll back together.
type CreationService struct {
	settingsRepo tenant.SettingsRepository
	databaseRepo schema.DatabaseRepository
	tableRepo    schema.TableRepository
	rowRepo      schema.RowRepository
	scope        TransactionScope
	idempotency  IdempotencyStore
	metrics      *telemetry.BusinessMetrics
	logger       *zap.Logger
	now          func() time.Time
}

// SetBusinessMetrics sets the business metrics collector
func (s *CreationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// NewCreationService creates a new CreationService. The idempotency
// store may be nil, which disables replay.
func NewCreationService(
	settingsRepo tenant.SettingsRepository,
	databaseRepo schema.DatabaseRepository,
	tableRepo schema.TableRepository,
	rowRepo schema.RowRepository,
	scope TransactionScope,
	idempotency IdempotencyStore,
	logger *zap.Logger,
) *CreationService {
	return &CreationService{
		settingsRepo: settingsRepo,
		databaseRepo: databaseRepo,
		tableRepo:    tableRepo,
		rowRepo:      rowRepo,
		scope:        scope,
		idempotency:  idempotency,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates the request and creates the invoice atomically
func (s *CreationService) Create(ctx context.Context, tenantID, databaseID uuid.UUID, idempotencyKey string, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID),
		telemetry.WithAttribute(telemetry.SpanAttrDatabaseID, databaseID),
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, len(req.Items)),
	)
	defer span.End()

	today := s.now()
	if errs := validateCreateRequest(req, today); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.databaseRepo.FindByID(ctx, tenantID, databaseID); err != nil {
		return nil, err
	}

	if replayed, ok := s.replay(ctx, tenantID, databaseID, idempotencyKey); ok {
		telemetry.AddEvent(span, "idempotent_replay", telemetry.SpanAttrInvoiceNumber, replayed.Number)
		return replayed, nil
	}

	settings := loadTenantSettings(ctx, s.settingsRepo, tenantID)
	cfg := settings.Series.Normalize()
	base := settings.BaseCurrency

	issueDate := today
	if req.IssueDate != "" {
		issueDate, _ = time.Parse(DateLayout, req.IssueDate)
	}
	dueDate, _ := time.Parse(DateLayout, req.DueDate)

	rates := make(invoicing.RateTable, len(req.ExchangeRates))
	for code, rate := range req.ExchangeRates {
		parsed, _ := decimal.NewFromString(rate)
		rates[valueobject.Currency(code)] = parsed
	}
	adj := invoicing.Adjustments{}
	if req.Discount != "" {
		adj.Discount, _ = decimal.NewFromString(req.Discount)
	}
	if req.LateFee != "" {
		adj.LateFee, _ = decimal.NewFromString(req.LateFee)
	}

	status := invoicing.StatusIssued
	if req.Status != "" {
		status = invoicing.Status(req.Status)
	}

	var resp *InvoiceResponse
	var grandTotal decimal.Decimal
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tables, err := EnsureInvoiceTables(ctx, repos.TableRepo(), tenantID, databaseID)
		if err != nil {
			return err
		}
		invoiceIdx := tables.Invoices.SemanticIndex()
		itemIdx := tables.Items.SemanticIndex()
		if err := invoiceIdx.Require(schema.SemanticInvoiceNumber, schema.SemanticInvoiceTotal); err != nil {
			return err
		}
		if err := itemIdx.Require(schema.SemanticItemInvoiceRef, schema.SemanticItemName, schema.SemanticItemQuantity, schema.SemanticItemUnitPrice); err != nil {
			return err
		}

		customer := s.resolveCustomer(ctx, repos, tables, req.CustomerRowID)
		lineInputs := s.buildLineInputs(ctx, repos, tenantID, databaseID, req.Items, base)

		year := 0
		if cfg.IncludeYear {
			year = issueDate.Year()
		}
		counter, err := repos.SequenceRepo().NextValue(ctx, invoicing.SequenceScope{
			TenantID:   tenantID,
			DatabaseID: databaseID,
			Series:     cfg.Prefix,
			Year:       year,
		}, cfg.StartNumber)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		number := cfg.Format(year, counter)
		seriesLabel := cfg.Label(year)

		// Invoice row first, totals as placeholder zeros until the lines
		// are in and the calculation has run.
		invoiceRow := schema.NewRow(tables.Invoices.ID)
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceNumber, number)
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceSeries, seriesLabel)
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceDate, issueDate.Format(DateLayout))
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceDueDate, dueDate.Format(DateLayout))
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceStatus, string(status))
		invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceBaseCurrency, string(base))
		if req.CustomerRowID != "" {
			invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceCustomerID, req.CustomerRowID)
		}
		if req.PaymentTerms != "" {
			invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoicePaymentTerms, req.PaymentTerms)
		}
		if req.PaymentMethod != "" {
			invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoicePaymentMethod, req.PaymentMethod)
		}
		if req.Notes != "" {
			invoiceRow.SetSemanticValue(invoiceIdx, schema.SemanticInvoiceNotes, req.Notes)
		}
		for _, tag := range []schema.SemanticType{
			schema.SemanticInvoiceSubtotal,
			schema.SemanticInvoiceVATTotal,
			schema.SemanticInvoiceDiscount,
			schema.SemanticInvoiceLateFee,
			schema.SemanticInvoiceTotal,
		} {
			invoiceRow.SetSemanticValue(invoiceIdx, tag, "0")
		}
		if err := repos.RowRepo().Save(ctx, invoiceRow); err != nil {
			return fmt.Errorf("save invoice row: %w", err)
		}

		itemResponses := make([]InvoiceItemResponse, 0, len(lineInputs))
		for i, input := range lineInputs {
			itemRow := schema.NewRow(tables.Items.ID)
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemInvoiceRef, invoiceRow.ID.String())
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemName, input.Name)
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemQuantity, input.Quantity.String())
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemUnitPrice, input.UnitPrice.String())
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemCurrency, string(input.Currency))
			itemRow.SetSemanticValue(itemIdx, schema.SemanticItemVATRate, input.VATRate.String())
			if input.Description != "" {
				itemRow.SetSemanticValue(itemIdx, schema.SemanticItemDescription, input.Description)
			}
			if input.Unit != "" {
				itemRow.SetSemanticValue(itemIdx, schema.SemanticItemUnitOfMeasure, input.Unit)
			}
			if input.ProductRefTable != "" {
				itemRow.SetSemanticValue(itemIdx, schema.SemanticItemProductRefTable, input.ProductRefTable)
				itemRow.SetSemanticValue(itemIdx, schema.SemanticItemProductRefID, input.ProductRefID)
			}
			if err := repos.RowRepo().Save(ctx, itemRow); err != nil {
				return fmt.Errorf("save item row %d: %w", i+1, err)
			}
			itemResponses = append(itemResponses, InvoiceItemResponse{
				ID:        itemRow.ID.String(),
				Name:      input.Name,
				Quantity:  input.Quantity.String(),
				UnitPrice: input.UnitPrice.StringFixed(2),
				Currency:  string(input.Currency),
				VATRate:   input.VATRate.String(),
				Unit:      input.Unit,
			})
		}

		totals, err := invoicing.CalculateTotals(lineInputs, base, rates, adj)
		if err != nil {
			return err
		}

		// Overwrite the placeholder totals in the same transaction.
		totalValues := make(map[uuid.UUID]string, 5)
		for tag, money := range map[schema.SemanticType]valueobject.Money{
			schema.SemanticInvoiceSubtotal: totals.Subtotal,
			schema.SemanticInvoiceVATTotal: totals.VATTotal,
			schema.SemanticInvoiceDiscount: totals.Discount,
			schema.SemanticInvoiceLateFee:  totals.LateFee,
			schema.SemanticInvoiceTotal:    totals.GrandTotal,
		} {
			if col, ok := invoiceIdx.Column(tag); ok {
				totalValues[col.ID] = money.Amount().String()
			}
		}
		if err := repos.RowRepo().UpsertCells(ctx, invoiceRow.ID, totalValues); err != nil {
			return fmt.Errorf("write invoice totals: %w", err)
		}

		for i := range totals.Lines {
			itemResponses[i].LineNet = totals.Lines[i].Net.StringFixed(2)
			itemResponses[i].LineTax = totals.Lines[i].Tax.StringFixed(2)
			itemResponses[i].LineGross = totals.Lines[i].Gross.StringFixed(2)
		}

		resp = &InvoiceResponse{
			ID:            invoiceRow.ID.String(),
			Number:        number,
			Series:        seriesLabel,
			IssueDate:     issueDate.Format(DateLayout),
			DueDate:       dueDate.Format(DateLayout),
			CustomerRowID: req.CustomerRowID,
			CustomerName:  req.CustomerName,
			PaymentTerms:  req.PaymentTerms,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
			Status:        string(status),
			Currency:      string(base),
			Subtotal:      totals.Subtotal.StringFixed(2),
			VATTotal:      totals.VATTotal.StringFixed(2),
			Discount:      totals.Discount.StringFixed(2),
			LateFee:       totals.LateFee.StringFixed(2),
			Total:         totals.GrandTotal.StringFixed(2),
			Items:         itemResponses,
			CreatedAt:     invoiceRow.CreatedAt,
		}
		grandTotal = totals.GrandTotal.Amount()
		if customer != nil {
			custIdx := tables.Customers.SemanticIndex()
			if name, ok := customer.SemanticValue(custIdx, schema.SemanticCustomerName); ok && name != "" {
				resp.CustomerName = name
			}
			if email, ok := customer.SemanticValue(custIdx, schema.SemanticCustomerEmail); ok {
				resp.CustomerEmail = email
			}
			if taxID, ok := customer.SemanticValue(custIdx, schema.SemanticCustomerTaxID); ok {
				resp.CustomerTaxID = taxID
			}
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, resp.ID,
		telemetry.SpanAttrInvoiceNumber, resp.Number,
		telemetry.SpanAttrCurrency, resp.Currency,
	)

	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated(ctx, tenantID, resp.Series, resp.Currency)
		s.metrics.RecordInvoiceAmount(ctx, tenantID, resp.Currency, grandTotal)
	}

	s.record(ctx, tenantID, databaseID, idempotencyKey, resp.ID)
	s.logger.Info("invoice created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", resp.Number),
		zap.String("total", resp.Total))
	return resp, nil
}

// resolveCustomer looks up the referenced customer row. Lookup failure
// is logged and the creation proceeds with the submitted values.
func (s *CreationService) resolveCustomer(ctx context.Context, repos TransactionalRepositories, tables *InvoiceTables, customerRowID string) *schema.Row {
	if customerRowID == "" {
		return nil
	}
	id, err := uuid.Parse(customerRowID)
	if err != nil {
		return nil
	}
	customer, err := repos.RowRepo().FindByID(ctx, tables.Customers.ID, id)
	if err != nil {
		s.logger.Warn("customer lookup failed, using submitted values",
			zap.String("customer_row_id", customerRowID),
			zap.Error(err))
		return nil
	}
	return customer
}

// buildLineInputs converts submitted items into calculator inputs,
// enriching empty fields from referenced product rows. Product lookup
// is best-effort.
func (s *CreationService) buildLineInputs(ctx context.Context, repos TransactionalRepositories, tenantID, databaseID uuid.UUID, items []CreateInvoiceItemRequest, base valueobject.Currency) []invoicing.LineItemInput {
	inputs := make([]invoicing.LineItemInput, 0, len(items))
	for _, item := range items {
		input := invoicing.LineItemInput{
			Name:        item.Name,
			Description: item.Description,
			Unit:        item.Unit,
			Currency:    valueobject.Currency(item.Currency),
		}
		input.Quantity, _ = decimal.NewFromString(item.Quantity)
		if item.UnitPrice != "" {
			input.UnitPrice, _ = decimal.NewFromString(item.UnitPrice)
		}
		if item.VATRate != "" {
			input.VATRate, _ = decimal.NewFromString(item.VATRate)
		}

		if item.ProductRefTable != "" && item.ProductRefID != "" {
			input.ProductRefTable = item.ProductRefTable
			input.ProductRefID = item.ProductRefID
			s.enrichFromProduct(ctx, repos, tenantID, databaseID, item, &input)
		}
		if input.Currency == "" {
			input.Currency = base
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func (s *CreationService) enrichFromProduct(ctx context.Context, repos TransactionalRepositories, tenantID, databaseID uuid.UUID, item CreateInvoiceItemRequest, input *invoicing.LineItemInput) {
	productTable, err := repos.TableRepo().FindByName(ctx, tenantID, databaseID, item.ProductRefTable)
	if err != nil {
		s.logger.Warn("product table lookup failed, using submitted values",
			zap.String("table", item.ProductRefTable),
			zap.Error(err))
		return
	}
	productID, err := uuid.Parse(item.ProductRefID)
	if err != nil {
		return
	}
	productRow, err := repos.RowRepo().FindByID(ctx, productTable.ID, productID)
	if err != nil {
		s.logger.Warn("product row lookup failed, using submitted values",
			zap.String("table", item.ProductRefTable),
			zap.String("row_id", item.ProductRefID),
			zap.Error(err))
		return
	}

	idx := productTable.SemanticIndex()
	if input.Name == "" {
		input.Name, _ = productRow.SemanticValue(idx, schema.SemanticProductName)
	}
	if input.Description == "" {
		input.Description, _ = productRow.SemanticValue(idx, schema.SemanticProductDescription)
	}
	if item.UnitPrice == "" {
		if v, ok := productRow.SemanticValue(idx, schema.SemanticProductPrice); ok {
			input.UnitPrice, _ = decimal.NewFromString(v)
		}
	}
	if item.VATRate == "" {
		if v, ok := productRow.SemanticValue(idx, schema.SemanticProductVAT); ok {
			input.VATRate, _ = decimal.NewFromString(v)
		}
	}
	if input.Currency == "" {
		if v, ok := productRow.SemanticValue(idx, schema.SemanticProductCurrency); ok && valueobject.IsValidCurrencyCode(v) {
			input.Currency = valueobject.Currency(v)
		}
	}
	if input.Unit == "" {
		if col, ok := idx.Column(schema.SemanticUnitOfMeasure); ok {
			input.Unit, _ = productRow.CellValue(col.ID)
		}
	}
}

// replay returns the previously created invoice for a seen key
func (s *CreationService) replay(ctx context.Context, tenantID, databaseID uuid.UUID, key string) (*InvoiceResponse, bool) {
	if key == "" || s.idempotency == nil {
		return nil, false
	}
	value, found, err := s.idempotency.Remember(ctx, idempotencyNamespace(tenantID, databaseID, key))
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	rowID, err := uuid.Parse(value)
	if err != nil {
		return nil, false
	}
	invoice, err := s.loadStoredInvoice(ctx, tenantID, databaseID, rowID)
	if err != nil {
		s.logger.Warn("idempotent replay load failed",
			zap.String("invoice_row_id", value),
			zap.Error(err))
		return nil, false
	}
	return invoice, true
}

func (s *CreationService) record(ctx context.Context, tenantID, databaseID uuid.UUID, key, rowID string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Record(ctx, idempotencyNamespace(tenantID, databaseID, key), rowID, idempotencyTTL); err != nil {
		s.logger.Warn("idempotency record failed", zap.Error(err))
	}
}

// loadStoredInvoice reads a created invoice back for idempotent replay
func (s *CreationService) loadStoredInvoice(ctx context.Context, tenantID, databaseID, rowID uuid.UUID) (*InvoiceResponse, error) {
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

func idempotencyNamespace(tenantID, databaseID uuid.UUID, key string) string {
	return tenantID.String() + ":" + databaseID.String() + ":" + key
}

// loadInvoiceTables loads the three system tables without provisioning
func loadInvoiceTables(ctx context.Context, repo schema.TableRepository, tenantID, databaseID uuid.UUID) (*InvoiceTables, error) {
	customers, err := repo.FindByName(ctx, tenantID, databaseID, CustomersTableName)
	if err != nil {
		return nil, err
	}
	invoices, err := repo.FindByName(ctx, tenantID, databaseID, InvoicesTableName)
	if err != nil {
		return nil, err
	}
	items, err := repo.FindByName(ctx, tenantID, databaseID, ItemsTableName)
	if err != nil {
		return nil, err
	}
	return &InvoiceTables{Customers: customers, Invoices: invoices, Items: items}, nil
}

// findItemRows fetches all item rows referencing one invoice
func findItemRows(ctx context.Context, rowRepo schema.RowRepository, tables *InvoiceTables, invoiceRowID uuid.UUID) ([]schema.Row, error) {
	refCol, ok := tables.Items.SemanticIndex().Column(schema.SemanticItemInvoiceRef)
	if !ok {
		return nil, nil
	}
	filter := schema.RowFilter{
		Filter:     shared.Filter{Page: 1, PageSize: 500, OrderBy: "created_at", OrderDir: "asc"},
		CellEquals: map[uuid.UUID]string{refCol.ID: invoiceRowID.String()},
	}
	page, err := rowRepo.FindAll(ctx, tables.Items.ID, filter)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// findCustomerRow resolves the invoice's customer reference, nil when
// absent or unresolvable
func findCustomerRow(ctx context.Context, rowRepo schema.RowRepository, tables *InvoiceTables, invoiceRow *schema.Row) *schema.Row {
	idx := tables.Invoices.SemanticIndex()
	v, ok := invoiceRow.SemanticValue(idx, schema.SemanticInvoiceCustomerID)
	if !ok || v == "" {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	customer, err := rowRepo.FindByID(ctx, tables.Customers.ID, id)
	if err != nil {
		return nil
	}
	return customer
}
