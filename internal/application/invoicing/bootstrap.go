package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared"
)

// Names of the system tables the invoicing workflow operates on
const (
	CustomersTableName = "customers"
	InvoicesTableName  = "invoices"
	ItemsTableName     = "invoice_items"
)

// InvoiceTables bundles the three system tables with their columns
// loaded
type InvoiceTables struct {
	Customers *schema.Table
	Invoices  *schema.Table
	Items     *schema.Table
}

type columnSpec struct {
	name         string
	displayName  string
	dataType     schema.DataType
	semanticType schema.SemanticType
	required     bool
}

var customersColumns = []columnSpec{
	{"name", "Name", schema.DataTypeText, schema.SemanticCustomerName, true},
	{"email", "Email", schema.DataTypeText, schema.SemanticCustomerEmail, false},
	{"phone", "Phone", schema.DataTypeText, schema.SemanticCustomerPhone, false},
	{"address", "Address", schema.DataTypeText, schema.SemanticCustomerAddress, false},
	{"tax_id", "Tax ID", schema.DataTypeText, schema.SemanticCustomerTaxID, false},
	{"reg_no", "Registration No", schema.DataTypeText, schema.SemanticCustomerRegNo, false},
}

var invoicesColumns = []columnSpec{
	{"number", "Number", schema.DataTypeText, schema.SemanticInvoiceNumber, true},
	{"series", "Series", schema.DataTypeText, schema.SemanticInvoiceSeries, false},
	{"issue_date", "Issue Date", schema.DataTypeDate, schema.SemanticInvoiceDate, false},
	{"due_date", "Due Date", schema.DataTypeDate, schema.SemanticInvoiceDueDate, false},
	{"customer_id", "Customer", schema.DataTypeReference, schema.SemanticInvoiceCustomerID, false},
	{"payment_terms", "Payment Terms", schema.DataTypeText, schema.SemanticInvoicePaymentTerms, false},
	{"payment_method", "Payment Method", schema.DataTypeText, schema.SemanticInvoicePaymentMethod, false},
	{"notes", "Notes", schema.DataTypeText, schema.SemanticInvoiceNotes, false},
	{"status", "Status", schema.DataTypeText, schema.SemanticInvoiceStatus, false},
	{"base_currency", "Currency", schema.DataTypeText, schema.SemanticInvoiceBaseCurrency, false},
	{"subtotal", "Subtotal", schema.DataTypeNumber, schema.SemanticInvoiceSubtotal, false},
	{"vat_total", "VAT Total", schema.DataTypeNumber, schema.SemanticInvoiceVATTotal, false},
	{"discount", "Discount", schema.DataTypeNumber, schema.SemanticInvoiceDiscount, false},
	{"late_fee", "Late Fee", schema.DataTypeNumber, schema.SemanticInvoiceLateFee, false},
	{"total", "Total", schema.DataTypeNumber, schema.SemanticInvoiceTotal, false},
}

var itemsColumns = []columnSpec{
	{"invoice_id", "Invoice", schema.DataTypeReference, schema.SemanticItemInvoiceRef, true},
	{"name", "Name", schema.DataTypeText, schema.SemanticItemName, true},
	{"description", "Description", schema.DataTypeText, schema.SemanticItemDescription, false},
	{"quantity", "Quantity", schema.DataTypeNumber, schema.SemanticItemQuantity, false},
	{"unit_price", "Unit Price", schema.DataTypeNumber, schema.SemanticItemUnitPrice, false},
	{"currency", "Currency", schema.DataTypeText, schema.SemanticItemCurrency, false},
	{"vat_rate", "VAT Rate", schema.DataTypeNumber, schema.SemanticItemVATRate, false},
	{"unit", "Unit", schema.DataTypeText, schema.SemanticItemUnitOfMeasure, false},
	{"product_ref_table", "Product Table", schema.DataTypeText, schema.SemanticItemProductRefTable, false},
	{"product_ref_id", "Product Row", schema.DataTypeText, schema.SemanticItemProductRefID, false},
}

// EnsureInvoiceTables lazily provisions the customers, invoices and
// invoice_items system tables in a database. Existing tables are
// backfilled with any semantic column the workflow has since grown, so
// older tenants pick up new fields without a migration. Idempotent;
// safe to call inside the creation transaction.
func EnsureInvoiceTables(ctx context.Context, repo schema.TableRepository, tenantID, databaseID uuid.UUID) (*InvoiceTables, error) {
	customers, err := ensureTable(ctx, repo, tenantID, databaseID, CustomersTableName, "Customers", customersColumns)
	if err != nil {
		return nil, err
	}
	invoices, err := ensureTable(ctx, repo, tenantID, databaseID, InvoicesTableName, "Invoices", invoicesColumns)
	if err != nil {
		return nil, err
	}
	items, err := ensureTable(ctx, repo, tenantID, databaseID, ItemsTableName, "Invoice Items", itemsColumns)
	if err != nil {
		return nil, err
	}
	return &InvoiceTables{Customers: customers, Invoices: invoices, Items: items}, nil
}

func ensureTable(ctx context.Context, repo schema.TableRepository, tenantID, databaseID uuid.UUID, name, displayName string, specs []columnSpec) (*schema.Table, error) {
	table, err := repo.FindByName(ctx, tenantID, databaseID, name)
	if err == nil {
		return backfillColumns(ctx, repo, table, specs)
	}
	if !errors.Is(err, shared.ErrTableNotFound) {
		return nil, err
	}

	table, err = schema.NewTable(tenantID, databaseID, name, displayName)
	if err != nil {
		return nil, err
	}
	table.System = true
	for _, spec := range specs {
		col, err := schema.NewColumn(spec.name, spec.displayName, spec.dataType, spec.semanticType)
		if err != nil {
			return nil, fmt.Errorf("define column %s.%s: %w", name, spec.name, err)
		}
		col.Required = spec.required
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	if err := repo.Save(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// backfillColumns adds any spec'd semantic column the table lacks.
// Columns renamed by the tenant keep working because the lookup goes
// through the semantic tag, not the name.
func backfillColumns(ctx context.Context, repo schema.TableRepository, table *schema.Table, specs []columnSpec) (*schema.Table, error) {
	idx := table.SemanticIndex()
	for _, spec := range specs {
		if idx.Has(spec.semanticType) {
			continue
		}
		if _, exists := table.ColumnByName(spec.name); exists {
			continue
		}
		col, err := schema.NewColumn(spec.name, spec.displayName, spec.dataType, spec.semanticType)
		if err != nil {
			return nil, err
		}
		col.Required = spec.required
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
		added := &table.Columns[len(table.Columns)-1]
		if err := repo.SaveColumn(ctx, added); err != nil {
			return nil, err
		}
		idx = table.SemanticIndex()
	}
	return table, nil
}
