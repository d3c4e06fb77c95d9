package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/schema"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
)

// projectInvoice builds the invoice read model from an invoices row,
// its item rows and the optionally resolved customer row. Cell values
// are untrusted strings; unparsable ones degrade to zero values rather
// than failing the whole projection.
func projectInvoice(tables *InvoiceTables, row *schema.Row, itemRows []schema.Row, customer *schema.Row) *invoicing.Invoice {
	idx := tables.Invoices.SemanticIndex()

	currency := valueobject.DefaultCurrency
	if v, ok := row.SemanticValue(idx, schema.SemanticInvoiceBaseCurrency); ok && valueobject.IsValidCurrencyCode(v) {
		currency = valueobject.Currency(v)
	}

	inv := &invoicing.Invoice{
		RowID:        row.ID,
		BaseCurrency: currency,
		CreatedAt:    row.CreatedAt,
	}
	inv.Number, _ = row.SemanticValue(idx, schema.SemanticInvoiceNumber)
	inv.Series, _ = row.SemanticValue(idx, schema.SemanticInvoiceSeries)
	inv.PaymentTerms, _ = row.SemanticValue(idx, schema.SemanticInvoicePaymentTerms)
	inv.PaymentMethod, _ = row.SemanticValue(idx, schema.SemanticInvoicePaymentMethod)
	inv.Notes, _ = row.SemanticValue(idx, schema.SemanticInvoiceNotes)
	inv.IssueDate = cellDate(row, idx, schema.SemanticInvoiceDate)
	inv.DueDate = cellDate(row, idx, schema.SemanticInvoiceDueDate)

	if v, ok := row.SemanticValue(idx, schema.SemanticInvoiceStatus); ok {
		inv.Status = invoicing.Status(v)
	}
	if v, ok := row.SemanticValue(idx, schema.SemanticInvoiceCustomerID); ok && v != "" {
		if id, err := uuid.Parse(v); err == nil {
			inv.CustomerRowID = &id
		}
	}

	inv.Subtotal = cellMoney(row, idx, schema.SemanticInvoiceSubtotal, currency)
	inv.VATTotal = cellMoney(row, idx, schema.SemanticInvoiceVATTotal, currency)
	inv.Discount = cellMoney(row, idx, schema.SemanticInvoiceDiscount, currency)
	inv.LateFee = cellMoney(row, idx, schema.SemanticInvoiceLateFee, currency)
	inv.GrandTotal = cellMoney(row, idx, schema.SemanticInvoiceTotal, currency)

	if customer != nil {
		custIdx := tables.Customers.SemanticIndex()
		inv.CustomerName, _ = customer.SemanticValue(custIdx, schema.SemanticCustomerName)
		inv.CustomerEmail, _ = customer.SemanticValue(custIdx, schema.SemanticCustomerEmail)
		inv.CustomerTaxID, _ = customer.SemanticValue(custIdx, schema.SemanticCustomerTaxID)
	}

	for i := range itemRows {
		inv.Items = append(inv.Items, projectItem(tables, &itemRows[i]))
	}
	return inv
}

// projectItem builds one line item read model. Line totals are derived
// from the stored quantity, price and rate in the item's own currency.
func projectItem(tables *InvoiceTables, row *schema.Row) invoicing.InvoiceItem {
	idx := tables.Items.SemanticIndex()

	currency := valueobject.DefaultCurrency
	if v, ok := row.SemanticValue(idx, schema.SemanticItemCurrency); ok && valueobject.IsValidCurrencyCode(v) {
		currency = valueobject.Currency(v)
	}

	item := invoicing.InvoiceItem{RowID: row.ID}
	item.Name, _ = row.SemanticValue(idx, schema.SemanticItemName)
	item.Description, _ = row.SemanticValue(idx, schema.SemanticItemDescription)
	item.VATRate, _ = row.SemanticValue(idx, schema.SemanticItemVATRate)
	item.Unit, _ = row.SemanticValue(idx, schema.SemanticItemUnitOfMeasure)
	item.ProductRefTable, _ = row.SemanticValue(idx, schema.SemanticItemProductRefTable)
	item.ProductRefID, _ = row.SemanticValue(idx, schema.SemanticItemProductRefID)

	qty := cellDecimal(row, idx, schema.SemanticItemQuantity)
	price := cellDecimal(row, idx, schema.SemanticItemUnitPrice)
	rate := cellDecimal(row, idx, schema.SemanticItemVATRate)

	item.Quantity, _ = valueobject.NewQuantity(qty, item.Unit)
	item.UnitPrice, _ = valueobject.NewMoney(price, currency)

	net := qty.Mul(price)
	tax := net.Mul(rate).Div(decimal.NewFromInt(100))
	item.LineNet, _ = valueobject.NewMoney(net, currency)
	item.LineTax, _ = valueobject.NewMoney(tax, currency)
	item.LineGross, _ = valueobject.NewMoney(net.Add(tax), currency)
	return item
}

func cellDate(row *schema.Row, idx schema.SemanticIndex, tag schema.SemanticType) time.Time {
	v, ok := row.SemanticValue(idx, tag)
	if !ok || v == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func cellDecimal(row *schema.Row, idx schema.SemanticIndex, tag schema.SemanticType) decimal.Decimal {
	v, ok := row.SemanticValue(idx, tag)
	if !ok || v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func cellMoney(row *schema.Row, idx schema.SemanticIndex, tag schema.SemanticType, currency valueobject.Currency) valueobject.Money {
	money, err := valueobject.NewMoney(cellDecimal(row, idx, tag), currency)
	if err != nil {
		return valueobject.Zero(currency)
	}
	return money
}
