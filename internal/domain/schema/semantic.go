package schema

import "fmt"

// SemanticType tags a generic column with its business meaning. The
// invoicing workflow resolves columns by tag instead of by name, so
// tenants are free to rename or reorder columns without breaking it.
type SemanticType string

const (
	SemanticNone SemanticType = ""

	// Invoice header
	SemanticInvoiceNumber        SemanticType = "INVOICE_NUMBER"
	SemanticInvoiceSeries        SemanticType = "INVOICE_SERIES"
	SemanticInvoiceDate          SemanticType = "INVOICE_DATE"
	SemanticInvoiceDueDate       SemanticType = "INVOICE_DUE_DATE"
	SemanticInvoiceCustomerID    SemanticType = "INVOICE_CUSTOMER_ID"
	SemanticInvoicePaymentTerms  SemanticType = "INVOICE_PAYMENT_TERMS"
	SemanticInvoicePaymentMethod SemanticType = "INVOICE_PAYMENT_METHOD"
	SemanticInvoiceNotes         SemanticType = "INVOICE_NOTES"
	SemanticInvoiceStatus        SemanticType = "INVOICE_STATUS"
	SemanticInvoiceBaseCurrency  SemanticType = "INVOICE_BASE_CURRENCY"
	SemanticInvoiceSubtotal      SemanticType = "INVOICE_SUBTOTAL"
	SemanticInvoiceVATTotal      SemanticType = "INVOICE_VAT_TOTAL"
	SemanticInvoiceDiscount      SemanticType = "INVOICE_DISCOUNT"
	SemanticInvoiceLateFee       SemanticType = "INVOICE_LATE_FEE"
	SemanticInvoiceTotal         SemanticType = "INVOICE_TOTAL"

	// Invoice line items
	SemanticItemInvoiceRef      SemanticType = "ITEM_INVOICE_REF"
	SemanticItemProductRefTable SemanticType = "ITEM_PRODUCT_REF_TABLE"
	SemanticItemProductRefID    SemanticType = "ITEM_PRODUCT_REF_ID"
	SemanticItemName            SemanticType = "ITEM_NAME"
	SemanticItemDescription     SemanticType = "ITEM_DESCRIPTION"
	SemanticItemQuantity        SemanticType = "ITEM_QUANTITY"
	SemanticItemUnitPrice       SemanticType = "ITEM_UNIT_PRICE"
	SemanticItemCurrency        SemanticType = "ITEM_CURRENCY"
	SemanticItemVATRate         SemanticType = "ITEM_VAT_RATE"
	SemanticItemUnitOfMeasure   SemanticType = "ITEM_UNIT_OF_MEASURE"

	// Customers
	SemanticCustomerName    SemanticType = "CUSTOMER_NAME"
	SemanticCustomerEmail   SemanticType = "CUSTOMER_EMAIL"
	SemanticCustomerPhone   SemanticType = "CUSTOMER_PHONE"
	SemanticCustomerAddress SemanticType = "CUSTOMER_ADDRESS"
	SemanticCustomerTaxID   SemanticType = "CUSTOMER_TAX_ID"
	SemanticCustomerRegNo   SemanticType = "CUSTOMER_REG_NO"

	// Products (resolved in arbitrary user tables)
	SemanticProductName        SemanticType = "PRODUCT_NAME"
	SemanticProductDescription SemanticType = "PRODUCT_DESCRIPTION"
	SemanticProductPrice       SemanticType = "PRODUCT_PRICE"
	SemanticProductCurrency    SemanticType = "PRODUCT_CURRENCY"
	SemanticProductVAT         SemanticType = "PRODUCT_VAT"
	SemanticProductSKU         SemanticType = "PRODUCT_SKU"

	SemanticUnitOfMeasure SemanticType = "UNIT_OF_MEASURE"
)

var knownSemanticTypes = map[SemanticType]struct{}{
	SemanticInvoiceNumber: {}, SemanticInvoiceSeries: {}, SemanticInvoiceDate: {},
	SemanticInvoiceDueDate: {}, SemanticInvoiceCustomerID: {}, SemanticInvoicePaymentTerms: {},
	SemanticInvoicePaymentMethod: {}, SemanticInvoiceNotes: {}, SemanticInvoiceStatus: {},
	SemanticInvoiceBaseCurrency: {}, SemanticInvoiceSubtotal: {}, SemanticInvoiceVATTotal: {},
	SemanticInvoiceDiscount: {}, SemanticInvoiceLateFee: {}, SemanticInvoiceTotal: {},
	SemanticItemInvoiceRef: {}, SemanticItemProductRefTable: {}, SemanticItemProductRefID: {},
	SemanticItemName: {}, SemanticItemDescription: {}, SemanticItemQuantity: {},
	SemanticItemUnitPrice: {}, SemanticItemCurrency: {}, SemanticItemVATRate: {},
	SemanticItemUnitOfMeasure: {},
	SemanticCustomerName:      {}, SemanticCustomerEmail: {}, SemanticCustomerPhone: {},
	SemanticCustomerAddress: {}, SemanticCustomerTaxID: {}, SemanticCustomerRegNo: {},
	SemanticProductName: {}, SemanticProductDescription: {}, SemanticProductPrice: {},
	SemanticProductCurrency: {}, SemanticProductVAT: {}, SemanticProductSKU: {},
	SemanticUnitOfMeasure: {},
}

// IsValid reports whether the tag is empty or one of the known types
func (s SemanticType) IsValid() bool {
	if s == SemanticNone {
		return true
	}
	_, ok := knownSemanticTypes[s]
	return ok
}

// SemanticIndex maps semantic tags to their columns. It is built once
// per table load so callers never scan the column list repeatedly. A
// tag maps to at most one column per table; duplicates are rejected at
// column creation time.
type SemanticIndex struct {
	byType map[SemanticType]*Column
}

// BuildSemanticIndex indexes the given columns by semantic tag.
// Untagged columns are skipped.
func BuildSemanticIndex(columns []Column) SemanticIndex {
	byType := make(map[SemanticType]*Column, len(columns))
	for i := range columns {
		if columns[i].SemanticType == SemanticNone {
			continue
		}
		if _, exists := byType[columns[i].SemanticType]; exists {
			continue
		}
		byType[columns[i].SemanticType] = &columns[i]
	}
	return SemanticIndex{byType: byType}
}

// Column returns the column tagged with the given semantic type
func (idx SemanticIndex) Column(tag SemanticType) (*Column, bool) {
	col, ok := idx.byType[tag]
	return col, ok
}

// Require returns an error naming the first missing tag, or nil when
// every tag is present
func (idx SemanticIndex) Require(tags ...SemanticType) error {
	for _, tag := range tags {
		if _, ok := idx.byType[tag]; !ok {
			return fmt.Errorf("%w: no column tagged %s", ErrSemanticColumnMissing, tag)
		}
	}
	return nil
}

// Has reports whether a column carries the given tag
func (idx SemanticIndex) Has(tag SemanticType) bool {
	_, ok := idx.byType[tag]
	return ok
}
