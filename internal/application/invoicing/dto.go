package invoicing

import (
	"time"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared"
)

// CreateInvoiceRequest is the invoice creation payload. Decimal values
// travel as strings to keep their precision intact.
type CreateInvoiceRequest struct {
	CustomerRowID string `json:"customer_row_id"`
	CustomerName  string `json:"customer_name"`

	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date" binding:"required"`

	PaymentTerms  string `json:"payment_terms"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	Status        string `json:"status"`

	Items []CreateInvoiceItemRequest `json:"items" binding:"required"`

	Discount string `json:"discount"`
	LateFee  string `json:"late_fee"`

	// ExchangeRates maps a currency code to its rate into the tenant's
	// base currency. Currencies absent from the map convert at 1.
	ExchangeRates map[string]string `json:"exchange_rates"`
}

// CreateInvoiceItemRequest is one submitted line item. A product
// reference fills in name, price, VAT and currency when those fields
// are left empty.
type CreateInvoiceItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitPrice   string `json:"unit_price"`
	Currency    string `json:"currency"`
	VATRate     string `json:"vat_rate"`
	Unit        string `json:"unit"`

	ProductRefTable string `json:"product_ref_table"`
	ProductRefID    string `json:"product_ref_id"`
}

// InvoiceResponse is the invoice summary returned after creation and
// on reads. Amounts are rendered with two decimal places.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	Series        string                `json:"series"`
	IssueDate     string                `json:"issue_date"`
	DueDate       string                `json:"due_date"`
	CustomerRowID string                `json:"customer_row_id,omitempty"`
	CustomerName  string                `json:"customer_name,omitempty"`
	CustomerEmail string                `json:"customer_email,omitempty"`
	CustomerTaxID string                `json:"customer_tax_id,omitempty"`
	PaymentTerms  string                `json:"payment_terms,omitempty"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Status        string                `json:"status"`
	Currency      string                `json:"currency"`
	Subtotal      string                `json:"subtotal"`
	VATTotal      string                `json:"vat_total"`
	Discount      string                `json:"discount"`
	LateFee       string                `json:"late_fee"`
	Total         string                `json:"total"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// InvoiceItemResponse is one line item in an invoice response
type InvoiceItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Currency    string `json:"currency"`
	VATRate     string `json:"vat_rate"`
	Unit        string `json:"unit,omitempty"`
	LineNet     string `json:"line_net"`
	LineTax     string `json:"line_tax"`
	LineGross   string `json:"line_gross"`
}

// ListInvoicesRequest pages and filters the invoice listing
type ListInvoicesRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
}

// ListInvoicesResponse is the invoice listing joined with numbering
// statistics, matching what the invoices screen renders in one call
type ListInvoicesResponse struct {
	Invoices shared.Paginated[InvoiceResponse] `json:"invoices"`
	Stats    invoicing.NumberingStats          `json:"stats"`
}

// SubmissionResponse reports an e-invoice submission's state
type SubmissionResponse struct {
	ID           string `json:"id"`
	InvoiceRowID string `json:"invoice_row_id"`
	UploadIndex  string `json:"upload_index"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toInvoiceResponse(inv *invoicing.Invoice, withItems bool) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:            inv.RowID.String(),
		Number:        inv.Number,
		Series:        inv.Series,
		Status:        string(inv.Status),
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		CustomerTaxID: inv.CustomerTaxID,
		PaymentTerms:  inv.PaymentTerms,
		PaymentMethod: inv.PaymentMethod,
		Notes:         inv.Notes,
		Currency:      string(inv.BaseCurrency),
		Subtotal:      inv.Subtotal.StringFixed(2),
		VATTotal:      inv.VATTotal.StringFixed(2),
		Discount:      inv.Discount.StringFixed(2),
		LateFee:       inv.LateFee.StringFixed(2),
		Total:         inv.GrandTotal.StringFixed(2),
		CreatedAt:     inv.CreatedAt,
	}
	if !inv.IssueDate.IsZero() {
		resp.IssueDate = inv.IssueDate.Format(DateLayout)
	}
	if !inv.DueDate.IsZero() {
		resp.DueDate = inv.DueDate.Format(DateLayout)
	}
	if inv.CustomerRowID != nil {
		resp.CustomerRowID = inv.CustomerRowID.String()
	}
	if withItems {
		resp.Items = make([]InvoiceItemResponse, 0, len(inv.Items))
		for i := range inv.Items {
			resp.Items = append(resp.Items, toInvoiceItemResponse(&inv.Items[i]))
		}
	}
	return resp
}

func toInvoiceItemResponse(item *invoicing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:          item.RowID.String(),
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity.Amount().String(),
		UnitPrice:   item.UnitPrice.StringFixed(2),
		Currency:    string(item.UnitPrice.Currency()),
		VATRate:     item.VATRate,
		Unit:        item.Unit,
		LineNet:     item.LineNet.StringFixed(2),
		LineTax:     item.LineTax.StringFixed(2),
		LineGross:   item.LineGross.StringFixed(2),
	}
}

func toSubmissionResponse(sub *invoicing.Submission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:           sub.ID.String(),
		InvoiceRowID: sub.InvoiceRowID.String(),
		UploadIndex:  sub.UploadIndex,
		Status:       string(sub.Status),
		Message:      sub.Message,
		CreatedAt:    sub.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    sub.UpdatedAt.Format(time.RFC3339),
	}
}
