package invoicing

import (
	"time"

	"github.com/google/uuid"

	"github.com/gridbase/backend/internal/domain/shared/valueobject"
)

// Status is the lifecycle state stored in the invoice status cell
type Status string

const (
	StatusDraft     Status = "draft"
	StatusIssued    Status = "issued"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Invoice is the read model projected from an invoices row and its
// cells. The row itself stays the source of truth; this projection is
// what handlers and the PDF renderer consume.
type Invoice struct {
	RowID         uuid.UUID
	Number        string
	Series        string
	IssueDate     time.Time
	DueDate       time.Time
	CustomerRowID *uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerTaxID string
	PaymentTerms  string
	PaymentMethod string
	Notes         string
	Status        Status
	BaseCurrency  valueobject.Currency
	Subtotal      valueobject.Money
	VATTotal      valueobject.Money
	Discount      valueobject.Money
	LateFee       valueobject.Money
	GrandTotal    valueobject.Money
	Items         []InvoiceItem
	CreatedAt     time.Time
}

// InvoiceItem is the read model projected from an invoice_items row
type InvoiceItem struct {
	RowID           uuid.UUID
	Name            string
	Description     string
	Quantity        valueobject.Quantity
	UnitPrice       valueobject.Money
	VATRate         string
	Unit            string
	ProductRefTable string
	ProductRefID    string
	LineNet         valueobject.Money
	LineTax         valueobject.Money
	LineGross       valueobject.Money
}
