package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gridbase/backend/internal/domain/invoicing"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
)

func statusIsValid(s string) bool {
	return invoicing.Status(s).IsValid()
}

// DateLayout is the wire format for invoice dates
const DateLayout = "2006-01-02"

// FieldError names one invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the full set of field errors found in a request.
// The HTTP layer renders it as a 400 with the structured list.
type ValidationErrors []FieldError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// validateCreateRequest checks the request field by field and collects
// every violation instead of stopping at the first
func validateCreateRequest(req CreateInvoiceRequest, today time.Time) ValidationErrors {
	var errs ValidationErrors

	if req.CustomerRowID == "" && req.CustomerName == "" {
		errs.add("customer_row_id", "either customer_row_id or customer_name is required")
	}
	if req.CustomerRowID != "" {
		if _, err := uuid.Parse(req.CustomerRowID); err != nil {
			errs.add("customer_row_id", "must be a valid id")
		}
	}

	issueDate := today
	if req.IssueDate != "" {
		parsed, err := time.Parse(DateLayout, req.IssueDate)
		if err != nil {
			errs.add("issue_date", "must be a date in YYYY-MM-DD format")
		} else {
			issueDate = parsed
		}
	}

	if req.DueDate == "" {
		errs.add("due_date", "is required")
	} else if dueDate, err := time.Parse(DateLayout, req.DueDate); err != nil {
		errs.add("due_date", "must be a date in YYYY-MM-DD format")
	} else if dueDate.Before(today.Truncate(24 * time.Hour)) {
		errs.add("due_date", "must not be in the past")
	} else if dueDate.Before(issueDate) {
		errs.add("due_date", "must not be before the issue date")
	}

	if req.Status != "" && !statusIsValid(req.Status) {
		errs.add("status", "unknown status %q", req.Status)
	}

	if len(req.Items) == 0 {
		errs.add("items", "at least one line item is required")
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		hasRef := item.ProductRefTable != "" && item.ProductRefID != ""
		if item.Name == "" && !hasRef {
			errs.add(prefix+".name", "is required unless a product reference is given")
		}
		if item.ProductRefID != "" {
			if _, err := uuid.Parse(item.ProductRefID); err != nil {
				errs.add(prefix+".product_ref_id", "must be a valid id")
			}
		}
		if item.Quantity == "" {
			errs.add(prefix+".quantity", "is required")
		} else if qty, err := decimal.NewFromString(item.Quantity); err != nil {
			errs.add(prefix+".quantity", "must be a number")
		} else if !qty.IsPositive() {
			errs.add(prefix+".quantity", "must be positive")
		}
		if item.UnitPrice != "" {
			if price, err := decimal.NewFromString(item.UnitPrice); err != nil {
				errs.add(prefix+".unit_price", "must be a number")
			} else if price.IsNegative() {
				errs.add(prefix+".unit_price", "must not be negative")
			}
		} else if !hasRef {
			errs.add(prefix+".unit_price", "is required unless a product reference is given")
		}
		if item.VATRate != "" {
			if rate, err := decimal.NewFromString(item.VATRate); err != nil {
				errs.add(prefix+".vat_rate", "must be a number")
			} else if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
				errs.add(prefix+".vat_rate", "must be between 0 and 100")
			}
		}
		if item.Currency != "" && !valueobject.IsValidCurrencyCode(item.Currency) {
			errs.add(prefix+".currency", "must be a 3-letter ISO currency code")
		}
	}

	for _, field := range []struct{ name, value string }{
		{"discount", req.Discount},
		{"late_fee", req.LateFee},
	} {
		if field.value == "" {
			continue
		}
		if amount, err := decimal.NewFromString(field.value); err != nil {
			errs.add(field.name, "must be a number")
		} else if amount.IsNegative() {
			errs.add(field.name, "must not be negative")
		}
	}

	for code, rate := range req.ExchangeRates {
		if !valueobject.IsValidCurrencyCode(code) {
			errs.add("exchange_rates", "invalid currency code %q", code)
			continue
		}
		if parsed, err := decimal.NewFromString(rate); err != nil || !parsed.IsPositive() {
			errs.add("exchange_rates", "rate for %s must be a positive number", code)
		}
	}

	return errs
}
