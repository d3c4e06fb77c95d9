package invoicing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gridbase/backend/internal/domain/shared"
	"github.com/gridbase/backend/internal/domain/shared/valueobject"
)

// LineItemInput is one line of an invoice as submitted, possibly
// enriched from a referenced product row
type LineItemInput struct {
	Name            string
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	Currency        valueobject.Currency
	VATRate         decimal.Decimal
	Unit            string
	ProductRefTable string
	ProductRefID    string
}

var oneHundred = decimal.NewFromInt(100)

// Validate checks the arithmetic preconditions for one line
func (l LineItemInput) Validate() error {
	if !l.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", shared.ErrInvalidInput, l.Quantity)
	}
	if l.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative, got %s", shared.ErrInvalidInput, l.UnitPrice)
	}
	if l.VATRate.IsNegative() || l.VATRate.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: VAT rate must be between 0 and 100, got %s", shared.ErrInvalidInput, l.VATRate)
	}
	if !valueobject.IsValidCurrencyCode(string(l.Currency)) {
		return fmt.Errorf("%w: invalid currency code %q", shared.ErrInvalidInput, l.Currency)
	}
	return nil
}

// RateTable maps a currency to its exchange rate into the base
// currency (1 unit of the key currency = rate units of base). An empty
// table means no conversion; a currency absent from a non-empty table
// is likewise taken at face value.
type RateTable map[valueobject.Currency]decimal.Decimal

// rate returns the conversion factor into base for the given currency
func (rt RateTable) rate(currency, base valueobject.Currency) decimal.Decimal {
	if currency == base {
		return decimal.NewFromInt(1)
	}
	if r, ok := rt[currency]; ok && r.IsPositive() {
		return r
	}
	return decimal.NewFromInt(1)
}

// Adjustments are invoice-level amounts in the base currency applied
// after line summation
type Adjustments struct {
	Discount decimal.Decimal
	LateFee  decimal.Decimal
}

// LineTotal is the computed amounts for one line, in the base currency
type LineTotal struct {
	Net   valueobject.Money
	Tax   valueobject.Money
	Gross valueobject.Money
}

// Totals is the computed invoice summary. All amounts are in the base
// currency and keep full decimal precision; rendering rounds to two
// places at the presentation boundary.
type Totals struct {
	Lines      []LineTotal
	Subtotal   valueobject.Money
	VATTotal   valueobject.Money
	Discount   valueobject.Money
	LateFee    valueobject.Money
	GrandTotal valueobject.Money
}

// CalculateTotals computes per-line and invoice totals:
//
//	line net  = quantity x unit price, converted into base
//	line tax  = line net x VAT rate / 100
//	subtotal  = sum of line nets
//	VAT total = sum of line taxes
//	grand     = subtotal + VAT total - discount + late fee
//
// Every line is validated first; the calculation is all-or-nothing.
func CalculateTotals(items []LineItemInput, base valueobject.Currency, rates RateTable, adj Adjustments) (*Totals, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", shared.ErrInvalidInput)
	}
	if !valueobject.IsValidCurrencyCode(string(base)) {
		return nil, fmt.Errorf("%w: invalid base currency %q", shared.ErrInvalidInput, base)
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	subtotal := valueobject.Zero(base)
	vatTotal := valueobject.Zero(base)
	lines := make([]LineTotal, 0, len(items))

	for _, item := range items {
		rate := rates.rate(item.Currency, base)
		net := item.Quantity.Mul(item.UnitPrice).Mul(rate)
		tax := net.Mul(item.VATRate).Div(oneHundred)

		netMoney, err := valueobject.NewMoney(net, base)
		if err != nil {
			return nil, err
		}
		taxMoney, err := valueobject.NewMoney(tax, base)
		if err != nil {
			return nil, err
		}

		lines = append(lines, LineTotal{
			Net:   netMoney,
			Tax:   taxMoney,
			Gross: netMoney.MustAdd(taxMoney),
		})
		subtotal = subtotal.MustAdd(netMoney)
		vatTotal = vatTotal.MustAdd(taxMoney)
	}

	discount, err := valueobject.NewMoney(adj.Discount, base)
	if err != nil {
		return nil, err
	}
	lateFee, err := valueobject.NewMoney(adj.LateFee, base)
	if err != nil {
		return nil, err
	}
	if discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount cannot be negative", shared.ErrInvalidInput)
	}
	if lateFee.IsNegative() {
		return nil, fmt.Errorf("%w: late fee cannot be negative", shared.ErrInvalidInput)
	}

	grand := subtotal.MustAdd(vatTotal).MustSubtract(discount).MustAdd(lateFee)

	return &Totals{
		Lines:      lines,
		Subtotal:   subtotal,
		VATTotal:   vatTotal,
		Discount:   discount,
		LateFee:    lateFee,
		GrandTotal: grand,
	}, nil
}
