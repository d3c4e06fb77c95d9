package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	RON Currency = "RON" // Romanian Leu (default)
	EUR Currency = "EUR" // Euro
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
	CHF Currency = "CHF" // Swiss Franc
	HUF Currency = "HUF" // Hungarian Forint
)

// DefaultCurrency is assumed wherever a tenant has not configured one.
const DefaultCurrency = RON

// IsValidCurrencyCode reports whether s is a plausible ISO 4217 code
// (exactly three uppercase letters). Rate tables may carry currencies
// beyond the named constants, so any well-formed code is accepted.
func IsValidCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

var hundred = decimal.NewFromInt(100)

// Money is an immutable monetary amount in a single currency. The
// amount keeps full decimal precision; rounding is a rendering
// concern, handled by StringFixed at the presentation boundary.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney builds a Money. The currency must be non-empty; negative
// amounts are allowed, callers that need non-negativity check it
// themselves.
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromFloat builds a Money from a float64.
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// NewMoneyFromString builds a Money from a decimal string.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyRON builds a Money in the default currency.
func NewMoneyRON(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: RON}
}

// Zero returns zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) withAmount(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: m.currency}
}

func (m Money) requireSameCurrency(other Money, op string) error {
	if m.currency != other.currency {
		return fmt.Errorf("cannot %s money with different currencies: %s and %s", op, m.currency, other.currency)
	}
	return nil
}

func mustMoney(m Money, err error) Money {
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add sums two amounts of the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.requireSameCurrency(other, "add"); err != nil {
		return Money{}, err
	}
	return m.withAmount(m.amount.Add(other.amount)), nil
}

// MustAdd is Add panicking on currency mismatch, for use where both
// operands are known to share a currency.
func (m Money) MustAdd(other Money) Money {
	return mustMoney(m.Add(other))
}

// Subtract takes the difference of two amounts of the same currency.
func (m Money) Subtract(other Money) (Money, error) {
	if err := m.requireSameCurrency(other, "subtract"); err != nil {
		return Money{}, err
	}
	return m.withAmount(m.amount.Sub(other.amount)), nil
}

// MustSubtract is Subtract panicking on currency mismatch.
func (m Money) MustSubtract(other Money) Money {
	return mustMoney(m.Subtract(other))
}

// Multiply scales the amount by a factor.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return m.withAmount(m.amount.Mul(factor))
}

// Divide divides the amount, rejecting a zero divisor.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, errors.New("cannot divide by zero")
	}
	return m.withAmount(m.amount.Div(divisor)), nil
}

// Negate flips the sign.
func (m Money) Negate() Money {
	return m.withAmount(m.amount.Neg())
}

// Convert expresses the amount in another currency at the given rate
// (1 unit of m.currency = rate units of target). Converting into the
// same currency is the identity regardless of rate.
func (m Money) Convert(target Currency, rate decimal.Decimal) (Money, error) {
	if target == "" {
		return Money{}, errors.New("target currency cannot be empty")
	}
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("exchange rate must be positive, got %s", rate)
	}
	if m.currency == target {
		return m, nil
	}
	return Money{amount: m.amount.Mul(rate), currency: target}, nil
}

// Round rounds to the given number of decimal places.
func (m Money) Round(places int32) Money {
	return m.withAmount(m.amount.Round(places))
}

// Equals reports amount and currency equality.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) compare(other Money) (int, error) {
	if err := m.requireSameCurrency(other, "compare"); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// LessThan compares two amounts of the same currency.
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.compare(other)
	return c < 0, err
}

// GreaterThan compares two amounts of the same currency.
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.compare(other)
	return c > 0, err
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// StringFixed renders the amount with a fixed number of decimals.
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

type moneyJSON struct {
	Amount   string   `json:"amount"`
	Currency Currency `json:"currency"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency})
}

// UnmarshalJSON implements json.Unmarshaler. An empty currency is
// tolerated here and caught by the consumers that require one.
func (m *Money) UnmarshalJSON(data []byte) error {
	var wire moneyJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(wire.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount, m.currency = amount, wire.Currency
	return nil
}

// Value implements driver.Valuer. Only the amount is stored; the
// currency lives in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for the amount. The currency defaults
// to DefaultCurrency when unset.
func (m *Money) Scan(value any) error {
	if err := scanDecimal(value, &m.amount, "Money"); err != nil {
		return err
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}

// CalculatePercentage returns percent% of the amount.
func (m Money) CalculatePercentage(percent decimal.Decimal) Money {
	return m.withAmount(m.amount.Mul(percent).Div(hundred))
}

// ApplyDiscount reduces the amount by a percentage discount.
func (m Money) ApplyDiscount(discountPercent decimal.Decimal) Money {
	return m.MustSubtract(m.CalculatePercentage(discountPercent))
}

// scanDecimal reads a string or []byte database value into dst. A nil
// value scans as zero. typ names the destination type in errors.
func scanDecimal(value any, dst *decimal.Decimal, typ string) error {
	if value == nil {
		*dst = decimal.Zero
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typ)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	*dst = d
	return nil
}
