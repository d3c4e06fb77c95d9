package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var errNegativeQuantity = errors.New("quantity cannot be negative")

// Quantity is an immutable invoice line quantity. The decimal value
// covers items sold by weight or volume; the unit is free-form text
// carried alongside it ("buc", "kg", "h").
type Quantity struct {
	value decimal.Decimal
	unit  string
}

// NewQuantity builds a Quantity, rejecting negative values.
func NewQuantity(value decimal.Decimal, unit string) (Quantity, error) {
	if value.IsNegative() {
		return Quantity{}, errNegativeQuantity
	}
	return Quantity{value: value, unit: unit}, nil
}

// NewQuantityFromFloat builds a Quantity from a float64.
func NewQuantityFromFloat(value float64, unit string) (Quantity, error) {
	return NewQuantity(decimal.NewFromFloat(value), unit)
}

// NewQuantityFromString builds a Quantity from a decimal string.
func NewQuantityFromString(value string, unit string) (Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity string: %w", err)
	}
	return NewQuantity(d, unit)
}

// ZeroQuantity returns zero of the given unit.
func ZeroQuantity(unit string) Quantity {
	return Quantity{value: decimal.Zero, unit: unit}
}

func (q Quantity) withValue(value decimal.Decimal) Quantity {
	return Quantity{value: value, unit: q.unit}
}

func (q Quantity) Amount() decimal.Decimal { return q.value }
func (q Quantity) Unit() string            { return q.unit }
func (q Quantity) IsZero() bool            { return q.value.IsZero() }
func (q Quantity) IsPositive() bool        { return q.value.IsPositive() }

// Add sums two quantities of the same unit.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if q.unit != other.unit {
		return Quantity{}, fmt.Errorf("cannot add quantities with different units: %s and %s", q.unit, other.unit)
	}
	return q.withValue(q.value.Add(other.value)), nil
}

// Multiply scales the quantity by a factor. A negative factor is
// rejected since it would break the non-negative invariant.
func (q Quantity) Multiply(factor decimal.Decimal) (Quantity, error) {
	result := q.value.Mul(factor)
	if result.IsNegative() {
		return Quantity{}, errors.New("resulting quantity would be negative")
	}
	return q.withValue(result), nil
}

// Equals reports value and unit equality.
func (q Quantity) Equals(other Quantity) bool {
	return q.unit == other.unit && q.value.Equal(other.value)
}

func (q Quantity) String() string {
	if q.unit == "" {
		return q.value.String()
	}
	return q.value.String() + " " + q.unit
}

type quantityJSON struct {
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// MarshalJSON implements json.Marshaler.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Value: q.value.String(), Unit: q.unit})
}

// UnmarshalJSON implements json.Unmarshaler, enforcing the
// non-negative invariant on the way in.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var wire quantityJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	value, err := decimal.NewFromString(wire.Value)
	if err != nil {
		return fmt.Errorf("invalid value: %w", err)
	}
	if value.IsNegative() {
		return errNegativeQuantity
	}
	q.value, q.unit = value, wire.Unit
	return nil
}

// Value implements driver.Valuer. The unit lives in its own column.
func (q Quantity) Value() (driver.Value, error) {
	return q.value.String(), nil
}

// Scan implements sql.Scanner for the numeric value only.
func (q *Quantity) Scan(value any) error {
	return scanDecimal(value, &q.value, "Quantity")
}
