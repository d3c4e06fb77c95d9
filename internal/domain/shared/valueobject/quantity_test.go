package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity(t *testing.T) {
	t.Run("creates quantity with valid value", func(t *testing.T) {
		q, err := NewQuantity(decimal.NewFromFloat(2.5), "kg")
		require.NoError(t, err)
		assert.Equal(t, "kg", q.Unit())
		assert.True(t, q.Amount().Equal(decimal.NewFromFloat(2.5)))
	})

	t.Run("rejects negative value", func(t *testing.T) {
		_, err := NewQuantity(decimal.NewFromInt(-1), "buc")
		assert.Error(t, err)
	})
}

func TestNewQuantityFromString(t *testing.T) {
	q, err := NewQuantityFromString("3", "buc")
	require.NoError(t, err)
	assert.True(t, q.Amount().Equal(decimal.NewFromInt(3)))

	_, err = NewQuantityFromString("three", "buc")
	assert.Error(t, err)
}

func TestQuantityAdd(t *testing.T) {
	a, _ := NewQuantityFromFloat(1.5, "kg")
	b, _ := NewQuantityFromFloat(0.5, "kg")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(2)))

	c, _ := NewQuantityFromFloat(1, "buc")
	_, err = a.Add(c)
	assert.Error(t, err)
}

func TestQuantityMultiply(t *testing.T) {
	q, _ := NewQuantityFromFloat(2, "buc")
	result, err := q.Multiply(decimal.NewFromFloat(1.5))
	require.NoError(t, err)
	assert.True(t, result.Amount().Equal(decimal.NewFromInt(3)))
}

func TestQuantityString(t *testing.T) {
	q, _ := NewQuantityFromFloat(2.5, "kg")
	assert.Equal(t, "2.5 kg", q.String())

	bare := ZeroQuantity("")
	assert.Equal(t, "0", bare.String())
}

func TestQuantityJSON(t *testing.T) {
	q, _ := NewQuantityFromFloat(2, "buc")
	data, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"2","unit":"buc"}`, string(data))

	var parsed Quantity
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equals(q))

	err = json.Unmarshal([]byte(`{"value":"-1","unit":"buc"}`), &parsed)
	assert.Error(t, err)
}

func TestQuantityScan(t *testing.T) {
	var q Quantity
	require.NoError(t, q.Scan("4.25"))
	assert.True(t, q.Amount().Equal(decimal.NewFromFloat(4.25)))

	require.NoError(t, q.Scan(nil))
	assert.True(t, q.IsZero())
}
