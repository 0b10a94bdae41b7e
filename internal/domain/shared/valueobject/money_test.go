package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(1500.50), PKR)
		require.NoError(t, err)
		assert.Equal(t, PKR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1500.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyPKRFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyPKRFromString("2500.00")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(2500)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyPKRFromString("not-a-number")
		assert.Error(t, err)
	})
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		a := NewMoneyPKRFromInt(1000)
		b := NewMoneyPKRFromInt(250)
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.Equal(t, int64(1250), sum.Amount().IntPart())
	})

	t.Run("rejects mixed currencies", func(t *testing.T) {
		a := NewMoneyPKRFromInt(1000)
		b, _ := NewMoney(decimal.NewFromInt(10), USD)
		_, err := a.Add(b)
		assert.Error(t, err)
	})

	t.Run("does not mutate operands", func(t *testing.T) {
		a := NewMoneyPKRFromInt(1000)
		_ = a.MustAdd(NewMoneyPKRFromInt(500))
		assert.Equal(t, int64(1000), a.Amount().IntPart())
	})
}

func TestMoneySubtract(t *testing.T) {
	a := NewMoneyPKRFromInt(1000)
	b := NewMoneyPKRFromInt(1300)
	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.Equal(t, int64(-300), diff.Amount().IntPart())
}

func TestMoneyClampZero(t *testing.T) {
	t.Run("negative clamps to zero", func(t *testing.T) {
		m := NewMoneyPKRFromInt(-500).ClampZero()
		assert.True(t, m.IsZero())
		assert.Equal(t, PKR, m.Currency())
	})

	t.Run("positive is unchanged", func(t *testing.T) {
		m := NewMoneyPKRFromInt(500).ClampZero()
		assert.Equal(t, int64(500), m.Amount().IntPart())
	})

	t.Run("zero is unchanged", func(t *testing.T) {
		assert.True(t, ZeroPKR().ClampZero().IsZero())
	})
}

func TestMoneyCalculatePercentage(t *testing.T) {
	m := NewMoneyPKRFromInt(2000)
	discount := m.CalculatePercentage(decimal.NewFromInt(25))
	assert.Equal(t, int64(500), discount.Amount().IntPart())
}

func TestMoneyComparisons(t *testing.T) {
	a := NewMoneyPKRFromInt(100)
	b := NewMoneyPKRFromInt(200)

	less, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, less)

	gte, err := b.GreaterThanOrEqual(a)
	require.NoError(t, err)
	assert.True(t, gte)

	usd, _ := NewMoney(decimal.NewFromInt(100), USD)
	_, err = a.LessThan(usd)
	assert.Error(t, err)
}

func TestMoneyJSON(t *testing.T) {
	m := NewMoneyPKRFromInt(1750)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"1750","currency":"PKR"}`, string(data))

	var parsed Money
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equals(m))
}

func TestMoneyScan(t *testing.T) {
	t.Run("scans string value", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan("1234.56"))
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(1234.56)))
		assert.Equal(t, DefaultCurrency, m.Currency())
	})

	t.Run("scans nil as zero", func(t *testing.T) {
		var m Money
		require.NoError(t, m.Scan(nil))
		assert.True(t, m.IsZero())
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		var m Money
		assert.Error(t, m.Scan(true))
	})
}
