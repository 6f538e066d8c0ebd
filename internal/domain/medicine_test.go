package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMedicine() Medicine {
	return Medicine{
		Name:          "Amoxicillin",
		Category:      "antibiotics",
		Dosage:        "500mg",
		Manufacturer:  "Acme Pharma",
		ExpiryDate:    NewDate(2099, time.January, 1),
		StockQuantity: 20,
	}
}

func TestMedicine_Validate(t *testing.T) {
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name   string
		mutate func(m *Medicine)
		field  string
	}{
		{"valid", func(m *Medicine) {}, ""},
		{"blank name", func(m *Medicine) { m.Name = "  " }, "name"},
		{"missing category", func(m *Medicine) { m.Category = "" }, "category"},
		{"missing dosage", func(m *Medicine) { m.Dosage = "" }, "dosage"},
		{"missing manufacturer", func(m *Medicine) { m.Manufacturer = "" }, "manufacturer"},
		{"missing expiry", func(m *Medicine) { m.ExpiryDate = Date{} }, "expiry_date"},
		{"negative stock", func(m *Medicine) { m.StockQuantity = -1 }, "stock_quantity"},
		{"negative price", func(m *Medicine) { m.Price = &negative }, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMedicine()
			tt.mutate(&m)
			err := m.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestMedicine_IsExpired(t *testing.T) {
	today := NewDate(2024, time.June, 15)
	m := validMedicine()

	m.ExpiryDate = today
	assert.True(t, m.IsExpired(today), "expiry on today counts as expired")

	m.ExpiryDate = NewDate(2024, time.June, 14)
	assert.True(t, m.IsExpired(today))

	m.ExpiryDate = NewDate(2024, time.June, 16)
	assert.False(t, m.IsExpired(today))
}

func TestMedicine_IsLowStock(t *testing.T) {
	m := validMedicine()
	m.StockQuantity = LowStockThreshold
	assert.True(t, m.IsLowStock())
	m.StockQuantity = LowStockThreshold + 1
	assert.False(t, m.IsLowStock())
}

func TestMedicineUpdate_Apply(t *testing.T) {
	m := validMedicine()
	assert.True(t, MedicineUpdate{}.IsEmpty())

	stock := 3
	price := decimal.RequireFromString("4.50")
	upd := MedicineUpdate{StockQuantity: &stock, Price: &price}
	assert.False(t, upd.IsEmpty())

	updated := upd.Apply(m)
	assert.Equal(t, 3, updated.StockQuantity)
	require.NotNil(t, updated.Price)
	assert.True(t, price.Equal(*updated.Price))
	assert.Equal(t, m.Name, updated.Name)
	assert.Equal(t, 20, m.StockQuantity, "Apply must not modify its argument")
}

func TestMedicineUpdate_ApplyClears(t *testing.T) {
	m := validMedicine()
	price := decimal.RequireFromString("4.50")
	desc := "note"
	m.Price = &price
	m.Description = &desc

	upd := MedicineUpdate{ClearPrice: true, ClearDescription: true, Price: &price}
	assert.False(t, upd.IsEmpty())

	updated := upd.Apply(m)
	assert.Nil(t, updated.Price)
	assert.Nil(t, updated.Description)
	assert.NotNil(t, m.Price)
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.March, 9)
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2025"`), &parsed))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2030, time.May, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2030-05-01", d.String())

	require.NoError(t, d.Scan([]byte("2031-02-03")))
	assert.Equal(t, "2031-02-03", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
