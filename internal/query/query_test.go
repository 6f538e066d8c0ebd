package query

import (
	"fmt"
	"testing"
	"time"

	"medicine-inventory-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func PtrTo[T any](v T) *T {
	return &v
}

var today = domain.NewDate(2024, time.June, 15)

func names(meds []domain.Medicine) []string {
	out := make([]string, 0, len(meds))
	for _, m := range meds {
		out = append(out, m.Name)
	}
	return out
}

func sampleMedicines() []domain.Medicine {
	return []domain.Medicine{
		{ID: "1", Name: "Paracetamol", Manufacturer: "Acme Pharma", Category: "painkillers", ExpiryDate: domain.NewDate(2020, time.January, 1), StockQuantity: 3},
		{ID: "2", Name: "Ibuprofen", Manufacturer: "Globex", Category: "painkillers", ExpiryDate: domain.NewDate(2099, time.January, 1), StockQuantity: 50},
		{ID: "3", Name: "Amoxicillin", Manufacturer: "acme pharma", Category: "antibiotics", ExpiryDate: today, StockQuantity: 10},
		{ID: "4", Name: "Vitamin C", Manufacturer: "Initech", Category: "vitamins", ExpiryDate: domain.NewDate(2024, time.June, 16), StockQuantity: 11},
	}
}

func TestApply_ExampleFromTwoMedicines(t *testing.T) {
	meds := []domain.Medicine{
		{ID: "a", Name: "A", Manufacturer: "M1", Category: "c", ExpiryDate: domain.NewDate(2020, time.January, 1), StockQuantity: 3},
		{ID: "b", Name: "B", Manufacturer: "M2", Category: "c", ExpiryDate: domain.NewDate(2099, time.January, 1), StockQuantity: 50},
	}

	expired := Apply(meds, Filter{Expired: PtrTo(true), Limit: DefaultLimit}, today)
	assert.Equal(t, []string{"A"}, names(expired.Items))

	searched := Apply(meds, Filter{Search: PtrTo("A"), Limit: DefaultLimit}, today)
	assert.Equal(t, []string{"A"}, names(searched.Items))

	assert.Equal(t, 1, Summarize(meds, today).LowStock)
}

func TestApply_Predicates(t *testing.T) {
	meds := sampleMedicines()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no predicates", NewFilter(), []string{"Paracetamol", "Ibuprofen", "Amoxicillin", "Vitamin C"}},
		{"search matches manufacturer case-insensitively", Filter{Search: PtrTo("ACME"), Limit: 10}, []string{"Paracetamol", "Amoxicillin"}},
		{"search matches name", Filter{Search: PtrTo("vita"), Limit: 10}, []string{"Vitamin C"}},
		{"empty search matches everything", Filter{Search: PtrTo(""), Limit: 10}, []string{"Paracetamol", "Ibuprofen", "Amoxicillin", "Vitamin C"}},
		{"category exact", Filter{Category: PtrTo("painkillers"), Limit: 10}, []string{"Paracetamol", "Ibuprofen"}},
		{"category is case-sensitive", Filter{Category: PtrTo("Painkillers"), Limit: 10}, []string{}},
		{"expired includes today", Filter{Expired: PtrTo(true), Limit: 10}, []string{"Paracetamol", "Amoxicillin"}},
		{"not expired", Filter{Expired: PtrTo(false), Limit: 10}, []string{"Ibuprofen", "Vitamin C"}},
		{"conjunction", Filter{Search: PtrTo("acme"), Category: PtrTo("painkillers"), Expired: PtrTo(true), Limit: 10}, []string{"Paracetamol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Apply(meds, tt.filter, today)
			assert.Equal(t, tt.want, names(page.Items))
			assert.Equal(t, len(tt.want), page.Total)
			for i := range page.Items {
				assert.True(t, tt.filter.Match(&page.Items[i], today))
			}
		})
	}
}

func TestApply_Pagination(t *testing.T) {
	meds := make([]domain.Medicine, 0, 25)
	for i := 0; i < 25; i++ {
		meds = append(meds, domain.Medicine{ID: fmt.Sprint(i), Name: fmt.Sprintf("med-%02d", i), ExpiryDate: domain.NewDate(2099, time.January, 1)})
	}

	page := Apply(meds, Filter{Skip: 0, Limit: 5}, today)
	assert.Equal(t, names(meds[:5]), names(page.Items))
	assert.Equal(t, 25, page.Total)

	page = Apply(meds, Filter{Skip: 20, Limit: 10}, today)
	assert.Equal(t, names(meds[20:]), names(page.Items))

	page = Apply(meds, Filter{Skip: 30, Limit: 10}, today)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 25, page.Total)

	page = Apply(meds, Filter{Limit: 0}, today)
	assert.Empty(t, page.Items)

	page = Apply(meds, Filter{Skip: -3, Limit: 2}, today)
	assert.Equal(t, 0, page.Skip)
	assert.Equal(t, names(meds[:2]), names(page.Items))

	page = Apply(meds, Filter{Limit: MaxLimit + 500}, today)
	assert.Equal(t, MaxLimit, page.Limit)
	assert.Len(t, page.Items, 25)
}

func TestApply_IdempotentAndNonMutating(t *testing.T) {
	meds := sampleMedicines()
	before := names(meds)
	f := Filter{Search: PtrTo("a"), Skip: 1, Limit: 2}

	first := Apply(meds, f, today)
	second := Apply(meds, f, today)
	require.Equal(t, first, second)
	assert.Equal(t, before, names(meds))
}

func TestSummarize(t *testing.T) {
	stats := Summarize(sampleMedicines(), today)
	assert.Equal(t, Stats{Total: 4, Expired: 2, LowStock: 2}, stats)

	assert.Equal(t, Stats{}, Summarize(nil, today))
}
