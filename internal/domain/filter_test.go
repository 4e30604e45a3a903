package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/shopassist/internal/domain"
)

func TestParsePriceBound(t *testing.T) {
	tests := []struct {
		raw  string
		want *float64
	}{
		{"", nil},
		{"   ", nil},
		{"abc", nil},
		{"$10", nil},
		{".", nil},
		{"-", nil},
		{"0", ptr(0)},
		{"45.99", ptr(45.99)},
		{" 12 ", ptr(12)},
		{"12abc", ptr(12)},
		{"7.", ptr(7)},
		{".5", ptr(0.5)},
		{"-3", ptr(-3)},
		{"1e2", ptr(100)},
		{"1e999", nil},
		{"Infinity", nil},
		{"-Infinity", nil},
		{"inf", nil},
		{"NaN", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := domain.ParsePriceBound(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestFilterSettersAndClear(t *testing.T) {
	f := domain.DefaultFilters()
	assert.Equal(t, domain.CategoryAll, f.Category)

	f.SetCategory("Electronics")
	f.SetMinPrice("10")
	f.SetMaxPrice("not a number")
	f.SetInStockOnly(true)

	assert.Equal(t, "Electronics", f.Category)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, 10.0, *f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.True(t, f.InStockOnly)

	// setters are idempotent
	again := f.Clone()
	again.SetCategory("Electronics")
	again.SetMinPrice("10")
	assert.Equal(t, f, again)

	f.Clear()
	assert.Equal(t, domain.DefaultFilters(), f)
}

func TestFilterCloneDoesNotShareBounds(t *testing.T) {
	f := domain.DefaultFilters()
	f.SetMinPrice("5")

	c := f.Clone()
	*c.MinPrice = 99

	assert.Equal(t, 5.0, *f.MinPrice)
	assert.Equal(t, "5", domain.FormatPriceBound(f.MinPrice))
	assert.Equal(t, "", domain.FormatPriceBound(nil))
}

func ptr(v float64) *float64 { return &v }

func TestFilterReadModeValid(t *testing.T) {
	assert.True(t, domain.FilterReadLive.Valid())
	assert.True(t, domain.FilterReadSnapshot.Valid())
	assert.False(t, domain.FilterReadMode("").Valid())
	assert.False(t, domain.FilterReadMode("eager").Valid())
}
