package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cvp/internal/defaults"
)

func TestParseCVPForm(t *testing.T) {
	d := defaults.Factory()

	form, err := parseCVPForm(url.Values{}, d)
	require.NoError(t, err)
	assert.Equal(t, cvpFormFromDefaults(d), form)

	form, err = parseCVPForm(url.Values{"selling_price": {" 75.5 "}, "target_profit": {"0"}}, d)
	require.NoError(t, err)
	assert.Equal(t, 75.5, form.SellingPrice)
	assert.Equal(t, 0.0, form.TargetProfit)
	assert.Equal(t, 2000.0, form.FixedCosts)

	_, err = parseCVPForm(url.Values{"variable_cost": {"NaN"}}, d)
	assert.EqualError(t, err, "variable_cost must be a number")

	_, err = parseCVPForm(url.Values{"fixed_costs": {"-1"}}, d)
	assert.EqualError(t, err, "fixed_costs must be greater than or equal to 0")
}

func TestCVPFormValuesRoundTrip(t *testing.T) {
	d := defaults.Factory()
	form := cvpForm{FixedCosts: 1234.5, VariableCost: 3.25, SellingPrice: 9, SalesVolume: 10, TargetProfit: 0}

	parsed, err := parseCVPForm(form.values(), d)
	require.NoError(t, err)
	assert.Equal(t, form, parsed)
}

func TestParseSalesMixForm(t *testing.T) {
	d := defaults.Factory()

	form, err := parseSalesMixForm(url.Values{}, d)
	require.NoError(t, err)
	require.Len(t, form.Products, 2)
	assert.Equal(t, "Product 1", form.Products[0].Name)
	assert.Equal(t, "Product 2", form.Products[1].Name)
	assert.Equal(t, 50.0, form.Products[1].SellPrice)
	assert.Equal(t, 3000.0, form.TargetProfit)

	form, err = parseSalesMixForm(url.Values{
		"count":    {"3"},
		"name_1":   {"  Basic "},
		"price_1":  {"20"},
		"cost_1":   {"12"},
		"volume_1": {"300"},
		"name_2":   {""},
	}, d)
	require.NoError(t, err)
	require.Len(t, form.Products, 3)
	assert.Equal(t, "Basic", form.Products[0].Name)
	assert.Equal(t, 20.0, form.Products[0].SellPrice)
	assert.Equal(t, 12.0, form.Products[0].VariableCost)
	assert.Equal(t, "Product 2", form.Products[1].Name)
	assert.Equal(t, "Product 3", form.Products[2].Name)

	_, err = parseSalesMixForm(url.Values{"count": {"2"}, "price_2": {"x"}}, d)
	assert.EqualError(t, err, "Product 2 price must be a number")
}

func TestSalesMixFormValuesRoundTrip(t *testing.T) {
	d := defaults.Factory()
	form, err := parseSalesMixForm(url.Values{"count": {"4"}, "name_4": {"Deluxe"}, "volume_4": {"12.5"}}, d)
	require.NoError(t, err)

	parsed, err := parseSalesMixForm(form.values(), d)
	require.NoError(t, err)
	assert.Equal(t, form, parsed)
}

func TestParseProductCount(t *testing.T) {
	tests := []struct {
		raw      string
		fallback int
		want     int
		wantErr  bool
	}{
		{raw: "", fallback: 2, want: 2},
		{raw: "1", want: 1},
		{raw: " 10 ", want: 10},
		{raw: "", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "11", wantErr: true},
		{raw: "2.5", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseProductCount(tt.raw, tt.fallback)
		if tt.wantErr {
			assert.Error(t, err, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseDefaultsForm(t *testing.T) {
	d, err := parseDefaultsForm(url.Values{
		"fixed_costs":   {"2000"},
		"variable_cost": {"25"},
		"selling_price": {"50"},
		"sales_volume":  {"300"},
		"target_profit": {"3000"},
		"product_count": {"2"},
	})
	require.NoError(t, err)
	assert.Equal(t, defaults.Factory(), d)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$4,000.00", formatMoney(4000))
	assert.Equal(t, "-$1,234.57", formatMoney(-1234.567))
	assert.Equal(t, "80.00", formatNumber(80))
	assert.Equal(t, "73.33%", formatPercent(73.3333))
}
