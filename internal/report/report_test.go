package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cvp/internal/cvp"
)

func TestSingleProduct(t *testing.T) {
	in := cvp.Input{FixedCosts: 2000, VariableCostPerUnit: 25, SellingPricePerUnit: 50, SalesVolume: 300}
	res, err := cvp.Calculate(in)
	require.NoError(t, err)

	body := SingleProduct(in, res, &cvp.TargetResult{TargetUnits: 200}, 3000)

	for _, expected := range []string{
		"Contribution margin per unit: $25.00",
		"Contribution margin ratio: 50.00%",
		"Break-even point: 80.00 units ($4000.00)",
		"Margin of safety: 73.33%",
		"Operating income: $5500.00",
		"Operating leverage: 1.36",
		"Target profit $3000.00 requires 200.00 units",
	} {
		assert.Contains(t, body, expected)
	}
}

func TestSingleProductNegativeIncomeAndUnboundedLeverage(t *testing.T) {
	in := cvp.Input{FixedCosts: 2000, VariableCostPerUnit: 25, SellingPricePerUnit: 50, SalesVolume: 80}
	res, err := cvp.Calculate(in)
	require.NoError(t, err)

	body := SingleProduct(in, res, nil, 0)
	assert.Contains(t, body, "Operating leverage: ∞")
	assert.NotContains(t, body, "Target profit")

	in.SalesVolume = 40
	res, err = cvp.Calculate(in)
	require.NoError(t, err)
	assert.Contains(t, SingleProduct(in, res, nil, 0), "Operating income: -$1000.00")
}

func TestSalesMix(t *testing.T) {
	products := cvp.DeriveMix([]cvp.Product{
		{Name: "Product 2", SellPrice: 60, VariableCost: 30, SalesVolume: 100},
		{Name: "Product 1", SellPrice: 20, VariableCost: 12, SalesVolume: 300},
	})
	target := 1000.0
	res, err := cvp.CalculateSalesMix(products, 1700, &target)
	require.NoError(t, err)
	split := cvp.CalculateTargetProfitSalesMix(products, 1700, target)

	body := SalesMix(products, 1700, res, split)

	assert.Contains(t, body, "- Product 2: price $60.00, variable cost $30.00, volume 100.00 units, mix 25.00%")
	assert.Contains(t, body, "Weighted average contribution margin: $13.50")
	assert.Contains(t, body, "Target volume: 200.00 units ($6000.00)")
	assert.Contains(t, body, "- Product 2: 50.00 units\n- Product 1: 150.00 units\n")
}

func TestFormattersTolerateNonFiniteValues(t *testing.T) {
	assert.Equal(t, "n/a", money(math.Inf(1)))
	assert.Equal(t, "n/a", units(math.NaN()))
	assert.Equal(t, "n/a%", percent(math.Inf(-1)))
	assert.Equal(t, "-$12.50", money(-12.5))
}
