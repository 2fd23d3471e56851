// Package report renders calculation results as plain text.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/cvp/internal/cvp"
)

// SingleProduct renders the metrics of one product and, when target is set, its target volume.
func SingleProduct(in cvp.Input, res cvp.Result, target *cvp.TargetResult, targetProfit float64) string {
	var b strings.Builder

	b.WriteString("CVP Analysis\n")
	b.WriteString("\nInputs:\n")
	fmt.Fprintf(&b, "- Fixed costs: %s\n", money(in.FixedCosts))
	fmt.Fprintf(&b, "- Variable cost per unit: %s\n", money(in.VariableCostPerUnit))
	fmt.Fprintf(&b, "- Selling price per unit: %s\n", money(in.SellingPricePerUnit))
	fmt.Fprintf(&b, "- Sales volume: %s units\n", units(in.SalesVolume))

	b.WriteString("\nResults:\n")
	fmt.Fprintf(&b, "Contribution margin per unit: %s\n", money(res.ContributionMargin))
	fmt.Fprintf(&b, "Contribution margin ratio: %s\n", percent(res.ContributionMarginRatio*100))
	fmt.Fprintf(&b, "Break-even point: %s units (%s)\n", units(res.BreakEvenUnits), money(res.BreakEvenSales))
	fmt.Fprintf(&b, "Margin of safety: %s\n", percent(res.MarginOfSafety))
	fmt.Fprintf(&b, "Total contribution margin: %s\n", money(res.TotalContributionMargin))
	fmt.Fprintf(&b, "Operating income: %s\n", money(res.OperatingIncome))
	fmt.Fprintf(&b, "Operating leverage: %s\n", Leverage(res))

	if target != nil {
		fmt.Fprintf(&b, "\nTarget profit %s requires %s units\n", money(targetProfit), units(target.TargetUnits))
	}

	return b.String()
}

// SalesMix renders a sales-mix result and the per-product apportionment of the target volume.
func SalesMix(products []cvp.Product, fixedCosts float64, res cvp.SalesMixResult, target cvp.TargetMixResult) string {
	var b strings.Builder

	b.WriteString("Sales Mix Analysis\n")
	fmt.Fprintf(&b, "\nFixed costs: %s\n", money(fixedCosts))
	b.WriteString("\nProducts:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s: price %s, variable cost %s, volume %s units, mix %s\n",
			p.Name, money(p.SellPrice), money(p.VariableCost), units(p.SalesVolume), percent(p.MixPercentage))
	}

	b.WriteString("\nResults:\n")
	fmt.Fprintf(&b, "Weighted average contribution margin: %s\n", money(res.WeightedContributionMargin))
	fmt.Fprintf(&b, "Weighted average selling price: %s\n", money(res.WeightedSellingPrice))
	fmt.Fprintf(&b, "Break-even point: %s units (%s)\n", units(res.BreakEvenUnits), money(res.BreakEvenSales))
	if res.TargetUnits != nil && res.TargetSales != nil {
		fmt.Fprintf(&b, "Target volume: %s units (%s)\n", units(*res.TargetUnits), money(*res.TargetSales))
	}

	if target.TargetUnits != nil {
		b.WriteString("\nTarget volume by product:\n")
		for _, p := range products {
			if v := target.TargetVolumes[p.Name]; v != nil {
				fmt.Fprintf(&b, "- %s: %s units\n", p.Name, units(*v))
			}
		}
	}

	return b.String()
}

// Leverage formats operating leverage, using ∞ at exact break-even.
func Leverage(res cvp.Result) string {
	if res.LeverageUnbounded() {
		return "∞"
	}
	return fixed(res.OperatingLeverage)
}

// fixed renders v with two decimals, or "n/a" when v is not finite.
func fixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func units(v float64) string {
	return fixed(v)
}

func percent(v float64) string {
	return fixed(v) + "%"
}
