package chart

import (
	"math"

	"github.com/Simplici0/cvp/internal/cvp"
)

// Point is a single (volume, dollars) coordinate.
type Point struct {
	X float64
	Y float64
}

// Series is one named line of a LineChart.
type Series struct {
	Name   string
	Color  string
	Dashed bool
	Points []Point
}

// Marker annotates a vertical line from the x axis up to (X, Y).
type Marker struct {
	Label string
	Color string
	X     float64
	Y     float64
}

// LineChart is the data behind a cost/revenue break-even chart.
type LineChart struct {
	Title   string
	XLabel  string
	YLabel  string
	Series  []Series
	Markers []Marker
}

// Slice is one segment of a mix distribution chart.
type Slice struct {
	Label string
	Value float64
}

const (
	colorFixed   = "#2563eb"
	colorCost    = "#dc2626"
	colorRevenue = "#16a34a"
	colorBreak   = "#475569"
	colorTarget  = "#ca8a04"
)

// BreakEven builds the single-product chart: fixed cost, total cost and revenue lines over
// 0..SalesVolume, plus break-even and, when target is set, target-profit markers.
func BreakEven(in cvp.Input, res cvp.Result, target *cvp.TargetResult, targetProfit float64) LineChart {
	volume := in.SalesVolume

	chart := LineChart{
		Title:  "Break-Even Analysis",
		XLabel: "Sales Volume (Units)",
		YLabel: "Dollars ($)",
		Series: []Series{
			{
				Name:   "Fixed Costs",
				Color:  colorFixed,
				Dashed: true,
				Points: []Point{{0, in.FixedCosts}, {volume, in.FixedCosts}},
			},
			{
				Name:   "Total Cost",
				Color:  colorCost,
				Points: []Point{{0, in.FixedCosts}, {volume, in.FixedCosts + in.VariableCostPerUnit*volume}},
			},
			{
				Name:   "Total Revenue",
				Color:  colorRevenue,
				Points: []Point{{0, 0}, {volume, in.SellingPricePerUnit * volume}},
			},
		},
	}

	chart.Markers = append(chart.Markers, Marker{
		Label: "Break-Even",
		Color: colorBreak,
		X:     res.BreakEvenUnits,
		Y:     res.BreakEvenSales,
	})

	if target != nil {
		chart.Markers = append(chart.Markers, Marker{
			Label: "Target Profit",
			Color: colorTarget,
			X:     target.TargetUnits,
			Y:     targetProfit + in.FixedCosts + in.VariableCostPerUnit*target.TargetUnits,
		})
	}

	return chart
}

// SalesMixBreakEven builds the combined-volume chart of a sales-mix scenario. Revenue and
// variable cost grow with the weighted selling price and weighted variable cost.
func SalesMixBreakEven(products []cvp.Product, fixedCosts float64, res cvp.SalesMixResult) LineChart {
	volume := 0.0
	for _, p := range products {
		volume += p.SalesVolume
	}
	weightedVariableCost := res.WeightedSellingPrice - res.WeightedContributionMargin

	chart := LineChart{
		Title:  "Sales Mix Break-Even Analysis",
		XLabel: "Sales Volume (Units)",
		YLabel: "Dollars ($)",
		Series: []Series{
			{
				Name:   "Fixed Costs",
				Color:  colorFixed,
				Dashed: true,
				Points: []Point{{0, fixedCosts}, {volume, fixedCosts}},
			},
			{
				Name:   "Total Cost",
				Color:  colorCost,
				Points: []Point{{0, fixedCosts}, {volume, fixedCosts + weightedVariableCost*volume}},
			},
			{
				Name:   "Total Revenue",
				Color:  colorRevenue,
				Points: []Point{{0, 0}, {volume, res.WeightedSellingPrice * volume}},
			},
		},
		Markers: []Marker{{
			Label: "Break-Even",
			Color: colorBreak,
			X:     res.BreakEvenUnits,
			Y:     res.BreakEvenSales,
		}},
	}

	if res.TargetUnits != nil && res.TargetSales != nil {
		chart.Markers = append(chart.Markers, Marker{
			Label: "Target Profit",
			Color: colorTarget,
			X:     *res.TargetUnits,
			Y:     *res.TargetSales,
		})
	}

	return chart
}

// MixShares returns one slice per product valued by its mix percentage.
func MixShares(products []cvp.Product) []Slice {
	slices := make([]Slice, 0, len(products))
	for _, p := range products {
		slices = append(slices, Slice{Label: p.Name, Value: p.MixPercentage})
	}
	return slices
}

func (c LineChart) bounds() (maxX, minY, maxY float64) {
	for _, s := range c.Series {
		for _, p := range s.Points {
			maxX = math.Max(maxX, p.X)
			minY = math.Min(minY, p.Y)
			maxY = math.Max(maxY, p.Y)
		}
	}
	for _, m := range c.Markers {
		maxX = math.Max(maxX, m.X)
		minY = math.Min(minY, m.Y)
		maxY = math.Max(maxY, m.Y)
	}
	return maxX, minY, maxY
}
