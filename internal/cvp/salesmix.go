package cvp

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ErrNoProducts is returned when a sales-mix calculation receives an empty product list.
var ErrNoProducts = errors.New("at least one product is required")

// Product represents one line of a sales-mix scenario.
// MixPercentage is derived from SalesVolume by DeriveMix.
type Product struct {
	Name          string
	SellPrice     float64
	VariableCost  float64
	SalesVolume   float64
	MixPercentage float64
}

// SalesMixResult groups the weighted figures of a multi-product scenario.
// TargetUnits and TargetSales are nil when no target profit was requested.
type SalesMixResult struct {
	WeightedContributionMargin float64
	WeightedSellingPrice       float64
	BreakEvenUnits             float64
	BreakEvenSales             float64
	TargetUnits                *float64
	TargetSales                *float64
}

// TargetMixResult apportions the combined target volume across products.
// TargetUnits and every entry of TargetVolumes are nil when the weighted margin is not positive
// or the target volume overflows.
type TargetMixResult struct {
	TotalContributionMargin float64
	TargetUnits             *float64
	TargetVolumes           map[string]*float64
}

// DeriveMix returns a copy of products with MixPercentage set to each product's share
// of the combined sales volume. Every share is 0 when the combined volume is 0.
func DeriveMix(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)

	total := floats.Sum(volumes(out))
	for i := range out {
		out[i].MixPercentage = 0
		if total > 0 {
			out[i].MixPercentage = (out[i].SalesVolume / total) * 100
		}
	}
	return out
}

// CalculateSalesMix computes weighted contribution margin and selling price, then break-even
// and, when targetProfit is set, target volume against those weighted figures.
// A weighted margin that is not positive yields ErrZeroContributionMargin.
func CalculateSalesMix(products []Product, fixedCosts float64, targetProfit *float64) (SalesMixResult, error) {
	if len(products) == 0 {
		return SalesMixResult{}, ErrNoProducts
	}

	weights := mixWeights(products)
	weightedMargin := floats.Dot(margins(products), weights)
	weightedPrice := floats.Dot(prices(products), weights)

	if weightedMargin <= 0 {
		return SalesMixResult{}, fmt.Errorf("%w: check product pricing and costs", ErrZeroContributionMargin)
	}

	breakEvenUnits := fixedCosts / weightedMargin
	result := SalesMixResult{
		WeightedContributionMargin: weightedMargin,
		WeightedSellingPrice:       weightedPrice,
		BreakEvenUnits:             breakEvenUnits,
		BreakEvenSales:             breakEvenUnits * weightedPrice,
	}
	if err := checkFinite(
		amount{"weighted_contribution_margin", result.WeightedContributionMargin},
		amount{"weighted_selling_price", result.WeightedSellingPrice},
		amount{"break_even_units", result.BreakEvenUnits},
		amount{"break_even_sales", result.BreakEvenSales},
	); err != nil {
		return SalesMixResult{}, err
	}

	if targetProfit != nil {
		targetUnits := (fixedCosts + *targetProfit) / weightedMargin
		targetSales := targetUnits * weightedPrice
		if err := checkFinite(
			amount{"target_units", targetUnits},
			amount{"target_sales", targetSales},
		); err != nil {
			return SalesMixResult{}, err
		}
		result.TargetUnits = &targetUnits
		result.TargetSales = &targetSales
	}

	return result, nil
}

// CalculateTargetProfitSalesMix derives the combined target volume and each product's share of it.
func CalculateTargetProfitSalesMix(products []Product, fixedCosts, targetProfit float64) TargetMixResult {
	weights := mixWeights(products)
	totalMargin := floats.Dot(margins(products), weights)

	result := TargetMixResult{
		TotalContributionMargin: totalMargin,
		TargetVolumes:           make(map[string]*float64, len(products)),
	}

	if totalMargin > 0 {
		if targetUnits := (fixedCosts + targetProfit) / totalMargin; finite(targetUnits) {
			result.TargetUnits = &targetUnits
		}
	}

	for i, p := range products {
		if result.TargetUnits == nil {
			result.TargetVolumes[p.Name] = nil
			continue
		}
		share := *result.TargetUnits * weights[i]
		result.TargetVolumes[p.Name] = &share
	}

	return result
}

// ValidateProducts checks names and amounts of a sales-mix scenario.
func ValidateProducts(products []Product) error {
	if len(products) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrNoProducts)
	}

	seen := make(map[string]struct{}, len(products))
	for i, p := range products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("%w: product %d has no name", ErrInvalidInput, i+1)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: product name %q is not unique", ErrInvalidInput, name)
		}
		seen[name] = struct{}{}

		if err := checkAmounts(
			amount{name + " sell_price", p.SellPrice},
			amount{name + " variable_cost", p.VariableCost},
			amount{name + " sales_volume", p.SalesVolume},
		); err != nil {
			return err
		}
	}
	return nil
}

func mixWeights(products []Product) []float64 {
	weights := make([]float64, len(products))
	for i, p := range products {
		weights[i] = p.MixPercentage / 100
	}
	return weights
}

func margins(products []Product) []float64 {
	out := make([]float64, len(products))
	for i, p := range products {
		out[i] = p.SellPrice - p.VariableCost
	}
	return out
}

func prices(products []Product) []float64 {
	out := make([]float64, len(products))
	for i, p := range products {
		out[i] = p.SellPrice
	}
	return out
}

func volumes(products []Product) []float64 {
	out := make([]float64, len(products))
	for i, p := range products {
		out[i] = p.SalesVolume
	}
	return out
}
