package cvp

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrZeroSellingPrice is returned when a ratio would divide by a zero selling price.
	ErrZeroSellingPrice = errors.New("selling price is zero")
	// ErrZeroContributionMargin is returned when break-even or target volume would divide by a zero margin.
	ErrZeroContributionMargin = errors.New("contribution margin is zero")
	// ErrInvalidInput wraps every boundary validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUndefinedResult is returned when finite inputs overflow a derived figure to ±Inf or NaN.
	ErrUndefinedResult = errors.New("result is out of range")
)

// Input represents the single-product cost and volume parameters.
type Input struct {
	FixedCosts          float64
	VariableCostPerUnit float64
	SellingPricePerUnit float64
	SalesVolume         float64
}

// Result contains every metric derived from a single-product Input.
type Result struct {
	ContributionMargin      float64
	ContributionMarginRatio float64
	BreakEvenUnits          float64
	BreakEvenSales          float64
	MarginOfSafety          float64
	OperatingLeverage       float64
	OperatingIncome         float64
	TotalContributionMargin float64
}

// LeverageUnbounded reports whether operating income is exactly zero.
func (r Result) LeverageUnbounded() bool {
	return math.IsInf(r.OperatingLeverage, 1)
}

// TargetInput represents the parameters of a target-profit calculation.
type TargetInput struct {
	FixedCosts   float64
	VariableCost float64
	SellingPrice float64
	TargetProfit float64
}

// TargetResult holds the unit volume needed to reach a desired profit.
type TargetResult struct {
	TargetUnits float64
}

// Calculate computes contribution margin, break-even, leverage and margin of safety.
// It does not check that the selling price exceeds the variable cost; see Input.Validate.
func Calculate(in Input) (Result, error) {
	if in.SellingPricePerUnit == 0 {
		return Result{}, ErrZeroSellingPrice
	}

	contributionMargin := in.SellingPricePerUnit - in.VariableCostPerUnit
	if contributionMargin == 0 {
		return Result{}, ErrZeroContributionMargin
	}
	contributionMarginRatio := contributionMargin / in.SellingPricePerUnit

	breakEvenUnits := in.FixedCosts / contributionMargin
	breakEvenSales := breakEvenUnits * in.SellingPricePerUnit

	totalContributionMargin := contributionMargin * in.SalesVolume
	operatingIncome := totalContributionMargin - in.FixedCosts

	operatingLeverage := math.Inf(1)
	if operatingIncome != 0 {
		operatingLeverage = totalContributionMargin / operatingIncome
	}

	marginOfSafety := 0.0
	actualSales := in.SalesVolume * in.SellingPricePerUnit
	if actualSales > 0 {
		marginOfSafety = ((actualSales - breakEvenSales) / actualSales) * 100
	}

	// Only an exactly zero operating income may leave leverage unbounded.
	if operatingIncome != 0 && !finite(operatingLeverage) {
		return Result{}, fmt.Errorf("%w: operating_leverage", ErrUndefinedResult)
	}
	if err := checkFinite(
		amount{"contribution_margin", contributionMargin},
		amount{"contribution_margin_ratio", contributionMarginRatio},
		amount{"break_even_units", breakEvenUnits},
		amount{"break_even_sales", breakEvenSales},
		amount{"margin_of_safety", marginOfSafety},
		amount{"operating_income", operatingIncome},
		amount{"total_contribution_margin", totalContributionMargin},
	); err != nil {
		return Result{}, err
	}

	return Result{
		ContributionMargin:      contributionMargin,
		ContributionMarginRatio: contributionMarginRatio,
		BreakEvenUnits:          breakEvenUnits,
		BreakEvenSales:          breakEvenSales,
		MarginOfSafety:          marginOfSafety,
		OperatingLeverage:       operatingLeverage,
		OperatingIncome:         operatingIncome,
		TotalContributionMargin: totalContributionMargin,
	}, nil
}

// CalculateTargetProfit returns the units required to earn TargetProfit on top of fixed costs.
func CalculateTargetProfit(in TargetInput) (TargetResult, error) {
	contributionMargin := in.SellingPrice - in.VariableCost
	if contributionMargin == 0 {
		return TargetResult{}, ErrZeroContributionMargin
	}

	targetUnits := (in.FixedCosts + in.TargetProfit) / contributionMargin
	if err := checkFinite(amount{"target_units", targetUnits}); err != nil {
		return TargetResult{}, err
	}

	return TargetResult{TargetUnits: targetUnits}, nil
}

// Validate checks the boundary rules the calculator relies on.
func (in Input) Validate() error {
	if err := checkAmounts(
		amount{"fixed_costs", in.FixedCosts},
		amount{"variable_cost", in.VariableCostPerUnit},
		amount{"selling_price", in.SellingPricePerUnit},
		amount{"sales_volume", in.SalesVolume},
	); err != nil {
		return err
	}
	return checkPriceAboveCost(in.SellingPricePerUnit, in.VariableCostPerUnit)
}

// Validate checks the boundary rules for a target-profit calculation.
func (in TargetInput) Validate() error {
	if err := checkAmounts(
		amount{"fixed_costs", in.FixedCosts},
		amount{"variable_cost", in.VariableCost},
		amount{"selling_price", in.SellingPrice},
		amount{"target_profit", in.TargetProfit},
	); err != nil {
		return err
	}
	return checkPriceAboveCost(in.SellingPrice, in.VariableCost)
}

type amount struct {
	name  string
	value float64
}

func checkPriceAboveCost(price, cost float64) error {
	if price <= cost {
		return fmt.Errorf("%w: selling price must be greater than variable cost per unit", ErrInvalidInput)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkFinite(amounts ...amount) error {
	for _, a := range amounts {
		if !finite(a.value) {
			return fmt.Errorf("%w: %s", ErrUndefinedResult, a.name)
		}
	}
	return nil
}

func checkAmounts(amounts ...amount) error {
	for _, a := range amounts {
		if !finite(a.value) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, a.name)
		}
		if a.value < 0 {
			return fmt.Errorf("%w: %s must be greater than or equal to 0", ErrInvalidInput, a.name)
		}
	}
	return nil
}
