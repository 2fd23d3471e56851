package main

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Simplici0/cvp/internal/cvp"
	"github.com/Simplici0/cvp/internal/defaults"
)

type cvpForm struct {
	FixedCosts   float64
	VariableCost float64
	SellingPrice float64
	SalesVolume  float64
	TargetProfit float64
}

func cvpFormFromDefaults(d defaults.Defaults) cvpForm {
	return cvpForm{
		FixedCosts:   d.FixedCosts,
		VariableCost: d.VariableCost,
		SellingPrice: d.SellingPrice,
		SalesVolume:  d.SalesVolume,
		TargetProfit: d.TargetProfit,
	}
}

// parseCVPForm reads the single-product form. Missing fields keep their default.
func parseCVPForm(values url.Values, d defaults.Defaults) (cvpForm, error) {
	form := cvpFormFromDefaults(d)

	var err error
	if form.FixedCosts, err = parseFloatOr(values.Get("fixed_costs"), "fixed_costs", form.FixedCosts); err != nil {
		return form, err
	}
	if form.VariableCost, err = parseFloatOr(values.Get("variable_cost"), "variable_cost", form.VariableCost); err != nil {
		return form, err
	}
	if form.SellingPrice, err = parseFloatOr(values.Get("selling_price"), "selling_price", form.SellingPrice); err != nil {
		return form, err
	}
	if form.SalesVolume, err = parseFloatOr(values.Get("sales_volume"), "sales_volume", form.SalesVolume); err != nil {
		return form, err
	}
	if form.TargetProfit, err = parseFloatOr(values.Get("target_profit"), "target_profit", form.TargetProfit); err != nil {
		return form, err
	}

	return form, nil
}

func (f cvpForm) input() cvp.Input {
	return cvp.Input{
		FixedCosts:          f.FixedCosts,
		VariableCostPerUnit: f.VariableCost,
		SellingPricePerUnit: f.SellingPrice,
		SalesVolume:         f.SalesVolume,
	}
}

func (f cvpForm) targetInput() cvp.TargetInput {
	return cvp.TargetInput{
		FixedCosts:   f.FixedCosts,
		VariableCost: f.VariableCost,
		SellingPrice: f.SellingPrice,
		TargetProfit: f.TargetProfit,
	}
}

func (f cvpForm) values() url.Values {
	return url.Values{
		"fixed_costs":   {formatFloat(f.FixedCosts)},
		"variable_cost": {formatFloat(f.VariableCost)},
		"selling_price": {formatFloat(f.SellingPrice)},
		"sales_volume":  {formatFloat(f.SalesVolume)},
		"target_profit": {formatFloat(f.TargetProfit)},
	}
}

type salesMixForm struct {
	FixedCosts   float64
	TargetProfit float64
	Products     []cvp.Product
}

func salesMixFormFromDefaults(d defaults.Defaults) salesMixForm {
	form := salesMixForm{FixedCosts: d.FixedCosts, TargetProfit: d.TargetProfit}
	for i := 1; i <= d.ProductCount; i++ {
		form.Products = append(form.Products, defaultProduct(i, d))
	}
	return form
}

func defaultProduct(i int, d defaults.Defaults) cvp.Product {
	return cvp.Product{
		Name:         fmt.Sprintf("Product %d", i),
		SellPrice:    d.SellingPrice,
		VariableCost: d.VariableCost,
		SalesVolume:  d.SalesVolume,
	}
}

// parseSalesMixForm reads count and the numbered product fields name_i, price_i, cost_i and
// volume_i. Products without submitted values start from the defaults.
func parseSalesMixForm(values url.Values, d defaults.Defaults) (salesMixForm, error) {
	form := salesMixForm{FixedCosts: d.FixedCosts, TargetProfit: d.TargetProfit}

	count, err := parseProductCount(values.Get("count"), d.ProductCount)
	if err != nil {
		return form, err
	}
	if form.FixedCosts, err = parseFloatOr(values.Get("fixed_costs"), "fixed_costs", form.FixedCosts); err != nil {
		return form, err
	}
	if form.TargetProfit, err = parseFloatOr(values.Get("target_profit"), "target_profit", form.TargetProfit); err != nil {
		return form, err
	}

	for i := 1; i <= count; i++ {
		p := defaultProduct(i, d)
		if name := strings.TrimSpace(values.Get(fmt.Sprintf("name_%d", i))); name != "" {
			p.Name = name
		}
		if p.SellPrice, err = parseFloatOr(values.Get(fmt.Sprintf("price_%d", i)), p.Name+" price", p.SellPrice); err != nil {
			return form, err
		}
		if p.VariableCost, err = parseFloatOr(values.Get(fmt.Sprintf("cost_%d", i)), p.Name+" variable cost", p.VariableCost); err != nil {
			return form, err
		}
		if p.SalesVolume, err = parseFloatOr(values.Get(fmt.Sprintf("volume_%d", i)), p.Name+" sales volume", p.SalesVolume); err != nil {
			return form, err
		}
		form.Products = append(form.Products, p)
	}

	return form, nil
}

func (f salesMixForm) values() url.Values {
	values := url.Values{
		"count":         {strconv.Itoa(len(f.Products))},
		"fixed_costs":   {formatFloat(f.FixedCosts)},
		"target_profit": {formatFloat(f.TargetProfit)},
	}
	for i, p := range f.Products {
		n := i + 1
		values.Set(fmt.Sprintf("name_%d", n), p.Name)
		values.Set(fmt.Sprintf("price_%d", n), formatFloat(p.SellPrice))
		values.Set(fmt.Sprintf("cost_%d", n), formatFloat(p.VariableCost))
		values.Set(fmt.Sprintf("volume_%d", n), formatFloat(p.SalesVolume))
	}
	return values
}

func parseDefaultsForm(values url.Values) (defaults.Defaults, error) {
	var d defaults.Defaults

	var err error
	if d.FixedCosts, err = parseNonNegativeFloat(values.Get("fixed_costs"), "fixed_costs"); err != nil {
		return d, err
	}
	if d.VariableCost, err = parseNonNegativeFloat(values.Get("variable_cost"), "variable_cost"); err != nil {
		return d, err
	}
	if d.SellingPrice, err = parseNonNegativeFloat(values.Get("selling_price"), "selling_price"); err != nil {
		return d, err
	}
	if d.SalesVolume, err = parseNonNegativeFloat(values.Get("sales_volume"), "sales_volume"); err != nil {
		return d, err
	}
	if d.TargetProfit, err = parseNonNegativeFloat(values.Get("target_profit"), "target_profit"); err != nil {
		return d, err
	}
	if d.ProductCount, err = parseProductCount(values.Get("product_count"), 0); err != nil {
		return d, err
	}
	if d.SellingPrice <= d.VariableCost {
		return d, fmt.Errorf("selling_price must be greater than variable_cost")
	}

	return d, nil
}

func parseProductCount(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" && fallback > 0 {
		return fallback, nil
	}

	count, err := strconv.Atoi(raw)
	if err != nil || count < defaults.MinProductCount || count > defaults.MaxProductCount {
		return 0, fmt.Errorf("number of products must be between %d and %d", defaults.MinProductCount, defaults.MaxProductCount)
	}
	return count, nil
}

func parseFloatOr(raw, field string, fallback float64) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return parseNonNegativeFloat(raw, field)
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
