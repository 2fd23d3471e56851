package main

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/cvp/internal/cvp"
	"github.com/Simplici0/cvp/internal/httpx"
)

const maxBodyBytes = 1 << 20

type cvpRequest struct {
	FixedCosts   float64  `json:"fixed_costs" validate:"gte=0"`
	VariableCost float64  `json:"variable_cost" validate:"gte=0"`
	SellingPrice float64  `json:"selling_price" validate:"gtfield=VariableCost"`
	SalesVolume  float64  `json:"sales_volume" validate:"gte=0"`
	TargetProfit *float64 `json:"target_profit,omitempty" validate:"omitempty,gte=0"`
}

type cvpResponse struct {
	ContributionMargin         float64  `json:"contribution_margin"`
	ContributionMarginRatio    float64  `json:"contribution_margin_ratio"`
	BreakEvenUnits             float64  `json:"break_even_units"`
	BreakEvenSales             float64  `json:"break_even_sales"`
	MarginOfSafety             float64  `json:"margin_of_safety"`
	OperatingLeverage          *float64 `json:"operating_leverage"`
	OperatingLeverageUnbounded bool     `json:"operating_leverage_unbounded"`
	OperatingIncome            float64  `json:"operating_income"`
	TotalContributionMargin    float64  `json:"total_contribution_margin"`
	TargetUnits                *float64 `json:"target_units,omitempty"`
}

type targetProfitRequest struct {
	FixedCosts   float64 `json:"fixed_costs" validate:"gte=0"`
	VariableCost float64 `json:"variable_cost" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gtfield=VariableCost"`
	TargetProfit float64 `json:"target_profit" validate:"gte=0"`
}

type targetProfitResponse struct {
	TargetUnits float64 `json:"target_units"`
}

type productRequest struct {
	Name         string  `json:"name" validate:"required"`
	SellPrice    float64 `json:"sell_price" validate:"gte=0"`
	VariableCost float64 `json:"variable_cost" validate:"gte=0"`
	SalesVolume  float64 `json:"sales_volume" validate:"gte=0"`
}

type salesMixRequest struct {
	Products     []productRequest `json:"products" validate:"required,min=1,unique=Name,dive"`
	FixedCosts   float64          `json:"fixed_costs" validate:"gte=0"`
	TargetProfit *float64         `json:"target_profit,omitempty" validate:"omitempty,gte=0"`
}

type salesMixTargetRequest struct {
	Products     []productRequest `json:"products" validate:"required,min=1,unique=Name,dive"`
	FixedCosts   float64          `json:"fixed_costs" validate:"gte=0"`
	TargetProfit float64          `json:"target_profit" validate:"gte=0"`
}

type productMixResponse struct {
	Name               string  `json:"name"`
	MixPercentage      float64 `json:"mix_percentage"`
	ContributionMargin float64 `json:"contribution_margin"`
}

type salesMixResponse struct {
	Products                   []productMixResponse `json:"products"`
	WeightedContributionMargin float64              `json:"weighted_contribution_margin"`
	WeightedSellingPrice       float64              `json:"weighted_selling_price"`
	BreakEvenUnits             float64              `json:"break_even_units"`
	BreakEvenSales             float64              `json:"break_even_sales"`
	TargetUnits                *float64             `json:"target_units"`
	TargetSales                *float64             `json:"target_sales"`
}

type salesMixTargetResponse struct {
	TotalContributionMargin float64             `json:"total_contribution_margin"`
	TargetUnits             *float64            `json:"target_units"`
	TargetVolumes           map[string]*float64 `json:"target_volumes"`
}

type defaultsResponse struct {
	FixedCosts   float64 `json:"fixed_costs"`
	VariableCost float64 `json:"variable_cost"`
	SellingPrice float64 `json:"selling_price"`
	SalesVolume  float64 `json:"sales_volume"`
	TargetProfit float64 `json:"target_profit"`
	ProductCount int     `json:"product_count"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *server) handleAPIDefaults(w http.ResponseWriter, r *http.Request) {
	d, err := s.defaults.Get(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load defaults")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "failed to load defaults")
		return
	}

	httpx.JSON(w, http.StatusOK, defaultsResponse{
		FixedCosts:   d.FixedCosts,
		VariableCost: d.VariableCost,
		SellingPrice: d.SellingPrice,
		SalesVolume:  d.SalesVolume,
		TargetProfit: d.TargetProfit,
		ProductCount: d.ProductCount,
	})
}

func (s *server) handleAPICVP(w http.ResponseWriter, r *http.Request) {
	var req cvpRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	res, err := cvp.Calculate(cvp.Input{
		FixedCosts:          req.FixedCosts,
		VariableCostPerUnit: req.VariableCost,
		SellingPricePerUnit: req.SellingPrice,
		SalesVolume:         req.SalesVolume,
	})
	if err != nil {
		s.calculationProblem(w, err)
		return
	}

	resp := cvpResponse{
		ContributionMargin:         res.ContributionMargin,
		ContributionMarginRatio:    res.ContributionMarginRatio,
		BreakEvenUnits:             res.BreakEvenUnits,
		BreakEvenSales:             res.BreakEvenSales,
		MarginOfSafety:             res.MarginOfSafety,
		OperatingLeverageUnbounded: res.LeverageUnbounded(),
		OperatingIncome:            res.OperatingIncome,
		TotalContributionMargin:    res.TotalContributionMargin,
	}
	if !resp.OperatingLeverageUnbounded {
		leverage := res.OperatingLeverage
		resp.OperatingLeverage = &leverage
	}

	if req.TargetProfit != nil {
		target, err := cvp.CalculateTargetProfit(cvp.TargetInput{
			FixedCosts:   req.FixedCosts,
			VariableCost: req.VariableCost,
			SellingPrice: req.SellingPrice,
			TargetProfit: *req.TargetProfit,
		})
		if err != nil {
			s.calculationProblem(w, err)
			return
		}
		resp.TargetUnits = &target.TargetUnits
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (s *server) handleAPITargetProfit(w http.ResponseWriter, r *http.Request) {
	var req targetProfitRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	target, err := cvp.CalculateTargetProfit(cvp.TargetInput{
		FixedCosts:   req.FixedCosts,
		VariableCost: req.VariableCost,
		SellingPrice: req.SellingPrice,
		TargetProfit: req.TargetProfit,
	})
	if err != nil {
		s.calculationProblem(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, targetProfitResponse{TargetUnits: target.TargetUnits})
}

func (s *server) handleAPISalesMix(w http.ResponseWriter, r *http.Request) {
	var req salesMixRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	products, err := productsFromRequest(req.Products)
	if err != nil {
		s.calculationProblem(w, err)
		return
	}

	res, err := cvp.CalculateSalesMix(products, req.FixedCosts, req.TargetProfit)
	if err != nil {
		s.calculationProblem(w, err)
		return
	}

	resp := salesMixResponse{
		Products:                   make([]productMixResponse, 0, len(products)),
		WeightedContributionMargin: res.WeightedContributionMargin,
		WeightedSellingPrice:       res.WeightedSellingPrice,
		BreakEvenUnits:             res.BreakEvenUnits,
		BreakEvenSales:             res.BreakEvenSales,
		TargetUnits:                res.TargetUnits,
		TargetSales:                res.TargetSales,
	}
	for _, p := range products {
		resp.Products = append(resp.Products, productMixResponse{
			Name:               p.Name,
			MixPercentage:      p.MixPercentage,
			ContributionMargin: p.SellPrice - p.VariableCost,
		})
	}

	httpx.JSON(w, http.StatusOK, resp)
}

func (s *server) handleAPISalesMixTargetProfit(w http.ResponseWriter, r *http.Request) {
	var req salesMixTargetRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	products, err := productsFromRequest(req.Products)
	if err != nil {
		s.calculationProblem(w, err)
		return
	}

	res := cvp.CalculateTargetProfitSalesMix(products, req.FixedCosts, req.TargetProfit)
	httpx.JSON(w, http.StatusOK, salesMixTargetResponse{
		TotalContributionMargin: res.TotalContributionMargin,
		TargetUnits:             res.TargetUnits,
		TargetVolumes:           res.TargetVolumes,
	})
}

func productsFromRequest(in []productRequest) ([]cvp.Product, error) {
	products := make([]cvp.Product, 0, len(in))
	for _, p := range in {
		products = append(products, cvp.Product{
			Name:         p.Name,
			SellPrice:    p.SellPrice,
			VariableCost: p.VariableCost,
			SalesVolume:  p.SalesVolume,
		})
	}
	if err := cvp.ValidateProducts(products); err != nil {
		return nil, err
	}
	return cvp.DeriveMix(products), nil
}

func (s *server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", validationDetail(err))
		return false
	}
	return true
}

func (s *server) calculationProblem(w http.ResponseWriter, err error) {
	status := calculationStatus(err)
	switch status {
	case http.StatusBadRequest:
		httpx.Problem(w, status, "Invalid Input", err.Error())
	case http.StatusUnprocessableEntity:
		httpx.Problem(w, status, "Calculation Undefined", err.Error())
	default:
		s.log.Error().Err(err).Msg("calculation failed")
		httpx.Problem(w, status, "Internal Server Error", "calculation failed")
	}
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, found := strings.Cut(field, "."); found {
			field = rest
		}

		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param()))
		case "gtfield":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, snakeCase(fe.Param())))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must contain at least %s item", field, fe.Param()))
		case "unique":
			msgs = append(msgs, fmt.Sprintf("%s must have unique %s values", field, snakeCase(fe.Param())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
