package main

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/Simplici0/cvp/internal/chart"
	"github.com/Simplici0/cvp/internal/cvp"
	"github.com/Simplici0/cvp/internal/defaults"
	"github.com/Simplici0/cvp/internal/report"
)

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type homeViewData struct {
	baseViewData
	MaxProducts int
}

type loginViewData struct {
	baseViewData
}

type cvpViewData struct {
	baseViewData
	Form    cvpForm
	Result  *cvp.Result
	Target  *cvp.TargetResult
	Chart   template.HTML
	TextURL string
}

type salesMixViewData struct {
	baseViewData
	FixedCosts    float64
	TargetProfit  float64
	Products      []cvp.Product
	Result        *cvp.SalesMixResult
	TargetVolumes map[string]*float64
	MixChart      template.HTML
	Chart         template.HTML
	TextURL       string
	MinProducts   int
	MaxProducts   int
}

type defaultsViewData struct {
	baseViewData
	Defaults    defaults.Defaults
	MinProducts int
	MaxProducts int
}

type cvpAnalysis struct {
	Result cvp.Result
	Target cvp.TargetResult
}

func analyzeCVP(form cvpForm) (cvpAnalysis, error) {
	in := form.input()
	if err := in.Validate(); err != nil {
		return cvpAnalysis{}, err
	}
	res, err := cvp.Calculate(in)
	if err != nil {
		return cvpAnalysis{}, err
	}

	ti := form.targetInput()
	if err := ti.Validate(); err != nil {
		return cvpAnalysis{}, err
	}
	target, err := cvp.CalculateTargetProfit(ti)
	if err != nil {
		return cvpAnalysis{}, err
	}

	return cvpAnalysis{Result: res, Target: target}, nil
}

type salesMixAnalysis struct {
	Products []cvp.Product
	Result   cvp.SalesMixResult
	Target   cvp.TargetMixResult
}

func analyzeSalesMix(form salesMixForm) (salesMixAnalysis, error) {
	if err := cvp.ValidateProducts(form.Products); err != nil {
		return salesMixAnalysis{}, err
	}

	products := cvp.DeriveMix(form.Products)
	targetProfit := form.TargetProfit
	res, err := cvp.CalculateSalesMix(products, form.FixedCosts, &targetProfit)
	if err != nil {
		return salesMixAnalysis{Products: products}, err
	}

	return salesMixAnalysis{
		Products: products,
		Result:   res,
		Target:   cvp.CalculateTargetProfitSalesMix(products, form.FixedCosts, form.TargetProfit),
	}, nil
}

// calculationStatus maps calculation errors onto HTTP status codes.
func calculationStatus(err error) int {
	switch {
	case errors.Is(err, cvp.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, cvp.ErrZeroContributionMargin), errors.Is(err, cvp.ErrZeroSellingPrice),
		errors.Is(err, cvp.ErrUndefinedResult):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{MaxProducts: defaults.MaxProductCount})
}

func (s *server) loadDefaults(w http.ResponseWriter, r *http.Request) (defaults.Defaults, bool) {
	d, err := s.defaults.Get(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load defaults")
		http.Error(w, "failed to load defaults", http.StatusInternalServerError)
		return defaults.Defaults{}, false
	}
	return d, true
}

func (s *server) handleCVP(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDefaults(w, r)
	if !ok {
		return
	}

	form, err := parseCVPForm(r.URL.Query(), d)
	if err != nil {
		s.renderTemplate(w, http.StatusBadRequest, "cvp.html", cvpViewData{
			baseViewData: baseViewData{ErrorMessage: err.Error()},
			Form:         cvpFormFromDefaults(d),
		})
		return
	}

	data := cvpViewData{Form: form}
	analysis, err := analyzeCVP(form)
	if err != nil {
		data.ErrorMessage = err.Error()
		s.renderTemplate(w, calculationStatus(err), "cvp.html", data)
		return
	}

	data.Result = &analysis.Result
	data.Target = &analysis.Target
	data.TextURL = "/cvp/text?" + form.values().Encode()

	svg, err := chart.RenderLine(chart.BreakEven(form.input(), analysis.Result, &analysis.Target, form.TargetProfit), chart.Opts{})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to render break-even chart")
	}
	data.Chart = svg

	s.renderTemplate(w, http.StatusOK, "cvp.html", data)
}

func (s *server) handleCVPText(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDefaults(w, r)
	if !ok {
		return
	}

	form, err := parseCVPForm(r.URL.Query(), d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	analysis, err := analyzeCVP(form)
	if err != nil {
		http.Error(w, err.Error(), calculationStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.SingleProduct(form.input(), analysis.Result, &analysis.Target, form.TargetProfit)))
}

func (s *server) handleSalesMix(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDefaults(w, r)
	if !ok {
		return
	}

	data := salesMixViewData{
		MinProducts: defaults.MinProductCount,
		MaxProducts: defaults.MaxProductCount,
	}

	form, err := parseSalesMixForm(r.URL.Query(), d)
	if err != nil {
		fallback := salesMixFormFromDefaults(d)
		data.ErrorMessage = err.Error()
		data.FixedCosts = fallback.FixedCosts
		data.TargetProfit = fallback.TargetProfit
		data.Products = fallback.Products
		s.renderTemplate(w, http.StatusBadRequest, "sales_mix.html", data)
		return
	}

	data.FixedCosts = form.FixedCosts
	data.TargetProfit = form.TargetProfit
	data.Products = form.Products

	analysis, err := analyzeSalesMix(form)
	if err != nil {
		data.ErrorMessage = err.Error()
		if errors.Is(err, cvp.ErrZeroContributionMargin) {
			data.ErrorMessage = "Cannot calculate: weighted contribution margin is zero or negative. Check product pricing and costs."
		}
		s.renderTemplate(w, calculationStatus(err), "sales_mix.html", data)
		return
	}

	data.Products = analysis.Products
	data.Result = &analysis.Result
	data.TargetVolumes = analysis.Target.TargetVolumes
	data.TextURL = "/sales-mix/text?" + form.values().Encode()

	if svg, err := chart.RenderDonut(chart.MixShares(analysis.Products), chart.Opts{Title: "Sales Mix Distribution"}); err != nil {
		s.log.Warn().Err(err).Msg("failed to render sales mix chart")
	} else {
		data.MixChart = svg
	}
	if svg, err := chart.RenderLine(chart.SalesMixBreakEven(analysis.Products, form.FixedCosts, analysis.Result), chart.Opts{}); err != nil {
		s.log.Warn().Err(err).Msg("failed to render sales mix break-even chart")
	} else {
		data.Chart = svg
	}

	s.renderTemplate(w, http.StatusOK, "sales_mix.html", data)
}

func (s *server) handleSalesMixText(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDefaults(w, r)
	if !ok {
		return
	}

	form, err := parseSalesMixForm(r.URL.Query(), d)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	analysis, err := analyzeSalesMix(form)
	if err != nil {
		http.Error(w, err.Error(), calculationStatus(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(report.SalesMix(analysis.Products, form.FixedCosts, analysis.Result, analysis.Target)))
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if isAuthenticated(r, s.auth) {
		http.Redirect(w, r, "/admin/defaults", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, http.StatusOK, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	valid, err := s.auth.validateCredentials(r.Context(), email, password)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to validate credentials")
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.log.Warn().Str("email", email).Msg("rejected login")
		s.renderTemplate(w, http.StatusUnauthorized, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Try again."},
		})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/admin/defaults", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleAdminDefaultsForm(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDefaults(w, r)
	if !ok {
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_defaults.html", defaultsViewData{
		Defaults:    d,
		MinProducts: defaults.MinProductCount,
		MaxProducts: defaults.MaxProductCount,
	})
}

func (s *server) handleAdminDefaultsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := defaultsViewData{
		MinProducts: defaults.MinProductCount,
		MaxProducts: defaults.MaxProductCount,
	}

	d, err := parseDefaultsForm(r.PostForm)
	if err != nil {
		data.ErrorMessage = err.Error()
		data.Defaults = d
		s.renderTemplate(w, http.StatusBadRequest, "admin_defaults.html", data)
		return
	}

	if err := s.defaults.Update(r.Context(), d); err != nil {
		if errors.Is(err, defaults.ErrInvalid) {
			data.ErrorMessage = err.Error()
			data.Defaults = d
			s.renderTemplate(w, http.StatusBadRequest, "admin_defaults.html", data)
			return
		}
		s.log.Error().Err(err).Msg("failed to save defaults")
		http.Error(w, "failed to save defaults", http.StatusInternalServerError)
		return
	}

	s.log.Info().Interface("defaults", d).Msg("defaults updated")
	data.SuccessMessage = "Defaults saved."
	data.Defaults = d
	s.renderTemplate(w, http.StatusOK, "admin_defaults.html", data)
}
