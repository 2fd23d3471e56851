package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/cvp/internal/report"
	"github.com/Simplici0/cvp/web"
)

var pages = []string{
	"home.html",
	"login.html",
	"cvp.html",
	"sales_mix.html",
	"admin_defaults.html",
}

var printer = message.NewPrinter(language.English)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"number":   formatNumber,
		"percent":  formatPercent,
		"ratio":    func(v float64) string { return formatPercent(v * 100) },
		"leverage": report.Leverage,
		"inc":      func(i int) int { return i + 1 },
	}
}

func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").
			Funcs(templateFuncs()).
			ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return templates, nil
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.templates[page]
	if !ok {
		s.log.Error().Str("page", page).Msg("unknown template")
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.log.Error().Err(err).Str("page", page).Msg("failed to render template")
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func formatMoney(v float64) string {
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

func formatNumber(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}
