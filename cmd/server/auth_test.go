package main

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginForm(email, password string) *strings.Reader {
	return strings.NewReader(url.Values{"email": {email}, "password": {password}}.Encode())
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/login", loginForm(testAdminEmail, testAdminPassword))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/defaults", rec.Header().Get("Location"))
	return sessionCookie(t, rec)
}

func TestSessionValue(t *testing.T) {
	auth := newAuthService(nil, "secret", false)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return now }

	value := auth.createSessionValue("admin@example.com")

	email, ok := auth.verifySessionValue(value)
	require.True(t, ok)
	assert.Equal(t, "admin@example.com", email)

	other := newAuthService(nil, "another-secret", false)
	other.now = auth.now
	_, ok = other.verifySessionValue(value)
	assert.False(t, ok, "signature from another secret must be rejected")

	payload, signature, _ := strings.Cut(value, ".")
	_, ok = auth.verifySessionValue(payload + "x." + signature)
	assert.False(t, ok, "tampered payload must be rejected")

	_, ok = auth.verifySessionValue("garbage")
	assert.False(t, ok)

	now = now.Add(sessionTTL)
	_, ok = auth.verifySessionValue(value)
	assert.False(t, ok, "expired session must be rejected")
}

func TestSessionValue_EmptySecretIsNotForgeable(t *testing.T) {
	auth := newAuthService(nil, "", false)
	require.NotEmpty(t, auth.sessionSecret)

	forged := (&authService{now: time.Now}).createSessionValue(testAdminEmail)
	_, ok := auth.verifySessionValue(forged)
	assert.False(t, ok)

	email, ok := auth.verifySessionValue(auth.createSessionValue(testAdminEmail))
	assert.True(t, ok)
	assert.Equal(t, testAdminEmail, email)
}

func TestAdminRequiresLogin(t *testing.T) {
	h := newTestServer(t, testConfig()).routes()

	rec := doRequest(t, h, http.MethodGet, "/admin/defaults", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	forged := &http.Cookie{Name: sessionCookieName, Value: "YWRtaW4.deadbeef"}
	rec = doRequest(t, h, http.MethodGet, "/admin/defaults", nil, forged)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newTestServer(t, testConfig()).routes()

	rec := doRequest(t, h, http.MethodPost, "/login", loginForm(testAdminEmail, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid credentials")

	rec = doRequest(t, h, http.MethodPost, "/login", loginForm("nobody@example.com", testAdminPassword))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := login(t, h)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	rec = doRequest(t, h, http.MethodGet, "/admin/defaults", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Calculator Defaults")

	rec = doRequest(t, h, http.MethodGet, "/login", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)
}

func TestAdminDefaultsUpdate(t *testing.T) {
	h := newTestServer(t, testConfig()).routes()
	cookie := login(t, h)

	form := url.Values{
		"fixed_costs":   {"5000"},
		"variable_cost": {"10"},
		"selling_price": {"30"},
		"sales_volume":  {"400"},
		"target_profit": {"1000"},
		"product_count": {"3"},
	}
	rec := doRequest(t, h, http.MethodPost, "/admin/defaults", strings.NewReader(form.Encode()), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Defaults saved.")

	rec = doRequest(t, h, http.MethodGet, "/api/defaults", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.String())
	assert.Equal(t, 5000.0, body["fixed_costs"])
	assert.Equal(t, 3.0, body["product_count"])

	rec = doRequest(t, h, http.MethodGet, "/cvp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// 5000 / (30 - 10)
	assert.Contains(t, rec.Body.String(), "250.00 units")

	rec = doRequest(t, h, http.MethodGet, "/sales-mix", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="Product 3"`)
}

func TestAdminDefaultsUpdate_Invalid(t *testing.T) {
	h := newTestServer(t, testConfig()).routes()
	cookie := login(t, h)

	tests := []struct {
		name     string
		form     url.Values
		wantBody string
	}{
		{
			name: "price not above cost",
			form: url.Values{
				"fixed_costs": {"1"}, "variable_cost": {"30"}, "selling_price": {"30"},
				"sales_volume": {"1"}, "target_profit": {"1"}, "product_count": {"2"},
			},
			wantBody: "selling_price must be greater than variable_cost",
		},
		{
			name: "product count out of range",
			form: url.Values{
				"fixed_costs": {"1"}, "variable_cost": {"1"}, "selling_price": {"2"},
				"sales_volume": {"1"}, "target_profit": {"1"}, "product_count": {"12"},
			},
			wantBody: "number of products must be between 1 and 10",
		},
		{
			name:     "missing values",
			form:     url.Values{"fixed_costs": {"1"}},
			wantBody: "variable_cost must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/admin/defaults", strings.NewReader(tt.form.Encode()), cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}

	rec := doRequest(t, h, http.MethodGet, "/api/defaults", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000.0, decodeBody(t, rec.Body.String())["fixed_costs"])
}
