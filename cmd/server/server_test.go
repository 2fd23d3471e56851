package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cvp/internal/config"
	"github.com/Simplici0/cvp/internal/db"
	"github.com/Simplici0/cvp/internal/migrations"
	"github.com/Simplici0/cvp/internal/seed"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "s3cret-pass"
)

func testConfig() config.Config {
	return config.Config{
		AppEnv:             "test",
		SessionSecret:      "test-secret",
		APIRateLimit:       1000,
		CORSAllowedOrigins: []string{"*"},
	}
}

func newTestServer(t *testing.T, cfg config.Config) *server {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "cvp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(database, zerolog.Nop()))
	_, err = seed.Run(ctx, database, seed.Config{AdminEmail: testAdminEmail, AdminPassword: testAdminPassword})
	require.NoError(t, err)

	srv, err := newServer(cfg, zerolog.Nop(), database)
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, h http.Handler, method, target string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		if method == http.MethodPost && strings.HasPrefix(target, "/api/") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return serve(h, req)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", sessionCookieName)
	return nil
}
