package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/cvp/internal/db"
	"github.com/Simplici0/cvp/internal/defaults"
	"github.com/Simplici0/cvp/internal/migrations"
)

func newSeedDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "seed-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(database, zerolog.Nop()))
	return database
}

func TestRunIsIdempotent(t *testing.T) {
	database := newSeedDB(t)
	ctx := context.Background()

	cfg := Config{
		AdminEmail:    "admin@cvp.local",
		AdminPassword: "12345",
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, cfg)
		require.NoError(t, err, "iteration %d", i)
		if i == 0 {
			assert.Equal(t, 2, stats.Inserts, "first run inserts admin and defaults")
			continue
		}
		assert.Equal(t, 0, stats.Inserts, "iteration %d", i)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, 1, "admin@cvp.local")
	assertCount(t, database, `SELECT COUNT(*) FROM input_defaults WHERE id = 1`, 1)

	var hash string
	require.NoError(t, database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "admin@cvp.local").Scan(&hash))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("12345")))

	got, err := defaults.NewStore(database).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults.Factory(), got)
}

func TestRunWithoutAdminCredentialsSeedsDefaultsOnly(t *testing.T) {
	database := newSeedDB(t)

	stats, err := Run(context.Background(), database, Config{AdminEmail: "admin@cvp.local"})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Inserts)
	assertCount(t, database, `SELECT COUNT(*) FROM users`, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, expected int, args ...any) {
	t.Helper()

	var count int
	require.NoError(t, database.QueryRow(query, args...).Scan(&count))
	assert.Equal(t, expected, count)
}
