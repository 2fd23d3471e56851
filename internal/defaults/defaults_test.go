package defaults

import (
	"context"
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/cvp/internal/db"
	"github.com/Simplici0/cvp/internal/migrations"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "defaults.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(database, zerolog.Nop()))
	return database
}

func TestStore_GetCreatesFactoryDefaults(t *testing.T) {
	store := NewStore(newTestDB(t))

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Factory(), got)
}

func TestStore_EnsureIsIdempotent(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	inserted, err := store.Ensure(ctx)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.Ensure(ctx)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestStore_UpdateRoundTrip(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	want := Defaults{FixedCosts: 5000, VariableCost: 12.5, SellingPrice: 40, SalesVolume: 1000, TargetProfit: 800, ProductCount: 4}
	require.NoError(t, store.Update(ctx, want))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_UpdateRejectsInvalid(t *testing.T) {
	store := NewStore(newTestDB(t))
	ctx := context.Background()

	bad := Factory()
	bad.ProductCount = 11
	err := store.Update(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalid)

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ProductCount)
}

func TestDefaultsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Defaults)
		wantErr string
	}{
		{name: "factory", mutate: func(*Defaults) {}},
		{name: "negative fixed costs", mutate: func(d *Defaults) { d.FixedCosts = -1 }, wantErr: "fixed_costs"},
		{name: "nan price", mutate: func(d *Defaults) { d.SellingPrice = math.NaN() }, wantErr: "selling_price"},
		{name: "no products", mutate: func(d *Defaults) { d.ProductCount = 0 }, wantErr: "product_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Factory()
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
