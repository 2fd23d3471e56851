package defaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// Product count bounds offered by the sales-mix form.
const (
	MinProductCount = 1
	MaxProductCount = 10
)

// ErrInvalid wraps validation failures of Defaults.
var ErrInvalid = errors.New("invalid defaults")

// Defaults are the values the calculator forms start from.
type Defaults struct {
	FixedCosts   float64
	VariableCost float64
	SellingPrice float64
	SalesVolume  float64
	TargetProfit float64
	ProductCount int
}

// Factory returns the built-in defaults used before an admin changes them.
func Factory() Defaults {
	return Defaults{
		FixedCosts:   2000,
		VariableCost: 25,
		SellingPrice: 50,
		SalesVolume:  300,
		TargetProfit: 3000,
		ProductCount: 2,
	}
}

// Validate checks amounts are finite and non-negative and the product count is in range.
func (d Defaults) Validate() error {
	amounts := []struct {
		name  string
		value float64
	}{
		{"fixed_costs", d.FixedCosts},
		{"variable_cost", d.VariableCost},
		{"selling_price", d.SellingPrice},
		{"sales_volume", d.SalesVolume},
		{"target_profit", d.TargetProfit},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) || a.value < 0 {
			return fmt.Errorf("%w: %s must be a number greater than or equal to 0", ErrInvalid, a.name)
		}
	}
	if d.ProductCount < MinProductCount || d.ProductCount > MaxProductCount {
		return fmt.Errorf("%w: product_count must be between %d and %d", ErrInvalid, MinProductCount, MaxProductCount)
	}
	return nil
}

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store persists the defaults singleton row.
type Store struct {
	db DBTX
}

// NewStore returns a Store backed by db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Ensure inserts the factory defaults unless the singleton already exists.
// It reports whether a row was inserted.
func (s *Store) Ensure(ctx context.Context) (bool, error) {
	f := Factory()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO input_defaults (
			id,
			fixed_costs,
			variable_cost,
			selling_price,
			sales_volume,
			target_profit,
			product_count
		) VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, f.FixedCosts, f.VariableCost, f.SellingPrice, f.SalesVolume, f.TargetProfit, f.ProductCount)
	if err != nil {
		return false, fmt.Errorf("insert default input_defaults: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert default input_defaults: %w", err)
	}
	return affected > 0, nil
}

// Get returns the stored defaults, creating the singleton first when missing.
func (s *Store) Get(ctx context.Context) (Defaults, error) {
	if _, err := s.Ensure(ctx); err != nil {
		return Defaults{}, err
	}

	var d Defaults
	err := s.db.QueryRowContext(ctx, `
		SELECT fixed_costs, variable_cost, selling_price, sales_volume, target_profit, product_count
		FROM input_defaults
		WHERE id = 1
	`).Scan(
		&d.FixedCosts,
		&d.VariableCost,
		&d.SellingPrice,
		&d.SalesVolume,
		&d.TargetProfit,
		&d.ProductCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Defaults{}, fmt.Errorf("input_defaults singleton not found")
		}
		return Defaults{}, fmt.Errorf("query input_defaults: %w", err)
	}
	return d, nil
}

// Update validates and stores d.
func (s *Store) Update(ctx context.Context, d Defaults) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := s.Ensure(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE input_defaults
		SET
			fixed_costs = ?,
			variable_cost = ?,
			selling_price = ?,
			sales_volume = ?,
			target_profit = ?,
			product_count = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		d.FixedCosts,
		d.VariableCost,
		d.SellingPrice,
		d.SalesVolume,
		d.TargetProfit,
		d.ProductCount,
	)
	if err != nil {
		return fmt.Errorf("update input_defaults: %w", err)
	}
	return nil
}
