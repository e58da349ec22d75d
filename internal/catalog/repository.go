package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository returns a Repository backed by the catalog tables.
func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Materials(ctx context.Context) ([]Material, error) {
	query := `
		SELECT id, name, price_multiplier
		FROM materials
		WHERE is_active
		ORDER BY sort_order
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]Material, 0)
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.PriceMultiplier); err != nil {
			return nil, fmt.Errorf("repository: failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating materials: %w", err)
	}

	return materials, nil
}

func (r *postgresRepository) Sizes(ctx context.Context) ([]Size, error) {
	query := `
		SELECT id, name, label, base_price, is_custom
		FROM sizes
		WHERE is_active
		ORDER BY sort_order
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query sizes: %w", err)
	}
	defer rows.Close()

	sizes := make([]Size, 0)
	for rows.Next() {
		var s Size
		if err := rows.Scan(&s.ID, &s.Name, &s.Label, &s.BasePrice, &s.IsCustom); err != nil {
			return nil, fmt.Errorf("repository: failed to scan size: %w", err)
		}
		sizes = append(sizes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating sizes: %w", err)
	}

	return sizes, nil
}

func (r *postgresRepository) Finishes(ctx context.Context) ([]Finish, error) {
	query := `
		SELECT id, name, price_add
		FROM finishes
		WHERE is_active
		ORDER BY sort_order
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query finishes: %w", err)
	}
	defer rows.Close()

	finishes := make([]Finish, 0)
	for rows.Next() {
		var f Finish
		if err := rows.Scan(&f.ID, &f.Name, &f.PriceAdd); err != nil {
			return nil, fmt.Errorf("repository: failed to scan finish: %w", err)
		}
		finishes = append(finishes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating finishes: %w", err)
	}

	return finishes, nil
}

func (r *postgresRepository) QuantityTiers(ctx context.Context) ([]QuantityTier, error) {
	query := `
		SELECT min_quantity, max_quantity, discount_percent
		FROM quantity_breaks
		WHERE is_active
		ORDER BY min_quantity
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query quantity breaks: %w", err)
	}
	defer rows.Close()

	tiers := make([]QuantityTier, 0)
	for rows.Next() {
		var t QuantityTier
		if err := rows.Scan(&t.MinQuantity, &t.MaxQuantity, &t.DiscountPercent); err != nil {
			return nil, fmt.Errorf("repository: failed to scan quantity break: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating quantity breaks: %w", err)
	}

	return tiers, nil
}
