package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type shoeSeed struct {
	Slug        string
	Name        string
	Description string
	BasePrice   string
}

type variantSeed struct {
	ShoeSlug   string
	Color      string
	Size       string
	SKU        string
	Stock      int
	Adjustment string
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	colors := map[string]string{"Black": "#000000", "White": "#FFFFFF", "Brown": "#6F4E37"}
	colorIDs := map[string]string{}
	for name, hex := range colors {
		id, err := ensureColor(ctx, pool, name, hex)
		if err != nil {
			return fmt.Errorf("ensure color %s: %w", name, err)
		}
		colorIDs[name] = id
	}

	sizes := []string{"40", "41", "42", "43", "44"}
	sizeIDs := map[string]string{}
	for i, value := range sizes {
		id, err := ensureSize(ctx, pool, value, i)
		if err != nil {
			return fmt.Errorf("ensure size %s: %w", value, err)
		}
		sizeIDs[value] = id
	}

	shoes := []shoeSeed{
		{Slug: "urban-runner", Name: "Urban Runner", Description: "Lightweight everyday trainer", BasePrice: "4500.00"},
		{Slug: "trail-master", Name: "Trail Master", Description: "Rugged outsole for rough terrain", BasePrice: "6200.00"},
		{Slug: "office-classic", Name: "Office Classic", Description: "Leather derby for formal wear", BasePrice: "5500.00"},
	}
	shoeIDs := map[string]string{}
	for _, s := range shoes {
		id, err := ensureShoe(ctx, pool, s)
		if err != nil {
			return fmt.Errorf("ensure shoe %s: %w", s.Slug, err)
		}
		shoeIDs[s.Slug] = id
	}

	variants := []variantSeed{
		{ShoeSlug: "urban-runner", Color: "Black", Size: "42", SKU: "UR-BLK-42", Stock: 25, Adjustment: "0.00"},
		{ShoeSlug: "urban-runner", Color: "White", Size: "42", SKU: "UR-WHT-42", Stock: 18, Adjustment: "200.00"},
		{ShoeSlug: "urban-runner", Color: "Black", Size: "43", SKU: "UR-BLK-43", Stock: 12, Adjustment: "0.00"},
		{ShoeSlug: "trail-master", Color: "Brown", Size: "43", SKU: "TM-BRN-43", Stock: 9, Adjustment: "0.00"},
		{ShoeSlug: "trail-master", Color: "Black", Size: "44", SKU: "TM-BLK-44", Stock: 6, Adjustment: "300.00"},
		{ShoeSlug: "office-classic", Color: "Brown", Size: "41", SKU: "OC-BRN-41", Stock: 14, Adjustment: "0.00"},
	}
	for _, v := range variants {
		if err := upsertVariant(ctx, pool, shoeIDs[v.ShoeSlug], colorIDs[v.Color], sizeIDs[v.Size], v); err != nil {
			return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
		}
	}

	if err := ensureDeliveryAreas(ctx, pool); err != nil {
		return fmt.Errorf("ensure delivery areas: %w", err)
	}

	if err := ensureCoupon(ctx, pool); err != nil {
		return fmt.Errorf("ensure coupon: %w", err)
	}

	return nil
}

func ensureColor(ctx context.Context, pool *pgxpool.Pool, name, hex string) (string, error) {
	const q = `
INSERT INTO colors (name, hex_code)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET hex_code = EXCLUDED.hex_code
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, name, hex).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureSize(ctx context.Context, pool *pgxpool.Pool, value string, order int) (string, error) {
	const q = `
INSERT INTO shoe_sizes (value, sort_order)
VALUES ($1, $2)
ON CONFLICT (value) DO UPDATE SET sort_order = EXCLUDED.sort_order
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, value, order).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureShoe(ctx context.Context, pool *pgxpool.Pool, s shoeSeed) (string, error) {
	const q = `
INSERT INTO shoes (name, slug, description, base_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    base_price = EXCLUDED.base_price
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, s.Name, s.Slug, s.Description, s.BasePrice).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertVariant(ctx context.Context, pool *pgxpool.Pool, shoeID, colorID, sizeID string, v variantSeed) error {
	const q = `
INSERT INTO shoe_variants (shoe_id, color_id, size_id, sku, stock_quantity, price_adjustment)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (shoe_id, color_id, size_id) DO UPDATE
SET sku = EXCLUDED.sku,
    stock_quantity = EXCLUDED.stock_quantity,
    price_adjustment = EXCLUDED.price_adjustment
`
	_, err := pool.Exec(ctx, q, shoeID, colorID, sizeID, v.SKU, v.Stock, v.Adjustment)
	return err
}

func ensureDeliveryAreas(ctx context.Context, pool *pgxpool.Pool) error {
	const countyQ = `
INSERT INTO counties (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var nairobiID string
	if err := pool.QueryRow(ctx, countyQ, "Nairobi").Scan(&nairobiID); err != nil {
		return err
	}

	areas := []struct {
		Name string
		Fee  string
	}{
		{Name: "CBD", Fee: "150.00"},
		{Name: "Westlands", Fee: "200.00"},
		{Name: "Karen", Fee: "350.00"},
	}
	const areaQ = `
INSERT INTO delivery_areas (county_id, name, shipping_fee)
VALUES ($1, $2, $3)
ON CONFLICT (county_id, name) DO UPDATE SET shipping_fee = EXCLUDED.shipping_fee
`
	for _, a := range areas {
		if _, err := pool.Exec(ctx, areaQ, nairobiID, a.Name, a.Fee); err != nil {
			return err
		}
	}
	return nil
}

func ensureCoupon(ctx context.Context, pool *pgxpool.Pool) error {
	const q = `
INSERT INTO coupons (code, discount_type, discount_value, minimum_amount, maximum_discount,
                     usage_limit, valid_from, valid_to, is_active)
VALUES ('SAVE10', 'percentage', 10, 2000, 1000, 100, now(), now() + interval '90 days', true)
ON CONFLICT (code) DO NOTHING
`
	_, err := pool.Exec(ctx, q)
	return err
}
