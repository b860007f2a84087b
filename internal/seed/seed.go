package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Key         string
	Name        string
	Category    string
	Subcategory string
	Tags        []string
	Stock       int
	PriceCents  int64
	ImageURL    string
}

// Apply inserts a starter poster catalog for manual testing. It is
// idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			Key:         "midnight-tokyo",
			Name:        "Midnight Tokyo",
			Category:    "city",
			Subcategory: "neon",
			Tags:        []string{"japan", "night", "neon"},
			Stock:       12,
			PriceCents:  2900,
			ImageURL:    "/posters/midnight-tokyo.jpg",
		},
		{
			Key:         "brutalist-block",
			Name:        "Brutalist Block",
			Category:    "architecture",
			Subcategory: "concrete",
			Tags:        []string{"brutalism", "monochrome"},
			Stock:       8,
			PriceCents:  3400,
			ImageURL:    "/posters/brutalist-block.jpg",
		},
		{
			Key:         "analog-synth",
			Name:        "Analog Synth",
			Category:    "music",
			Subcategory: "gear",
			Tags:        []string{"synth", "retro", "studio"},
			Stock:       3,
			PriceCents:  2500,
			ImageURL:    "/posters/analog-synth.jpg",
		},
		{
			Key:         "last-wave",
			Name:        "Last Wave",
			Category:    "nature",
			Subcategory: "ocean",
			Tags:        []string{"surf", "sunset"},
			Stock:       0,
			PriceCents:  2700,
			ImageURL:    "/posters/last-wave.jpg",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (key, name, category, subcategory, tags, stock, price_cents, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    category = EXCLUDED.category,
    subcategory = EXCLUDED.subcategory,
    tags = EXCLUDED.tags,
    stock = EXCLUDED.stock,
    price_cents = EXCLUDED.price_cents,
    image_url = EXCLUDED.image_url
`
	_, err := pool.Exec(ctx, q, p.Key, p.Name, p.Category, p.Subcategory, p.Tags, p.Stock, p.PriceCents, p.ImageURL)
	return err
}
