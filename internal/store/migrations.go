package store

import (
	"fmt"
)

// migrations are applied in order at startup; every statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS nfts (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		image_url TEXT NOT NULL,
		owner TEXT NOT NULL,
		seller TEXT NOT NULL DEFAULT '',
		price NUMERIC(78,0) NOT NULL,
		timestamp BIGINT NOT NULL,
		end_time BIGINT NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		minted BOOLEAN NOT NULL DEFAULT FALSE,
		paid_out BOOLEAN NOT NULL DEFAULT FALSE,
		refunded BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_nfts_owner ON nfts (owner)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id BIGINT PRIMARY KEY,
		nft_id BIGINT NOT NULL REFERENCES nfts (id),
		owner TEXT NOT NULL,
		price NUMERIC(78,0) NOT NULL,
		timestamp BIGINT NOT NULL,
		end_time BIGINT NOT NULL,
		minted BOOLEAN NOT NULL DEFAULT FALSE,
		refunded BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_nft_id ON sales (nft_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_owner ON sales (owner)`,
	`CREATE TABLE IF NOT EXISTS balances (
		address TEXT PRIMARY KEY,
		amount NUMERIC(78,0) NOT NULL DEFAULT 0
	)`,
}

// Migrate bootstraps the schema.
func (d *Database) Migrate() error {
	for i, stmt := range migrations {
		if _, err := d.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
