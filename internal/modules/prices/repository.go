package prices

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/database"
)

// Repository handles price and asset database operations
type Repository struct {
	db              *sql.DB
	benchmarkSymbol string
	log             zerolog.Logger
}

// NewRepository creates a new price repository.
// benchmarkSymbol is the asset code served by GetBenchmarkSince (e.g. "SPY").
func NewRepository(db *sql.DB, benchmarkSymbol string, log zerolog.Logger) *Repository {
	return &Repository{
		db:              db,
		benchmarkSymbol: benchmarkSymbol,
		log:             log.With().Str("repo", "prices").Logger(),
	}
}

// BenchmarkSymbol returns the configured benchmark asset code.
func (r *Repository) BenchmarkSymbol() string {
	return r.benchmarkSymbol
}

// GetPricesSince returns all prices for an asset from startDate onward,
// ordered ascending by date. An asset with no rows yields an empty slice,
// not an error.
func (r *Repository) GetPricesSince(assetCode, startDate string) ([]Price, error) {
	rows, err := r.db.Query(`
		SELECT asset_code, date, close_price
		FROM prices
		WHERE asset_code = ? AND date >= ?
		ORDER BY date ASC
	`, assetCode, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", assetCode, err)
	}
	defer rows.Close()

	var prices []Price
	for rows.Next() {
		var p Price
		if err := rows.Scan(&p.AssetCode, &p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		prices = append(prices, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return prices, nil
}

// GetBenchmarkSince returns the benchmark asset's prices from startDate
// onward, ordered ascending by date.
func (r *Repository) GetBenchmarkSince(startDate string) ([]Price, error) {
	return r.GetPricesSince(r.benchmarkSymbol, startDate)
}

// UpsertPrice inserts or replaces a single price row.
func (r *Repository) UpsertPrice(p Price) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO prices (asset_code, date, close_price)
		VALUES (?, ?, ?)
	`, p.AssetCode, p.Date, p.Close)
	if err != nil {
		return fmt.Errorf("failed to upsert price %s/%s: %w", p.AssetCode, p.Date, err)
	}
	return nil
}

// BulkUpsert inserts or replaces a batch of price rows in one transaction.
func (r *Repository) BulkUpsert(batch []Price) error {
	if len(batch) == 0 {
		return nil
	}

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO prices (asset_code, date, close_price)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range batch {
			if _, err := stmt.Exec(p.AssetCode, p.Date, p.Close); err != nil {
				return fmt.Errorf("failed to upsert price %s/%s: %w", p.AssetCode, p.Date, err)
			}
		}
		return nil
	})
}

// UpsertAsset inserts or replaces asset metadata.
func (r *Repository) UpsertAsset(a Asset) error {
	_, err := r.db.Exec(`
		INSERT OR REPLACE INTO assets (asset_code, display_name, full_name, type, currency, logo_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Code, a.DisplayName, a.FullName, a.Type, a.Currency, a.LogoURL)
	if err != nil {
		return fmt.Errorf("failed to upsert asset %s: %w", a.Code, err)
	}
	return nil
}

// ListAssets returns all assets ordered by code.
func (r *Repository) ListAssets() ([]Asset, error) {
	rows, err := r.db.Query(`
		SELECT asset_code, display_name, full_name, type, currency, logo_url
		FROM assets
		ORDER BY asset_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		var displayName, fullName, assetType, currency, logoURL sql.NullString
		if err := rows.Scan(&a.Code, &displayName, &fullName, &assetType, &currency, &logoURL); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		a.DisplayName = displayName.String
		a.FullName = fullName.String
		a.Type = assetType.String
		a.Currency = currency.String
		a.LogoURL = logoURL.String
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}

	return assets, nil
}
