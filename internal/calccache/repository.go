// Package calccache provides an opt-in TTL cache for computed portfolio
// metrics. Values are msgpack-encoded blobs in cache.db; every entry carries
// an expiration timestamp and the whole database is safe to delete.
//
// The cache is keyed by the full calculation input (allocation, start date,
// initial amount), so it never serves results for a different request. It can
// still serve stale results after the price store changes; that is the
// documented trade-off of enabling it.
package calccache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Repository provides cache operations over cache.db.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new metrics cache repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Key builds a deterministic cache key from calculation inputs. Allocation
// entries are sorted by asset code so map iteration order cannot change the
// key.
func Key(allocation map[string]float64, startDate string, initialAmount float64) string {
	assets := make([]string, 0, len(allocation))
	for asset := range allocation {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	h := sha256.New()
	for _, asset := range assets {
		fmt.Fprintf(h, "%s=%s;", asset, strconv.FormatFloat(allocation[asset], 'g', -1, 64))
	}
	fmt.Fprintf(h, "start=%s;amount=%s", startDate, strconv.FormatFloat(initialAmount, 'g', -1, 64))

	return hex.EncodeToString(h.Sum(nil))
}

// Store saves a value with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert entries.
func (r *Repository) Store(key string, value interface{}, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	expiresAt := time.Now().Add(ttl).Unix()

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO metrics_cache (cache_key, data, expires_at)
		VALUES (?, ?, ?)
	`, key, data, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// GetIfFresh decodes the entry into dest only if expires_at > now.
// Returns false when the key is missing or expired.
func (r *Repository) GetIfFresh(key string, dest interface{}) (bool, error) {
	now := time.Now().Unix()

	var data []byte
	err := r.db.QueryRow(`
		SELECT data FROM metrics_cache WHERE cache_key = ? AND expires_at > ?
	`, key, now).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM metrics_cache WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes all entries past their expiration.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired() (int64, error) {
	now := time.Now().Unix()

	result, err := r.db.Exec(`DELETE FROM metrics_cache WHERE expires_at < ?`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}
