package calccache

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE metrics_cache (
    cache_key  TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    expires_at INTEGER NOT NULL
);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

type cachedMetrics struct {
	CurrentValue float64
	Profit       float64
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	want := cachedMetrics{CurrentValue: 1127.5, Profit: 127.5}
	require.NoError(t, repo.Store("k1", want, time.Hour))

	var got cachedMetrics
	found, err := repo.GetIfFresh("k1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestGetIfFreshMissingKey(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	var got cachedMetrics
	found, err := repo.GetIfFresh("missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetIfFreshExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("k1", cachedMetrics{CurrentValue: 1}, -time.Minute))

	var got cachedMetrics
	found, err := repo.GetIfFresh("k1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteExpired(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Store("stale", cachedMetrics{}, -time.Minute))
	require.NoError(t, repo.Store("fresh", cachedMetrics{}, time.Hour))

	deleted, err := repo.DeleteExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var got cachedMetrics
	found, err := repo.GetIfFresh("fresh", &got)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKeyDeterministic(t *testing.T) {
	a := map[string]float64{"AAPL": 0.5, "NVDA": 0.5}
	b := map[string]float64{"NVDA": 0.5, "AAPL": 0.5}

	assert.Equal(t, Key(a, "2020-01-01", 1000), Key(b, "2020-01-01", 1000))
	assert.NotEqual(t, Key(a, "2020-01-01", 1000), Key(a, "2020-01-02", 1000))
	assert.NotEqual(t, Key(a, "2020-01-01", 1000), Key(a, "2020-01-01", 2000))
	assert.NotEqual(t,
		Key(map[string]float64{"AAPL": 0.6, "NVDA": 0.4}, "2020-01-01", 1000),
		Key(a, "2020-01-01", 1000))
}
