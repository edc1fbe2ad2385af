package portfolios

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE portfolios (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    allocation_json TEXT NOT NULL,
    start_date      TEXT NOT NULL,
    initial_amount  REAL NOT NULL,
    current_value   REAL,
    profit          REAL,
    return_percent  REAL,
    cagr            REAL,
    volatility      REAL,
    max_drawdown    REAL,
    calculated_at   TEXT,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL,
    is_deleted      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE portfolio_versions (
    version_id      TEXT PRIMARY KEY,
    portfolio_id    TEXT NOT NULL,
    version_number  INTEGER NOT NULL,
    name            TEXT,
    allocation_json TEXT NOT NULL,
    start_date      TEXT,
    initial_amount  REAL,
    created_at      TEXT NOT NULL
);
CREATE TABLE portfolio_change_log (
    log_id        TEXT PRIMARY KEY,
    portfolio_id  TEXT NOT NULL,
    field_changed TEXT NOT NULL,
    old_value     TEXT,
    new_value     TEXT,
    changed_at    TEXT NOT NULL
);
`

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return NewRepository(db, zerolog.Nop())
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create("Retirement", map[string]float64{"AAPL": 0.6, "BND": 0.4}, "2020-01-01", 10000)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Retirement", got.Name)
	assert.Equal(t, map[string]float64{"AAPL": 0.6, "BND": 0.4}, got.Allocation)
	assert.Equal(t, "2020-01-01", got.StartDate)
	assert.Equal(t, 10000.0, got.InitialAmount)
	assert.Nil(t, got.CurrentValue)
}

func TestCreateRecordsInitialVersion(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create("Growth", map[string]float64{"VTI": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)

	versions, err := repo.GetVersions(created.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "Growth", versions[0].Name)
}

func TestGetByIDMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetByID("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateCreatesVersionAndChangeLog(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create("Original", map[string]float64{"VTI": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)

	updated, err := repo.Update(created.ID, "Renamed", map[string]float64{"VTI": 0.5, "BND": 0.5}, "2021-06-01", 7500)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Name)

	versions, err := repo.GetVersions(created.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	// Newest first
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, "Renamed", versions[0].Name)

	changes, err := repo.GetChangeLog(created.ID)
	require.NoError(t, err)
	require.Len(t, changes, 3) // name, allocation, initial_amount; start_date unchanged

	fields := make(map[string]bool)
	for _, c := range changes {
		fields[c.FieldChanged] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["allocation"])
	assert.True(t, fields["initial_amount"])
	assert.False(t, fields["start_date"])
}

func TestUpdateResetsMetrics(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create("P", map[string]float64{"VTI": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)

	require.NoError(t, repo.SaveMetrics(created.ID, Metrics{
		CurrentValue: 6000, Profit: 1000, ReturnPercent: 0.2,
		CAGR: 0.1, Volatility: 0.15, MaxDrawdown: -0.08, CalculatedAt: "2024-01-03",
	}))

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentValue)
	assert.Equal(t, 6000.0, *got.CurrentValue)

	_, err = repo.Update(created.ID, "P", map[string]float64{"VTI": 0.9, "BND": 0.1}, "2021-06-01", 5000)
	require.NoError(t, err)

	got, err = repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CurrentValue)
	assert.Nil(t, got.CalculatedAt)
}

func TestUpdateMissing(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.Update("no-such-id", "X", map[string]float64{"A": 1}, "2021-01-01", 1000)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSoftDelete(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create("Doomed", map[string]float64{"VTI": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// History survives the delete
	versions, err := repo.GetVersions(created.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)

	// Second delete is a no-op
	deleted, err = repo.SoftDelete(created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListExcludesDeleted(t *testing.T) {
	repo := newTestRepo(t)

	a, err := repo.Create("A", map[string]float64{"VTI": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)
	_, err = repo.Create("B", map[string]float64{"BND": 1.0}, "2021-06-01", 5000)
	require.NoError(t, err)

	_, err = repo.SoftDelete(a.ID)
	require.NoError(t, err)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B", list[0].Name)
}

func TestSaveMetricsMissingPortfolio(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SaveMetrics("no-such-id", Metrics{})
	assert.Error(t, err)
}
