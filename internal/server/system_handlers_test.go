package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliolab/folio/internal/database"
)

func TestHandleSystemStatus(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), t.TempDir(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	w := httptest.NewRecorder()
	h.HandleSystemStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "running", got.Status)
	assert.GreaterOrEqual(t, got.UptimeSeconds, 0.0)
	assert.NotEmpty(t, got.Timestamp)
}

func TestHandleDiskUsage(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "prices.db"), make([]byte, 2*1024*1024), 0o644))

	h := NewSystemHandlers(zerolog.Nop(), dataDir, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/system/disk", nil)
	w := httptest.NewRecorder()
	h.HandleDiskUsage(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got DiskUsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.InDelta(t, 2.0, got.DataDirMB, 0.01)
	assert.InDelta(t, got.DataDirMB+got.LogsDirMB, got.TotalMB, 1e-9)
}

func TestHandleDatabaseStats(t *testing.T) {
	dataDir := t.TempDir()

	db, err := database.New(database.Config{
		Name:    "cache",
		Path:    filepath.Join(dataDir, "cache.db"),
		Profile: database.ProfileCache,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	h := NewSystemHandlers(zerolog.Nop(), dataDir, []*database.DB{db})

	req := httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil)
	w := httptest.NewRecorder()
	h.HandleDatabaseStats(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got DatabaseStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Databases, 1)
	assert.Equal(t, "cache", got.Databases[0].Name)
	assert.Greater(t, got.TotalSizeMB, 0.0)
}
