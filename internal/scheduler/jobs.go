package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/calccache"
	"github.com/foliolab/folio/internal/database"
)

// CacheCleanupJob evicts expired entries from the computed-metrics cache.
type CacheCleanupJob struct {
	cache *calccache.Repository
	log   zerolog.Logger
}

// NewCacheCleanupJob creates a new cache cleanup job
func NewCacheCleanupJob(cache *calccache.Repository, log zerolog.Logger) *CacheCleanupJob {
	return &CacheCleanupJob{
		cache: cache,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run deletes expired cache entries
func (j *CacheCleanupJob) Run() error {
	deleted, err := j.cache.DeleteExpired()
	if err != nil {
		return fmt.Errorf("cache cleanup failed: %w", err)
	}
	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Evicted expired cache entries")
	}
	return nil
}

// WALCheckpointJob checkpoints the WAL of every application database so the
// log files do not grow unbounded between restarts.
type WALCheckpointJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(databases []*database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		databases: databases,
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints each database WAL
func (j *WALCheckpointJob) Run() error {
	var failed []string
	for _, db := range j.databases {
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			failed = append(failed, db.Name())
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("WAL checkpoint failed for: %v", failed)
	}
	return nil
}
