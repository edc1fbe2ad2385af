package portfolios

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/database"
)

// Repository handles portfolio database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolios repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "portfolios").Logger(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func marshalAllocation(allocation map[string]float64) (string, error) {
	raw, err := json.Marshal(allocation)
	if err != nil {
		return "", fmt.Errorf("failed to marshal allocation: %w", err)
	}
	return string(raw), nil
}

// Create inserts a new portfolio and its initial version in one transaction.
func (r *Repository) Create(name string, allocation map[string]float64, startDate string, initialAmount float64) (*Portfolio, error) {
	allocationJSON, err := marshalAllocation(allocation)
	if err != nil {
		return nil, err
	}

	p := &Portfolio{
		ID:            uuid.New().String(),
		Name:          name,
		Allocation:    allocation,
		StartDate:     startDate,
		InitialAmount: initialAmount,
		CreatedAt:     now(),
	}
	p.UpdatedAt = p.CreatedAt

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO portfolios
			(id, name, allocation_json, start_date, initial_amount, created_at, updated_at, is_deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
			p.ID, p.Name, allocationJSON, p.StartDate, p.InitialAmount, p.CreatedAt, p.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert portfolio: %w", err)
		}

		return insertVersion(tx, p, 1)
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().Str("id", p.ID).Str("name", name).Msg("Portfolio created")
	return p, nil
}

// GetByID returns a portfolio by ID, or nil when it does not exist or is deleted.
func (r *Repository) GetByID(id string) (*Portfolio, error) {
	row := r.db.QueryRow(`SELECT id, name, allocation_json, start_date, initial_amount,
		current_value, profit, return_percent, cagr, volatility, max_drawdown, calculated_at,
		created_at, updated_at
		FROM portfolios WHERE id = ? AND is_deleted = 0`, id)

	p, err := scanPortfolio(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return p, nil
}

// List returns all non-deleted portfolios, most recently updated first.
func (r *Repository) List() ([]Portfolio, error) {
	rows, err := r.db.Query(`SELECT id, name, allocation_json, start_date, initial_amount,
		current_value, profit, return_percent, cagr, volatility, max_drawdown, calculated_at,
		created_at, updated_at
		FROM portfolios WHERE is_deleted = 0 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var out []Portfolio
	for rows.Next() {
		p, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Update applies a definition change: the portfolio row is rewritten, every
// changed field gets a change-log entry, and a new version snapshot is taken.
// Returns nil when the portfolio does not exist.
func (r *Repository) Update(id, name string, allocation map[string]float64, startDate string, initialAmount float64) (*Portfolio, error) {
	existing, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	allocationJSON, err := marshalAllocation(allocation)
	if err != nil {
		return nil, err
	}
	oldAllocationJSON, err := marshalAllocation(existing.Allocation)
	if err != nil {
		return nil, err
	}

	updated := &Portfolio{
		ID:            id,
		Name:          name,
		Allocation:    allocation,
		StartDate:     startDate,
		InitialAmount: initialAmount,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now(),
	}

	changes := fieldChanges(existing, updated, oldAllocationJSON, allocationJSON)

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		// Metric columns are reset: they described the old definition
		if _, err := tx.Exec(`UPDATE portfolios SET
			name = ?, allocation_json = ?, start_date = ?, initial_amount = ?,
			current_value = NULL, profit = NULL, return_percent = NULL,
			cagr = NULL, volatility = NULL, max_drawdown = NULL, calculated_at = NULL,
			updated_at = ?
			WHERE id = ?`,
			name, allocationJSON, startDate, initialAmount, updated.UpdatedAt, id); err != nil {
			return fmt.Errorf("failed to update portfolio: %w", err)
		}

		for _, c := range changes {
			if _, err := tx.Exec(`INSERT INTO portfolio_change_log
				(log_id, portfolio_id, field_changed, old_value, new_value, changed_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				uuid.New().String(), id, c.FieldChanged, c.OldValue, c.NewValue, updated.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert change log entry: %w", err)
			}
		}

		var lastVersion int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(version_number), 0)
			FROM portfolio_versions WHERE portfolio_id = ?`, id).Scan(&lastVersion); err != nil {
			return fmt.Errorf("failed to read last version number: %w", err)
		}

		return insertVersion(tx, updated, lastVersion+1)
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().Str("id", id).Int("changes", len(changes)).Msg("Portfolio updated")
	return updated, nil
}

// SaveMetrics persists freshly computed statistics on a portfolio row.
func (r *Repository) SaveMetrics(id string, m Metrics) error {
	result, err := r.db.Exec(`UPDATE portfolios SET
		current_value = ?, profit = ?, return_percent = ?, cagr = ?,
		volatility = ?, max_drawdown = ?, calculated_at = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0`,
		m.CurrentValue, m.Profit, m.ReturnPercent, m.CAGR,
		m.Volatility, m.MaxDrawdown, m.CalculatedAt, now(), id)
	if err != nil {
		return fmt.Errorf("failed to save metrics: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("portfolio %s not found", id)
	}
	return nil
}

// SoftDelete marks a portfolio as deleted. Versions and change log survive.
func (r *Repository) SoftDelete(id string) (bool, error) {
	result, err := r.db.Exec(`UPDATE portfolios SET is_deleted = 1, updated_at = ?
		WHERE id = ? AND is_deleted = 0`, now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete portfolio: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		r.log.Info().Str("id", id).Msg("Portfolio deleted")
	}
	return affected > 0, nil
}

// GetVersions returns the version history of a portfolio, newest first.
func (r *Repository) GetVersions(portfolioID string) ([]Version, error) {
	rows, err := r.db.Query(`SELECT version_id, portfolio_id, version_number,
		name, allocation_json, start_date, initial_amount, created_at
		FROM portfolio_versions WHERE portfolio_id = ?
		ORDER BY version_number DESC`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var out []Version
	for rows.Next() {
		var v Version
		var allocationJSON string
		if err := rows.Scan(&v.VersionID, &v.PortfolioID, &v.VersionNumber,
			&v.Name, &allocationJSON, &v.StartDate, &v.InitialAmount, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		if err := json.Unmarshal([]byte(allocationJSON), &v.Allocation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal version allocation: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetChangeLog returns the field-level change history, newest first.
func (r *Repository) GetChangeLog(portfolioID string) ([]ChangeLogEntry, error) {
	rows, err := r.db.Query(`SELECT log_id, portfolio_id, field_changed,
		old_value, new_value, changed_at
		FROM portfolio_change_log WHERE portfolio_id = ?
		ORDER BY changed_at DESC, log_id`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query change log: %w", err)
	}
	defer rows.Close()

	var out []ChangeLogEntry
	for rows.Next() {
		var e ChangeLogEntry
		if err := rows.Scan(&e.LogID, &e.PortfolioID, &e.FieldChanged,
			&e.OldValue, &e.NewValue, &e.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change log entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertVersion(tx *sql.Tx, p *Portfolio, versionNumber int) error {
	allocationJSON, err := marshalAllocation(p.Allocation)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO portfolio_versions
		(version_id, portfolio_id, version_number, name, allocation_json, start_date, initial_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), p.ID, versionNumber, p.Name, allocationJSON,
		p.StartDate, p.InitialAmount, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

func fieldChanges(before, after *Portfolio, oldAllocationJSON, newAllocationJSON string) []ChangeLogEntry {
	var changes []ChangeLogEntry
	add := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			changes = append(changes, ChangeLogEntry{
				FieldChanged: field,
				OldValue:     oldValue,
				NewValue:     newValue,
			})
		}
	}

	add("name", before.Name, after.Name)
	add("allocation", oldAllocationJSON, newAllocationJSON)
	add("start_date", before.StartDate, after.StartDate)
	add("initial_amount",
		strconv.FormatFloat(before.InitialAmount, 'f', -1, 64),
		strconv.FormatFloat(after.InitialAmount, 'f', -1, 64))
	return changes
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(row scanner) (*Portfolio, error) {
	var p Portfolio
	var allocationJSON string
	var currentValue, profit, returnPercent, cagr, volatility, maxDrawdown sql.NullFloat64
	var calculatedAt sql.NullString

	if err := row.Scan(&p.ID, &p.Name, &allocationJSON, &p.StartDate, &p.InitialAmount,
		&currentValue, &profit, &returnPercent, &cagr, &volatility, &maxDrawdown, &calculatedAt,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(allocationJSON), &p.Allocation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal allocation: %w", err)
	}

	assignFloat := func(dst **float64, src sql.NullFloat64) {
		if src.Valid {
			v := src.Float64
			*dst = &v
		}
	}
	assignFloat(&p.CurrentValue, currentValue)
	assignFloat(&p.Profit, profit)
	assignFloat(&p.ReturnPercent, returnPercent)
	assignFloat(&p.CAGR, cagr)
	assignFloat(&p.Volatility, volatility)
	assignFloat(&p.MaxDrawdown, maxDrawdown)
	if calculatedAt.Valid {
		v := calculatedAt.String
		p.CalculatedAt = &v
	}

	return &p, nil
}
