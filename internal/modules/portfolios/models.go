// Package portfolios manages saved portfolio definitions: the allocation,
// its last computed metrics, a full version history and a per-field change log.
package portfolios

// Portfolio is a saved allocation with its last computed metrics.
type Portfolio struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Allocation    map[string]float64 `json:"allocation"`
	StartDate     string             `json:"start_date"`
	InitialAmount float64            `json:"initial_amount"`

	CurrentValue  *float64 `json:"current_value,omitempty"`
	Profit        *float64 `json:"profit,omitempty"`
	ReturnPercent *float64 `json:"return_percent,omitempty"`
	CAGR          *float64 `json:"cagr,omitempty"`
	Volatility    *float64 `json:"volatility,omitempty"`
	MaxDrawdown   *float64 `json:"max_drawdown,omitempty"`
	CalculatedAt  *string  `json:"calculated_at,omitempty"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Metrics is the computed-statistics subset persisted on a portfolio row.
type Metrics struct {
	CurrentValue  float64
	Profit        float64
	ReturnPercent float64
	CAGR          float64
	Volatility    float64
	MaxDrawdown   float64
	CalculatedAt  string
}

// Version is one historical snapshot of a portfolio definition.
type Version struct {
	VersionID     string             `json:"version_id"`
	PortfolioID   string             `json:"portfolio_id"`
	VersionNumber int                `json:"version_number"`
	Name          string             `json:"name"`
	Allocation    map[string]float64 `json:"allocation"`
	StartDate     string             `json:"start_date"`
	InitialAmount float64            `json:"initial_amount"`
	CreatedAt     string             `json:"created_at"`
}

// ChangeLogEntry records one field-level edit to a portfolio.
type ChangeLogEntry struct {
	LogID        string `json:"log_id"`
	PortfolioID  string `json:"portfolio_id"`
	FieldChanged string `json:"field_changed"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	ChangedAt    string `json:"changed_at"`
}
