// Package prices provides the daily closing price store consumed by the
// analytics engine. It owns prices.db (assets and prices tables).
package prices

// Price is one closing price for one asset on one trading day.
// At most one row exists per (asset_code, date) pair; market holidays leave
// gaps, so consecutive rows are not guaranteed to be consecutive calendar days.
type Price struct {
	AssetCode string  `json:"asset_code"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Close     float64 `json:"close"`
}

// Asset is the metadata for one investable asset.
type Asset struct {
	Code        string `json:"code"`
	DisplayName string `json:"name"`
	FullName    string `json:"company"`
	Type        string `json:"type"`
	Currency    string `json:"currency"`
	LogoURL     string `json:"logo_url"`
}
