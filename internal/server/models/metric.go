package models

import "time"

// Metric is a dated value observation for a portfolio, e.g. its market value
// at end of day.
type Metric struct {
	ID          int64
	PortfolioID int64
	Date        time.Time
	Value       float64
	MetricType  string
	CreatedAt   time.Time
}

// PortfolioSummary aggregates performance figures computed from a
// portfolio's metric series. Percentages are rounded to two decimals.
type PortfolioSummary struct {
	PortfolioID      int64
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	SharpeRatio      float64
	MaxDrawdown      float64
}
