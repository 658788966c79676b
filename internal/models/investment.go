package models

import "time"

// Investment is one append-only ledger entry: cash converted to gold at the
// price the buyer observed. Rows are never updated or deleted.
type Investment struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	InvestmentAmount float64   `json:"investment_amount"` // USD
	PricePerOz       float64   `json:"price_per_oz"`      // USD per troy ounce
	GoldAmount       float64   `json:"gold_amount"`       // troy ounces
	CreatedAt        time.Time `json:"created_at"`
}

// PortfolioSummary is derived from a user's investment rows on every read;
// nothing here is stored.
type PortfolioSummary struct {
	TotalInvestedUSD float64 `json:"totalInvestedUSD"`
	TotalGoldOz      float64 `json:"totalGoldOz"`
	AveragePrice     float64 `json:"averagePrice"`
}
