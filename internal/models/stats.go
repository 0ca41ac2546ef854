package models

// Stats represents the aggregate business figures shown on the dashboard.
type Stats struct {
	TotalItems      int             `json:"total_items"`
	SoldCount       int             `json:"sold_count"`
	ListedCount     int             `json:"listed_count"`
	TotalSpent      float64         `json:"total_spent"`
	TotalRevenue    float64         `json:"total_revenue"`
	TotalProfit     float64         `json:"total_profit"`
	CurrentInvested float64         `json:"current_invested"`
	PredictedProfit float64         `json:"predicted_profit"`
	AvgMargin       float64         `json:"avg_margin"`
	AvgDaysToSell   float64         `json:"avg_days_to_sell"`
	MonthlyProfit   []MonthlyProfit `json:"monthly_profit"`
	TopItems        []TopItem       `json:"top_items"`
	TopByEfficiency []TopByDay      `json:"top_by_efficiency"`
}

// MonthlyProfit represents realized profit for one calendar month
type MonthlyProfit struct {
	Month  string  `json:"month"` // Format: YYYY-MM
	Profit float64 `json:"profit"`
}

// TopItem represents one entry in the most-profitable ranking
type TopItem struct {
	Description string  `json:"description"`
	Profit      float64 `json:"profit"`
}

// TopByDay represents one entry in the profit-per-day ranking
type TopByDay struct {
	Description  string  `json:"description"`
	ProfitPerDay float64 `json:"profit_per_day"`
	Days         int     `json:"days"`
}

// MonthSummary represents one month's realized totals, used by the monthly
// summary email.
type MonthSummary struct {
	Month     string  `json:"month"` // Format: YYYY-MM
	SoldCount int     `json:"sold_count"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
}
