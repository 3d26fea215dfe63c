package domain

import "time"

// DailyCount is the number of loads posted on one calendar day (UTC).
type DailyCount struct {
	Date  string `json:"date"`
	Loads int    `json:"loads"`
}

// Forecast is a naive expectation of loads posted on a future day.
type Forecast struct {
	Date           string `json:"date"`
	PredictedLoads int    `json:"predicted_loads"`
}

// MarketStats is a point-in-time summary of the marketplace.
type MarketStats struct {
	ByStatus    map[Status]int `json:"by_status"`
	Total       int            `json:"total"`
	DailyPosted []DailyCount   `json:"daily_posted"`
	Forecast    []Forecast     `json:"forecast"`
	GeneratedAt time.Time      `json:"generated_at"`
}
