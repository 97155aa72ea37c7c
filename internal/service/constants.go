package service

const (
	// Time windows
	HistoryWindowDays = 56 // covers the 8-week aggregate window
	CheckInWindowDays = 7

	// Forecasting
	ForecastDays = 7

	// Decision log
	RecentDecisionsLimit = 10
)
