package domain

import "time"

// TickResult is the outcome of one refresh of the dashboard state
type TickResult struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"count"`
	Temperature float64   `json:"temperature"`
	DeltaCount  int       `json:"delta_count"`
	DeltaTemp   float64   `json:"delta_temperature"`
}

// Insights summarises the retained history
type Insights struct {
	AverageCount              float64   `json:"average_count"`
	PeakCount                 int       `json:"peak_count"`
	PeakTime                  time.Time `json:"peak_time"`
	ChangeVsAverage           float64   `json:"change_vs_average_pct"`
	TempCorrelation           float64   `json:"temperature_correlation"`
	TempImpact                string    `json:"temperature_impact"`
	TempDirection             string    `json:"temperature_direction"`
	TempTrend                 string    `json:"temperature_trend"`
	CongestionFrequency       float64   `json:"congestion_frequency"`
	PredictionsAboveThreshold int       `json:"predictions_above_threshold"`
}

// DashboardSnapshot aggregates everything the presentation layer renders
type DashboardSnapshot struct {
	Latest       TickResult    `json:"latest"`
	History      []Observation `json:"history"`
	Predictions  []Prediction  `json:"predictions"`
	MaxPredicted *int          `json:"max_predicted,omitempty"`
	CurrentLoad  float64       `json:"current_load_pct"`
	Threshold    float64       `json:"threshold"`
	Congested    bool          `json:"congested"`
	Status       string        `json:"status"`
	Insights     Insights      `json:"insights"`
	Timestamp    time.Time     `json:"timestamp"`
}
