package models

import (
	"time"
)

// ForecastEntry represents a single forecast point from the provider feed
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`   // time this forecast is for
	Temperature float64   `json:"temperature"` // in Celsius
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
}

// SampleEvery is the stride used to thin the 3-hour feed down to roughly one
// entry per day.
const SampleEvery = 8

// SampleForecast keeps every SampleEvery-th entry starting at index 0.
func SampleForecast(entries []ForecastEntry) []ForecastEntry {
	out := make([]ForecastEntry, 0, (len(entries)+SampleEvery-1)/SampleEvery)
	for i := 0; i < len(entries); i += SampleEvery {
		out = append(out, entries[i])
	}
	return out
}
