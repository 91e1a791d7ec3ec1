package models

// WeatherSnapshot is the current conditions for a city at request time
type WeatherSnapshot struct {
	City        string  `json:"city"`
	Country     string  `json:"country,omitempty"`
	Temperature float64 `json:"temperature"` // in Celsius
	WindSpeed   float64 `json:"windSpeed"`   // in m/s
	Icon        string  `json:"icon"`        // provider icon code, e.g. "04d"
	Description string  `json:"description"`
}
