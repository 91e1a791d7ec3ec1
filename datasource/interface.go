package datasource

import (
	"context"

	"weather-widget/models"
)

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// GetWeather fetches current conditions for a city
	GetWeather(ctx context.Context, city string) (models.WeatherSnapshot, error)

	// Name returns the provider's name
	Name() string
}

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches the full 5-day/3-hour forecast feed for a city
	FetchForecast(ctx context.Context, city string) ([]models.ForecastEntry, error)

	// Name returns the source's name
	Name() string
}
