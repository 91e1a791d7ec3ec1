package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"weather-widget/datasource"
	"weather-widget/models"
)

// ErrEmptyCity is returned when Fetch is called without a city name
var ErrEmptyCity = errors.New("empty city name")

// Result is the joint outcome of one search
type Result struct {
	Weather  models.WeatherSnapshot
	Forecast []models.ForecastEntry // already sampled, one entry per ~day
}

// Collector issues the current-conditions and forecast requests for a city
// in parallel and joins them as an all-or-nothing pair.
type Collector struct {
	weather  datasource.WeatherProvider
	forecast datasource.ForecastSource
}

// NewCollector creates a collector over the given sources
func NewCollector(weather datasource.WeatherProvider, forecast datasource.ForecastSource) *Collector {
	return &Collector{weather: weather, forecast: forecast}
}

// Fetch runs both requests concurrently. Any failure discards the other
// result; on success the forecast feed is sampled with models.SampleForecast.
func (c *Collector) Fetch(ctx context.Context, city string) (Result, error) {
	if strings.TrimSpace(city) == "" {
		return Result{}, ErrEmptyCity
	}

	var (
		wg          sync.WaitGroup
		snapshot    models.WeatherSnapshot
		entries     []models.ForecastEntry
		weatherErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		snapshot, weatherErr = c.weather.GetWeather(ctx, city)
	}()
	go func() {
		defer wg.Done()
		entries, forecastErr = c.forecast.FetchForecast(ctx, city)
	}()
	wg.Wait()

	if weatherErr != nil {
		return Result{}, fmt.Errorf("error fetching weather for %s from %s: %w", city, c.weather.Name(), weatherErr)
	}
	if forecastErr != nil {
		return Result{}, fmt.Errorf("error fetching forecast for %s from %s: %w", city, c.forecast.Name(), forecastErr)
	}

	return Result{
		Weather:  snapshot,
		Forecast: models.SampleForecast(entries),
	}, nil
}
