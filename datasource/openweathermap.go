package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-widget/models"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 10 * time.Second

	// forecastTimeLayout is the layout of the forecast dt_txt field
	forecastTimeLayout = "2006-01-02 15:04:05"

	// maxErrorBody caps how much of an error response is kept in a StatusError
	maxErrorBody = 512
)

// OpenWeatherMapProvider implements both WeatherProvider and ForecastSource interfaces
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option customizes an OpenWeatherMapProvider
type Option func(*OpenWeatherMapProvider)

// WithBaseURL points the provider at another API root (tests use httptest servers)
func WithBaseURL(baseURL string) Option {
	return func(p *OpenWeatherMapProvider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(p *OpenWeatherMapProvider) {
		p.httpClient = c
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *OpenWeatherMapProvider) {
		p.log = l
	}
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, opts ...Option) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		units:   "metric",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

type condition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// currentResponse is the subset of /weather we read. Pointers mark the
// fields that must be present.
type currentResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp *float64 `json:"temp"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []condition `json:"weather"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type forecastResponse struct {
	List *[]struct {
		DtTxt string `json:"dt_txt"`
		Main  *struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []condition `json:"weather"`
	} `json:"list"`
}

// GetWeather fetches current weather for a city
func (p *OpenWeatherMapProvider) GetWeather(ctx context.Context, city string) (models.WeatherSnapshot, error) {
	var response currentResponse
	if err := p.get(ctx, "weather", city, &response); err != nil {
		return models.WeatherSnapshot{}, err
	}

	switch {
	case response.Name == "":
		return models.WeatherSnapshot{}, malformed("name")
	case response.Main == nil || response.Main.Temp == nil:
		return models.WeatherSnapshot{}, malformed("main.temp")
	case response.Wind == nil || response.Wind.Speed == nil:
		return models.WeatherSnapshot{}, malformed("wind.speed")
	case len(response.Weather) == 0 || response.Weather[0].Icon == "":
		return models.WeatherSnapshot{}, malformed("weather[0].icon")
	}

	return models.WeatherSnapshot{
		City:        response.Name,
		Country:     response.Sys.Country,
		Temperature: *response.Main.Temp,
		WindSpeed:   *response.Wind.Speed,
		Icon:        response.Weather[0].Icon,
		Description: response.Weather[0].Description,
	}, nil
}

// FetchForecast fetches the 5-day forecast, which comes in 3-hour steps
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, city string) ([]models.ForecastEntry, error) {
	var response forecastResponse
	if err := p.get(ctx, "forecast", city, &response); err != nil {
		return nil, err
	}
	if response.List == nil {
		return nil, malformed("list")
	}

	entries := make([]models.ForecastEntry, 0, len(*response.List))
	for i, item := range *response.List {
		if item.Main == nil || item.Main.Temp == nil {
			return nil, malformed(fmt.Sprintf("list[%d].main.temp", i))
		}
		if len(item.Weather) == 0 {
			return nil, malformed(fmt.Sprintf("list[%d].weather", i))
		}
		ts, err := time.Parse(forecastTimeLayout, item.DtTxt)
		if err != nil {
			return nil, fmt.Errorf("%w: list[%d].dt_txt %q", ErrMalformedResponse, i, item.DtTxt)
		}
		entries = append(entries, models.ForecastEntry{
			Timestamp:   ts,
			Temperature: *item.Main.Temp,
			Icon:        item.Weather[0].Icon,
			Description: item.Weather[0].Description,
		})
	}

	return entries, nil
}

// get issues GET {baseURL}/{endpoint} with the shared query and decodes the body into out
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint, city string, out any) error {
	params := url.Values{}
	params.Add("q", city)
	params.Add("units", p.units)
	params.Add("appid", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	p.log.WithFields(logrus.Fields{"endpoint": endpoint, "city": city}).Debug("requesting OpenWeatherMap")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Ensure OpenWeatherMapProvider implements both interfaces
var (
	_ WeatherProvider = (*OpenWeatherMapProvider)(nil)
	_ ForecastSource  = (*OpenWeatherMapProvider)(nil)
)
