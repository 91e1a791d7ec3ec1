// Package render derives what the widget shows from its State. Build is pure;
// WriteText turns the result into terminal output.
package render

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"weather-widget/models"
	"weather-widget/widget"
)

const (
	iconBaseURL = "https://openweathermap.org/img/wn/"

	// ErrorMessage is the one user-visible error
	ErrorMessage = "Ville introuvable"

	forecastDateLayout = "02/01/2006"
)

var (
	months   = [...]string{"Janvier", "Février", "Mars", "Avril", "Mai", "Juin", "Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre"}
	weekDays = [...]string{"Dimanche", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi"}
)

// View is the derived presentation of a State. The four panels are
// independent: each is shown purely from its own condition.
type View struct {
	Input     string         `json:"input"`
	Favorites []string       `json:"favorites"`
	Loading   bool           `json:"loading"`
	Error     string         `json:"error,omitempty"`
	Current   *CurrentPanel  `json:"current,omitempty"`
	Forecast  []ForecastItem `json:"forecast,omitempty"`
}

// CurrentPanel is the current-conditions block
type CurrentPanel struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	IconURL     string  `json:"iconUrl"`
	Description string  `json:"description"`
	Temperature int     `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
}

// ForecastItem is one tile of the forecast strip
type ForecastItem struct {
	Date        string `json:"date"`
	IconURL     string `json:"iconUrl"`
	Description string `json:"description"`
	Temperature int    `json:"temperature"`
}

// Build derives the View for s. now is used for the current panel's date.
func Build(s widget.State, now time.Time) View {
	v := View{
		Input:     s.Input,
		Favorites: append([]string{}, s.Favorites...),
		Loading:   s.Loading,
	}
	if s.Error {
		v.Error = ErrorMessage
	}
	if s.Weather != nil {
		v.Current = currentPanel(*s.Weather, now)
	}
	for _, e := range s.Forecast {
		v.Forecast = append(v.Forecast, ForecastItem{
			Date:        e.Timestamp.Format(forecastDateLayout),
			IconURL:     iconBaseURL + e.Icon + ".png",
			Description: e.Description,
			Temperature: Round(e.Temperature),
		})
	}
	return v
}

func currentPanel(w models.WeatherSnapshot, now time.Time) *CurrentPanel {
	title := w.City
	if w.Country != "" {
		title += ", " + w.Country
	}
	return &CurrentPanel{
		Title:       title,
		Date:        FormatDate(now),
		IconURL:     iconBaseURL + w.Icon + "@2x.png",
		Description: w.Description,
		Temperature: Round(w.Temperature),
		WindSpeed:   w.WindSpeed,
	}
}

// Round rounds half toward positive infinity, so 2.5 is 3 and -2.5 is -2
func Round(v float64) int {
	// v+0.5 is inexact just below one half, so fix up math.Round's
	// away-from-zero ties instead.
	r := math.Round(v)
	if v-r == 0.5 {
		r++
	}
	return int(r)
}

// FormatDate renders t as e.g. "Lundi 5 Janvier"
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s", weekDays[t.Weekday()], t.Day(), months[t.Month()-1])
}

// FormatWind renders a wind speed the way it came from the provider
func FormatWind(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64) + " m/s"
}
