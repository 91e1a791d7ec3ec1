package render

import (
	"bytes"
	"testing"
	"time"

	"weather-widget/models"
	"weather-widget/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, time.January, 8, 10, 0, 0, 0, time.UTC)

func TestRound(t *testing.T) {
	cases := map[float64]int{
		12.4: 12, 12.5: 13, 12.6: 13, -2.5: -2, -2.6: -3, 0: 0, -0.4: 0, 29.99: 30,
		0.49999999999999994: 0, -0.5: 0, -1.5: -1, 2.5: 3,
	}
	for in, want := range cases {
		assert.Equal(t, want, Round(in), "Round(%v)", in)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Lundi 8 Janvier", FormatDate(monday))
	assert.Equal(t, "Dimanche 18 Août", FormatDate(time.Date(2024, time.August, 18, 0, 0, 0, 0, time.UTC)))
}

func TestFormatWind(t *testing.T) {
	assert.Equal(t, "4.12 m/s", FormatWind(4.12))
	assert.Equal(t, "4 m/s", FormatWind(4))
}

func TestBuildCurrentPanel(t *testing.T) {
	s := widget.State{Weather: &models.WeatherSnapshot{
		City: "Paris", Country: "FR", Temperature: 12.5, WindSpeed: 4.12, Icon: "04d", Description: "couvert",
	}}
	v := Build(s, monday)

	require.NotNil(t, v.Current)
	assert.Equal(t, "Paris, FR", v.Current.Title)
	assert.Equal(t, "Lundi 8 Janvier", v.Current.Date)
	assert.Equal(t, "https://openweathermap.org/img/wn/04d@2x.png", v.Current.IconURL)
	assert.Equal(t, 13, v.Current.Temperature)
	assert.Empty(t, v.Error)
	assert.Empty(t, v.Forecast)
	assert.False(t, v.Loading)
}

func TestBuildTitleWithoutCountry(t *testing.T) {
	v := Build(widget.State{Weather: &models.WeatherSnapshot{City: "Nowhere"}}, monday)
	assert.Equal(t, "Nowhere", v.Current.Title)
}

func TestBuildForecastStrip(t *testing.T) {
	s := widget.State{Forecast: []models.ForecastEntry{
		{Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Temperature: 11.49, Icon: "01d"},
		{Timestamp: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), Temperature: -0.5, Icon: "13n"},
	}}
	v := Build(s, monday)

	assert.Nil(t, v.Current)
	require.Len(t, v.Forecast, 2)
	assert.Equal(t, "01/03/2024", v.Forecast[0].Date)
	assert.Equal(t, "https://openweathermap.org/img/wn/01d.png", v.Forecast[0].IconURL)
	assert.Equal(t, 11, v.Forecast[0].Temperature)
	assert.Equal(t, 0, v.Forecast[1].Temperature)
}

func TestBuildErrorHidesPanels(t *testing.T) {
	v := Build(widget.State{Error: true}, monday)
	assert.Equal(t, ErrorMessage, v.Error)
	assert.Nil(t, v.Current)
	assert.Empty(t, v.Forecast)
}

func TestBuildPanelsAreIndependent(t *testing.T) {
	s := widget.State{
		Loading:  true,
		Weather:  &models.WeatherSnapshot{City: "Paris"},
		Forecast: []models.ForecastEntry{{Icon: "01d"}},
	}
	v := Build(s, monday)
	assert.True(t, v.Loading)
	assert.NotNil(t, v.Current)
	assert.Len(t, v.Forecast, 1)
}

func TestWriteText(t *testing.T) {
	s := widget.State{
		Input:     "Ly",
		Favorites: []string{"Paris", "Lyon"},
		Weather:   &models.WeatherSnapshot{City: "Paris", Country: "FR", Temperature: 12.6, WindSpeed: 4.12, Icon: "04d", Description: "couvert"},
		Forecast:  []models.ForecastEntry{{Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Temperature: 11.2, Icon: "01d", Description: "ciel dégagé"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Build(s, monday)))

	out := buf.String()
	assert.Contains(t, out, "[ Ly ]")
	assert.Contains(t, out, "1) Paris  2) Lyon")
	assert.Contains(t, out, "Paris, FR\nLundi 8 Janvier")
	assert.Contains(t, out, "13°C")
	assert.Contains(t, out, "Vitesse du vent : 4.12 m/s")
	assert.Contains(t, out, "Prévisions sur 5 jours")
	assert.Contains(t, out, "01/03/2024")
	assert.Contains(t, out, "https://openweathermap.org/img/wn/01d.png")
	assert.NotContains(t, out, ErrorMessage)
	assert.NotContains(t, out, "Chargement")
}

func TestWriteTextError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Build(widget.State{Error: true, Loading: true}, monday)))
	assert.Contains(t, buf.String(), "☹ Ville introuvable")
	assert.Contains(t, buf.String(), "Chargement")
	assert.NotContains(t, buf.String(), "Vitesse du vent")
}
