package widget

import (
	"strings"

	"weather-widget/collector"
	"weather-widget/models"
)

// State is everything the widget renders from. All transitions go through
// the functions below, which return a new State and never mutate shared
// slices of the receiver.
type State struct {
	Input     string
	Loading   bool
	Error     bool
	Weather   *models.WeatherSnapshot
	Forecast  []models.ForecastEntry
	Favorites []string

	// Generation identifies the latest dispatched search. Results carrying
	// an older generation are dropped.
	Generation uint64

	// Revision increases with every change applied by a Widget. Observers
	// use it to discard snapshots that arrive out of order.
	Revision uint64
}

// SetInput replaces the search text
func (s State) SetInput(text string) State {
	s.Input = text
	return s
}

// BeginSearch dispatches the current input. The input is cleared, Loading is
// set and the generation bumped; the previous weather stays visible until
// the result lands. ok is false for empty input, in which case nothing
// changes.
func (s State) BeginSearch() (next State, query string, generation uint64, ok bool) {
	query = strings.TrimSpace(s.Input)
	if query == "" {
		return s, "", s.Generation, false
	}
	s.Input = ""
	s.Loading = true
	s.Generation++
	return s, query, s.Generation, true
}

// IsCurrent reports whether generation is the latest dispatched search
func (s State) IsCurrent(generation uint64) bool {
	return generation == s.Generation
}

// CompleteSearch publishes a joint success
func (s State) CompleteSearch(generation uint64, res collector.Result) State {
	if !s.IsCurrent(generation) {
		return s
	}
	w := res.Weather
	s.Loading = false
	s.Error = false
	s.Weather = &w
	s.Forecast = append([]models.ForecastEntry(nil), res.Forecast...)
	return s
}

// FailSearch clears both panels and raises the error flag
func (s State) FailSearch(generation uint64) State {
	if !s.IsCurrent(generation) {
		return s
	}
	s.Loading = false
	s.Error = true
	s.Weather = nil
	s.Forecast = nil
	return s
}

// AddFavorite appends city unless it is empty or already present
func (s State) AddFavorite(city string) (State, bool) {
	favorites, changed := appendFavorite(s.Favorites, city)
	s.Favorites = favorites
	return s, changed
}

// SelectFavorite copies the index-th favorite into the input without
// triggering a search
func (s State) SelectFavorite(index int) (State, bool) {
	if index < 0 || index >= len(s.Favorites) {
		return s, false
	}
	s.Input = s.Favorites[index]
	return s, true
}

// clone returns a copy safe to hand outside the widget's lock
func (s State) clone() State {
	if s.Weather != nil {
		w := *s.Weather
		s.Weather = &w
	}
	if s.Forecast != nil {
		s.Forecast = append([]models.ForecastEntry(nil), s.Forecast...)
	}
	s.Favorites = append([]string(nil), s.Favorites...)
	return s
}
