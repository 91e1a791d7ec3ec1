// Package widget holds the weather widget's state and the event handlers
// that drive it: typing, pressing Enter, adding a favorite and clicking one.
package widget

import (
	"context"
	"sync"
	"time"

	"weather-widget/collector"
	"weather-widget/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// KeyEnter is the key that dispatches a search
const KeyEnter = "Enter"

// Fetcher performs the joint current+forecast lookup
type Fetcher interface {
	Fetch(ctx context.Context, city string) (collector.Result, error)
}

// Widget owns the State and applies events to it. Searches run on their own
// goroutine; their completion is applied under the same lock as every other
// event, so handlers observe a consistent State.
type Widget struct {
	mu    sync.Mutex
	state State

	fetcher  Fetcher
	store    storage.Store
	log      logrus.FieldLogger
	onChange func(State)

	persistMu sync.Mutex
	inFlight  sync.WaitGroup
	failLog   rate.Sometimes
}

// Option customizes a Widget
type Option func(*Widget)

// WithLogger sets the widget logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Widget) { w.log = l }
}

// WithOnChange registers a hook called with a copy of the State after every
// change. It runs outside the widget lock, so calls may be concurrent and
// may arrive out of order; State.Revision tells which one is newest.
func WithOnChange(fn func(State)) Option {
	return func(w *Widget) { w.onChange = fn }
}

// New creates a widget and loads the favorites from store. Unreadable
// favorites are logged and replaced by an empty list.
func New(ctx context.Context, fetcher Fetcher, store storage.Store, opts ...Option) *Widget {
	w := &Widget{
		fetcher: fetcher,
		store:   store,
		log:     logrus.StandardLogger(),
		failLog: rate.Sometimes{First: 3, Interval: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}

	favorites, err := LoadFavorites(ctx, store)
	if err != nil {
		w.log.WithError(err).Warn("starting with empty favorites")
	}
	w.state.Favorites = favorites
	return w
}

// Snapshot returns a copy of the current State
func (w *Widget) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.clone()
}

// Favorites returns a copy of the favorites list
func (w *Widget) Favorites() []string {
	return w.Snapshot().Favorites
}

// Type replaces the search text, as a keystroke in the input would
func (w *Widget) Type(text string) {
	w.update(func(s State) (State, bool) {
		return s.SetInput(text), true
	})
}

// PressKey handles a key press in the input. Only KeyEnter does anything:
// it dispatches a search of the current input when it is not blank. The
// search outlives the call; use Wait to block until it lands.
func (w *Widget) PressKey(ctx context.Context, key string) {
	if key != KeyEnter {
		return
	}

	var (
		query      string
		generation uint64
		dispatched bool
	)
	w.update(func(s State) (State, bool) {
		next, q, gen, ok := s.BeginSearch()
		query, generation, dispatched = q, gen, ok
		return next, ok
	})
	if !dispatched {
		return
	}

	w.inFlight.Add(1)
	go w.search(ctx, query, generation)
}

// Search types city and presses Enter
func (w *Widget) Search(ctx context.Context, city string) {
	w.Type(city)
	w.PressKey(ctx, KeyEnter)
}

// Wait blocks until every dispatched search has been applied
func (w *Widget) Wait() {
	w.inFlight.Wait()
}

func (w *Widget) search(ctx context.Context, city string, generation uint64) {
	defer w.inFlight.Done()

	log := w.log.WithFields(logrus.Fields{
		"search_id":  uuid.NewString(),
		"city":       city,
		"generation": generation,
	})
	log.Debug("search dispatched")

	res, err := w.fetcher.Fetch(ctx, city)

	w.update(func(s State) (State, bool) {
		if !s.IsCurrent(generation) {
			log.WithField("latest", s.Generation).Debug("dropping superseded search result")
			return s, false
		}
		if err != nil {
			w.failLog.Do(func() {
				log.WithError(err).Warn("search failed")
			})
			return s.FailSearch(generation), true
		}
		log.Debug("search completed")
		return s.CompleteSearch(generation, res), true
	})
}

// ClickAddFavorite adds the current input to the favorites
func (w *Widget) ClickAddFavorite(ctx context.Context) error {
	return w.AddFavorite(ctx, w.Snapshot().Input)
}

// AddFavorite adds city to the favorites and persists the list. Blank and
// already present cities are ignored. The in-memory list keeps the new city
// even when persisting fails; the error is returned.
func (w *Widget) AddFavorite(ctx context.Context, city string) error {
	var changed bool
	w.update(func(s State) (State, bool) {
		next, ok := s.AddFavorite(city)
		changed = ok
		return next, ok
	})
	if !changed {
		return nil
	}

	// Writes are serialized and always carry the latest list, so a slow
	// writer can't overwrite a newer one.
	w.persistMu.Lock()
	defer w.persistMu.Unlock()
	if err := SaveFavorites(ctx, w.store, w.Favorites()); err != nil {
		w.log.WithError(err).WithField("city", city).Error("could not persist favorites")
		return err
	}
	return nil
}

// ClickFavorite copies the index-th favorite into the input. It reports
// whether index named a favorite.
func (w *Widget) ClickFavorite(index int) bool {
	var ok bool
	w.update(func(s State) (State, bool) {
		var next State
		next, ok = s.SelectFavorite(index)
		return next, ok
	})
	return ok
}

// update applies fn under the lock and fires onChange when fn reports a change
func (w *Widget) update(fn func(State) (State, bool)) {
	w.mu.Lock()
	next, changed := fn(w.state)
	if changed {
		next.Revision = w.state.Revision + 1
	}
	w.state = next
	snapshot := next.clone()
	w.mu.Unlock()

	if changed && w.onChange != nil {
		w.onChange(snapshot)
	}
}
