package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"weather-widget/collector"
	"weather-widget/models"
	"weather-widget/storage"
	"weather-widget/widget"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher map[string]collector.Result

func (s stubFetcher) Fetch(_ context.Context, city string) (collector.Result, error) {
	res, ok := s[city]
	if !ok {
		return collector.Result{}, errors.New("not found")
	}
	return res, nil
}

func setup(t *testing.T, store storage.Store) (*widget.Widget, *Screen, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	screen := NewScreen(&out)
	screen.now = func() time.Time { return time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC) }

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	fetcher := stubFetcher{
		"Paris": {Weather: models.WeatherSnapshot{City: "Paris", Country: "FR", Temperature: 12.6, WindSpeed: 4, Icon: "04d"}},
	}
	w := widget.New(context.Background(), fetcher, store, widget.WithLogger(logger), widget.WithOnChange(screen.Render))
	return w, screen, &out
}

func TestRunSearch(t *testing.T) {
	w, screen, out := setup(t, storage.NewMemoryStore())

	err := Run(context.Background(), w, screen, strings.NewReader("Paris\n"))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Paris, FR")
	assert.Contains(t, out.String(), "13°C")
	assert.Contains(t, out.String(), "Chargement")
}

func TestRunUnknownCity(t *testing.T) {
	w, screen, out := setup(t, storage.NewMemoryStore())

	require.NoError(t, Run(context.Background(), w, screen, strings.NewReader("Atlantis\n:quit\n")))
	assert.Contains(t, out.String(), "Ville introuvable")
	assert.True(t, w.Snapshot().Error)
}

func TestRunFavorites(t *testing.T) {
	store := storage.NewMemoryStore()
	w, screen, out := setup(t, store)

	input := ":add Paris\n:add Paris\n:add\n:fav 1\n:fav 7\n:go\n"
	require.NoError(t, Run(context.Background(), w, screen, strings.NewReader(input)))

	assert.Equal(t, []string{"Paris"}, w.Favorites())
	assert.Contains(t, out.String(), "favori inconnu")
	s := w.Snapshot()
	require.NotNil(t, s.Weather, ":fav then :go searches the favorite")
	assert.Equal(t, "Paris", s.Weather.City)

	raw, ok, err := store.Get(context.Background(), widget.FavoritesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["Paris"]`, string(raw))
}

func TestRunFavClickDoesNotSearch(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), widget.FavoritesKey, []byte(`["Paris"]`)))
	w, screen, _ := setup(t, store)

	require.NoError(t, Run(context.Background(), w, screen, strings.NewReader(":fav 1\n")))
	s := w.Snapshot()
	assert.Equal(t, "Paris", s.Input)
	assert.Nil(t, s.Weather)
	assert.Zero(t, s.Generation)
}

func TestRunUnknownCommand(t *testing.T) {
	w, screen, out := setup(t, storage.NewMemoryStore())
	require.NoError(t, Run(context.Background(), w, screen, strings.NewReader(":nope\n")))
	assert.Contains(t, out.String(), `commande inconnue: "nope"`)
}

func TestRunCanceled(t *testing.T) {
	w, screen, _ := setup(t, storage.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, w, screen, strings.NewReader("Paris\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, w.Snapshot().Weather)
}

func TestRunCanceledWhileWaitingForInput(t *testing.T) {
	w, screen, _ := setup(t, storage.NewMemoryStore())
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, w, screen, pr) }()

	_, err := pw.Write([]byte("Paris\n"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.Snapshot().Weather != nil }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel while blocked on input")
	}
}

func TestScreenSkipsOlderState(t *testing.T) {
	var out bytes.Buffer
	screen := NewScreen(&out)

	screen.Render(widget.State{Input: "Lyon", Revision: 2})
	screen.Render(widget.State{Input: "Paris", Revision: 1})
	screen.Render(widget.State{Input: "Lyon", Revision: 2})

	assert.Equal(t, 2, strings.Count(out.String(), "[ Lyon ]"))
	assert.NotContains(t, out.String(), "[ Paris ]")
}
