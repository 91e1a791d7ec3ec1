package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"weather-widget/storage"
)

// FavoritesKey is the storage key holding the JSON-encoded favorites list
const FavoritesKey = "favoriteCities"

// appendFavorite returns favorites with city appended, or the original slice
// when city is blank or already present. The input slice is never modified.
func appendFavorite(favorites []string, city string) ([]string, bool) {
	city = strings.TrimSpace(city)
	if city == "" {
		return favorites, false
	}
	for _, f := range favorites {
		if f == city {
			return favorites, false
		}
	}
	out := make([]string, len(favorites), len(favorites)+1)
	copy(out, favorites)
	return append(out, city), true
}

// LoadFavorites reads the favorites list from store. A missing key yields an
// empty list. Stored entries are re-checked so blanks and duplicates written
// by something else never reach the widget.
func LoadFavorites(ctx context.Context, store storage.Store) ([]string, error) {
	raw, ok, err := store.Get(ctx, FavoritesKey)
	if err != nil {
		return []string{}, fmt.Errorf("load favorites: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []string{}, nil
	}

	var stored []string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return []string{}, fmt.Errorf("load favorites: decode: %w", err)
	}

	favorites := []string{}
	for _, city := range stored {
		favorites, _ = appendFavorite(favorites, city)
	}
	return favorites, nil
}

// SaveFavorites overwrites the stored list
func SaveFavorites(ctx context.Context, store storage.Store, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("save favorites: encode: %w", err)
	}
	if err := store.Set(ctx, FavoritesKey, raw); err != nil {
		return fmt.Errorf("save favorites: %w", err)
	}
	return nil
}
