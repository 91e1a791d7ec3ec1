package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behavior every backend must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "favoriteCities")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "favoriteCities", []byte(`["Paris"]`)))
	v, ok, err := s.Get(ctx, "favoriteCities")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["Paris"]`, string(v))

	require.NoError(t, s.Set(ctx, "favoriteCities", []byte(`["Paris","Lyon"]`)))
	v, _, err = s.Get(ctx, "favoriteCities")
	require.NoError(t, err)
	assert.JSONEq(t, `["Paris","Lyon"]`, string(v))

	require.NoError(t, s.Set(ctx, "other", []byte(`{}`)))
	v, _, err = s.Get(ctx, "favoriteCities")
	require.NoError(t, err)
	assert.JSONEq(t, `["Paris","Lyon"]`, string(v))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte(`["Paris"]`)
	require.NoError(t, s.Set(context.Background(), "k", buf))
	buf[2] = 'X'
	v, _, _ := s.Get(context.Background(), "k")
	assert.Equal(t, `["Paris"]`, string(v))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "widget.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	// A second store on the same path sees what the first wrote.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(context.Background(), "favoriteCities")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["Paris","Lyon"]`, string(v))
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "widget.json"))
	require.NoError(t, err)
	assert.Error(t, s.Set(context.Background(), "k", []byte("not json")))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))
	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, _, err = s.Get(context.Background(), "favoriteCities")
	assert.Error(t, err)
}

func TestFileStoreEmptyPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

func TestSQLiteStore(t *testing.T) {
	dsn := "file:kv_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "?mode=memory&cache=shared"
	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather-widget", "storage.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Set(context.Background(), "favoriteCities", []byte(`[]`)))
	assert.FileExists(t, path)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widget.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "favoriteCities", []byte(`["Paris"]`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	v, ok, err := s.Get(context.Background(), "favoriteCities")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `["Paris"]`, string(v))
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("WEATHER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("WEATHER_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr, 15)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.client.Del(ctx, redisKeyPrefix+"favoriteCities", redisKeyPrefix+"other").Err()
		_ = s.Close()
	})
	require.NoError(t, s.client.Del(ctx, redisKeyPrefix+"favoriteCities", redisKeyPrefix+"other").Err())
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{Path: filepath.Join(t.TempDir(), "kv.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(ctx, Options{Driver: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = Open(ctx, Options{Driver: DriverRedis})
	assert.Error(t, err)
}
