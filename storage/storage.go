// Package storage provides the persistent local key-value storage the widget
// keeps its favorites in. Every backend behaves like browser localStorage:
// string keys, opaque values, last write wins.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Store is a minimal persistent key-value store
type Store interface {
	// Get returns the value for key and whether it exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the value for key
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Driver names accepted by Open
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name
var ErrUnknownDriver = errors.New("unknown storage driver")

// Options selects and configures a backend
type Options struct {
	Driver    string
	Path      string // file and sqlite
	RedisAddr string
	RedisDB   int
}

// Open creates the backend named by opts.Driver
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileStore(opts.Path)
	case DriverSQLite:
		return NewSQLiteStore(opts.Path)
	case DriverRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// MemoryStore keeps values in process memory. It is what tests and
// ephemeral sessions use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
