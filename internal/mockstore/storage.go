package mockstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ecoexchange/recycle/internal/blob"
)

// Storage is a string key/value store in the shape of browser local
// storage. A missing key reports ok == false.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
	return nil
}

// BlobStorage persists each key as one object in a blob store, so the
// collection survives restarts on local disk or in a bucket.
type BlobStorage struct {
	Store  blob.Store
	Prefix string
}

// NewFileStorage stores keys as JSON files under dir.
func NewFileStorage(dir string) (*BlobStorage, error) {
	fs, err := blob.NewFilesystem(dir)
	if err != nil {
		return nil, err
	}
	return &BlobStorage{Store: fs}, nil
}

func (s *BlobStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	_, rc, err := s.Store.Get(ctx, s.Prefix+key+".json")
	if errors.Is(err, blob.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func (s *BlobStorage) SetItem(ctx context.Context, key, value string) error {
	_, err := s.Store.Put(ctx, s.Prefix+key+".json", bytes.NewReader([]byte(value)), "application/json")
	return err
}

// SettingsStore is the key/value subset of the SQL settings repository.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// SettingsStorage keeps keys as rows of the SQL settings table.
type SettingsStorage struct {
	Settings SettingsStore
}

func (s *SettingsStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.Settings.Get(ctx, key)
}

func (s *SettingsStorage) SetItem(ctx context.Context, key, value string) error {
	return s.Settings.Set(ctx, key, value)
}
