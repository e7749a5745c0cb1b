package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Asset is an uploaded file owned by a single request.
type Asset struct {
	ID   string
	Name string // client-supplied filename
	Path string

	store *AssetStore
	owned bool
}

// Bytes reads the asset's contents.
func (a *Asset) Bytes() ([]byte, error) {
	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset %s: %w", a.Name, err)
	}
	return data, nil
}

// Filename returns the client-supplied name.
func (a *Asset) Filename() string {
	return a.Name
}

// Release deletes an owned asset. It is safe to call more than once, and is a
// no-op for borrowed files.
func (a *Asset) Release() error {
	if !a.owned || a.store == nil {
		return nil
	}
	return a.store.Release(a.ID)
}

// Borrow wraps a file the caller keeps ownership of; Release never deletes it.
func Borrow(path string) *Asset {
	return &Asset{ID: path, Name: filepath.Base(path), Path: path}
}

// AssetStore keeps transient uploads on disk until they are released.
type AssetStore struct {
	dir    string
	assets map[string]*Asset
	mu     sync.RWMutex
}

func New(dir string) *AssetStore {
	return &AssetStore{
		dir:    dir,
		assets: make(map[string]*Asset),
	}
}

// Save copies r into a new file in the store's directory.
func (s *AssetStore) Save(name string, r io.Reader) (*Asset, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+filepath.Ext(name))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to close asset: %w", err)
	}

	asset := &Asset{ID: id, Name: name, Path: path, store: s, owned: true}

	s.mu.Lock()
	s.assets[id] = asset
	s.mu.Unlock()

	slog.Debug("Asset saved", "id", id, "name", name)
	return asset, nil
}

// Len returns the number of assets not yet released.
func (s *AssetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// Release removes the asset's file. Unknown ids are ignored.
func (s *AssetStore) Release(id string) error {
	s.mu.Lock()
	asset, exists := s.assets[id]
	delete(s.assets, id)
	s.mu.Unlock()

	if !exists {
		return nil
	}
	if err := os.Remove(asset.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove asset %s: %w", id, err)
	}
	slog.Debug("Asset released", "id", id, "name", asset.Name)
	return nil
}

// ReleaseAll releases every given asset and logs failures.
func (s *AssetStore) ReleaseAll(assets []*Asset) {
	for _, a := range assets {
		if err := s.Release(a.ID); err != nil {
			slog.Error("Unable to release asset", "id", a.ID, "err", err)
		}
	}
}
