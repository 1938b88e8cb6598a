package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// FileStore persists one JSON file per key under a directory. Writes go
// through a temp file + rename so a crash mid-write never corrupts a
// collection.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	name := strings.ReplaceAll(key, ":", "_") + ".json"
	return filepath.Join(s.dir, name)
}

func (s *FileStore) read(key string, dest any) (bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileStore) write(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}

func (s *FileStore) GetAll(ctx context.Context, kind models.EntityKind) ([]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []json.RawMessage
	ok, err := s.read(CollectionKey(kind), &records)
	if err != nil || !ok {
		return nil, err
	}
	return records, nil
}

func (s *FileStore) SetAll(ctx context.Context, kind models.EntityKind, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(CollectionKey(kind), records)
}

func (s *FileStore) GetStatus(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(key, dest)
}

func (s *FileStore) SetStatus(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(key, value)
}
