package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// Diskv stores each document as a JSON file at <base>/<user>/<collection>/<key>.
type Diskv struct {
	// diskv serialises single reads and writes, the lock makes read-merge-write atomic
	mu sync.Mutex
	d  *diskv.Diskv
}

func NewDiskv(basePath string) *Diskv {
	return &Diskv{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s/%s", strings.Join(pathKey.Path, "/"), pathKey.FileName)
}

func diskKey(userID, collection, key string) string {
	return partitionKey(userID, collection) + "/" + key
}

func (s *Diskv) read(key string) (Document, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return doc, nil
}

func (s *Diskv) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	return s.read(diskKey(userID, collection, key))
}

func (s *Diskv) GetAll(ctx context.Context, userID, collection string) (map[string]Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}

	prefix := partitionKey(userID, collection) + "/"
	out := make(map[string]Document)
	for key := range s.d.KeysPrefix(prefix, ctx.Done()) {
		doc, err := s.read(key)
		if err != nil {
			return nil, err
		}
		out[strings.TrimPrefix(key, prefix)] = doc
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Diskv) Save(ctx context.Context, userID, collection, key string, partial Document) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	incoming, err := Clone(partial)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dk := diskKey(userID, collection, key)
	current, err := s.read(dk)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	raw, err := json.Marshal(Merge(current, incoming))
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", dk, err)
	}
	if err := s.d.Write(dk, raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", dk, err)
	}
	return nil
}

func (s *Diskv) Delete(ctx context.Context, userID, collection, key string) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dk := diskKey(userID, collection, key)
	if !s.d.Has(dk) {
		return nil
	}
	if err := s.d.Erase(dk); err != nil {
		return fmt.Errorf("failed to erase %s: %w", dk, err)
	}
	return nil
}

func (s *Diskv) Close() error { return nil }
