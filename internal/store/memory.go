package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory keeps documents in process. It backs tests and the demo mode.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]Document
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]Document)}
}

func partitionKey(userID, collection string) string {
	return userID + "/" + collection
}

func (m *Memory) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	doc, ok := m.docs[partitionKey(userID, collection)][key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, ErrNotFound)
	}
	return Clone(doc)
}

func (m *Memory) GetAll(ctx context.Context, userID, collection string) (map[string]Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	part := m.docs[partitionKey(userID, collection)]
	out := make(map[string]Document, len(part))
	for k, doc := range part {
		c, err := Clone(doc)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

func (m *Memory) Save(ctx context.Context, userID, collection, key string, partial Document) error {
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

	m.mu.Lock()
	defer m.mu.Unlock()

	pk := partitionKey(userID, collection)
	if m.docs[pk] == nil {
		m.docs[pk] = make(map[string]Document)
	}
	m.docs[pk][key] = Merge(m.docs[pk][key], incoming)
	return nil
}

func (m *Memory) Delete(ctx context.Context, userID, collection, key string) error {
	if err := checkPartition(userID, collection); err != nil {
		return err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.docs[partitionKey(userID, collection)], key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
