// Package store persists per-user documents keyed by date (or subject name)
// inside named collections, and caches them for the services.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Document is one stored record. Values are JSON-compatible: nested objects
// are map[string]any, arrays are []any or typed slices.
type Document = map[string]any

var (
	ErrNotFound   = errors.New("document not found")
	ErrInvalidKey = errors.New("invalid document key")
)

// Store is implemented by every backend. Save merges the partial document
// into what is stored: nested maps merge, every other value replaces.
type Store interface {
	Get(ctx context.Context, userID, collection, key string) (Document, error)
	GetAll(ctx context.Context, userID, collection string) (map[string]Document, error)
	Save(ctx context.Context, userID, collection, key string, partial Document) error
	Delete(ctx context.Context, userID, collection, key string) error
	Close() error
}

// NormalizeKey trims a document key and rejects the ones no backend can
// address. Keys are otherwise opaque: date canonicalization belongs to the
// date-keyed collections, not to the store.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return key, nil
}

func checkPartition(userID, collection string) error {
	if userID == "" || strings.Contains(userID, "/") {
		return fmt.Errorf("%w: user id %q", ErrInvalidKey, userID)
	}
	if collection == "" || strings.Contains(collection, "/") {
		return fmt.Errorf("%w: collection %q", ErrInvalidKey, collection)
	}
	return nil
}

// Merge returns dst with src deep-merged into it. dst is modified in place
// and may be nil.
func Merge(dst, src Document) Document {
	if dst == nil {
		dst = make(Document, len(src))
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]any)
		dstMap, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[k] = Merge(dstMap, srcMap)
			continue
		}
		if srcIsMap {
			dst[k] = Merge(nil, srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

// Clone deep-copies a document through its JSON form, which also turns typed
// slices into []any the way they come back from every backend.
func Clone(doc Document) (Document, error) {
	if doc == nil {
		return nil, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return out, nil
}
