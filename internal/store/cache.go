package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var cacheRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_cache_requests_total",
		Help: "Document cache lookups by collection and result",
	},
	[]string{"collection", "result"},
)

// Collectors returns the cache metrics so main can register them next to
// the HTTP ones.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{cacheRequests}
}

type partition struct {
	docs     map[string]Document
	complete bool
	// bumped on every write so a read that raced a write does not fill stale data
	version uint64
}

// Cache is a read-through, write-through cache in front of a Store. It is
// partitioned per (user, collection); once a partition has been listed
// completely, misses inside it answer ErrNotFound without a backend call.
type Cache struct {
	backend Store

	mu    sync.RWMutex
	parts map[string]*partition
}

func NewCache(backend Store) *Cache {
	return &Cache{backend: backend, parts: make(map[string]*partition)}
}

func (c *Cache) part(pk string) *partition {
	p, ok := c.parts[pk]
	if !ok {
		p = &partition{docs: make(map[string]Document)}
		c.parts[pk] = p
	}
	return p
}

func (c *Cache) Get(ctx context.Context, userID, collection, key string) (Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	key, err := NormalizeKey(key)
	if err != nil {
		return nil, err
	}
	pk := partitionKey(userID, collection)

	c.mu.RLock()
	var version uint64
	p, ok := c.parts[pk]
	if ok {
		version = p.version
		if doc, found := p.docs[key]; found {
			c.mu.RUnlock()
			cacheRequests.WithLabelValues(collection, "hit").Inc()
			return Clone(doc)
		}
		if p.complete {
			c.mu.RUnlock()
			cacheRequests.WithLabelValues(collection, "hit").Inc()
			return nil, ErrNotFound
		}
	}
	c.mu.RUnlock()

	cacheRequests.WithLabelValues(collection, "miss").Inc()
	doc, err := c.backend.Get(ctx, userID, collection, key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	p = c.part(pk)
	if p.version == version {
		p.docs[key] = doc
	}
	c.mu.Unlock()

	return Clone(doc)
}

func (c *Cache) GetAll(ctx context.Context, userID, collection string) (map[string]Document, error) {
	if err := checkPartition(userID, collection); err != nil {
		return nil, err
	}
	pk := partitionKey(userID, collection)

	c.mu.RLock()
	var version uint64
	if p, ok := c.parts[pk]; ok {
		version = p.version
		if p.complete {
			out, err := cloneAll(p.docs)
			c.mu.RUnlock()
			cacheRequests.WithLabelValues(collection, "hit").Inc()
			return out, err
		}
	}
	c.mu.RUnlock()

	cacheRequests.WithLabelValues(collection, "miss").Inc()
	docs, err := c.backend.GetAll(ctx, userID, collection)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	p := c.part(pk)
	if p.version == version {
		p.docs = docs
		p.complete = true
	}
	c.mu.Unlock()

	return cloneAll(docs)
}

// Put writes the partial document through to the backend and merges it into
// the cached copy.
func (c *Cache) Put(ctx context.Context, userID, collection, key string, partial Document) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if err := c.backend.Save(ctx, userID, collection, key, partial); err != nil {
		c.invalidate(partitionKey(userID, collection))
		return err
	}
	incoming, err := Clone(partial)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.part(partitionKey(userID, collection))
	p.version++
	if doc, ok := p.docs[key]; ok {
		p.docs[key] = Merge(doc, incoming)
	} else if p.complete {
		p.docs[key] = incoming
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, userID, collection, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	if err := c.backend.Delete(ctx, userID, collection, key); err != nil {
		c.invalidate(partitionKey(userID, collection))
		return err
	}

	c.mu.Lock()
	p := c.part(partitionKey(userID, collection))
	p.version++
	delete(p.docs, key)
	c.mu.Unlock()
	return nil
}

// Invalidate drops every cached partition of the user, for example on sign-out.
func (c *Cache) Invalidate(userID string) {
	prefix := userID + "/"

	c.mu.Lock()
	defer c.mu.Unlock()
	for pk, p := range c.parts {
		if strings.HasPrefix(pk, prefix) {
			p.version++
			p.docs = make(map[string]Document)
			p.complete = false
		}
	}
}

func (c *Cache) invalidate(pk string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parts[pk]; ok {
		p.version++
		p.docs = make(map[string]Document)
		p.complete = false
	}
}

func cloneAll(docs map[string]Document) (map[string]Document, error) {
	out := make(map[string]Document, len(docs))
	for k, doc := range docs {
		c, err := Clone(doc)
		if err != nil {
			return nil, err
		}
		out[k] = c
	}
	return out, nil
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
