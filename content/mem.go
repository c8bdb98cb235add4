package content

import (
	"sync"

	"github.com/ipfs/go-cid"
)

// MemCache is an in-memory Store for hot paths and tests.
//
// Safe for concurrent use. Bytes are copied on the way in and out, so
// callers can never mutate a stored object.
type MemCache struct {
	mu sync.RWMutex
	m  map[cid.Cid][]byte
}

func NewMemCache() *MemCache {
	return &MemCache{m: make(map[cid.Cid][]byte)}
}

func (c *MemCache) Put(data []byte) (cid.Cid, error) {
	id, err := DigestCID(data)
	if err != nil {
		return cid.Undef, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[id]; !ok {
		c.m[id] = append([]byte(nil), data...)
	}
	return id, nil
}

func (c *MemCache) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	c.mu.RLock()
	b, ok := c.m[id]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (c *MemCache) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.m[id]
	return ok
}

// Len reports the number of stored objects.
func (c *MemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
