package memorydb

import (
	"hash/fnv"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/cache"
)

// LRUCache is a bounded cache evicting the least recently used entry. The
// leveldb store keeps one in front of disk reads.
type LRUCache struct {
	cache *cache.Cache
}

// entry keeps the full key so that two keys sharing a hash never alias.
type entry struct {
	key   string
	value []byte
}

func NewLRUCache(size int) *LRUCache {
	if size <= 0 {
		size = 1
	}
	return &LRUCache{cache: cache.NewCache(cache.NewLRU(size))}
}

func hashKey(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

func (c *LRUCache) Get(key string) ([]byte, error) {
	h := c.cache.Get(0, hashKey(key), nil)
	if h == nil {
		return nil, errors.Errorf("Error retrieving memorydb key: %s", key)
	}
	defer h.Release()
	e, ok := h.Value().(*entry)
	if !ok || e.key != key {
		return nil, errors.Errorf("Error retrieving memorydb key: %s", key)
	}
	return e.value, nil
}

func (c *LRUCache) Put(key string, value []byte) error {
	hk := hashKey(key)
	// Delete bans the current node so the next Get installs a fresh one.
	c.cache.Delete(0, hk, nil)
	h := c.cache.Get(0, hk, func() (int, cache.Value) {
		return 1, &entry{key: key, value: value}
	})
	if h == nil {
		return errors.Errorf("Error caching memorydb key: %s", key)
	}
	h.Release()
	return nil
}

func (c *LRUCache) Delete(key string) error {
	hk := hashKey(key)
	h := c.cache.Get(0, hk, nil)
	if h == nil {
		return nil
	}
	e, ok := h.Value().(*entry)
	h.Release()
	if ok && e.key == key {
		c.cache.Delete(0, hk, nil)
	}
	return nil
}

func (c *LRUCache) Len() int {
	return c.cache.Size()
}

// Purge drops every entry.
func (c *LRUCache) Purge() {
	c.cache.EvictAll()
}
