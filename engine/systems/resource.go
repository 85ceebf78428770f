package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/terra/engine/core"
)

var ErrCacheCapacityExceeded = errors.New("resource cache capacity exceeded")

/** @brief The configuration for the resource cache */
type MemoryCacheConfig struct {
	/** @brief The maximum number of bytes the cache accounts for. */
	Capacity int64
}

type cacheEntry struct {
	value interface{}
	size  int64
}

// MemoryCache holds renderable resources keyed by name and keeps track of
// their size. It never evicts: a Put that does not fit is rejected and the
// caller decides what to drop.
type MemoryCache struct {
	mu       sync.RWMutex
	capacity int64
	used     int64
	entries  map[string]cacheEntry
}

func NewMemoryCache(config *MemoryCacheConfig) (*MemoryCache, error) {
	if config.Capacity <= 0 {
		err := fmt.Errorf("func NewMemoryCache - config.Capacity must be > 0")
		core.LogError("%v", err)
		return nil, err
	}
	core.LogDebug("Resource cache initialized with a capacity of %d bytes.", config.Capacity)
	return &MemoryCache{
		capacity: config.Capacity,
		entries:  make(map[string]cacheEntry),
	}, nil
}

/**
 * @brief Stores value under key. Replacing an existing entry only accounts
 * for the difference in size.
 *
 * @param key The name of the resource.
 * @param value The resource.
 * @param size The size in bytes the resource occupies.
 * @return ErrCacheCapacityExceeded when the entry does not fit.
 */
func (mc *MemoryCache) Put(key string, value interface{}, size int64) error {
	if size < 0 {
		return core.NewPreconditionError("MemoryCache.Put", core.ErrInvalidArgument, "negative size %d for %q", size, key)
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	used := mc.used + size
	if old, ok := mc.entries[key]; ok {
		used -= old.size
	}
	if used > mc.capacity {
		return fmt.Errorf("%w: %q needs %d bytes, %d of %d in use", ErrCacheCapacityExceeded, key, size, mc.used, mc.capacity)
	}
	mc.entries[key] = cacheEntry{value: value, size: size}
	mc.used = used
	return nil
}

func (mc *MemoryCache) Get(key string) (interface{}, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	e, ok := mc.entries[key]
	return e.value, ok
}

func (mc *MemoryCache) Remove(key string) bool {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	e, ok := mc.entries[key]
	if !ok {
		return false
	}
	delete(mc.entries, key)
	mc.used -= e.size
	return true
}

func (mc *MemoryCache) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.entries = make(map[string]cacheEntry)
	mc.used = 0
}

func (mc *MemoryCache) UsedCapacity() int64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.used
}

func (mc *MemoryCache) Capacity() int64 {
	return mc.capacity
}

func (mc *MemoryCache) NumObjects() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

func (mc *MemoryCache) Shutdown() error {
	mc.Clear()
	return nil
}
