package cache

import (
	"context"
	"sync"

	"currency-proxy/internal/domain/model"
	"currency-proxy/pkg/logger"
)

// MemoryCache keeps every record for the life of the process. There is no
// eviction and no expiry.
type MemoryCache struct {
	cacheMap map[model.ConversionKey]model.ConversionRecord
	mutex    sync.RWMutex
	log      *logger.Logger
}

func NewMemoryCache(log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[model.ConversionKey]model.ConversionRecord),
		log:      log,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key model.ConversionKey) (model.ConversionRecord, bool) {
	c.mutex.RLock()
	record, found := c.cacheMap[key]
	c.mutex.RUnlock()

	if found {
		c.log.Debug("Cache hit", "key", key.String())
		return record.Clone(), true
	}

	c.log.Debug("Cache miss", "key", key.String())
	return model.ConversionRecord{}, false
}

// Put stores record under key unless a record is already there; the first
// write is authoritative.
func (c *MemoryCache) Put(ctx context.Context, key model.ConversionKey, record model.ConversionRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.cacheMap[key]; exists {
		c.log.Debug("Cache entry already present, keeping it", "key", key.String())
		return
	}

	c.cacheMap[key] = record.Clone()
	c.log.Debug("Cache set", "key", key.String())
}

func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cacheMap)
}
