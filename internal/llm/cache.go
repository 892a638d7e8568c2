package llm

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Veraticus/spends/internal/model"
)

// cacheSize bounds how many distinct messages are remembered.
const cacheSize = 4096

type cacheEntry struct {
	expires time.Time
	txn     *model.Transaction
}

// ResultCache memoizes model outcomes per message hash. A nil transaction
// records a confirmed non-transaction. Entries expire lazily on lookup, so
// the cache owns no background goroutine and may outlive any one run.
type ResultCache struct {
	lru *lru.Cache[string, cacheEntry]
	ttl time.Duration
	now func() time.Time
}

// NewResultCache returns a cache whose entries live for ttl.
func NewResultCache(ttl time.Duration) *ResultCache {
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[string, cacheEntry](cacheSize)
	return &ResultCache{lru: c, ttl: ttl, now: time.Now}
}

// get returns a copy of the cached outcome so callers never share records.
func (c *ResultCache) get(key string) (*model.Transaction, bool) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expires) {
		c.lru.Remove(key)
		return nil, false
	}
	if entry.txn == nil {
		return nil, true
	}
	cp := *entry.txn
	return &cp, true
}

func (c *ResultCache) set(key string, txn *model.Transaction) {
	if txn != nil {
		cp := *txn
		txn = &cp
	}
	c.lru.Add(key, cacheEntry{expires: c.now().Add(c.ttl), txn: txn})
}

func (c *ResultCache) size() int {
	return c.lru.Len()
}

// Close drops every entry.
func (c *ResultCache) Close() {
	c.lru.Purge()
}
