// Package cache provides the short-lived memoization the report endpoints
// use to absorb dashboard refresh bursts. Callers own the instance and
// inject it where needed; nothing here persists.
package cache

import (
    "sync"
    "time"
)

type Cache interface {
    Get(key string) (any, bool)
    Set(key string, value any)
}

type entry struct {
    value     any
    expiresAt time.Time
}

// Memory is a TTL map. Expired entries are dropped lazily on Get and swept
// opportunistically on Set.
type Memory struct {
    mu  sync.RWMutex
    ttl time.Duration
    m   map[string]entry
    now func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
    return &Memory{ttl: ttl, m: make(map[string]entry), now: time.Now}
}

func (c *Memory) Get(key string) (any, bool) {
    c.mu.RLock()
    e, ok := c.m[key]
    c.mu.RUnlock()
    if !ok {
        return nil, false
    }
    if c.now().After(e.expiresAt) {
        c.mu.Lock()
        delete(c.m, key)
        c.mu.Unlock()
        return nil, false
    }
    return e.value, true
}

func (c *Memory) Set(key string, value any) {
    now := c.now()
    c.mu.Lock()
    for k, e := range c.m {
        if now.After(e.expiresAt) {
            delete(c.m, k)
        }
    }
    c.m[key] = entry{value: value, expiresAt: now.Add(c.ttl)}
    c.mu.Unlock()
}

// Nop satisfies Cache without storing anything, for callers that want
// memoization off.
type Nop struct{}

func (Nop) Get(string) (any, bool) { return nil, false }
func (Nop) Set(string, any)        {}
