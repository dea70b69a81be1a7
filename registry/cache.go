package registry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fedmesh/fedmesh/federation"
)

// Both caches invalidate purely by elapsed time; mutations of the
// registry never flush them.

type listCache struct {
	sync.Mutex

	servers []federation.Server
	at      time.Time
	ttl     time.Duration
}

func newListCache(ttl time.Duration) *listCache {
	return &listCache{ttl: ttl}
}

func (c *listCache) get() ([]federation.Server, bool) {
	c.Lock()
	defer c.Unlock()

	if c.at.IsZero() || time.Since(c.at) >= c.ttl {
		return nil, false
	}

	servers := make([]federation.Server, len(c.servers))
	copy(servers, c.servers)

	return servers, true
}

func (c *listCache) set(servers []federation.Server) {
	c.Lock()
	defer c.Unlock()

	c.servers = make([]federation.Server, len(servers))
	copy(c.servers, servers)
	c.at = time.Now()
}

type toolResult struct {
	result any
	cost   int64
	at     time.Time
}

type toolResultCache struct {
	sync.Mutex

	entries map[string]toolResult
	ttl     time.Duration
}

func newToolResultCache(ttl time.Duration) *toolResultCache {
	return &toolResultCache{
		entries: make(map[string]toolResult),
		ttl:     ttl,
	}
}

func toolCacheKey(serverID, tool string, params map[string]any) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte("{}")
	}

	return serverID + ":" + tool + ":" + string(data)
}

func (c *toolResultCache) get(key string) (toolResult, bool) {
	c.Lock()
	defer c.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.at) >= c.ttl {
		return toolResult{}, false
	}

	return entry, true
}

func (c *toolResultCache) set(key string, result any, cost int64) {
	c.Lock()
	defer c.Unlock()

	c.entries[key] = toolResult{result: result, cost: cost, at: time.Now()}
}
