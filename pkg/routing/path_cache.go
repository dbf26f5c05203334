package routing

import (
	"sync"

	"github.com/tspgen/streetgraph/pkg/datastructure"
)

// PathCache memoizes computed shortest paths per ordered (source, target)
// pair. A->B and B->A are independent entries, the network is directional.
// Unreachable results are cached like any other so a known dead pair is
// never searched twice. Entries are idempotent, concurrent writers can race
// without correctness loss, so one RWMutex is enough.
type PathCache struct {
	enabled bool
	mu      sync.RWMutex
	paths   map[int32]map[int32]datastructure.PathResult
}

// NewPathCache builds a cache; disabled it degrades to a pass-through where
// Get always misses and Put is dropped.
func NewPathCache(enabled bool) *PathCache {
	return &PathCache{
		enabled: enabled,
		paths:   make(map[int32]map[int32]datastructure.PathResult),
	}
}

func (c *PathCache) Get(src, dst int32) (datastructure.PathResult, bool) {
	if !c.enabled {
		return datastructure.PathResult{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	byDst, ok := c.paths[src]
	if !ok {
		return datastructure.PathResult{}, false
	}
	result, ok := byDst[dst]
	return result, ok
}

func (c *PathCache) Put(src, dst int32, result datastructure.PathResult) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	byDst, ok := c.paths[src]
	if !ok {
		byDst = make(map[int32]datastructure.PathResult)
		c.paths[src] = byDst
	}
	byDst[dst] = result
}

// Len counts cached pairs, reachable or not.
func (c *PathCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, byDst := range c.paths {
		total += len(byDst)
	}
	return total
}
