package xpath

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a bounded-capacity compile cache keyed by expression text (spec
// §4.9 "An LRU cache (bounded capacity 256)..."). It is safe for concurrent
// lookup and insertion (spec §5: "Insertion may contend; evaluation against
// an already-compiled program does not involve the cache").
type Cache struct {
	mu       sync.Mutex
	programs *lru.Cache[string, *Program]
}

// DefaultCacheSize is the capacity spec §4.9 names.
const DefaultCacheSize = 256

// NewCache constructs a compile cache with the given capacity. Panics only
// if size <= 0, mirroring golang-lru's own constructor contract.
func NewCache(size int) *Cache {
	c, err := lru.New[string, *Program](size)
	if err != nil {
		panic(err)
	}
	return &Cache{programs: c}
}

// Compile returns a cached Program for expr, compiling and caching it on a
// miss.
func (c *Cache) Compile(expr string) (*Program, error) {
	c.mu.Lock()
	if p, ok := c.programs.Get(expr); ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	p, err := Compile(expr)
	if err != nil {
		// spec §7: "no partial program cached" on a compile error.
		return nil, err
	}

	c.mu.Lock()
	c.programs.Add(expr, p)
	c.mu.Unlock()
	return p, nil
}

// Len reports the number of programs currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.programs.Len()
}
