package canonical

import (
	"sort"
	"sync"

	"github.com/agenthands/edgeqc/internal/core/model"
)

type Status int

const (
	StatusUnknown Status = iota
	StatusKnown
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusKnown:
		return "known"
	case StatusFailed:
		return "normalization_failed"
	}
	return "unknown"
}

// Cache maps source CURIEs to their canonical entity. Entries are written
// once; later writes for the same CURIE are ignored.
type Cache struct {
	mu       sync.RWMutex
	entities map[string]model.CanonicalEntity
	failed   map[string]struct{}
}

func NewCache() *Cache {
	return &Cache{
		entities: make(map[string]model.CanonicalEntity),
		failed:   make(map[string]struct{}),
	}
}

func (c *Cache) Lookup(curie string) (model.CanonicalEntity, Status) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entities[curie]; ok {
		return e, StatusKnown
	}
	if _, ok := c.failed[curie]; ok {
		return model.CanonicalEntity{}, StatusFailed
	}
	return model.CanonicalEntity{}, StatusUnknown
}

// Missing returns the CURIEs from curies the cache has no answer for.
func (c *Cache) Missing(curies []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []string
	for _, curie := range curies {
		if _, ok := c.entities[curie]; ok {
			continue
		}
		if _, ok := c.failed[curie]; ok {
			continue
		}
		out = append(out, curie)
	}
	return out
}

// CanonicalIDs returns the distinct canonical ids of every known entity,
// sorted.
func (c *Cache) CanonicalIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	set := make(map[string]struct{}, len(c.entities))
	for _, e := range c.entities {
		set[e.CanonicalID] = struct{}{}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of known and failed CURIEs.
func (c *Cache) Len() (known, failed int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities), len(c.failed)
}

// Put records an entity. It is exported for callers that seed a cache from
// an earlier run and for tests.
func (c *Cache) Put(e model.CanonicalEntity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(e)
}

// MarkFailed records curie as unknown to the normalizer.
func (c *Cache) MarkFailed(curie string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markFailed(curie)
}

func (c *Cache) put(e model.CanonicalEntity) {
	if _, ok := c.entities[e.OriginalID]; ok {
		return
	}
	if _, ok := c.failed[e.OriginalID]; ok {
		return
	}
	c.entities[e.OriginalID] = e
}

func (c *Cache) markFailed(curie string) {
	if _, ok := c.entities[curie]; ok {
		return
	}
	c.failed[curie] = struct{}{}
}

// merge records one batch's results under a single lock. CURIEs of the batch
// missing from found are marked failed.
func (c *Cache) merge(batch []string, found map[string]model.CanonicalEntity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, curie := range batch {
		if e, ok := found[curie]; ok {
			c.put(e)
			continue
		}
		c.markFailed(curie)
	}
}
