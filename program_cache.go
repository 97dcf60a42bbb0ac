package variants

import "sync"

// ProgramCache stores compiled guard programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache used when compiling guards.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *resolverConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is a concurrency safe in-process ProgramCache. A single
// instance can be shared by every resolver in a Catalog.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	return c.programs.Load(key)
}

func (c *MemoryProgramCache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.programs.Store(key, value)
}
