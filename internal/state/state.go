// Package state holds the server's two pieces of shared, hot-swappable
// state, configuration and schema, behind separate single-writer locks.
// Keeping them in one lock would serialize config reads behind schema
// reloads (and vice versa) for no reason, so this package never combines
// them.
package state

import (
	"sync"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/apollosolutions/subgraph-mock/internal/federation"
)

// Config guards the live *config.Config behind a read-write lock. Readers
// (every request) take RLock; Set takes Lock. Nothing in this module calls
// Set: the config file is read once at startup and is not reloaded.
type Config struct {
	mu  sync.RWMutex
	cur *config.Config
}

func NewConfig(initial *config.Config) *Config {
	return &Config{cur: initial}
}

func (c *Config) Get() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

func (c *Config) Set(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = cfg
}

// Schema guards the live *federation.Bundle plus a monotonically
// increasing generation counter used as the schema-identity component of
// the cache fingerprint: it changes on every successful reload, which
// implicitly shadows stale cache entries without needing to evict them.
type Schema struct {
	mu         sync.RWMutex
	bundle     *federation.Bundle
	generation uint64
}

func NewSchema(initial *federation.Bundle) *Schema {
	return &Schema{bundle: initial, generation: 1}
}

func (s *Schema) Get() (*federation.Bundle, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle, s.generation
}

func (s *Schema) Set(bundle *federation.Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = bundle
	s.generation++
}
