package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reglet-dev/sensecore/domain/ports"
)

type cacheEntry struct {
	module  ports.Module
	refs    int
	evicted bool
}

// moduleCache keeps opened modules keyed by path. Evicted modules close
// once their last root is released.
type moduleCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	logger  *slog.Logger
	metrics *Metrics
}

func newModuleCache(logger *slog.Logger, metrics *Metrics) *moduleCache {
	return &moduleCache{entries: make(map[string]*cacheEntry), logger: logger, metrics: metrics}
}

// acquire returns the cached module for path, opening it with open on a
// miss. The lock is held while opening so a path is opened once.
func (c *moduleCache) acquire(ctx context.Context, path string, open func() (ports.Module, error)) (*cacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[path]; ok {
		e.refs++
		return e, true, nil
	}
	mod, err := open()
	if err != nil {
		return nil, false, err
	}
	e := &cacheEntry{module: mod, refs: 1}
	c.entries[path] = e
	c.metrics.cached(len(c.entries))
	c.logger.DebugContext(ctx, "module cached", "path", path)
	return e, false, nil
}

func (c *moduleCache) release(ctx context.Context, e *cacheEntry) {
	c.mu.Lock()
	e.refs--
	closeNow := e.evicted && e.refs == 0
	c.mu.Unlock()
	if closeNow {
		c.close(ctx, e)
	}
}

// discard gives back a reference to a module that was rejected. The entry
// leaves the cache; the module closes once no root holds it.
func (c *moduleCache) discard(ctx context.Context, path string, e *cacheEntry) {
	c.mu.Lock()
	e.refs--
	e.evicted = true
	if c.entries[path] == e {
		delete(c.entries, path)
		c.metrics.cached(len(c.entries))
	}
	closeNow := e.refs == 0
	c.mu.Unlock()
	if closeNow {
		c.logger.DebugContext(ctx, "rejected module dropped from cache", "path", path)
		c.close(ctx, e)
	}
}

// purge evicts every entry and closes those without live roots. It
// returns the number of evicted entries.
func (c *moduleCache) purge(ctx context.Context) int {
	c.mu.Lock()
	var idle []*cacheEntry
	n := len(c.entries)
	for path, e := range c.entries {
		e.evicted = true
		if e.refs == 0 {
			idle = append(idle, e)
		}
		delete(c.entries, path)
	}
	c.metrics.cached(0)
	c.mu.Unlock()

	for _, e := range idle {
		c.close(ctx, e)
	}
	return n
}

func (c *moduleCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *moduleCache) close(ctx context.Context, e *cacheEntry) {
	if err := e.module.Close(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to close module", "path", e.module.Path(), "error", err)
	}
}
