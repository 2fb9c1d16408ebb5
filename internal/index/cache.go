package index

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"restruct/internal/storage"
	"restruct/internal/syntax"
)

// Config sizes the cache layers.
type Config struct {
	MaxProjects int
	MaxParsed   int
	ParseTTL    time.Duration
}

// DefaultConfig returns the cache sizing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxProjects: 64,
		MaxParsed:   4096,
		ParseTTL:    5 * time.Minute,
	}
}

// Cache is the project-index cache, keyed by project root path. It is safe
// for concurrent get/set/invalidate; a miss triggers a full reload, the only
// expensive step, and concurrent loaders of the same root are deduplicated.
type Cache struct {
	projects *lru.Cache[string, *Project]
	parsed   *lruTTL[fileKey, *syntax.Module]

	mu       sync.Mutex
	inflight map[string]*loadCall
}

type loadCall struct {
	done    chan struct{}
	project *Project
	err     error
}

// NewCache builds a cache with the given sizing.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.MaxProjects <= 0 {
		cfg.MaxProjects = DefaultConfig().MaxProjects
	}
	if cfg.MaxParsed <= 0 {
		cfg.MaxParsed = DefaultConfig().MaxParsed
	}
	projects, err := lru.New[string, *Project](cfg.MaxProjects)
	if err != nil {
		return nil, err
	}
	return &Cache{
		projects: projects,
		parsed:   newLRUTTL[fileKey, *syntax.Module](cfg.MaxParsed, cfg.ParseTTL),
		inflight: map[string]*loadCall{},
	}, nil
}

// Get returns the cached index for a root, if present.
func (c *Cache) Get(root string) (*Project, bool) {
	if c == nil {
		return nil, false
	}
	return c.projects.Get(root)
}

// Set stores an index for a root.
func (c *Cache) Set(root string, p *Project) {
	if c == nil || p == nil {
		return
	}
	c.projects.Add(root, p)
}

// Invalidate drops a root's index. The parse cache self-invalidates by file
// identity, so it is left alone.
func (c *Cache) Invalidate(root string) {
	if c == nil {
		return
	}
	c.projects.Remove(root)
}

// GetOrLoad returns the cached index or loads it, deduplicating concurrent
// loads of the same root.
func (c *Cache) GetOrLoad(ctx context.Context, store *storage.FS) (*Project, error) {
	root := store.Root()
	if p, ok := c.Get(root); ok {
		return p, nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[root]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.project, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &loadCall{done: make(chan struct{})}
	c.inflight[root] = call
	c.mu.Unlock()

	call.project, call.err = Load(store, c.parsed)
	if call.err == nil {
		c.Set(root, call.project)
	}
	c.mu.Lock()
	delete(c.inflight, root)
	c.mu.Unlock()
	close(call.done)
	return call.project, call.err
}
