// Package snapshot caches entity snapshots in front of the Home Assistant
// state endpoint so bursts of commands share one fetch.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hactl/internal/domain"
)

// Source is satisfied by the Home Assistant client.
type Source interface {
	FetchEntities(ctx context.Context) ([]domain.Entity, error)
}

// Store keeps the last snapshot until it expires. A miss is (nil, false, nil).
type Store interface {
	Load(ctx context.Context) ([]domain.Entity, bool, error)
	Save(ctx context.Context, entities []domain.Entity) error
	Invalidate(ctx context.Context) error
}

// CachedSource serves FetchEntities from a Store, falling back to the wrapped
// Source on a miss.
type CachedSource struct {
	source Source
	store  Store
	logger *slog.Logger

	// serializes refreshes so concurrent misses do one upstream fetch
	mu sync.Mutex

	// saveMu guards gen. Invalidate bumps gen so a fetch that started before it
	// never stores its older snapshot afterwards.
	saveMu sync.Mutex
	gen    uint64
}

func NewCachedSource(source Source, store Store, logger *slog.Logger) *CachedSource {
	return &CachedSource{source: source, store: store, logger: logger}
}

func (c *CachedSource) FetchEntities(ctx context.Context) ([]domain.Entity, error) {
	if entities, ok := c.load(ctx); ok {
		return entities, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if entities, ok := c.load(ctx); ok {
		return entities, nil
	}

	gen := c.generation()
	entities, err := c.source.FetchEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("refreshing snapshot: %w", err)
	}

	if err := c.save(ctx, gen, entities); err != nil {
		c.logger.Warn("failed to store entity snapshot", "error", err)
	}
	return entities, nil
}

// Refresh fetches a new snapshot unconditionally and stores it.
func (c *CachedSource) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.generation()
	entities, err := c.source.FetchEntities(ctx)
	if err != nil {
		return fmt.Errorf("refreshing snapshot: %w", err)
	}
	if err := c.save(ctx, gen, entities); err != nil {
		return fmt.Errorf("storing snapshot: %w", err)
	}
	return nil
}

// StartPeriodicRefresh keeps the store warm until ctx is done.
func (c *CachedSource) StartPeriodicRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Error("periodic refresh failed", "error", err)
				}
			}
		}
	}()
}

// Invalidate drops the cached snapshot, e.g. after a service call changed state.
func (c *CachedSource) Invalidate(ctx context.Context) {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.gen++
	if err := c.store.Invalidate(ctx); err != nil {
		c.logger.Warn("failed to invalidate entity snapshot", "error", err)
	}
}

func (c *CachedSource) load(ctx context.Context) ([]domain.Entity, bool) {
	entities, ok, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to read entity snapshot", "error", err)
		return nil, false
	}
	return entities, ok
}

func (c *CachedSource) generation() uint64 {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()
	return c.gen
}

// save stores entities unless an Invalidate happened since gen was read.
func (c *CachedSource) save(ctx context.Context, gen uint64, entities []domain.Entity) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	if c.gen != gen {
		c.logger.Debug("discarding snapshot fetched before invalidation", "count", len(entities))
		return nil
	}
	if err := c.store.Save(ctx, entities); err != nil {
		return err
	}
	c.logger.Debug("entity snapshot refreshed", "count", len(entities))
	return nil
}
