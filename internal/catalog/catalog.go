// Package catalog caches the burnable assets of each owner.
package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/cinderlabs/cinder-client/internal/shared"
)

type Fetcher interface {
	BurnableAssets(ctx context.Context, owner string) ([]shared.Asset, error)
}

// Catalog is populated by the first successful fetch per owner and served
// from memory until invalidated. Failed fetches are not cached.
type Catalog struct {
	mu      sync.RWMutex
	fetcher Fetcher
	owners  map[string][]shared.Asset
}

func New(fetcher Fetcher) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		owners:  map[string][]shared.Asset{},
	}
}

// Assets returns owner's burnable assets, fetching them on first use.
func (c *Catalog) Assets(ctx context.Context, owner string) ([]shared.Asset, error) {
	key := normalizeOwner(owner)

	c.mu.RLock()
	cached, ok := c.owners[key]
	c.mu.RUnlock()
	if ok {
		return clone(cached), nil
	}
	return c.Refresh(ctx, owner)
}

// Refresh refetches owner's assets and replaces the cached entry.
func (c *Catalog) Refresh(ctx context.Context, owner string) ([]shared.Asset, error) {
	key := normalizeOwner(owner)

	assets, err := c.fetcher.BurnableAssets(ctx, key)
	if err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []shared.Asset{}
	}

	c.mu.Lock()
	c.owners[key] = clone(assets)
	c.mu.Unlock()

	return assets, nil
}

// Lookup finds a cached asset without fetching.
func (c *Catalog) Lookup(owner, assetID string) (shared.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.owners[normalizeOwner(owner)] {
		if a.AssetID == assetID {
			return a, true
		}
	}
	return shared.Asset{}, false
}

// Find returns an asset of owner, fetching the catalog if needed.
func (c *Catalog) Find(ctx context.Context, owner, assetID string) (shared.Asset, bool, error) {
	assets, err := c.Assets(ctx, owner)
	if err != nil {
		return shared.Asset{}, false, err
	}
	for _, a := range assets {
		if a.AssetID == assetID {
			return a, true, nil
		}
	}
	return shared.Asset{}, false, nil
}

// Invalidate drops one asset from owner's cached entry, e.g. after it was
// burned.
func (c *Catalog) Invalidate(owner, assetID string) {
	key := normalizeOwner(owner)

	c.mu.Lock()
	defer c.mu.Unlock()

	assets, ok := c.owners[key]
	if !ok {
		return
	}
	out := assets[:0:0]
	for _, a := range assets {
		if a.AssetID != assetID {
			out = append(out, a)
		}
	}
	c.owners[key] = out
}

// InvalidateOwner forgets owner entirely; the next read refetches.
func (c *Catalog) InvalidateOwner(owner string) {
	c.mu.Lock()
	delete(c.owners, normalizeOwner(owner))
	c.mu.Unlock()
}

// Cached reports whether owner has a cached entry.
func (c *Catalog) Cached(owner string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.owners[normalizeOwner(owner)]
	return ok
}

func normalizeOwner(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clone(in []shared.Asset) []shared.Asset {
	out := make([]shared.Asset, len(in))
	copy(out, in)
	return out
}
