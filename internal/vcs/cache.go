package vcs

import lru "github.com/hashicorp/golang-lru/v2"

// snapshotCache memoizes the reconstructed Snapshot for a revision id,
// so moveTo on a deep tree does not replay the whole path from root on
// every call (§4.9).
type snapshotCache struct {
	cache *lru.Cache[string, Snapshot]
}

const defaultSnapshotCacheSize = 64

func newSnapshotCache() *snapshotCache {
	c, _ := lru.New[string, Snapshot](defaultSnapshotCacheSize)
	return &snapshotCache{cache: c}
}

func (c *snapshotCache) get(revID string) (Snapshot, bool) {
	return c.cache.Get(revID)
}

func (c *snapshotCache) put(revID string, snap Snapshot) {
	c.cache.Add(revID, snap)
}

func (c *snapshotCache) invalidate(revID string) {
	c.cache.Remove(revID)
}
