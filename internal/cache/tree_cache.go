// Package cache holds the redis-backed cache for assembled render
// trees. Every member, edge, or grant mutation for a tree must
// invalidate its entry; the services do this through Invalidate.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kintree/internal/graph"
)

const treeTTL = 10 * time.Minute

type TreeCache struct {
	redis  *redis.Client
	logger *slog.Logger
}

func NewTreeCache(client *redis.Client, logger *slog.Logger) *TreeCache {
	return &TreeCache{
		redis:  client,
		logger: logger.With("component", "tree_cache"),
	}
}

func key(treeID uuid.UUID) string {
	return fmt.Sprintf("render_tree:%s", treeID)
}

// Get returns the cached render tree, or ok=false on a miss. Cache
// failures are reported as misses; the caller falls through to a fresh
// assembly.
func (c *TreeCache) Get(ctx context.Context, treeID uuid.UUID) (*graph.RenderTree, bool) {
	data, err := c.redis.Get(ctx, key(treeID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "tree_id", treeID, "error", err)
		}
		return nil, false
	}

	var tree graph.RenderTree
	if err := json.Unmarshal(data, &tree); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", "tree_id", treeID, "error", err)
		c.redis.Del(ctx, key(treeID))
		return nil, false
	}
	return &tree, true
}

func (c *TreeCache) Set(ctx context.Context, tree *graph.RenderTree) {
	data, err := json.Marshal(tree)
	if err != nil {
		c.logger.Warn("cache encode failed", "tree_id", tree.TreeID, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key(tree.TreeID), data, treeTTL).Err(); err != nil {
		c.logger.Warn("cache write failed", "tree_id", tree.TreeID, "error", err)
	}
}

func (c *TreeCache) Invalidate(ctx context.Context, treeID uuid.UUID) {
	if err := c.redis.Del(ctx, key(treeID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "tree_id", treeID, "error", err)
	}
}
