package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/profitcalc/profitcalc-backend/internal/logger"
	"github.com/profitcalc/profitcalc-backend/internal/projects/domain"
)

// Key prefix for cached project detail views: pc:project:{project_id}
const projectKeyPrefix = "pc:project:"

// SummaryCache keeps the project-with-costs view in Redis so the
// detail endpoint does not hit Postgres on every read. Mutations
// invalidate, so a stale entry can outlive the truth only for the TTL
// window after a lost invalidation. Every Redis failure is treated as
// a cache miss.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewSummaryCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl, log: log}
}

func (c *SummaryCache) key(projectID string) string {
	return projectKeyPrefix + projectID
}

func (c *SummaryCache) Get(ctx context.Context, projectID string) (*domain.ProjectWithCosts, bool) {
	data, err := c.client.Get(ctx, c.key(projectID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warn("summary cache read failed", "project_id", projectID, "error", err)
		return nil, false
	}

	var p domain.ProjectWithCosts
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		c.log.Warn("summary cache entry corrupt, dropping", "project_id", projectID, "error", err)
		c.Invalidate(ctx, projectID)
		return nil, false
	}
	return &p, true
}

func (c *SummaryCache) Set(ctx context.Context, p *domain.ProjectWithCosts) {
	data, err := json.Marshal(p)
	if err != nil {
		c.log.Warn("summary cache marshal failed", "project_id", p.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(p.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("summary cache write failed", "project_id", p.ID, "error", err)
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context, projectID string) {
	if err := c.client.Del(ctx, c.key(projectID)).Err(); err != nil {
		c.log.Warn("summary cache invalidation failed", "project_id", projectID, "error", err)
	}
}
