package rules

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/techb2bnew/coconut-delivery/pkg/db/models"
	"github.com/techb2bnew/coconut-delivery/pkg/errors"
	"github.com/techb2bnew/coconut-delivery/pkg/logger"
	"github.com/techb2bnew/coconut-delivery/pkg/redis"
)

// cachedRepository fronts a Repository with a Redis read-through cache for
// the hot estimator queries. Cache failures degrade to the inner repository;
// they never fail a read.
type cachedRepository struct {
	inner Repository
	cache *redis.Client
	ttl   time.Duration
	logg  *logger.Logger
}

// NewCachedRepository decorates inner with rule caching. ttl <= 0 disables
// expiry on cached entries.
func NewCachedRepository(inner Repository, cache *redis.Client, ttl time.Duration, logg *logger.Logger) (Repository, error) {
	if inner == nil {
		return nil, errors.New(errors.CodeInternal, "rules: inner repository is required")
	}
	if cache == nil {
		return nil, errors.New(errors.CodeInternal, "rules: redis client is required")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "rules: logger is required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &cachedRepository{inner: inner, cache: cache, ttl: ttl, logg: logg}, nil
}

func (c *cachedRepository) ActiveQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error) {
	key := c.cache.RuleCacheKey("quantity", franchiseID.String())

	var cached []models.QuantityRule
	if c.readCached(ctx, key, &cached) {
		return cached, nil
	}

	rules, err := c.inner.ActiveQuantityRules(ctx, franchiseID)
	if err != nil {
		return nil, err
	}
	c.writeCached(ctx, key, rules)
	return rules, nil
}

func (c *cachedRepository) ActiveZoneRule(ctx context.Context, franchiseID uuid.UUID, zoneID uuid.UUID) (*models.ZoneRule, error) {
	key := c.cache.RuleCacheKey("zone", franchiseID.String(), zoneID.String())

	var cached models.ZoneRule
	if c.readCached(ctx, key, &cached) {
		return &cached, nil
	}

	rule, err := c.inner.ActiveZoneRule(ctx, franchiseID, zoneID)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		c.writeCached(ctx, key, rule)
	}
	return rule, nil
}

func (c *cachedRepository) ResolveZoneIDByName(ctx context.Context, nameFragment string) (uuid.UUID, bool, error) {
	return c.inner.ResolveZoneIDByName(ctx, nameFragment)
}

func (c *cachedRepository) ListQuantityRules(ctx context.Context, franchiseID uuid.UUID) ([]models.QuantityRule, error) {
	return c.inner.ListQuantityRules(ctx, franchiseID)
}

func (c *cachedRepository) ListZoneRules(ctx context.Context, franchiseID uuid.UUID) ([]models.ZoneRule, error) {
	return c.inner.ListZoneRules(ctx, franchiseID)
}

// readCached loads and decodes key into dest, reporting a usable hit.
func (c *cachedRepository) readCached(ctx context.Context, key string, dest any) bool {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.logg.Warn(c.logg.WithField(ctx, "key", key), "rule cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "key", key), "rule cache entry corrupt, dropping")
		_ = c.cache.Del(ctx, key)
		return false
	}
	return true
}

// writeCached stores value at key, best effort.
func (c *cachedRepository) writeCached(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, string(raw), c.ttl); err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "key", key), "rule cache write failed")
	}
}
