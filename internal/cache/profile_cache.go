package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/project-service/internal/domain"
)

// ProfileCache keeps the authenticated principal's profile in Redis so the
// auth middleware does not hit Postgres on every request. The cache is
// best-effort: any Redis failure degrades to a miss.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfileCache builds the cache. A nil client yields a no-op cache.
func NewProfileCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached profile or (nil, false) on a miss.
func (c *ProfileCache) Get(ctx context.Context, userID string) (*domain.Profile, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("profile cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var profile domain.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.logger.Warn("profile cache decode failed", zap.Error(err))
		return nil, false
	}
	return &profile, true
}

// Set stores the profile with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, profile *domain.Profile) {
	if c == nil || c.client == nil || profile == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKey(profile.UserID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("profile cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached profile. Called on profile/password updates
// and on sign-out; failures are logged and ignored so local sign-out never
// blocks on the backend.
func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		c.logger.Warn("profile cache invalidate failed", zap.Error(err))
	}
}

func profileKey(userID string) string {
	return "profile:" + userID
}
