package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// jsonCache stores JSON encoded read models in Redis. A nil client turns every
// call into a miss.
type jsonCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func newJSONCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) jsonCache {
	return jsonCache{client: client, ttl: ttl, logger: logger}
}

func (c jsonCache) enabled() bool {
	return c.client != nil
}

// load decodes key into dest and reports whether it was found.
func (c jsonCache) load(ctx context.Context, key string, dest interface{}) bool {
	if c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to decode cache entry")
		return false
	}
	return true
}

func (c jsonCache) store(ctx context.Context, key string, value interface{}) {
	if c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to store cache entry")
	}
}
