package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces replay claims in a shared Redis database.
const DefaultKeyPrefix = "twofactor:totp"

// RedisConfig describes the Redis connection used by RedisGuard.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // Format "redis://:password@localhost:6379/0"
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                      // Connection attempts before giving up
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`                     // Delay between attempts
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                   // Overall connect deadline
	KeyPrefix      string        `env:"REDIS_REPLAY_KEY_PREFIX" envDefault:"twofactor:totp"`      // Prefix of claim keys
}

// ConnectRedis opens a Redis client and pings it, retrying up to
// RetryAttempts times with RetryInterval between attempts.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	for range max(cfg.RetryAttempts, 1) {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// RedisHealthcheck returns a probe that pings the Redis server.
func RedisHealthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// RedisGuard stores claims as expiring Redis keys so every instance of the
// service sees the same used time steps.
type RedisGuard struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisGuard wraps a Redis client. An empty prefix selects DefaultKeyPrefix.
func NewRedisGuard(client redis.UniversalClient, prefix string) *RedisGuard {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisGuard{client: client, prefix: prefix}
}

// Claim sets the claim key only if it does not exist yet.
func (g *RedisGuard) Claim(ctx context.Context, userID string, counter int64, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.Key(userID, counter), 1, ttl).Result()
	if err != nil {
		return false, errors.Join(ErrFailedToClaim, err)
	}
	return ok, nil
}

// Key returns the Redis key holding the claim for (userID, counter).
func (g *RedisGuard) Key(userID string, counter int64) string {
	return fmt.Sprintf("%s:%s:%d", g.prefix, userID, counter)
}
