package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/desertthunder/youtify/internal/providers"
)

// ConnectOptions configures the Redis connection and its retry policy.
type ConnectOptions struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration // total time allowed for connection attempts
	RetryInterval  time.Duration // initial wait between retries, doubles per attempt
	MaxWait        time.Duration // cap on the wait between retries
	PingTimeout    time.Duration // timeout for each ping attempt
}

func (o *ConnectOptions) applyDefaults() {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 30 * time.Second
	}
	if o.RetryInterval <= 0 {
		o.RetryInterval = 2 * time.Second
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 10 * time.Second
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 2 * time.Second
	}
}

// Connect creates a Redis client and pings it until it responds,
// backing off exponentially between attempts. Returns an error once
// ConnectTimeout is exhausted.
func Connect(opts ConnectOptions, logger *log.Logger) (*redis.Client, error) {
	opts.applyDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	logger.Info("connecting to redis", "addr", opts.Addr, "timeout", opts.ConnectTimeout)

	attempt := 0
	wait := opts.RetryInterval

	for {
		attempt++

		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				logger.Warn("connected to redis after retry", "addr", opts.Addr, "attempts", attempt)
			} else {
				logger.Info("connected to redis", "addr", opts.Addr)
			}
			return client, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Error("redis unavailable", "addr", opts.Addr, "attempts", attempt, "error", err)
			return nil, fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
			logger.Warn("redis connection failed, retrying", "addr", opts.Addr, "attempt", attempt, "next_retry_in", wait, "error", err)
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}

// RedisCredentialStore implements CredentialStore on Redis. Credentials
// are stored as JSON under per-user, per-provider keys with no TTL;
// expiry is carried inside the credential itself.
type RedisCredentialStore struct {
	client *redis.Client
}

// NewRedisCredentialStore creates a credential store backed by the given client.
func NewRedisCredentialStore(client *redis.Client) *RedisCredentialStore {
	return &RedisCredentialStore{client: client}
}

// Get implements CredentialStore.
func (s *RedisCredentialStore) Get(ctx context.Context, userID string, provider providers.Provider) (providers.Credential, error) {
	data, err := s.client.Get(ctx, CredentialKey(userID, provider)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return providers.Credential{}, ErrCredentialNotFound
		}
		return providers.Credential{}, fmt.Errorf("failed to get credential: %w", err)
	}

	var cred providers.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return providers.Credential{}, fmt.Errorf("failed to decode credential: %w", err)
	}
	return cred, nil
}

// Put implements CredentialStore.
func (s *RedisCredentialStore) Put(ctx context.Context, userID string, cred providers.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := s.client.Set(ctx, CredentialKey(userID, cred.Provider), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Delete implements CredentialStore.
func (s *RedisCredentialStore) Delete(ctx context.Context, userID string, provider providers.Provider) error {
	if err := s.client.Del(ctx, CredentialKey(userID, provider)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// RedisTrackCache implements TrackCache on Redis using SETEX-style TTLs.
type RedisTrackCache struct {
	client *redis.Client
}

// NewRedisTrackCache creates a track cache backed by the given client.
func NewRedisTrackCache(client *redis.Client) *RedisTrackCache {
	return &RedisTrackCache{client: client}
}

// Get implements TrackCache.
func (c *RedisTrackCache) Get(ctx context.Context, provider providers.Provider, query string) (string, bool, error) {
	trackID, err := c.client.Get(ctx, MatchKey(provider, query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get cached match: %w", err)
	}
	return trackID, true, nil
}

// Put implements TrackCache.
func (c *RedisTrackCache) Put(ctx context.Context, provider providers.Provider, query, trackID string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTrackTTL
	}
	if err := c.client.Set(ctx, MatchKey(provider, query), trackID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache match: %w", err)
	}
	return nil
}

// FlushMatches removes all cached resolutions, leaving credentials intact.
func (c *RedisTrackCache) FlushMatches(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, KeyPrefixMatch+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
