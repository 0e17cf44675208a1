// Package redis wraps the Redis-backed stores shared by the backend
// services: the verifier's challenge and session stores and the sponsor's
// rate limiter. Redis keeps these consistent across replicas.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BukiOffor/concordium-dapp-examples/internal/core/domain"
)

// Client wraps Redis operations for the backend services.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func challengeKey(challenge domain.Challenge) string {
	return fmt.Sprintf("verifier:challenge:%s", challenge)
}

func sessionKey(token domain.AuthToken) string {
	return fmt.Sprintf("verifier:session:%s", token)
}

func rateKey(account domain.AccountAddress, day string) string {
	return fmt.Sprintf("sponsor:rate:%s:%s", account, day)
}

// Put stores a challenge for an account with a TTL.
func (c *Client) Put(ctx context.Context, challenge domain.Challenge, account domain.AccountAddress, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, challengeKey(challenge), string(account), ttl).Err(); err != nil {
		return fmt.Errorf("set challenge: %w", err)
	}
	return nil
}

// Take removes and returns the account a challenge was issued for.
// GETDEL makes consumption atomic across replicas.
func (c *Client) Take(ctx context.Context, challenge domain.Challenge) (domain.AccountAddress, bool, error) {
	account, err := c.rdb.GetDel(ctx, challengeKey(challenge)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getdel challenge: %w", err)
	}
	return domain.AccountAddress(account), true, nil
}

// SessionStore returns the session-store view of the client.
func (c *Client) SessionStore() *SessionStore {
	return &SessionStore{rdb: c.rdb}
}

// SessionStore holds issued auth tokens in Redis.
type SessionStore struct {
	rdb *redis.Client
}

func (s *SessionStore) Put(ctx context.Context, token domain.AuthToken, account domain.AccountAddress, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, sessionKey(token), string(account), ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domain.AuthToken) (domain.AccountAddress, bool, error) {
	account, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get session: %w", err)
	}
	return domain.AccountAddress(account), true, nil
}

// RateLimiter counts sponsored submissions per account per day.
type RateLimiter struct {
	rdb   *redis.Client
	limit int
}

// NewRateLimiter returns a limiter allowing limit submissions per account
// per UTC day.
func (c *Client) NewRateLimiter(limit int) *RateLimiter {
	return &RateLimiter{rdb: c.rdb, limit: limit}
}

// Allow increments the account's daily counter and reports whether the
// submission is within the limit.
func (r *RateLimiter) Allow(ctx context.Context, account domain.AccountAddress) (bool, error) {
	key := rateKey(account, time.Now().UTC().Format("2006-01-02"))

	count, err := r.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr rate counter: %w", err)
	}
	if count == 1 {
		// First submission today, start the daily window.
		if err := r.rdb.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
			return false, fmt.Errorf("expire rate counter: %w", err)
		}
	}
	return count <= int64(r.limit), nil
}
