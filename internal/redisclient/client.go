package redisclient

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedSessionPrefix = "taskboard:session:revoked:"

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// this ping function checks redis connectivity

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

// this closes the client

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Revoke marks a session id as logged out. The key expires with the session itself.
func (c *Client) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		// already expired, the token verifier rejects it anyway
		return nil
	}

	return c.redisdb.Set(ctx, revokedSessionPrefix+sessionID, "1", ttl).Err()
}

func (c *Client) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := c.redisdb.Exists(ctx, revokedSessionPrefix+sessionID).Result()

	if err != nil {
		return false, err
	}

	return n > 0, nil
}
