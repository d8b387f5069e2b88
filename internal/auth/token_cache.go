package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"smartq/internal/models"
)

const identityKeyPrefix = "auth_identity:"

// IdentityCache keeps verified token → identity lookups in redis so
// repeated requests with the same bearer token skip OIDC verification.
type IdentityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{Client: client, TTL: ttl}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return identityKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *IdentityCache) Get(ctx context.Context, token string) (*models.Identity, error) {
	if c == nil || c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	data, err := c.Client.Get(ctx, cacheKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(data), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *IdentityCache) Put(ctx context.Context, token string, identity models.Identity) error {
	if c == nil || c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, cacheKey(token), data, c.TTL).Err()
}
