package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis holds the join lock primitive: one short-lived SetNX lock per
// (salon, customer) pair so a customer cannot race two joins past the
// active-entry check. Distinct customers are deliberately not
// serialized against each other.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{Client: client, TTL: ttl}
}

func joinKey(salonID, customerID string) string {
	return fmt.Sprintf("queue_join:%s:%s", salonID, customerID)
}

// LockJoin acquires the join lock. Returns false when another join for
// the same pair is in flight.
func (r *Redis) LockJoin(ctx context.Context, salonID, customerID string) (bool, error) {
	return r.Client.SetNX(ctx, joinKey(salonID, customerID), customerID, r.TTL).Result()
}

// UnlockJoin releases the lock if this customer still owns it.
func (r *Redis) UnlockJoin(ctx context.Context, salonID, customerID string) error {
	key := joinKey(salonID, customerID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == customerID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
