package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:revoked:"

// TokenDenylist records revoked token ids in Redis. Each entry expires
// together with the token it blocks, so the set never outgrows the live
// token population.
type TokenDenylist struct{ RDB *redis.Client }

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist { return &TokenDenylist{RDB: rdb} }

// Revoke blocks jti until the given expiry. Already expired tokens are
// ignored.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return d.RDB.Set(ctx, denylistPrefix+jti, 1, ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.RDB.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
