package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract shared by the token registry, the OAuth
// state store and password reset tokens. Values are JSON encoded.
type Cache interface {
	// Get unmarshals the stored value into dest.
	// found=false means a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value with a TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Take atomically reads and deletes a key, so a value can be consumed once.
	Take(ctx context.Context, key string, dest interface{}) (bool, error)

	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
