package ports

import (
	"context"
)

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

// CacheStore holds opaque serialized entries. Expiry policy belongs to the implementation.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ExpiringCache is implemented by stores that need an explicit sweep of stale entries.
type ExpiringCache interface {
	ClearExpired(ctx context.Context) error
}
