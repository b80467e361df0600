package service

import (
	"context"
	"encoding/json"
	"fmt"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/pkg/logger"
)

// cacheGate is the hit/bust decision shared by the resolver and the catalog.
type cacheGate struct {
	store   ports.CacheStore
	log     *logger.Logger
	metrics *metrics.Metrics
}

// lookup returns the cached bytes for key. A bust request deletes the entry and is
// always reported as a miss. Store failures are returned, never treated as misses.
func (g cacheGate) lookup(ctx context.Context, kind, key string, opts model.CacheOptions) ([]byte, bool, error) {
	if opts.BustCache {
		if err := g.store.Delete(ctx, key); err != nil {
			return nil, false, fmt.Errorf("bust cache entry %s: %w", key, err)
		}
		g.metrics.CacheLookup(kind, metrics.LookupBust)
		g.log.Debug("Cache entry busted", "key", key)
		return nil, false, nil
	}

	data, found, err := g.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	if !found {
		g.metrics.CacheLookup(kind, metrics.LookupMiss)
		g.log.Debug("Cache miss", "key", key)
		return nil, false, nil
	}

	g.metrics.CacheLookup(kind, metrics.LookupHit)
	g.log.Debug("Cache hit", "key", key)
	return data, true, nil
}

func (g cacheGate) save(ctx context.Context, kind, key string, value any, opts model.CacheOptions) error {
	if !opts.ShouldCache() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	if err := g.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}

	g.metrics.CacheWrite(kind)
	g.log.Debug("Cache set", "key", key)
	return nil
}

type options struct {
	metrics *metrics.Metrics
	clock   Clock
}

type Option func(*options)

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: realClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
