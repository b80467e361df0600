package ports

import (
	"context"
	"time"

	"exchange-rate-resolver/internal/domain/model"
)

type RateResolver interface {
	ResolveRange(ctx context.Context, req model.RangeRequest, opts model.CacheOptions) (*model.RateSeries, error)
	ResolveOn(ctx context.Context, base string, target any, date time.Time, opts model.CacheOptions) (*model.RateSeries, error)
	ResolveLatest(ctx context.Context, base string, target any, opts model.CacheOptions) (*model.RateSeries, error)
}

type CurrencyCatalog interface {
	ListCurrencies(ctx context.Context, opts model.CacheOptions) ([]model.Currency, error)
}
