package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/pkg/logger"
)

// CurrencyCatalog lists the currency codes the remote service quotes.
type CurrencyCatalog struct {
	cacheGate
	client ports.RateRequestClient
}

func NewCurrencyCatalog(client ports.RateRequestClient, store ports.CacheStore, log *logger.Logger, opts ...Option) *CurrencyCatalog {
	o := buildOptions(opts)
	return &CurrencyCatalog{
		cacheGate: cacheGate{store: store, log: log, metrics: o.metrics},
		client:    client,
	}
}

// ListCurrencies returns the base currency of the latest quote plus every quoted code,
// sorted and without duplicates.
func (c *CurrencyCatalog) ListCurrencies(ctx context.Context, opts model.CacheOptions) ([]model.Currency, error) {
	cached, hit, err := c.lookup(ctx, metrics.KindCurrencies, currenciesCacheKey, opts)
	if err != nil {
		return nil, err
	}
	if hit {
		var codes []model.Currency
		if err := json.Unmarshal(cached, &codes); err != nil {
			return nil, fmt.Errorf("decode cached currencies: %w", err)
		}
		return codes, nil
	}

	res, err := c.client.Get(ctx, latestPath, nil)
	if err != nil {
		c.log.Error("Failed to fetch currency list", "error", err)
		return nil, fmt.Errorf("fetch currency list: %w", err)
	}

	base := res.Get("base")
	rates := res.Get("rates")
	if !base.Exists() && !rates.IsObject() {
		return nil, fmt.Errorf("%w: latest response has neither base nor rates", ports.ErrUpstream)
	}

	var codes []model.Currency
	collect := func(raw string) {
		code := model.NormalizeCurrency(raw)
		if !code.IsWellFormed() {
			c.log.Debug("Skipping malformed currency code", "code", raw)
			return
		}
		codes = append(codes, code)
	}
	if base.Exists() {
		collect(base.String())
	}
	rates.ForEach(func(code, _ gjson.Result) bool {
		collect(code.String())
		return true
	})
	codes = canonicalSet(codes)

	if err := c.save(ctx, metrics.KindCurrencies, currenciesCacheKey, codes, opts); err != nil {
		return nil, err
	}

	c.log.Info("Loaded currency list", "count", len(codes))
	return codes, nil
}
