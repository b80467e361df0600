package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/tidwall/gjson"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/pkg/logger"
	"exchange-rate-resolver/pkg/utils"
)

const (
	historyPath = "/history"
	latestPath  = "/latest"
)

// RateResolver turns rate requests into normalized, date-ordered series, going through
// the cache first and the remote service only on a miss.
type RateResolver struct {
	cacheGate
	client ports.RateRequestClient
	clock  Clock
}

// NewRateResolver wires the resolver to its collaborators. Both client and store are required.
func NewRateResolver(client ports.RateRequestClient, store ports.CacheStore, log *logger.Logger, opts ...Option) *RateResolver {
	o := buildOptions(opts)
	return &RateResolver{
		cacheGate: cacheGate{store: store, log: log, metrics: o.metrics},
		client:    client,
		clock:     o.clock,
	}
}

// ResolveRange returns the rates between req.Start and req.End inclusive.
func (r *RateResolver) ResolveRange(ctx context.Context, req model.RangeRequest, opts model.CacheOptions) (*model.RateSeries, error) {
	base, err := ValidateCurrencyCode(req.Base)
	if err != nil {
		return nil, err
	}
	targets, multi, err := parseTarget(req.Target)
	if err != nil {
		return nil, err
	}
	if err := ValidateStartAndEndDates(req.Start, req.End); err != nil {
		return nil, err
	}

	dates := model.NewDateRange(req.Start, req.End)
	key := HistoryCacheKey(base, targets, multi, dates)

	cached, hit, err := r.lookup(ctx, metrics.KindHistory, key, opts)
	if err != nil {
		return nil, err
	}
	if hit {
		series, err := decodeSeries(key, cached)
		if err != nil {
			return nil, err
		}
		series.Group = req.Group
		return series, nil
	}

	var series *model.RateSeries
	if sameCurrency(base, targets) {
		series = r.synthesize(base, targets, multi, dates)
	} else {
		series, err = r.fetchHistory(ctx, base, targets, multi, dates)
		if err != nil {
			return nil, err
		}
	}
	series.SortByDate()

	if err := r.save(ctx, metrics.KindHistory, key, series, opts); err != nil {
		return nil, err
	}

	series.Group = req.Group
	return series, nil
}

// ResolveOn is a one-day range lookup. It shares cache entries with ResolveRange.
func (r *RateResolver) ResolveOn(ctx context.Context, base string, target any, date time.Time, opts model.CacheOptions) (*model.RateSeries, error) {
	series, err := r.ResolveRange(ctx, model.RangeRequest{
		Base:   base,
		Target: target,
		Start:  date,
		End:    date,
	}, opts)
	if err != nil {
		return nil, err
	}

	if len(series.Rates) == 0 {
		return nil, fmt.Errorf("%w: %s on %s", ErrRateNotFound, base, utils.FormatDate(date))
	}
	return series, nil
}

// ResolveLatest returns the most recent published rates as a one-point series.
func (r *RateResolver) ResolveLatest(ctx context.Context, base string, target any, opts model.CacheOptions) (*model.RateSeries, error) {
	baseCode, err := ValidateCurrencyCode(base)
	if err != nil {
		return nil, err
	}
	targets, multi, err := parseTarget(target)
	if err != nil {
		return nil, err
	}

	key := LatestCacheKey(baseCode, targets, multi)

	cached, hit, err := r.lookup(ctx, metrics.KindLatest, key, opts)
	if err != nil {
		return nil, err
	}
	if hit {
		return decodeSeries(key, cached)
	}

	var series *model.RateSeries
	if sameCurrency(baseCode, targets) {
		r.metrics.SameCurrency()
		today := utils.TruncateDay(r.clock.Now())
		series = newSeries(baseCode, targets, multi, model.NewDateRange(today, today))
		series.Rates = append(series.Rates, unitPoint(utils.FormatDate(today), targets, multi))
	} else {
		series, err = r.fetchLatest(ctx, baseCode, targets, multi)
		if err != nil {
			return nil, err
		}
	}

	if err := r.save(ctx, metrics.KindLatest, key, series, opts); err != nil {
		return nil, err
	}
	return series, nil
}

// synthesize builds a same-currency series without touching the network: 1.0 on
// every weekday, nothing on weekends.
func (r *RateResolver) synthesize(base model.Currency, targets []model.Currency, multi bool, dates model.DateRange) *model.RateSeries {
	r.metrics.SameCurrency()
	r.log.Debug("Synthesizing same-currency series", "base", base,
		"start", utils.FormatDate(dates.Start()), "end", utils.FormatDate(dates.End()))

	series := newSeries(base, targets, multi, dates)
	for _, day := range dates.Days() {
		if utils.IsWeekend(day) {
			continue
		}
		series.Rates = append(series.Rates, unitPoint(utils.FormatDate(day), targets, multi))
	}
	return series
}

func (r *RateResolver) fetchHistory(ctx context.Context, base model.Currency, targets []model.Currency, multi bool, dates model.DateRange) (*model.RateSeries, error) {
	params := url.Values{}
	params.Set("base", string(base))
	params.Set("start_at", utils.FormatDate(dates.Start()))
	params.Set("end_at", utils.FormatDate(dates.End()))
	params.Set("symbols", model.JoinCurrencies(targets))

	res, err := r.client.Get(ctx, historyPath, params)
	if err != nil {
		r.log.Error("Failed to fetch rate history", "error", err, "base", base, "symbols", params.Get("symbols"))
		return nil, fmt.Errorf("fetch rate history: %w", err)
	}

	rates := res.Get("rates")
	if !rates.IsObject() {
		return nil, fmt.Errorf("%w: history response has no rates object", ports.ErrUpstream)
	}

	series := newSeries(base, targets, multi, dates)
	rates.ForEach(func(date, perCurrency gjson.Result) bool {
		day := date.String()
		if !dates.Contains(day) {
			r.log.Debug("Dropping rate outside requested range", "date", day)
			return true
		}
		if point, ok := normalizePoint(day, perCurrency, targets, multi); ok {
			series.Rates = append(series.Rates, point)
		}
		return true
	})

	return series, nil
}

func (r *RateResolver) fetchLatest(ctx context.Context, base model.Currency, targets []model.Currency, multi bool) (*model.RateSeries, error) {
	params := url.Values{}
	params.Set("base", string(base))
	params.Set("symbols", model.JoinCurrencies(targets))

	res, err := r.client.Get(ctx, latestPath, params)
	if err != nil {
		r.log.Error("Failed to fetch latest rates", "error", err, "base", base, "symbols", params.Get("symbols"))
		return nil, fmt.Errorf("fetch latest rates: %w", err)
	}

	rates := res.Get("rates")
	if !rates.IsObject() {
		return nil, fmt.Errorf("%w: latest response has no rates object", ports.ErrUpstream)
	}

	day := res.Get("date").String()
	date, err := utils.ParseDate(day)
	if err != nil {
		date = utils.TruncateDay(r.clock.Now())
		day = utils.FormatDate(date)
	}

	point, ok := normalizePoint(day, rates, targets, multi)
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", ErrRateNotFound, base, model.JoinCurrencies(targets))
	}

	series := newSeries(base, targets, multi, model.NewDateRange(date, date))
	series.Rates = append(series.Rates, point)
	return series, nil
}

// normalizePoint extracts one date's rates from the upstream per-currency object.
// A single target is flattened to its value. Multiple targets keep whichever of the
// requested codes are present. A date with none of them is dropped in both shapes.
func normalizePoint(day string, perCurrency gjson.Result, targets []model.Currency, multi bool) (model.RatePoint, bool) {
	if !multi {
		v := perCurrency.Get(string(targets[0]))
		if !v.Exists() {
			return model.RatePoint{}, false
		}
		return model.RatePoint{Date: day, Rate: v.Float()}, true
	}

	if !perCurrency.IsObject() {
		return model.RatePoint{}, false
	}
	point := model.RatePoint{Date: day, Rates: make(map[model.Currency]float64, len(targets))}
	for _, code := range targets {
		if v := perCurrency.Get(string(code)); v.Exists() {
			point.Rates[code] = v.Float()
		}
	}
	if len(point.Rates) == 0 {
		return model.RatePoint{}, false
	}
	return point, true
}

func parseTarget(value any) ([]model.Currency, bool, error) {
	raw, multi, err := targetCodes(value)
	if err != nil {
		return nil, false, err
	}
	codes, err := ValidateCurrencyCodes(raw)
	if err != nil {
		return nil, false, err
	}
	if multi {
		codes = canonicalSet(codes)
	}
	return codes, multi, nil
}

func sameCurrency(base model.Currency, targets []model.Currency) bool {
	return !slices.ContainsFunc(targets, func(c model.Currency) bool { return c != base })
}

func newSeries(base model.Currency, targets []model.Currency, multi bool, dates model.DateRange) *model.RateSeries {
	return &model.RateSeries{
		Base:      base,
		Targets:   targets,
		Multi:     multi,
		StartDate: utils.FormatDate(dates.Start()),
		EndDate:   utils.FormatDate(dates.End()),
		Rates:     model.DateRates{},
	}
}

func unitPoint(day string, targets []model.Currency, multi bool) model.RatePoint {
	if !multi {
		return model.RatePoint{Date: day, Rate: 1.0}
	}
	rates := make(map[model.Currency]float64, len(targets))
	for _, c := range targets {
		rates[c] = 1.0
	}
	return model.RatePoint{Date: day, Rates: rates}
}

func decodeSeries(key string, data []byte) (*model.RateSeries, error) {
	var series model.RateSeries
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("decode cached series %s: %w", key, err)
	}
	if series.Rates == nil {
		series.Rates = model.DateRates{}
	}
	return &series, nil
}
