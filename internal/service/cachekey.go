package service

import (
	"slices"
	"strings"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/pkg/utils"
)

const currenciesCacheKey = "currencies"

// HistoryCacheKey identifies a date-range lookup. Target sets are sorted and de-duplicated
// so their order does not matter, and are bracketed so a one-element set never shares a
// key with the equivalent string target (the two produce differently shaped series).
func HistoryCacheKey(base model.Currency, targets []model.Currency, multi bool, dates model.DateRange) string {
	return strings.Join([]string{
		"history",
		string(base),
		targetsKey(targets, multi),
		utils.FormatDate(dates.Start()),
		utils.FormatDate(dates.End()),
	}, "|")
}

func LatestCacheKey(base model.Currency, targets []model.Currency, multi bool) string {
	return strings.Join([]string{"latest", string(base), targetsKey(targets, multi)}, "|")
}

func targetsKey(targets []model.Currency, multi bool) string {
	if !multi {
		return string(targets[0])
	}
	return "[" + model.JoinCurrencies(canonicalSet(targets)) + "]"
}

// canonicalSet returns a sorted copy of codes without duplicates.
func canonicalSet(codes []model.Currency) []model.Currency {
	out := slices.Clone(codes)
	slices.Sort(out)
	return slices.Compact(out)
}
