package service

import (
	"testing"
	"time"

	"exchange-rate-resolver/internal/domain/model"
)

func TestHistoryCacheKey(t *testing.T) {
	dates := model.NewDateRange(
		time.Date(2023, 1, 2, 15, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 8, 0, 0, 0, 0, time.UTC),
	)

	single := HistoryCacheKey(model.USD, []model.Currency{model.EUR}, false, dates)
	if single != "history|USD|EUR|2023-01-02|2023-01-08" {
		t.Errorf("Unexpected single key: %s", single)
	}

	a := HistoryCacheKey(model.USD, []model.Currency{model.GBP, model.EUR}, true, dates)
	b := HistoryCacheKey(model.USD, []model.Currency{model.EUR, model.GBP, model.EUR}, true, dates)
	if a != b {
		t.Errorf("Target order and duplicates should not change the key: %s vs %s", a, b)
	}
	if a != "history|USD|[EUR,GBP]|2023-01-02|2023-01-08" {
		t.Errorf("Unexpected multi key: %s", a)
	}

	oneElem := HistoryCacheKey(model.USD, []model.Currency{model.EUR}, true, dates)
	if oneElem == single {
		t.Error("One-element list must not share a key with the string target")
	}

	other := HistoryCacheKey(model.USD, []model.Currency{model.EUR}, false,
		model.NewDateRange(dates.Start(), dates.Start()))
	if other == single {
		t.Error("Different ranges must produce different keys")
	}
}

func TestLatestCacheKey(t *testing.T) {
	got := LatestCacheKey(model.EUR, []model.Currency{model.USD, model.GBP}, true)
	if got != "latest|EUR|[GBP,USD]" {
		t.Errorf("Unexpected key: %s", got)
	}
	if got := LatestCacheKey(model.EUR, []model.Currency{model.USD}, false); got != "latest|EUR|USD" {
		t.Errorf("Unexpected key: %s", got)
	}
}
