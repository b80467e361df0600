package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/domain/ports/mocks"
	"exchange-rate-resolver/pkg/logger"
)

func TestCurrencyCatalog_ListCurrencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateRequestClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "/latest", gomock.Nil()).
		Return(gjson.Parse(`{"base":"EUR","rates":{"USD":1.07,"GBP":0.88,"eur":1}}`), nil).
		Times(1)

	catalog := NewCurrencyCatalog(client, memoryStore(), logger.Nop())

	codes, err := catalog.ListCurrencies(context.Background(), model.CacheOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []model.Currency{model.EUR, model.GBP, model.USD}, codes)

	// second call is served from the cache
	codes, err = catalog.ListCurrencies(context.Background(), model.CacheOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []model.Currency{model.EUR, model.GBP, model.USD}, codes)
}

func TestCurrencyCatalog_BustRefetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateRequestClient(ctrl)
	gomock.InOrder(
		client.EXPECT().Get(gomock.Any(), "/latest", gomock.Nil()).
			Return(gjson.Parse(`{"base":"EUR","rates":{"USD":1.07}}`), nil),
		client.EXPECT().Get(gomock.Any(), "/latest", gomock.Nil()).
			Return(gjson.Parse(`{"base":"EUR","rates":{"USD":1.07,"JPY":140.1}}`), nil),
	)

	catalog := NewCurrencyCatalog(client, memoryStore(), logger.Nop())

	_, err := catalog.ListCurrencies(context.Background(), model.CacheOptions{})
	assert.NoError(t, err)

	codes, err := catalog.ListCurrencies(context.Background(), model.CacheOptions{BustCache: true})
	assert.NoError(t, err)
	assert.Equal(t, []model.Currency{model.EUR, model.JPY, model.USD}, codes)
}

func TestCurrencyCatalog_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateRequestClient(ctrl)
	client.EXPECT().Get(gomock.Any(), "/latest", gomock.Nil()).Return(gjson.Parse(`{"success":true}`), nil)

	_, err := NewCurrencyCatalog(client, memoryStore(), logger.Nop()).
		ListCurrencies(context.Background(), model.CacheOptions{})
	assert.True(t, errors.Is(err, ports.ErrUpstream), "got %v", err)

	store := mocks.NewMockCacheStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "currencies").Return(nil, false, ports.ErrCacheUnavailable)

	_, err = NewCurrencyCatalog(client, store, logger.Nop()).
		ListCurrencies(context.Background(), model.CacheOptions{})
	assert.True(t, errors.Is(err, ports.ErrCacheUnavailable), "got %v", err)
}

func TestCurrencyCatalog_SkipsMalformedCodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockRateRequestClient(ctrl)
	client.EXPECT().
		Get(gomock.Any(), "/latest", gomock.Nil()).
		Return(gjson.Parse(`{"base":"EUR","rates":{"USD":1.07,"":1,"bitcoin":0.00002,"US":1.1,"g b":2}}`), nil)

	codes, err := NewCurrencyCatalog(client, memoryStore(), logger.Nop()).
		ListCurrencies(context.Background(), model.CacheOptions{})
	assert.NoError(t, err)
	assert.Equal(t, []model.Currency{model.EUR, model.USD}, codes)
}
