package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCachedQuoteProvider_Hit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	upstream := mocks.NewMockQuoteProvider(ctrl)
	cache := mocks.NewMockQuoteCache(ctrl)
	p := NewCachedQuoteProvider(upstream, cache, 10*time.Second, newTestLogger())

	cache.EXPECT().Get(gomock.Any(), "BTC", "USD").Return(dec("65000.5"), true, nil)

	rate, err := p.Rate(context.Background(), "BTC", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("65000.5")))
}

func TestCachedQuoteProvider_MissStoresUpstreamRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	upstream := mocks.NewMockQuoteProvider(ctrl)
	cache := mocks.NewMockQuoteCache(ctrl)
	p := NewCachedQuoteProvider(upstream, cache, 10*time.Second, newTestLogger())

	cache.EXPECT().Get(gomock.Any(), "ETH", "BRL").Return(decimal.Zero, false, nil)
	upstream.EXPECT().Rate(gomock.Any(), "ETH", "BRL").Return(dec("17000"), nil)
	cache.EXPECT().Set(gomock.Any(), "ETH", "BRL", dec("17000"), 10*time.Second).Return(nil)

	rate, err := p.Rate(context.Background(), "ETH", "BRL")
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("17000")))
}

func TestCachedQuoteProvider_CacheErrorFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	upstream := mocks.NewMockQuoteProvider(ctrl)
	cache := mocks.NewMockQuoteCache(ctrl)
	p := NewCachedQuoteProvider(upstream, cache, time.Minute, newTestLogger())

	cache.EXPECT().Get(gomock.Any(), "SOL", "USD").Return(decimal.Zero, false, errors.New("redis down"))
	upstream.EXPECT().Rate(gomock.Any(), "SOL", "USD").Return(dec("150"), nil)
	cache.EXPECT().Set(gomock.Any(), "SOL", "USD", dec("150"), time.Minute).Return(errors.New("redis down"))

	rate, err := p.Rate(context.Background(), "SOL", "USD")
	require.NoError(t, err)
	assert.True(t, rate.Equal(dec("150")))
}

func TestCachedQuoteProvider_UpstreamErrorNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	upstream := mocks.NewMockQuoteProvider(ctrl)
	cache := mocks.NewMockQuoteCache(ctrl)
	p := NewCachedQuoteProvider(upstream, cache, time.Minute, newTestLogger())

	cache.EXPECT().Get(gomock.Any(), "BTC", "XYZ").Return(decimal.Zero, false, nil)
	upstream.EXPECT().Rate(gomock.Any(), "BTC", "XYZ").Return(decimal.Zero, domain.ErrPairUnsupported)

	_, err := p.Rate(context.Background(), "BTC", "XYZ")
	assert.ErrorIs(t, err, domain.ErrPairUnsupported)
}

func TestCachedQuoteProvider_ZeroTTLBypassesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	upstream := mocks.NewMockQuoteProvider(ctrl)
	cache := mocks.NewMockQuoteCache(ctrl)
	p := NewCachedQuoteProvider(upstream, cache, 0, newTestLogger())

	upstream.EXPECT().Rate(gomock.Any(), "BTC", "USD").Return(dec("1"), nil)

	_, err := p.Rate(context.Background(), "BTC", "USD")
	require.NoError(t, err)
}
