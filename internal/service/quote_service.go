package service

import (
	"context"
	"time"

	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CachedQuoteProvider serves rates from a short-lived cache and falls back to
// the upstream provider on a miss. Cache failures are logged and otherwise
// ignored; only successful upstream quotes are cached.
type CachedQuoteProvider struct {
	upstream ports.QuoteProvider
	cache    ports.QuoteCache
	ttl      time.Duration
	log      zerolog.Logger
}

// NewCachedQuoteProvider wraps upstream. A nil cache or a zero ttl disables caching.
func NewCachedQuoteProvider(upstream ports.QuoteProvider, cache ports.QuoteCache, ttl time.Duration, log zerolog.Logger) *CachedQuoteProvider {
	return &CachedQuoteProvider{upstream: upstream, cache: cache, ttl: ttl, log: log}
}

// Rate implements ports.QuoteProvider.
func (p *CachedQuoteProvider) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if !p.enabled() {
		return p.upstream.Rate(ctx, base, quote)
	}

	rate, found, err := p.cache.Get(ctx, base, quote)
	if err != nil {
		p.log.Warn().Err(err).Str("pair", base+"-"+quote).Msg("quote cache read failed")
	} else if found {
		return rate, nil
	}

	rate, err = p.upstream.Rate(ctx, base, quote)
	if err != nil {
		return decimal.Zero, err
	}

	if err := p.cache.Set(ctx, base, quote, rate, p.ttl); err != nil {
		p.log.Warn().Err(err).Str("pair", base+"-"+quote).Msg("quote cache write failed")
	}
	return rate, nil
}

func (p *CachedQuoteProvider) enabled() bool {
	return p.cache != nil && p.ttl > 0
}
