package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// QuoteCache implements ports.QuoteCache. Rates are stored as decimal
// strings under quote:{BASE}:{QUOTE}.
type QuoteCache struct {
	client goredis.UniversalClient
	prefix string
}

// NewQuoteCache creates a new Redis-backed quote cache.
func NewQuoteCache(client goredis.UniversalClient) *QuoteCache {
	return &QuoteCache{client: client, prefix: "quote:"}
}

func (c *QuoteCache) key(base, quote string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, base, quote)
}

// Get returns the cached rate. found is false on a miss.
func (c *QuoteCache) Get(ctx context.Context, base, quote string) (decimal.Decimal, bool, error) {
	raw, err := c.client.Get(ctx, c.key(base, quote)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis quote get: %w", err)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("redis quote decode %q: %w", raw, err)
	}
	return rate, true, nil
}

// Set stores rate for ttl.
func (c *QuoteCache) Set(ctx context.Context, base, quote string, rate decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(base, quote), rate.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis quote set: %w", err)
	}
	return nil
}
