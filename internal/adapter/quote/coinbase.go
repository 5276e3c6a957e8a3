package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wallet-ledger/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const maxResponseBytes = 64 << 10

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// spotResponse is the body of GET /prices/{BASE}-{QUOTE}/spot.
type spotResponse struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
}

// CoinbaseProvider implements ports.QuoteProvider against the Coinbase
// public spot price API.
type CoinbaseProvider struct {
	baseURL string
	client  HTTPClient
	log     zerolog.Logger
}

// NewCoinbaseProvider creates a provider. baseURL is e.g. https://api.coinbase.com/v2.
func NewCoinbaseProvider(baseURL string, client HTTPClient, log zerolog.Logger) *CoinbaseProvider {
	return &CoinbaseProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		log:     log,
	}
}

// Rate returns how many units of quote one unit of base buys.
func (p *CoinbaseProvider) Rate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	pair := base + "-" + quote
	url := fmt.Sprintf("%s/prices/%s/spot", p.baseURL, pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: build request: %v", domain.ErrQuoteProvider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", domain.ErrQuoteProvider, pair, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrPairUnsupported, pair)
	case resp.StatusCode != http.StatusOK:
		return decimal.Zero, fmt.Errorf("%w: %s: status %d", domain.ErrQuoteProvider, pair, resp.StatusCode)
	}

	var body spotResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: decode: %v", domain.ErrQuoteProvider, pair, err)
	}

	rate, err := decimal.NewFromString(body.Data.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: amount %q: %v", domain.ErrQuoteProvider, pair, body.Data.Amount, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s: non-positive rate %s", domain.ErrQuoteProvider, pair, rate)
	}

	p.log.Debug().Str("pair", pair).Str("rate", rate.String()).Msg("quote fetched")
	return rate, nil
}
