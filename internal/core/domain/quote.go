package domain

import "errors"

var (
	// ErrPairUnsupported is returned by a quote provider that does not price the pair.
	ErrPairUnsupported = errors.New("currency pair not supported by quote provider")
	// ErrQuoteProvider covers unreachable providers, timeouts and malformed responses.
	ErrQuoteProvider = errors.New("quote provider error")
)
