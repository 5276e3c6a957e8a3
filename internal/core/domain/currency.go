package domain

import "strings"

// Currency is a reference entity; the set is seeded by the schema and read-only at runtime.
type Currency struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// NormalizeCurrencyCode upper-cases and trims a user supplied code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultCurrencies is the seed set shared by the SQL schema and the in-memory store.
func DefaultCurrencies() []Currency {
	return []Currency{
		{ID: 1, Code: "BTC", Name: "Bitcoin"},
		{ID: 2, Code: "ETH", Name: "Ethereum"},
		{ID: 3, Code: "SOL", Name: "Solana"},
		{ID: 4, Code: "USD", Name: "US Dollar"},
		{ID: 5, Code: "BRL", Name: "Brazilian Real"},
	}
}
