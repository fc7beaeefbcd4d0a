package resolver

import (
	"context"

	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

// Provider is one external exchange-rate source. A single fetch returns the
// rates for every destination relative to one base currency, because that is
// how the upstream APIs price their calls.
type Provider interface {
	Name() string
	FetchRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error)
}

// ProviderDescriptor fixes a provider's position in the fallback chain.
// Lower priority is tried first; disabled providers are never attempted.
type ProviderDescriptor struct {
	Provider Provider
	Priority int
	Enabled  bool
}
