package service

import (
	"context"
	"time"

	"github.com/moedaspro/conversor/internal/entities"
)

// RateSource resolves pair quotes; satisfied by resolver.Resolver.
type RateSource interface {
	Resolve(ctx context.Context, pair entities.RatePair) (entities.RateQuote, error)
	Invalidate(ctx context.Context, pair entities.RatePair)
	ClearCache(ctx context.Context)
	CachedPairs() int
	ProviderNames() []string
}

// CurrencyLister fetches the codes a provider actually serves; satisfied by
// the frankfurter client.
type CurrencyLister interface {
	Currencies(ctx context.Context) (map[string]string, error)
}

// History persists completed conversions; satisfied by the postgres adapter.
type History interface {
	SaveConversion(ctx context.Context, c *entities.Conversion) error
	ListConversions(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error)
	Stats(ctx context.Context, pair entities.RatePair, since time.Time) (*entities.ConversionStats, error)
	DeleteAll(ctx context.Context) (int64, error)
}
