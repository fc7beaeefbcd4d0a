package public

import (
	"context"

	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

type Service interface {
	Convert(ctx context.Context, amount decimal.Decimal, origin, destination string, save bool) (*entities.Conversion, error)
	ConvertMulti(ctx context.Context, amount decimal.Decimal, origin string, destinations []string, save bool) (*entities.MultiConversion, error)
	Rate(ctx context.Context, origin, destination string) (entities.RateQuote, error)
	RefreshRate(ctx context.Context, origin, destination string) (entities.RateQuote, error)
	Currencies(ctx context.Context) map[string]string
	SearchCurrencies(ctx context.Context, term string) map[string]string
	History(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error)
	Stats(ctx context.Context, origin, destination string, days int) (*entities.ConversionStats, error)
	ClearHistory(ctx context.Context) (int64, error)
	Status(ctx context.Context) entities.SystemStatus
}
