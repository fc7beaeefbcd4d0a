package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moedaspro/conversor/internal/conversor/metrics"
	"github.com/moedaspro/conversor/internal/entities"
	"github.com/shopspring/decimal"
)

const defaultStatsWindow = 30 * 24 * time.Hour

var one = decimal.NewFromInt(1)

// Service wires rate resolution, conversion math and history persistence into
// the surface the CLI and HTTP port consume. A nil history disables
// persistence (the CLI runs that way).
type Service struct {
	rates      RateSource
	history    History
	currencies CurrencyLister
	metrics    *metrics.Metrics
}

// NewService wires the dependencies. history and currencies may be nil;
// a nil currencies lister falls back to the built-in currency table.
func NewService(rates RateSource, history History, currencies CurrencyLister, m *metrics.Metrics) (*Service, error) {
	if rates == nil {
		return nil, fmt.Errorf("service.NewService: rate source is required")
	}

	return &Service{
		rates:      rates,
		history:    history,
		currencies: currencies,
		metrics:    m,
	}, nil
}

// Convert resolves the pair rate and converts amount, rounding the result
// half-up to 2 decimal places. With save set and history configured, the
// conversion is persisted.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, origin, destination string, save bool) (*entities.Conversion, error) {
	if !amount.IsPositive() {
		return nil, entities.ErrNonPositiveAmount
	}

	pair, err := entities.NewRatePair(origin, destination)
	if err != nil {
		return nil, err
	}

	if pair.Origin == pair.Destination {
		return nil, entities.ErrSameCurrency
	}

	quote, err := s.rates.Resolve(ctx, pair)
	if err != nil {
		return nil, err
	}

	conversion := &entities.Conversion{
		ID:          uuid.New(),
		Pair:        pair,
		Amount:      amount,
		Result:      amount.Mul(quote.Value).Round(2),
		Rate:        quote.Value,
		InverseRate: one.Div(quote.Value),
		Source:      quote.Source,
		Timestamp:   time.Now(),
	}

	if save && s.history != nil {
		if err := s.history.SaveConversion(ctx, conversion); err != nil {
			return nil, err
		}
	}

	s.metrics.RecordConversion(string(pair.Origin), string(pair.Destination))
	slog.Info("conversion completed",
		"pair", pair.String(), "amount", amount.String(), "result", conversion.Result.String(), "source", quote.Source)

	return conversion, nil
}

// ConvertMulti converts one amount into several destinations. The first
// resolution pulls a bulk response, so the remaining destinations are cache
// hits. Per-destination failures are logged and skipped, matching the
// single-conversion failure semantics only when every destination fails.
func (s *Service) ConvertMulti(ctx context.Context, amount decimal.Decimal, origin string, destinations []string, save bool) (*entities.MultiConversion, error) {
	if !amount.IsPositive() {
		return nil, entities.ErrNonPositiveAmount
	}

	from, err := entities.ParseCode(origin)
	if err != nil {
		return nil, err
	}

	multi := &entities.MultiConversion{
		Amount:    amount,
		Origin:    from,
		Timestamp: time.Now(),
	}

	var lastErr error

	for _, destination := range destinations {
		to := strings.ToUpper(strings.TrimSpace(destination))
		if to == string(from) {
			continue
		}

		conversion, err := s.Convert(ctx, amount, string(from), to, save)
		if err != nil {
			slog.Warn("skipping destination in multi conversion",
				"origin", string(from), "destination", to, "error", err)
			lastErr = err
			continue
		}

		multi.Conversions = append(multi.Conversions, *conversion)
	}

	if len(multi.Conversions) == 0 && lastErr != nil {
		return nil, lastErr
	}

	return multi, nil
}

// Rate resolves the current quote for one pair without converting.
func (s *Service) Rate(ctx context.Context, origin, destination string) (entities.RateQuote, error) {
	pair, err := entities.NewRatePair(origin, destination)
	if err != nil {
		return entities.RateQuote{}, err
	}

	return s.rates.Resolve(ctx, pair)
}

// RefreshRate drops the cached quote for one pair and resolves it again.
func (s *Service) RefreshRate(ctx context.Context, origin, destination string) (entities.RateQuote, error) {
	pair, err := entities.NewRatePair(origin, destination)
	if err != nil {
		return entities.RateQuote{}, err
	}

	s.rates.Invalidate(ctx, pair)

	return s.rates.Resolve(ctx, pair)
}

// Currencies lists the supported currency codes with names, preferring the
// configured provider's live listing over the built-in table.
func (s *Service) Currencies(ctx context.Context) map[string]string {
	if s.currencies != nil {
		listed, err := s.currencies.Currencies(ctx)
		if err != nil {
			slog.Warn("currency listing fetch failed, using built-in table", "error", err)
		} else if len(listed) > 0 {
			return listed
		}
	}

	return entities.Currencies()
}

// SearchCurrencies filters the supported codes by a term matched against
// code or name.
func (s *Service) SearchCurrencies(ctx context.Context, term string) map[string]string {
	term = strings.ToUpper(strings.TrimSpace(term))

	out := make(map[string]string)
	for code, name := range s.Currencies(ctx) {
		if strings.Contains(code, term) || strings.Contains(strings.ToUpper(name), term) {
			out[code] = name
		}
	}

	return out
}

// History lists persisted conversions matching the filter.
func (s *Service) History(ctx context.Context, filter entities.HistoryFilter) ([]entities.Conversion, int, error) {
	if s.history == nil {
		return nil, 0, entities.ErrHistoryDisabled
	}

	return s.history.ListConversions(ctx, filter)
}

// Stats aggregates one pair's history over the trailing window of days
// (30 by default).
func (s *Service) Stats(ctx context.Context, origin, destination string, days int) (*entities.ConversionStats, error) {
	if s.history == nil {
		return nil, entities.ErrHistoryDisabled
	}

	pair, err := entities.NewRatePair(origin, destination)
	if err != nil {
		return nil, err
	}

	window := defaultStatsWindow
	if days > 0 {
		window = time.Duration(days) * 24 * time.Hour
	}

	return s.history.Stats(ctx, pair, time.Now().Add(-window))
}

// ClearHistory wipes the persisted conversions.
func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	if s.history == nil {
		return 0, entities.ErrHistoryDisabled
	}

	return s.history.DeleteAll(ctx)
}

// Status reports the provider chain and cache state.
func (s *Service) Status(ctx context.Context) entities.SystemStatus {
	return entities.SystemStatus{
		Providers:      s.rates.ProviderNames(),
		CachedPairs:    s.rates.CachedPairs(),
		HistoryEnabled: s.history != nil,
	}
}
